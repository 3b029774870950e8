// Package json persists conversations as versioned JSON envelopes.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zetacube/datachat"
)

// envelope is the v1 wire format for a persisted conversation.
type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Messages  []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalConversation serializes a Conversation to JSON in v1 envelope
// format.
func MarshalConversation(c datachat.Conversation) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  make([]messageDTO, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		env.Messages[i] = messageDTO{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversation deserializes a Conversation from JSON in v1
// envelope format.
func UnmarshalConversation(data []byte) (datachat.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return datachat.Conversation{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return datachat.Conversation{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]datachat.Message, len(env.Messages))
	for i, dto := range env.Messages {
		role := datachat.Role(dto.Role)
		switch role {
		case datachat.RoleUser, datachat.RoleAssistant:
		default:
			return datachat.Conversation{}, fmt.Errorf("message %d: unknown role: %q", i, dto.Role)
		}
		msgs[i] = datachat.Message{
			Role:      role,
			Content:   dto.Content,
			Timestamp: dto.Timestamp,
		}
	}
	return datachat.Conversation{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  msgs,
	}, nil
}

// Save writes a Conversation to a JSON file, creating parent directories
// as needed. The write goes through a temp file and rename so a crash
// never leaves a truncated session on disk.
func Save(path string, c datachat.Conversation) error {
	data, err := MarshalConversation(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Conversation from a JSON file.
func Load(path string) (datachat.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return datachat.Conversation{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalConversation(data)
}
