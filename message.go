package datachat

import "time"

// Message is an immutable record of one conversation entry.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Conversation holds the ordered message history of one chat session.
// Messages is append-only: entries are never edited or removed. The
// assistant message for a turn is appended only once the turn completes
// with a non-empty answer.
type Conversation struct {
	ID        string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Append adds a message to the history and bumps UpdatedAt.
func (c *Conversation) Append(role Role, content string) {
	now := time.Now()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
	c.UpdatedAt = now
}
