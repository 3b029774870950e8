// Package mock provides test doubles for datachat interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/zetacube/datachat"
)

// Interface compliance check.
var _ datachat.Completer = (*Completer)(nil)

// Completer is a test double for datachat.Completer.
// Set the function fields for the methods you need. StreamChatFn and
// ChatFn panic when nil to catch missing setup. StopGenerationFn is
// nil-safe (no-op) because most tests never inspect the stop
// notification.
type Completer struct {
	StreamChatFn     func(ctx context.Context, req datachat.Request) (datachat.Stream, error)
	StopGenerationFn func(ctx context.Context, requestID string) error
	ChatFn           func(ctx context.Context, req datachat.Request) (string, error)
}

// StreamChat delegates to StreamChatFn.
func (c *Completer) StreamChat(ctx context.Context, req datachat.Request) (datachat.Stream, error) {
	return c.StreamChatFn(ctx, req)
}

// StopGeneration delegates to StopGenerationFn. Returns nil when not set.
func (c *Completer) StopGeneration(ctx context.Context, requestID string) error {
	if c.StopGenerationFn == nil {
		return nil
	}
	return c.StopGenerationFn(ctx, requestID)
}

// Chat delegates to ChatFn.
func (c *Completer) Chat(ctx context.Context, req datachat.Request) (string, error) {
	return c.ChatFn(ctx, req)
}
