package datachat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TurnStatus is the lifecycle state of a Turn.
type TurnStatus int

const (
	TurnIdle      TurnStatus = iota // Created, nothing submitted yet.
	TurnSending                     // Request issued, no events received.
	TurnStreaming                   // Receiving content events.
	TurnCompleted                   // Stream ended normally.
	TurnCancelled                   // User-initiated stop or supersession.
	TurnFailed                      // Transport or server-signaled failure.
)

// IsTerminal reports whether the status is a terminal lifecycle state.
// A turn in a terminal state never changes again; a new turn may begin.
func (s TurnStatus) IsTerminal() bool {
	switch s {
	case TurnCompleted, TurnCancelled, TurnFailed:
		return true
	}
	return false
}

func (s TurnStatus) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnSending:
		return "sending"
	case TurnStreaming:
		return "streaming"
	case TurnCompleted:
		return "completed"
	case TurnCancelled:
		return "cancelled"
	case TurnFailed:
		return "failed"
	default:
		return fmt.Sprintf("TurnStatus(%d)", int(s))
	}
}

// Turn is one user-initiated exchange, from submission to a terminal
// state. Its ID doubles as the request identity sent to the completion
// service and compared against the pending identity to discard stale
// events. The answer buffer is append-only while streaming.
type Turn struct {
	ID     string
	status TurnStatus
	buf    strings.Builder
}

// NewTurn creates an idle Turn with a fresh process-unique identifier.
func NewTurn() *Turn {
	return &Turn{ID: uuid.NewString()}
}

// Status returns the current lifecycle state.
func (t *Turn) Status() TurnStatus { return t.status }

// To transitions the turn to next, rejecting illegal transitions.
func (t *Turn) To(next TurnStatus) error {
	if t.status.IsTerminal() {
		return fmt.Errorf("turn %s: %s -> %s: turn already terminal", t.ID, t.status, next)
	}
	switch next {
	case TurnSending:
		if t.status != TurnIdle {
			return fmt.Errorf("turn %s: %s -> sending: only idle turns can be sent", t.ID, t.status)
		}
	case TurnStreaming:
		if t.status != TurnSending {
			return fmt.Errorf("turn %s: %s -> streaming: request not sent", t.ID, t.status)
		}
	case TurnCompleted:
		if t.status != TurnStreaming {
			return fmt.Errorf("turn %s: %s -> completed: not streaming", t.ID, t.status)
		}
	case TurnCancelled, TurnFailed:
		// Reachable from any non-terminal state.
	default:
		return fmt.Errorf("turn %s: %s -> %s: invalid target", t.ID, t.status, next)
	}
	t.status = next
	return nil
}

// AppendContent adds a content fragment to the answer buffer, in arrival
// order.
func (t *Turn) AppendContent(text string) {
	t.buf.WriteString(text)
}

// Answer returns the accumulated answer buffer.
func (t *Turn) Answer() string { return t.buf.String() }
