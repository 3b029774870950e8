package mock

import (
	"io"

	"github.com/zetacube/datachat"
)

// Interface compliance check.
var _ datachat.Stream = (*Stream)(nil)

// Stream is a test double for datachat.Stream.
// Set the function fields for the methods you need. NextFn panics when
// nil to catch missing setup. CloseFn and StateFn are nil-safe (no-op
// and zero value) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn  func() (datachat.Event, error)
	StateFn func() datachat.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (datachat.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() datachat.StreamState {
	if s.StateFn == nil {
		return datachat.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// ScriptedStream returns a Stream that yields the given events in order,
// then io.EOF.
func ScriptedStream(events ...datachat.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (datachat.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			e := events[i]
			i++
			return e, nil
		},
	}
}
