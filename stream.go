package datachat

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving records.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern over the decoded event
// sequence of one turn. Cancellation flows through the context passed to
// Completer.StreamChat(); an abort surfaces from Next() as an error that
// wraps context.Canceled and must be treated as benign by the caller.
//
// Next() returns io.EOF when the transport closes the stream normally.
// Malformed individual records are skipped inside Next(), never surfaced.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}
