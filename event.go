package datachat

// Event is a sealed interface representing one decoded unit of the
// completion service's stream protocol. Events are purely semantic.
// Transport failures come from Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContent carries a text fragment of the answer.
type EventContent struct {
	Text string
}

func (EventContent) event() {}

// EventStopped signals that the service acknowledged a stop request and
// ended generation. It ends the read loop without failing the turn.
type EventStopped struct{}

func (EventStopped) event() {}

// EventError carries a server-signaled failure. It is fatal for the turn
// and its message is surfaced to the user verbatim.
type EventError struct {
	Message string
}

func (EventError) event() {}

// Interface compliance checks.
var (
	_ Event = EventContent{}
	_ Event = EventStopped{}
	_ Event = EventError{}
)
