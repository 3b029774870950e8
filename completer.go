package datachat

import "context"

// Completer is a strategy pattern interface for the completion service.
// The service accepts conversation history and returns a streamed or
// single-shot natural-language answer, possibly containing embedded
// diagram and chart blocks.
type Completer interface {
	// StreamChat issues a streaming chat request. The returned Stream
	// delivers decoded events until the transport closes.
	StreamChat(ctx context.Context, req Request) (Stream, error)

	// StopGeneration asks the service to release server-side generation
	// work for the given request identity. Best-effort: the response body
	// is logged, not interpreted.
	StopGeneration(ctx context.Context, requestID string) error

	// Chat issues a single-shot (non-streaming) chat request and returns
	// the complete answer. Used only when streaming is unavailable.
	Chat(ctx context.Context, req Request) (string, error)
}
