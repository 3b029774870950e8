package datachat

import "fmt"

// Request carries the conversation history and generation parameters for
// one chat request. RequestID is the issuing turn's identity; the service
// uses it to correlate a later stop request.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	RequestID   string
}

// Validate checks universal constraints on Request.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages: %w", ErrValidation)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", r.Temperature, ErrValidation)
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	if r.RequestID == "" {
		return fmt.Errorf("request has no request ID: %w", ErrValidation)
	}
	return nil
}
