package datachat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or chart payload failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrTurnActive indicates a submission while another turn occupies a
	// non-terminal state. The caller must cancel the active turn first.
	ErrTurnActive = errors.New("turn already active")
)
