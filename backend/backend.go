// Package backend implements [datachat.Completer] for the chatbot
// backend's HTTP API.
//
// The streaming endpoint returns a chunked body of newline-delimited
// records; only lines beginning with "data: " are significant, and the
// remainder of such a line is a JSON object with optional content,
// stopped, and error fields. Decoding is tolerant: a record that does not
// parse is logged and skipped, because a payload may itself be a partial
// chunk of a larger JSON value still arriving.
package backend

import "encoding/json"

const (
	defaultBaseURL = "http://localhost:7860"

	streamPath = "/api/chat/stream"
	stopPath   = "/api/chat/stop"
	chatPath   = "/api/chat"

	dataPrefix = "data: "
)

// apiRequest is the JSON body sent to the chat endpoints.
type apiRequest struct {
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	RequestID   string       `json:"request_id"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamRecord is the payload of one "data: " line. The fields are
// mutually informative, not mutually exclusive: a record may carry both
// content and stopped. Processing order is error, stopped, content.
type streamRecord struct {
	Content string `json:"content"`
	Stopped bool   `json:"stopped"`
	Error   string `json:"error"`
}

// stopRequest is the body of a cancellation notification.
type stopRequest struct {
	RequestID string `json:"request_id"`
}

// chatResponse is the body of the single-shot chat endpoint.
type chatResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// apiError is the error body returned on non-2xx responses.
type apiError struct {
	Detail string `json:"detail"`
}

func decodeRecord(payload []byte) (streamRecord, error) {
	var rec streamRecord
	err := json.Unmarshal(payload, &rec)
	return rec, err
}
