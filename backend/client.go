package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/zetacube/datachat"
)

// Interface compliance check.
var _ datachat.Completer = (*Client)(nil)

// Client implements [datachat.Completer] over the backend's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client for the given base URL. An empty baseURL selects
// the default local backend address.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StreamChat issues a streaming chat request and returns a
// [datachat.Stream] over the response's newline-delimited records.
func (c *Client) StreamChat(ctx context.Context, req datachat.Request) (datachat.Stream, error) {
	resp, err := c.post(ctx, streamPath, buildRequestBody(req))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return newStream(ctx, resp.Body, c.log), nil
}

// StopGeneration notifies the backend that generation work for the given
// request identity can be released. The response body is accepted and
// logged, not otherwise interpreted.
func (c *Client) StopGeneration(ctx context.Context, requestID string) error {
	resp, err := c.post(ctx, stopPath, stopRequest{RequestID: requestID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp)
	}
	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("backend: decode stop response: %w", err)
	}
	c.log.Debug().Str("request_id", requestID).RawJSON("response", body).Msg("stop acknowledged")
	return nil
}

// Chat issues a single-shot chat request and returns the complete answer.
func (c *Client) Chat(ctx context.Context, req datachat.Request) (string, error) {
	resp, err := c.post(ctx, chatPath, buildRequestBody(req))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", parseHTTPError(resp)
	}
	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("backend: decode chat response: %w", err)
	}
	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = "request unsuccessful"
		}
		return "", fmt.Errorf("backend: %s", msg)
	}
	return body.Message, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	return resp, nil
}

func buildRequestBody(req datachat.Request) apiRequest {
	msgs := make([]apiMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = apiMessage{Role: string(m.Role), Content: m.Content}
	}
	return apiRequest{
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		RequestID:   req.RequestID,
	}
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Detail == "" {
		return fmt.Errorf("backend: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("backend: HTTP %d: %s", resp.StatusCode, apiErr.Detail)
}
