// Package turn executes the lifecycle of a single chat turn: submission,
// the predefined-answer shortcut, draining the completion stream into the
// answer buffer, and the dual cancellation path (local read abort plus a
// best-effort stop notification to the backend).
package turn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/faq"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4096

	// stopTimeout bounds the best-effort stop notification. It runs off
	// the turn's own context, which is already cancelled by then.
	stopTimeout = 5 * time.Second
)

// NoticeNoResponse is shown when a stream ends with an empty answer
// buffer. A recoverable condition, not an error: the turn still
// completes.
const NoticeNoResponse = "no response received"

// Result is the outcome of one turn. Turn carries the terminal status
// and the answer buffer; Notice, when set, is a recoverable user-visible
// message distinct from an error.
type Result struct {
	Turn   *datachat.Turn
	Notice string
}

// Runner owns the single active turn. Exactly one turn occupies the
// non-terminal states at a time; Run returns ErrTurnActive otherwise.
// The pending request identity — the ID of the most recently issued
// turn — is consulted before every buffer mutation so a superseded
// turn's late-arriving events never corrupt the active turn.
type Runner struct {
	completer   datachat.Completer
	answers     *faq.Table
	temperature float64
	maxTokens   int
	streaming   bool
	log         zerolog.Logger

	active  atomic.Bool
	pending atomic.Value // string: most recently issued turn ID
}

// Option configures a [Runner].
type Option func(*Runner)

// WithFAQ sets the predefined-answer table checked before any network
// call. Nil disables the shortcut.
func WithFAQ(t *faq.Table) Option {
	return func(r *Runner) { r.answers = t }
}

// WithLogger sets the runner's logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithTemperature sets the sampling temperature for backend requests.
func WithTemperature(t float64) Option {
	return func(r *Runner) { r.temperature = t }
}

// WithMaxTokens sets the generation limit for backend requests.
func WithMaxTokens(n int) Option {
	return func(r *Runner) { r.maxTokens = n }
}

// WithoutStreaming switches the runner to the single-shot chat endpoint.
// Used only when streaming is unavailable.
func WithoutStreaming() Option {
	return func(r *Runner) { r.streaming = false }
}

// New creates a Runner backed by the given completion service.
func New(completer datachat.Completer, opts ...Option) *Runner {
	r := &Runner{
		completer:   completer,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		streaming:   true,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes one turn: it appends the user message to conv, answers
// from the FAQ table or the backend, forwards each content event to
// onEvent, and drives the turn to a terminal state. The assistant
// message is appended to conv only when the turn completes with a
// non-empty answer. Cancelling ctx aborts in-flight reads; the abort is
// swallowed and the turn ends cancelled, never failed.
func (r *Runner) Run(ctx context.Context, conv *datachat.Conversation, input string, onEvent func(datachat.Event)) (Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, fmt.Errorf("empty input: %w", datachat.ErrValidation)
	}
	if !r.active.CompareAndSwap(false, true) {
		return Result{}, datachat.ErrTurnActive
	}
	defer r.active.Store(false)
	if onEvent == nil {
		onEvent = func(datachat.Event) {}
	}

	t := datachat.NewTurn()
	r.pending.Store(t.ID)
	r.transition(t, datachat.TurnSending)
	conv.Append(datachat.RoleUser, input)

	if r.answers != nil {
		if answer, ok := r.answers.Match(input); ok {
			return r.playback(ctx, conv, t, answer, onEvent)
		}
	}

	req := datachat.Request{
		Messages:    conv.Messages,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
		RequestID:   t.ID,
	}
	if err := req.Validate(); err != nil {
		return r.fail(t, err)
	}

	if !r.streaming {
		return r.single(ctx, conv, t, req, onEvent)
	}

	stream, err := r.completer.StreamChat(ctx, req)
	if err != nil {
		if isAborted(ctx, err) {
			go r.notifyStop(t.ID)
			return r.cancelled(t), nil
		}
		return r.fail(t, err)
	}
	defer stream.Close()
	r.transition(t, datachat.TurnStreaming)

	var streamErr error
drain:
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if r.stale(t.ID) {
			r.log.Debug().Str("turn", t.ID).Msg("turn superseded, discarding event")
			go r.notifyStop(t.ID)
			return r.cancelled(t), nil
		}
		switch e := evt.(type) {
		case datachat.EventContent:
			t.AppendContent(e.Text)
			onEvent(e)
		case datachat.EventStopped:
			break drain
		case datachat.EventError:
			streamErr = errors.New(e.Message)
			break drain
		}
	}

	if streamErr != nil {
		if isAborted(ctx, streamErr) {
			go r.notifyStop(t.ID)
			return r.cancelled(t), nil
		}
		return r.fail(t, streamErr)
	}
	if ctx.Err() != nil {
		// The transport delivered its final close concurrently with the
		// user's stop. Treat as a cancellation, not a completion.
		go r.notifyStop(t.ID)
		return r.cancelled(t), nil
	}
	return r.complete(conv, t)
}

// playback emits a canned answer in fixed-size slices on a fixed delay,
// preserving the perceived typing behavior of a real stream. No network
// request is issued, so cancellation needs no stop notification.
func (r *Runner) playback(ctx context.Context, conv *datachat.Conversation, t *datachat.Turn, answer string, onEvent func(datachat.Event)) (Result, error) {
	r.transition(t, datachat.TurnStreaming)
	for _, slice := range faq.Slices(answer) {
		if r.stale(t.ID) {
			return r.cancelled(t), nil
		}
		select {
		case <-ctx.Done():
			return r.cancelled(t), nil
		case <-time.After(faq.SliceDelay):
		}
		t.AppendContent(slice)
		onEvent(datachat.EventContent{Text: slice})
	}
	return r.complete(conv, t)
}

// single answers through the non-streaming fallback endpoint.
func (r *Runner) single(ctx context.Context, conv *datachat.Conversation, t *datachat.Turn, req datachat.Request, onEvent func(datachat.Event)) (Result, error) {
	answer, err := r.completer.Chat(ctx, req)
	if err != nil {
		if isAborted(ctx, err) {
			go r.notifyStop(t.ID)
			return r.cancelled(t), nil
		}
		return r.fail(t, err)
	}
	r.transition(t, datachat.TurnStreaming)
	if answer != "" {
		t.AppendContent(answer)
		onEvent(datachat.EventContent{Text: answer})
	}
	return r.complete(conv, t)
}

func (r *Runner) complete(conv *datachat.Conversation, t *datachat.Turn) (Result, error) {
	r.transition(t, datachat.TurnCompleted)
	if t.Answer() == "" {
		r.log.Info().Str("turn", t.ID).Msg("stream ended with empty answer")
		return Result{Turn: t, Notice: NoticeNoResponse}, nil
	}
	conv.Append(datachat.RoleAssistant, t.Answer())
	return Result{Turn: t}, nil
}

func (r *Runner) cancelled(t *datachat.Turn) Result {
	r.transition(t, datachat.TurnCancelled)
	return Result{Turn: t}
}

func (r *Runner) fail(t *datachat.Turn, err error) (Result, error) {
	r.transition(t, datachat.TurnFailed)
	r.log.Error().Err(err).Str("turn", t.ID).Msg("turn failed")
	return Result{Turn: t}, err
}

// notifyStop sends the best-effort stop notification carrying the turn's
// request identity, off the (already cancelled) turn context. Failures
// are logged, never surfaced; the UI does not wait on the result.
func (r *Runner) notifyStop(requestID string) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := r.completer.StopGeneration(ctx, requestID); err != nil {
		r.log.Warn().Err(err).Str("request_id", requestID).Msg("stop notification failed")
	}
}

// stale reports whether id is no longer the pending request identity.
func (r *Runner) stale(id string) bool {
	cur, _ := r.pending.Load().(string)
	return cur != id
}

func (r *Runner) transition(t *datachat.Turn, next datachat.TurnStatus) {
	if err := t.To(next); err != nil {
		r.log.Error().Err(err).Msg("illegal turn transition")
	}
}

// isAborted distinguishes a cancellation-induced read failure from a
// genuine transport failure.
func isAborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
