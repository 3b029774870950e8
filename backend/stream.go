package backend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zetacube/datachat"
)

// stream implements [datachat.Stream] by splitting an HTTP response body
// into newline-delimited records. The scanner carries partial lines (and
// partial multi-byte characters) across reads, so decoding is stateful
// rather than chunk-local: a UTF-8 sequence split across two transport
// chunks reassembles before any record is parsed.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   datachat.StreamState
	err     error // terminal error, if any
	log     zerolog.Logger
}

// Interface compliance check.
var _ datachat.Stream = (*stream)(nil)

// maxRecordSize bounds a single record line. Content deltas are small,
// but a final record can carry a whole chart payload.
const maxRecordSize = 1 << 20

func newStream(ctx context.Context, body io.ReadCloser, log zerolog.Logger) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return &stream{
		body:    body,
		scanner: sc,
		ctx:     ctx,
		state:   datachat.StreamStateNew,
		log:     log,
	}
}

// Next reads the next semantic event from the record stream. Returns
// io.EOF when the transport closes normally. Lines without the record
// prefix and records that fail to decode are skipped, not surfaced:
// a garbled payload may be a partial chunk of a larger value still
// arriving, and one bad record must not fail the whole turn.
func (s *stream) Next() (datachat.Event, error) {
	switch s.state {
	case datachat.StreamStateComplete:
		return nil, io.EOF
	case datachat.StreamStateError:
		return nil, s.err
	case datachat.StreamStateClosed:
		return nil, fmt.Errorf("backend: %w", datachat.ErrStreamClosed)
	}

	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, dataPrefix)

		rec, err := decodeRecord([]byte(payload))
		if err != nil {
			s.log.Debug().Str("payload", payload).Err(err).Msg("skipping undecodable stream record")
			continue
		}
		s.state = datachat.StreamStateStreaming

		switch {
		case rec.Error != "":
			return datachat.EventError{Message: rec.Error}, nil
		case rec.Stopped:
			return datachat.EventStopped{}, nil
		case rec.Content != "":
			return datachat.EventContent{Text: rec.Content}, nil
		}
		// Empty record: keep reading.
	}

	if err := s.scanner.Err(); err != nil {
		s.state = datachat.StreamStateError
		// An abort of the read primitive surfaces here. Wrap without
		// reclassifying so the caller can recognize context.Canceled.
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			s.err = fmt.Errorf("backend: read aborted: %w", ctxErr)
		} else {
			s.err = fmt.Errorf("backend: %w", err)
		}
		return nil, s.err
	}

	// Scanner exhausted without error: the transport closed the stream.
	s.state = datachat.StreamStateComplete
	return nil, io.EOF
}

// State returns the current stream state.
func (s *stream) State() datachat.StreamState {
	return s.state
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != datachat.StreamStateComplete && s.state != datachat.StreamStateError {
		s.state = datachat.StreamStateClosed
	}
	return s.body.Close()
}
