package mock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/mock"
)

func TestCompleter(t *testing.T) {
	t.Parallel()

	t.Run("delegates to StreamChatFn", func(t *testing.T) {
		t.Parallel()
		var s mock.Stream
		c := mock.Completer{
			StreamChatFn: func(ctx context.Context, req datachat.Request) (datachat.Stream, error) {
				return &s, nil
			},
		}
		got, err := c.StreamChat(context.Background(), datachat.Request{})
		require.NoError(t, err)
		assert.Equal(t, &s, got)
	})

	t.Run("panics when StreamChatFn not set", func(t *testing.T) {
		t.Parallel()
		c := mock.Completer{}
		assert.Panics(t, func() {
			_, _ = c.StreamChat(context.Background(), datachat.Request{})
		})
	})

	t.Run("StopGeneration is nil-safe", func(t *testing.T) {
		t.Parallel()
		c := mock.Completer{}
		assert.NoError(t, c.StopGeneration(context.Background(), "req-1"))
	})

	t.Run("StopGeneration delegates", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("unreachable")
		c := mock.Completer{
			StopGenerationFn: func(ctx context.Context, requestID string) error {
				assert.Equal(t, "req-1", requestID)
				return wantErr
			},
		}
		assert.ErrorIs(t, c.StopGeneration(context.Background(), "req-1"), wantErr)
	})
}

func TestStream(t *testing.T) {
	t.Parallel()

	t.Run("Close is nil-safe", func(t *testing.T) {
		t.Parallel()
		var s mock.Stream
		assert.NoError(t, s.Close())
	})

	t.Run("State defaults to new", func(t *testing.T) {
		t.Parallel()
		var s mock.Stream
		assert.Equal(t, datachat.StreamStateNew, s.State())
	})
}

func TestScriptedStream(t *testing.T) {
	t.Parallel()
	s := mock.ScriptedStream(
		datachat.EventContent{Text: "a"},
		datachat.EventStopped{},
	)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, datachat.EventContent{Text: "a"}, evt)

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, datachat.EventStopped{}, evt)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}
