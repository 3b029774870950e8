package bubbletea_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zetacube/datachat"
	bt "github.com/zetacube/datachat/bubbletea"
	"github.com/zetacube/datachat/turn"
)

func TestModel_Integration(t *testing.T) {
	t.Parallel()

	t.Run("full turn round trip", func(t *testing.T) {
		t.Parallel()

		turnFn := func(ctx context.Context, conv *datachat.Conversation, input string, onEvent func(datachat.Event)) (turn.Result, error) {
			conv.Append(datachat.RoleUser, input)
			tn := datachat.NewTurn()
			for _, text := range []string{"매출은 ", "증가했습니다"} {
				tn.AppendContent(text)
				onEvent(datachat.EventContent{Text: text})
			}
			conv.Append(datachat.RoleAssistant, tn.Answer())
			return turn.Result{Turn: tn}, nil
		}

		conv := &datachat.Conversation{}
		m := bt.New(turnFn, conv, datachat.DefaultTheme())

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("지난주 매출")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("증가했습니다")) &&
				bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())
		assert.Len(t, conv.Messages, 2)
	})

	t.Run("turn error is recoverable", func(t *testing.T) {
		t.Parallel()

		turnFn := func(ctx context.Context, conv *datachat.Conversation, input string, onEvent func(datachat.Event)) (turn.Result, error) {
			conv.Append(datachat.RoleUser, input)
			tn := datachat.NewTurn()
			_ = tn.To(datachat.TurnFailed)
			return turn.Result{Turn: tn}, assert.AnError
		}

		conv := &datachat.Conversation{}
		m := bt.New(turnFn, conv, datachat.DefaultTheme())

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("question")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Error"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.Error(t, final.Err())
	})
}
