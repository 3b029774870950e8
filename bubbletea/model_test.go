package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zetacube/datachat"
	bt "github.com/zetacube/datachat/bubbletea"
	"github.com/zetacube/datachat/turn"
)

// initModel creates a model with an initialized 80x24 viewport.
func initModel(t *testing.T, run bt.TurnFunc) bt.Model {
	t.Helper()
	conv := &datachat.Conversation{}
	m := bt.New(run, conv, datachat.DefaultTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// nopTurn is a turn function that completes immediately.
func nopTurn(_ context.Context, _ *datachat.Conversation, _ string, _ func(datachat.Event)) (turn.Result, error) {
	return turn.Result{Turn: datachat.NewTurn()}, nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(nopTurn, &datachat.Conversation{}, datachat.DefaultTheme())
	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
}

func TestNew_RestoresConversation(t *testing.T) {
	t.Parallel()

	conv := &datachat.Conversation{}
	conv.Append(datachat.RoleUser, "지난주 매출")
	conv.Append(datachat.RoleAssistant, "매출은 증가했습니다")
	m := bt.New(nopTurn, conv, datachat.DefaultTheme())
	m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	view := m.View()
	assert.Contains(t, view, "지난주 매출")
	assert.Contains(t, view, "매출은 증가했습니다")
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size initializes viewport", func(t *testing.T) {
		t.Parallel()
		m := bt.New(nopTurn, &datachat.Conversation{}, datachat.DefaultTheme())
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
		assert.NotEmpty(t, m.View())
		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2
	})

	t.Run("enter with empty input does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)

		assert.False(t, model.Running())
		assert.Nil(t, cmd)
	})

	t.Run("submit creates user block and starts the turn", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m.Input.SetValue("지난주 매출")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(bt.Model)

		assert.True(t, m.Running())
		assert.NotNil(t, cmd)
		assert.Contains(t, m.View(), "지난주 매출")
		assert.Empty(t, m.Input.Value())
	})

	t.Run("content event updates output", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = updateModel(t, m, bt.StreamEventMsg{Event: datachat.EventContent{Text: "매출은 증가했"}})
		assert.Contains(t, m.View(), "매출은 증가했")
	})

	t.Run("ctrl+c when idle quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("ctrl+c while running cancels, not quits", func(t *testing.T) {
		t.Parallel()
		var cancelled bool
		m := initModel(t, nopTurn)
		m = bt.SetRunningWithCancel(m, func() { cancelled = true })

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		model := updated.(bt.Model)

		assert.True(t, cancelled)
		assert.Nil(t, cmd)
		// Still running until the turn settles.
		assert.True(t, model.Running())
	})

	t.Run("esc while running cancels", func(t *testing.T) {
		t.Parallel()
		var cancelled bool
		m := initModel(t, nopTurn)
		m = bt.SetRunningWithCancel(m, func() { cancelled = true })

		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.True(t, cancelled)
		assert.True(t, m.Running())
	})

	t.Run("esc when idle does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, m.Running())
	})

	t.Run("enter while running queues the input and cancels", func(t *testing.T) {
		t.Parallel()
		var cancelled bool
		m := initModel(t, nopTurn)
		m = bt.SetRunningWithCancel(m, func() { cancelled = true })
		m.Input.SetValue("다음 질문")

		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.True(t, cancelled)
		assert.Equal(t, "다음 질문", bt.Queued(m))
		assert.Empty(t, m.Input.Value())
	})

	t.Run("queued input resubmits when the turn settles", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = bt.SetRunningWithCancel(m, func() {})
		m.Input.SetValue("다음 질문")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		updated, cmd := m.Update(bt.TurnDoneMsg{Result: turn.Result{Turn: datachat.NewTurn()}})
		m = updated.(bt.Model)

		assert.True(t, m.Running())
		assert.NotNil(t, cmd)
		assert.Empty(t, bt.Queued(m))
		assert.Contains(t, m.View(), "다음 질문")
	})
}

func TestModel_TurnDone(t *testing.T) {
	t.Parallel()

	t.Run("re-enables input", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = bt.SetRunning(m)
		require.True(t, m.Running())

		m = updateModel(t, m, bt.TurnDoneMsg{Result: turn.Result{Turn: datachat.NewTurn()}})
		assert.False(t, m.Running())
	})

	t.Run("error is shown", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = bt.SetRunning(m)

		m = updateModel(t, m, bt.TurnDoneMsg{Err: assert.AnError})
		assert.False(t, m.Running())
		assert.Error(t, m.Err())
		assert.Contains(t, m.View(), "Error")
	})

	t.Run("context canceled is not an error", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = bt.SetRunning(m)

		m = updateModel(t, m, bt.TurnDoneMsg{
			Result: turn.Result{Turn: datachat.NewTurn()},
			Err:    context.Canceled,
		})
		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
	})

	t.Run("notice is shown", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = bt.SetRunning(m)

		m = updateModel(t, m, bt.TurnDoneMsg{
			Result: turn.Result{Turn: datachat.NewTurn(), Notice: turn.NoticeNoResponse},
		})
		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
		assert.Contains(t, m.View(), turn.NoticeNoResponse)
	})

	t.Run("submit after error clears it", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = bt.SetRunning(m)
		m = updateModel(t, m, bt.TurnDoneMsg{Err: assert.AnError})
		require.Error(t, m.Err())

		m.Input.SetValue("retry")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.True(t, m.Running())
		assert.NoError(t, m.Err())
	})
}
