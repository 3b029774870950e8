// Package bubbletea provides the Bubble Tea TUI for the chat client.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/turn"
)

// TurnFunc executes one chat turn. The onEvent callback receives each
// streaming event. The function blocks until the turn reaches a terminal
// state; cancelling the context stops generation.
type TurnFunc func(ctx context.Context, conv *datachat.Conversation, input string, onEvent func(datachat.Event)) (turn.Result, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. The context is used for graceful shutdown — when
// cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a streaming event for delivery to the Bubble Tea
// model.
type StreamEventMsg struct {
	Event datachat.Event
}

// TurnDoneMsg signals that the turn has reached a terminal state.
type TurnDoneMsg struct {
	Result turn.Result
	Err    error
}
