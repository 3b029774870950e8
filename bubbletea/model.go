package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zetacube/datachat"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	run    TurnFunc
	conv   *datachat.Conversation
	theme  datachat.Theme
	styles Styles

	blocks []MessageBlock
	// answer is the active turn's streaming block. Created on the first
	// content event, finalized when the turn ends.
	answer *AnswerBlock

	running bool
	cancel  context.CancelFunc
	eventCh chan datachat.Event
	doneCh  chan TurnDoneMsg
	// queued holds input submitted while a turn was still running. The
	// running turn is cancelled and the queued text is resubmitted as
	// soon as the cancelled turn settles.
	queued string
	err    error
	ready  bool
}

// New creates a new TUI Model with the given turn function, conversation,
// and theme.
func New(run TurnFunc, conv *datachat.Conversation, theme datachat.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:  ti,
		run:    run,
		conv:   conv,
		theme:  theme,
		styles: NewStyles(theme),
	}
	return m.renderConversation()
}

// Running returns whether a turn is currently in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		return m.handleTurnDone(msg)
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	// Output area.
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	// Status line.
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	// Input area.
	b.WriteString(m.Input.View())

	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m = m.stopTurn()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m = m.stopTurn()
		}
		return m, nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if m.running {
			// Stop the running turn and hold the new input until the
			// cancellation settles; the turn lifecycle admits one turn
			// at a time.
			m.Input.SetValue("")
			m.queued = text
			m = m.stopTurn()
			return m, nil
		}
		return m.submitInput(text)
	}

	// When idle, pass keys to both input (for typing) and viewport (for
	// scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// stopTurn cancels the in-flight turn. The model stays in the running
// state until TurnDoneMsg arrives; the turn function owns the terminal
// transition and the stop notification.
func (m Model) stopTurn() Model {
	if m.cancel != nil {
		m.cancel()
	}
	return m
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	// The turn function appends the user message to the conversation;
	// the model only mirrors it visually.
	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.answer = nil
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan datachat.Event, 256)
	m.doneCh = make(chan TurnDoneMsg, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startTurn(m.run, ctx, m.conv, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

// handleTurnDone restores the send-ready state. Every terminal path goes
// through here: completion, cancellation, and failure all re-enable the
// input.
func (m Model) handleTurnDone(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.eventCh = nil
	m.doneCh = nil

	if m.answer != nil {
		// Final pass: deferred chart blocks materialize here.
		m.answer.Finalize()
		m.answer = nil
	}
	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) && !errors.Is(msg.Err, datachat.ErrTurnActive) {
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	}
	if msg.Result.Notice != "" {
		m.blocks = append(m.blocks, NewNoticeBlock(msg.Result.Notice, m.styles))
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	cmd := m.Input.Focus()
	if m.queued != "" {
		text := m.queued
		m.queued = ""
		model, submitCmd := m.submitInput(text)
		return model, tea.Batch(cmd, submitCmd)
	}
	return m, cmd
}

// renderConversation creates blocks from existing conversation messages.
func (m Model) renderConversation() Model {
	for _, msg := range m.conv.Messages {
		switch msg.Role {
		case datachat.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case datachat.RoleAssistant:
			b := NewAnswerBlock(m.theme)
			b.Append(msg.Content)
			b.Finalize()
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processEvent routes a streaming event to the active answer block.
func (m Model) processEvent(evt datachat.Event) Model {
	switch e := evt.(type) {
	case datachat.EventContent:
		if m.answer == nil {
			m.answer = NewAnswerBlock(m.theme)
			m.blocks = append(m.blocks, m.answer)
		}
		m.answer.Append(e.Text)
	case datachat.EventError:
		// The turn function surfaces the failure through TurnDoneMsg;
		// nothing to render here.
	}
	return m
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render("Error: " + m.err.Error())
	}
	if m.running {
		return m.styles.Muted.Render("Generating... (Esc to stop)")
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}

// startTurn runs the turn in a goroutine and signals completion.
func startTurn(run TurnFunc, ctx context.Context, conv *datachat.Conversation, input string, eventCh chan<- datachat.Event, doneCh chan<- TurnDoneMsg) tea.Cmd {
	return func() tea.Msg {
		res, err := run(ctx, conv, input, func(e datachat.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- TurnDoneMsg{Result: res, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the
// channel closes, it reads the outcome from doneCh and returns
// TurnDoneMsg.
func listenForEvent(ch <-chan datachat.Event, doneCh <-chan TurnDoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return StreamEventMsg{Event: evt}
	}
}
