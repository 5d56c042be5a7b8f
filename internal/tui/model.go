// Package tui implements the controller's interactive terminal UI: a
// bubbletea model that mirrors the keybindings and per-step handling of
// the original presenter loop (Enter to execute/reconnect, b to go back,
// s to skip, q to quit).
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/codemonkey-cli/codemonkey/internal/controller"
	"github.com/codemonkey-cli/codemonkey/internal/script"
)

// ConnectionState tracks whether the model currently believes it has a
// live executor connection.
type ConnectionState int

const (
	Connected ConnectionState = iota
	Disconnected
	Reconnecting
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// stepDoneMsg carries the result of a Step() call run off the UI thread so
// a slow/hanging executor never freezes the event loop.
type stepDoneMsg struct {
	result controller.StepResult
	err    error
}

// connectDoneMsg carries the result of a reconnect attempt.
type connectDoneMsg struct{ err error }

// RefreshMsg forces a redraw after something external (a `present --watch`
// script reload) changed the controller's state out from under the model.
type RefreshMsg struct{}

// Model is the bubbletea model driving one presentation.
type Model struct {
	ctrl            *controller.Controller
	shouldQuit      bool
	statusMessage   string
	connectionState ConnectionState
	finished        bool
	busy            bool // a Step or Connect call is in flight

	pauseDeadline time.Time
	pauseActive   bool

	spin spinner.Model

	// narration is rendered through a scrolling viewport rather than a raw
	// string because a Say block's text isn't bounded to fit one screen.
	narration     viewport.Model
	lastNarration string
}

const narrationHeight = 6

// New builds a Model for the given controller, assuming its connection
// state matches ctrl.IsConnected() at construction time.
func New(ctrl *controller.Controller) Model {
	state := Disconnected
	if ctrl.IsConnected() {
		state = Connected
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	vp := viewport.New(80, narrationHeight)
	return Model{ctrl: ctrl, connectionState: state, spin: s, narration: vp}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.pauseActive && time.Now().After(m.pauseDeadline) {
			m.pauseActive = false
			m.statusMessage = ""
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case stepDoneMsg:
		m.busy = false
		return m.handleStepResult(msg.result, msg.err)

	case connectDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.connectionState = Disconnected
			m.statusMessage = fmt.Sprintf("Reconnection failed: %v", msg.err)
			m.syncNarration()
			return m, nil
		}
		m.connectionState = Connected
		m.statusMessage = "Reconnected!"
		m.syncNarration()
		return m, nil

	case tea.WindowSizeMsg:
		m.narration.Width = msg.Width
		m.syncNarration()
		return m, nil
	}

	if m.shouldQuit {
		return m, tea.Quit
	}
	m.syncNarration()
	return m, nil
}

// syncNarration pushes the current block's narration text into the
// viewport, resetting scroll to the top only when the narration itself
// changed (so scrolling mid-block isn't clobbered by an unrelated Update).
func (m *Model) syncNarration() {
	block := m.ctrl.CurrentBlock()
	text := "(no narration)"
	if block != nil && block.Narration != nil {
		text = *block.Narration
	}
	if text == m.lastNarration {
		return
	}
	m.lastNarration = text
	m.narration.SetContent(text)
	m.narration.GotoTop()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.shouldQuit = true
		return m, tea.Quit

	case "b":
		m.ctrl.GoBack()
		m.statusMessage = ""
		m.finished = false
		return m, nil

	case "s":
		m.ctrl.Skip()
		m.statusMessage = ""
		return m, nil

	case "enter":
		if m.pauseActive {
			m.pauseActive = false
			m.statusMessage = ""
			return m, nil
		}
		if m.finished {
			m.shouldQuit = true
			return m, tea.Quit
		}
		if m.connectionState != Connected {
			m.busy = true
			m.connectionState = Reconnecting
			m.statusMessage = "Connecting..."
			return m, tea.Batch(m.reconnectCmd(), m.spin.Tick)
		}
		m.busy = true
		m.statusMessage = "Executing..."
		return m, m.stepCmd()
	}

	var cmd tea.Cmd
	m.narration, cmd = m.narration.Update(msg)
	return m, cmd
}

func (m Model) handleStepResult(result controller.StepResult, err error) (Model, tea.Cmd) {
	if err != nil {
		m.statusMessage = fmt.Sprintf("Error: %v", err)
		return m, nil
	}

	switch result.Kind {
	case controller.StepExecuted, controller.StepNarrationOnly:
		m.statusMessage = ""
	case controller.StepPaused:
		if result.PauseSeconds == nil {
			m.statusMessage = ""
		} else {
			m.statusMessage = fmt.Sprintf("Waiting %d seconds...", *result.PauseSeconds)
			m.pauseActive = true
			m.pauseDeadline = time.Now().Add(time.Duration(*result.PauseSeconds) * time.Second)
		}
	case controller.StepFinished:
		m.finished = true
		m.statusMessage = "Presentation complete! Press Enter or q to exit."
	case controller.StepAgentError:
		m.statusMessage = fmt.Sprintf("Agent error: %s (Enter=retry, s=skip)", result.ErrorMessage)
	case controller.StepConnectionLost:
		m.connectionState = Disconnected
		m.statusMessage = "Connection lost. Press Enter to reconnect."
	}
	return m, nil
}

func (m Model) stepCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := m.ctrl.Step()
		return stepDoneMsg{result: result, err: err}
	}
}

func (m Model) reconnectCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.Connect(context.Background())
		return connectDoneMsg{err: err}
	}
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	sayStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	nextActionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	waitStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m Model) View() string {
	current, total := m.ctrl.Progress()
	block := m.ctrl.CurrentBlock()

	section := ""
	if block != nil && block.Section != nil {
		section = *block.Section
	}

	connIndicator := "○ Disconnected"
	switch m.connectionState {
	case Connected:
		connIndicator = "● Connected"
	case Reconnecting:
		connIndicator = m.spin.View() + " Reconnecting..."
	}

	title := titleStyle.Render(fmt.Sprintf("  Code Monkey   [%d / %d]   %s   %s", current+1, total, section, connIndicator))

	actionsText := "(end of presentation)"
	if block != nil {
		switch block.Kind {
		case script.BlockAction:
			lines := make([]string, len(block.Actions))
			for i, a := range block.Actions {
				lines[i] = "  " + a.String()
			}
			actionsText = strings.Join(lines, "\n")
		case script.BlockPause:
			if block.PauseSeconds == nil {
				actionsText = "  [PAUSE] (wait for Enter)"
			} else {
				actionsText = fmt.Sprintf("  [PAUSE %d] (auto-continue)", *block.PauseSeconds)
			}
		case script.BlockNarrationOnly:
			actionsText = "  (narration only)"
		}
	}

	status := m.statusMessage
	statusStyled := okStyle.Render(status)
	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, "error"):
		statusStyled = errorStyle.Render(status)
	case strings.Contains(lower, "executing") || strings.Contains(lower, "waiting") || strings.Contains(lower, "connecting"):
		statusStyled = waitStyle.Render(status)
	}

	footer := footerStyle.Render("  Enter = execute  |  b = back  |  s = skip  |  q = quit")

	return strings.Join([]string{
		title,
		"",
		sayStyle.Render(" SAY "),
		m.narration.View(),
		"",
		nextActionStyle.Render(" NEXT ACTION "),
		actionsText,
		"",
		statusStyled,
		"",
		footer,
	}, "\n")
}
