// Package tui is the terminal blackjack table: a scrolling log of the
// round, a sidebar of bankroll and statistics, and a command prompt.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/session"
	"github.com/lox/blackjack/internal/strategy"
)

// Options configure the model.
type Options struct {
	// ShowHints logs the recommendation whenever the player is to act.
	ShowHints bool
	// TestMode captures log entries and delivers session events
	// synchronously instead of through the Bubble Tea runtime.
	TestMode bool
}

// TUIModel represents the Bubble Tea model for the blackjack table
type TUIModel struct {
	ctx    context.Context
	ctrl   *session.Controller
	logger *log.Logger
	opts   Options

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	events      chan session.Event
	lastBet     int
	dealing     bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	capturedLog []string
}

// eventMsg carries a session event into Update.
type eventMsg struct{ event session.Event }

// dealerDoneMsg is returned once the dealer has played.
type dealerDoneMsg struct {
	state game.GameState
	err   error
}

// NewTUIModel creates a model playing through ctrl.
func NewTUIModel(ctx context.Context, ctrl *session.Controller, logger *log.Logger, opts Options) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusedBorder).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &TUIModel{
		ctx:         ctx,
		ctrl:        ctrl,
		logger:      logger.WithPrefix("tui"),
		opts:        opts,
		logViewport: vp,
		actionInput: ti,
		events:      make(chan session.Event, 64),
		lastBet:     ctrl.Rules().MinBet,
		focusedPane: 1,
	}
	ctrl.Subscribe(m)

	m.AddLogEntry(HeaderStyle.Render("Blackjack"))
	m.AddLogEntry(fmt.Sprintf("Balance $%d. Table limits $%d-$%d. Type 'help' for commands.",
		ctrl.State().PlayerScore, ctrl.Rules().MinBet, ctrl.Rules().MaxBet))
	if ctrl.RunOver() {
		m.AddLogEntry(WarningStyle.Render("Your last run is over. Type 'new' to start again."))
	}
	return m
}

// OnEvent receives session events. Outside test mode they are queued for
// the Bubble Tea loop; a full queue drops the event.
func (m *TUIModel) OnEvent(e session.Event) {
	if m.opts.TestMode {
		m.handleEvent(e)
		return
	}
	select {
	case m.events <- e:
	default:
		m.logger.Warn("dropped session event", "type", e.EventType())
	}
}

func (m *TUIModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-m.events:
			return eventMsg{event: e}
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventMsg:
		m.handleEvent(msg.event)
		return m, m.waitForEvent()

	case dealerDoneMsg:
		m.dealing = false
		if msg.err != nil {
			m.AddLogEntry(ErrorStyle.Render(msg.err.Error()))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processAction(input); cmd != nil {
					cmds = append(cmds, cmd)
				}
				if m.quitting {
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processAction interprets a command line. It returns a command when the
// dealer has to play.
func (m *TUIModel) processAction(input string) tea.Cmd {
	if m.dealing {
		m.AddLogEntry(InfoStyle.Render("Dealer is playing..."))
		return nil
	}

	parts := strings.Fields(strings.ToLower(input))
	state := m.ctrl.State()

	if len(parts) == 0 {
		// Enter repeats the last bet between rounds.
		if state.Phase == game.PhaseBetting || state.Phase == game.PhaseGameOver {
			return m.bet(m.lastBet)
		}
		return nil
	}

	cmd, args := parts[0], parts[1:]
	if n, err := strconv.Atoi(cmd); err == nil {
		return m.bet(n)
	}

	switch cmd {
	case "quit", "exit", "q":
		m.quitting = true
		return nil
	case "help":
		m.showHelp()
		return nil
	case "bet":
		if len(args) == 0 {
			return m.bet(m.lastBet)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("invalid bet %q", args[0])))
			return nil
		}
		return m.bet(n)
	case "hint", "?":
		m.showHint()
		return nil
	case "next":
		if _, err := m.ctrl.NextRound(); err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
		}
		return nil
	case "new":
		s, err := m.ctrl.NewSession(m.ctx)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
			return nil
		}
		m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("New session with $%d.", s.PlayerScore)))
		return nil
	case "train", "training":
		mode := ""
		if len(args) > 0 {
			mode = args[0]
		}
		tm, err := strategy.ParseTrainingMode(mode)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
			return nil
		}
		m.ctrl.SetTraining(tm)
		m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Training mode: %s", tm)))
		return nil
	case "stats":
		m.showStats()
		return nil
	}

	action, err := game.ParseAction(cmd)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q. Type 'help'.", cmd)))
		return nil
	}
	next, err := m.ctrl.Act(m.ctx, action)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}
	return m.afterPlayerMove(next)
}

func (m *TUIModel) bet(amount int) tea.Cmd {
	next, err := m.ctrl.Bet(m.ctx, amount)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}
	m.lastBet = amount
	return m.afterPlayerMove(next)
}

// afterPlayerMove starts the dealer when the player's turn is over, or
// offers a hint when configured to.
func (m *TUIModel) afterPlayerMove(s game.GameState) tea.Cmd {
	switch s.Phase {
	case game.PhaseDealerTurn:
		m.dealing = true
		return m.playDealer()
	case game.PhasePlayerTurn:
		if m.opts.ShowHints {
			m.showHint()
		}
	}
	return nil
}

func (m *TUIModel) playDealer() tea.Cmd {
	return func() tea.Msg {
		s, err := m.ctrl.PlayDealer(m.ctx)
		return dealerDoneMsg{state: s, err: err}
	}
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.opts.TestMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.opts.TestMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.opts.TestMode
}

// Quitting reports whether the player asked to leave.
func (m *TUIModel) Quitting() bool {
	return m.quitting
}

// Dealing reports whether the dealer is playing.
func (m *TUIModel) Dealing() bool {
	return m.dealing
}
