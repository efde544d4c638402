package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/session"
	"github.com/lox/blackjack/internal/strategy"
)

const sidebarWidth = 28

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(1)).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebarPane())

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(0)).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return focusedBorder
	}
	return blurredBorder
}

// renderSidebarPane shows the bankroll and lifetime statistics.
func (m *TUIModel) renderSidebarPane() string {
	s := m.ctrl.State()
	stats := m.ctrl.Stats()

	var b strings.Builder
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", s.PlayerScore)))
	b.WriteString("\n")
	if bet := s.TotalAtRisk(); bet > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("On table: $%d", bet)))
		b.WriteString("\n")
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Shoe: %d cards", len(s.Deck))))
	b.WriteString("\n")
	if mode := m.ctrl.Training(); mode != strategy.TrainingNone {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Training: %s", mode)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HandInfoStyle.Render("Statistics"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Hands:    %d\n", stats.HandsPlayed)
	fmt.Fprintf(&b, "Won:      %.1f%%\n", stats.WinRate())
	fmt.Fprintf(&b, "Lost:     %.1f%%\n", stats.LossRate())
	fmt.Fprintf(&b, "Pushed:   %.1f%%\n", stats.PushRate())
	fmt.Fprintf(&b, "Net:      $%d\n", stats.TotalWinnings)
	if stats.DecisionsTotal > 0 {
		fmt.Fprintf(&b, "Accuracy: %.1f%%\n", stats.StrategyAccuracy())
	}
	return b.String()
}

// renderActionPane shows the table and the prompt.
func (m *TUIModel) renderActionPane() string {
	s := m.ctrl.State()
	var b strings.Builder

	switch s.Phase {
	case game.PhaseBetting:
		if m.ctrl.RunOver() {
			b.WriteString(WarningStyle.Render("Run complete. Type 'new' for a fresh bankroll."))
		} else {
			b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Place your bet ($%d-$%d). Enter bets $%d.",
				s.Rules.MinBet, s.Rules.MaxBet, m.lastBet)))
		}
		b.WriteString("\n")
		m.actionInput.Placeholder = "bet 25, hint, stats, new, train split, quit"
	default:
		hideHole := s.Phase == game.PhasePlayerTurn
		b.WriteString(HandInfoStyle.Render("Dealer: "))
		b.WriteString(m.formatDealer(s.DealerHand, hideHole))
		b.WriteString("\n")
		b.WriteString(m.renderPlayerHands(s))
		if s.Phase == game.PhasePlayerTurn {
			b.WriteString(m.renderAvailableActions(s))
			b.WriteString("\n")
			m.actionInput.Placeholder = "hit, stand, double, split, surrender, insurance, hint"
		} else {
			m.actionInput.Placeholder = "Enter to rebet, or bet N"
		}
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

func (m *TUIModel) renderPlayerHands(s game.GameState) string {
	var b strings.Builder
	if !s.IsSplit {
		b.WriteString(HandInfoStyle.Render("You:    "))
		b.WriteString(FormatHand(s.PlayerHand))
		fmt.Fprintf(&b, "  bet $%d\n", s.CurrentBet)
		return b.String()
	}
	for i, sh := range s.SplitHands {
		label := fmt.Sprintf("Hand %d: ", i+1)
		if i == s.ActiveSplitHandIndex && s.Phase == game.PhasePlayerTurn {
			label = ActiveHandStyle.Render("▶ " + label)
		} else {
			label = HandInfoStyle.Render("  " + label)
		}
		b.WriteString(label)
		b.WriteString(FormatHand(sh.Hand))
		fmt.Fprintf(&b, "  bet $%d", sh.Bet)
		if sh.Result != game.NoResult {
			fmt.Fprintf(&b, "  %s", sh.Result)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderAvailableActions lists the legal actions with their shortcuts.
func (m *TUIModel) renderAvailableActions(s game.GameState) string {
	var actions []string
	for _, a := range s.AvailableActions() {
		switch a {
		case game.Hit, game.Stand:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[%s]", a)))
		case game.Surrender:
			actions = append(actions, ErrorStyle.Render(fmt.Sprintf("[%s]", a)))
		default:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[%s]", a)))
		}
	}
	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}

// FormatCards renders cards with suit colors, e.g. "[A♠ 10♥]".
func FormatCards(cards []deck.Card) string {
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// FormatHand renders a hand's cards followed by its total.
func FormatHand(h deck.Hand) string {
	return FormatCards(h.Cards) + " " + describeTotal(h)
}

func (m *TUIModel) formatDealer(h deck.Hand, hideHole bool) string {
	if !hideHole || len(h.Cards) < 2 {
		return FormatHand(h)
	}
	return FormatCards(h.Cards[:1]) + " " + HiddenCardStyle.Render("[??]")
}

func describeTotal(h deck.Hand) string {
	switch {
	case h.IsBlackjack:
		return "(blackjack)"
	case h.IsBusted:
		return fmt.Sprintf("(%d, bust)", h.Total)
	case h.IsSoft:
		return fmt.Sprintf("(soft %d)", h.Total)
	}
	return fmt.Sprintf("(%d)", h.Total)
}

// handleEvent turns a session event into log entries.
func (m *TUIModel) handleEvent(e session.Event) {
	switch ev := e.(type) {
	case session.ReshuffledEvent:
		m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Shuffling a fresh shoe of %d cards.", ev.Cards)))
	case session.RoundStartedEvent:
		m.AddLogEntry("")
		m.AddLogEntry(HeaderStyle.Render(fmt.Sprintf("Bet $%d", ev.Bet)))
		m.AddLogEntry(fmt.Sprintf("You: %s  Dealer shows: %s",
			FormatHand(ev.PlayerHand), FormatCards([]deck.Card{ev.Upcard})))
	case session.ActionTakenEvent:
		line := fmt.Sprintf("You %s: %s", ev.Action, FormatHand(ev.Hand))
		if !ev.Correct() {
			line += WarningStyle.Render(fmt.Sprintf("  (basic strategy: %s)", ev.Recommended))
		}
		m.AddLogEntry(line)
	case session.DealerPlayedEvent:
		m.AddLogEntry(fmt.Sprintf("Dealer: %s", FormatHand(ev.DealerHand)))
	case session.RoundSettledEvent:
		net := ev.Settlement.LastHandWinnings
		m.AddLogEntry(resultStyle(net).Render(fmt.Sprintf("%s  %+d  (balance $%d)",
			resultText(ev.Round.Result, ev.Round.Surrendered), net, ev.Round.Balance)))
		if ev.Settlement.InsuranceBet > 0 {
			m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Insurance $%d returned $%d",
				ev.Settlement.InsuranceBet, ev.Settlement.InsuranceReturned)))
		}
	case session.RunCompleteEvent:
		m.AddLogEntry(WarningStyle.Render(fmt.Sprintf("Run complete after %d hands (peak $%d). Type 'new' to play again.",
			ev.Run.HandsPlayed, ev.Run.PeakBalance)))
	}
}

func resultText(r game.Result, surrendered bool) string {
	if surrendered {
		return "Surrendered"
	}
	switch r {
	case game.PlayerBlackjack:
		return "Blackjack!"
	case game.PlayerWins:
		return "You win"
	case game.DealerBlackjack:
		return "Dealer blackjack"
	case game.DealerWins:
		return "Dealer wins"
	case game.Push:
		return "Push"
	}
	return r.String()
}

func (m *TUIModel) showHint() {
	advice, ok := m.ctrl.Hint()
	if !ok {
		m.AddLogEntry(InfoStyle.Render("No hint: it is not your turn."))
		return
	}
	p := advice.Primary
	m.AddLogEntry(ActionsStyle.Render(fmt.Sprintf("Hint: %s (%d%% confidence)", p.Action.Label(), p.Confidence)))
	for _, line := range strings.Split(p.Reasoning, "\n") {
		if line != "" {
			m.AddLogEntry("  " + line)
		}
	}
	for _, alt := range advice.All {
		if alt.Action != p.Action {
			m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("  alt: %s (%d%%)", alt.Action.Label(), alt.Confidence)))
		}
	}
}

func (m *TUIModel) showStats() {
	stats := m.ctrl.Stats()
	m.AddLogEntry(HandInfoStyle.Render("Lifetime statistics"))
	m.AddLogEntry(fmt.Sprintf("  Hands %d  Won %d  Lost %d  Pushed %d",
		stats.HandsPlayed, stats.HandsWon, stats.HandsLost, stats.HandsPushed))
	m.AddLogEntry(fmt.Sprintf("  Blackjacks %d  Busts %d  Doubles %d  Splits %d  Surrenders %d",
		stats.Blackjacks, stats.Busts, stats.Doubles, stats.Splits, stats.Surrenders))
	m.AddLogEntry(fmt.Sprintf("  Net $%d  Avg total %.1f  Strategy accuracy %.1f%%",
		stats.TotalWinnings, stats.AverageHandValue(), stats.StrategyAccuracy()))
}

func (m *TUIModel) showHelp() {
	for _, line := range []string{
		"Commands:",
		"  bet N | N        place a bet (Enter repeats the last bet)",
		"  hit stand double split surrender insurance (h s d p r i)",
		"  hint | ?         basic-strategy advice for the current hand",
		"  train MODE       practise hit, stand, double-down, split or none",
		"  stats            lifetime statistics",
		"  next             clear the table",
		"  new              start a new session with a fresh bankroll",
		"  quit             save and leave",
	} {
		m.AddLogEntry(InfoStyle.Render(line))
	}
}
