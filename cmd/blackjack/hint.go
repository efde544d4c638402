package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/internal/tui"
)

// HintCmd recommends a play for a single position.
type HintCmd struct {
	Cards    []string `kong:"arg,help='Player cards, e.g. 10h 6d or As7c'"`
	Dealer   string   `kong:"required,short='d',help='Dealer upcard, e.g. 7c'"`
	Training string   `kong:"default='',help='Annotate the advice for a practice mode'"`
}

func (c *HintCmd) Run() error {
	cards, err := deck.ParseCards(strings.Join(c.Cards, " "))
	if err != nil {
		return err
	}
	if len(cards) < 2 {
		return fmt.Errorf("need at least two player cards, got %d", len(cards))
	}
	upcard, err := deck.ParseCard(c.Dealer)
	if err != nil {
		return fmt.Errorf("dealer upcard: %w", err)
	}
	mode, err := strategy.ParseTrainingMode(c.Training)
	if err != nil {
		return err
	}

	hand := deck.NewHand(cards...)
	advice, ok := strategy.Advise(hand, upcard, mode)
	if !ok {
		return fmt.Errorf("no play available for %s", strategy.Describe(hand))
	}
	writeAdvice(os.Stdout, hand, upcard, advice)
	return nil
}

func writeAdvice(w io.Writer, hand deck.Hand, upcard deck.Card, advice strategy.Advice) {
	p := advice.Primary
	fmt.Fprintf(w, "%s vs %s\n", tui.FormatHand(hand), tui.FormatCards([]deck.Card{upcard}))
	fmt.Fprintf(w, "%s\n", tui.HeaderStyle.Render(fmt.Sprintf("%s (%d%% confidence)", p.Action.Label(), p.Confidence)))
	for _, line := range strings.Split(p.Reasoning, "\n") {
		if line != "" {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	for _, alt := range advice.All {
		if alt.Action == p.Action {
			continue
		}
		fmt.Fprintf(w, "%s\n", tui.InfoStyle.Render(fmt.Sprintf("  alt: %s (%d%%, %s)",
			alt.Action.Label(), alt.Confidence, strategy.Band(alt.Confidence))))
	}
}
