package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// Rules are the table settings the engine honours.
type Rules struct {
	StartingBalance  int
	MinBet           int
	MaxBet           int
	DeckCount        int
	DealerHitsSoft17 bool
	AllowSurrender   bool
	AllowInsurance   bool
	DoubleAfterSplit bool
	ResplitAces      bool
	MaxSplitHands    int
}

// DefaultRules returns a six-deck, dealer-stands-on-soft-17 table.
func DefaultRules() Rules {
	return Rules{
		StartingBalance:  1000,
		MinBet:           10,
		MaxBet:           500,
		DeckCount:        6,
		DealerHitsSoft17: false,
		AllowSurrender:   true,
		AllowInsurance:   true,
		DoubleAfterSplit: true,
		ResplitAces:      false,
		MaxSplitHands:    4,
	}
}

// Validate checks the rules for consistency.
func (r Rules) Validate() error {
	if r.StartingBalance < 0 {
		return fmt.Errorf("starting balance must be non-negative, got %d", r.StartingBalance)
	}
	if r.MinBet < 1 {
		return fmt.Errorf("min bet must be at least 1, got %d", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("max bet (%d) must be >= min bet (%d)", r.MaxBet, r.MinBet)
	}
	if r.DeckCount < deck.MinDecks || r.DeckCount > deck.MaxDecks {
		return fmt.Errorf("deck count must be between %d and %d, got %d", deck.MinDecks, deck.MaxDecks, r.DeckCount)
	}
	if r.MaxSplitHands < 2 {
		return fmt.Errorf("max split hands must be at least 2, got %d", r.MaxSplitHands)
	}
	return nil
}
