// Package strategy recommends basic-strategy plays for a hand against a
// dealer upcard. It is stateless and advisory: nothing here changes a game.
package strategy

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Recommendation is one suggested action.
type Recommendation struct {
	Action        game.Action
	Confidence    int
	Reasoning     string
	ExpectedValue float64
}

const (
	confidenceBlackjack  = 100
	confidenceHardDouble = 98
	confidenceSoftDouble = 96
	confidenceSplit      = 95
	confidenceHard       = 95
	confidencePair       = 90
	confidenceSoft       = 90
	confidenceSurrender  = 80
	confidenceInsurance  = 0
)

// Recommend returns every applicable recommendation for hand against the
// dealer's upcard: the base play first, then double, surrender and
// insurance when they apply. A busted or empty hand has none, and neither
// does a hand or upcard holding a card with no rank.
func Recommend(hand deck.Hand, upcard deck.Card) []Recommendation {
	if len(hand.Cards) == 0 || hand.IsBusted {
		return nil
	}
	if !ranked(upcard) || !ranked(hand.Cards...) {
		return nil
	}

	recs := []Recommendation{basic(hand, upcard)}
	if r, ok := double(hand, upcard); ok {
		recs = append(recs, r)
	}
	if r, ok := surrender(hand, upcard); ok {
		recs = append(recs, r)
	}
	if upcard.IsAce() {
		recs = append(recs, Recommendation{
			Action:        game.Insurance,
			Confidence:    confidenceInsurance,
			Reasoning:     "Insurance is a losing side bet: the 2:1 payout does not cover how rarely the dealer has blackjack",
			ExpectedValue: -0.1,
		})
	}
	return recs
}

// Primary picks the highest-confidence recommendation. The earlier entry
// wins a tie.
func Primary(recs []Recommendation) (Recommendation, bool) {
	if len(recs) == 0 {
		return Recommendation{}, false
	}
	best := recs[0]
	for _, r := range recs[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return best, true
}

// Best is Recommend followed by Primary.
func Best(hand deck.Hand, upcard deck.Card) (Recommendation, bool) {
	return Primary(Recommend(hand, upcard))
}

// Find returns the recommendation for a specific action, if offered.
func Find(recs []Recommendation, a game.Action) (Recommendation, bool) {
	for _, r := range recs {
		if r.Action == a {
			return r, true
		}
	}
	return Recommendation{}, false
}

func basic(hand deck.Hand, upcard deck.Card) Recommendation {
	dealer := upcard.Rank.String()
	col := dealerIndex(upcard)

	if hand.IsBlackjack {
		return Recommendation{
			Action:        game.Stand,
			Confidence:    confidenceBlackjack,
			Reasoning:     "Blackjack! It pays 3:2 unless the dealer also has one, so there is nothing to decide",
			ExpectedValue: 1.5,
		}
	}

	if hand.IsPair() && hand.Cards[0].Rank != deck.Five {
		return pair(hand.Cards[0].Rank, upcard, col)
	}

	if hand.IsSoft {
		if cell(softTable[:], hand.Total-13, col, h) == s {
			return Recommendation{
				Action:        game.Stand,
				Confidence:    confidenceSoft,
				Reasoning:     fmt.Sprintf("Soft %d is strong enough against dealer %s; stand and make the dealer draw", hand.Total, dealer),
				ExpectedValue: 0.05,
			}
		}
		return Recommendation{
			Action:        game.Hit,
			Confidence:    confidenceSoft,
			Reasoning:     fmt.Sprintf("Soft %d against dealer %s cannot bust on one card; hit to improve", hand.Total, dealer),
			ExpectedValue: 0.05,
		}
	}

	if hand.Total <= 11 {
		return Recommendation{
			Action:        game.Hit,
			Confidence:    confidenceHard,
			Reasoning:     fmt.Sprintf("%d cannot bust; always take another card", hand.Total),
			ExpectedValue: 0.1,
		}
	}
	if cell(hardTable[:], hand.Total-5, col, s) == s {
		reason := fmt.Sprintf("%d against dealer %s: standing wins more often than risking a bust", hand.Total, dealer)
		switch {
		case hand.Total >= 17:
			reason = fmt.Sprintf("%d is a made hand; hitting risks a bust for little gain, so let the dealer play", hand.Total)
		case upcard.Value() >= 4 && upcard.Value() <= 6:
			reason = fmt.Sprintf("Dealer shows a weak %s and must hit to 17; stand and let the dealer bust", dealer)
		}
		return Recommendation{Action: game.Stand, Confidence: confidenceHard, Reasoning: reason, ExpectedValue: 0.1}
	}
	reason := fmt.Sprintf("%d is too weak to stand against dealer %s; hit to reach 17 or better", hand.Total, dealer)
	if upcard.Value() >= 10 {
		reason = fmt.Sprintf("%d against a strong dealer %s will usually lose; you need to improve", hand.Total, dealer)
	}
	return Recommendation{Action: game.Hit, Confidence: confidenceHard, Reasoning: reason, ExpectedValue: 0.1}
}

func pair(rank deck.Rank, upcard deck.Card, col int) Recommendation {
	dealer := upcard.Rank.String()
	name := rank.String()
	if rank.Value() == 10 {
		name = "10"
	}
	switch pairTable[pairIndex(rank)][col] {
	case p:
		return Recommendation{
			Action:        game.Split,
			Confidence:    confidenceSplit,
			Reasoning:     fmt.Sprintf("Splitting %ss vs dealer %s turns one poor hand into two good starts", name, dealer),
			ExpectedValue: 0.1,
		}
	case s:
		return Recommendation{
			Action:        game.Stand,
			Confidence:    confidencePair,
			Reasoning:     fmt.Sprintf("Pair of %ss vs dealer %s is already strong; stand rather than split", name, dealer),
			ExpectedValue: 0.05,
		}
	default:
		return Recommendation{
			Action:        game.Hit,
			Confidence:    confidencePair,
			Reasoning:     fmt.Sprintf("Pair of %ss vs dealer %s: splitting does not pay here, so hit", name, dealer),
			ExpectedValue: 0.05,
		}
	}
}

// cell reads table[row][col], returning def when row is out of range.
// Rows past the end of a table use its last row.
func cell(table [][10]byte, row, col int, def byte) byte {
	if row < 0 {
		return def
	}
	if row >= len(table) {
		row = len(table) - 1
	}
	return table[row][col]
}

func double(hand deck.Hand, upcard deck.Card) (Recommendation, bool) {
	if len(hand.Cards) != 2 || hand.IsBlackjack {
		return Recommendation{}, false
	}
	col := dealerIndex(upcard)
	dealer := upcard.Rank.String()

	if hand.IsSoft {
		if !contains(softDoubles[hand.Total], col) {
			return Recommendation{}, false
		}
		return Recommendation{
			Action:        game.DoubleDown,
			Confidence:    confidenceSoftDouble,
			Reasoning:     fmt.Sprintf("Soft %d vs dealer %s: one card cannot bust you and the dealer is weak, so double", hand.Total, dealer),
			ExpectedValue: 0.15,
		}, true
	}

	if !contains(hardDoubles[hand.Total], col) {
		return Recommendation{}, false
	}
	var reason string
	switch hand.Total {
	case 11:
		reason = fmt.Sprintf("11 is the best doubling hand; double against dealer %s", dealer)
	case 10:
		reason = fmt.Sprintf("10 vs dealer %s: most cards leave you strong, so double", dealer)
	default:
		reason = fmt.Sprintf("%d vs weak dealer %s: double while the dealer is likely to bust", hand.Total, dealer)
	}
	return Recommendation{
		Action:        game.DoubleDown,
		Confidence:    confidenceHardDouble,
		Reasoning:     reason,
		ExpectedValue: 0.2,
	}, true
}

func surrender(hand deck.Hand, upcard deck.Card) (Recommendation, bool) {
	if len(hand.Cards) != 2 || hand.IsSoft {
		return Recommendation{}, false
	}
	if !contains(surrenders[hand.Total], dealerIndex(upcard)) {
		return Recommendation{}, false
	}
	return Recommendation{
		Action:        game.Surrender,
		Confidence:    confidenceSurrender,
		Reasoning:     fmt.Sprintf("%d vs dealer %s is a long-run loser; surrendering keeps half the bet", hand.Total, upcard.Rank),
		ExpectedValue: -0.5,
	}, true
}
