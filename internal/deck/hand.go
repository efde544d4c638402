package deck

import "strings"

// Hand is a set of cards with totals derived from the cards. Build hands
// with NewHand or AddCard; the derived fields are never patched in place.
type Hand struct {
	Cards       []Card
	Total       int
	IsSoft      bool
	IsBlackjack bool
	IsBusted    bool
}

// HandValue sums the cards with every Ace as 11, then reduces Aces to 1
// one at a time while the total exceeds 21. The total is soft only when an
// Ace is still counted as 11.
func HandValue(cards []Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0 && total <= 21
}

// NewHand returns a hand holding a copy of cards.
func NewHand(cards ...Card) Hand {
	cs := make([]Card, len(cards))
	copy(cs, cards)
	return evaluate(cs)
}

// AddCard returns a new hand with card appended and all totals recomputed.
func AddCard(h Hand, card Card) Hand {
	cs := make([]Card, len(h.Cards), len(h.Cards)+1)
	copy(cs, h.Cards)
	return evaluate(append(cs, card))
}

func evaluate(cards []Card) Hand {
	total, soft := HandValue(cards)
	return Hand{
		Cards:       cards,
		Total:       total,
		IsSoft:      soft,
		IsBlackjack: len(cards) == 2 && total == 21,
		IsBusted:    total > 21,
	}
}

// Clone returns a deep copy of the hand.
func (h Hand) Clone() Hand {
	out := h
	if h.Cards != nil {
		out.Cards = make([]Card, len(h.Cards))
		copy(out.Cards, h.Cards)
	}
	return out
}

// Len returns the number of cards in the hand.
func (h Hand) Len() int {
	return len(h.Cards)
}

// IsPair reports whether the hand is exactly two cards of the same rank.
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// IsSplittable reports whether the hand is two cards of equal value,
// so a ten and a king may be split.
func (h Hand) IsSplittable() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value() == h.Cards[1].Value()
}

func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
