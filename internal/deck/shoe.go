package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

const (
	CardsPerDeck = 52
	MinDecks     = 1
	MaxDecks     = 8
)

// ErrEmptyShoe is returned when a card is requested from an exhausted shoe.
// Reshuffling before the shoe runs dry is the caller's job.
var ErrEmptyShoe = errors.New("shoe is empty")

// Shoe is an ordered multi-deck card source, consumed from the front.
// Shoe values are treated as immutable; operations return new slices.
type Shoe []Card

// BuildShoe concatenates deckCount unshuffled 52-card decks, suit-major.
func BuildShoe(deckCount int) (Shoe, error) {
	if deckCount < MinDecks || deckCount > MaxDecks {
		return nil, fmt.Errorf("deck count %d out of range [%d,%d]", deckCount, MinDecks, MaxDecks)
	}
	shoe := make(Shoe, 0, deckCount*CardsPerDeck)
	for d := 0; d < deckCount; d++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				shoe = append(shoe, NewCard(suit, rank))
			}
		}
	}
	return shoe, nil
}

// Shuffle returns a uniformly permuted copy of the shoe using Fisher-Yates.
func Shuffle(shoe Shoe, rng *rand.Rand) Shoe {
	out := shoe.Clone()
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NewShuffledShoe builds and shuffles a shoe in one step.
func NewShuffledShoe(deckCount int, rng *rand.Rand) (Shoe, error) {
	shoe, err := BuildShoe(deckCount)
	if err != nil {
		return nil, err
	}
	return Shuffle(shoe, rng), nil
}

// DealOne removes the front card, returning it and the remaining shoe.
func DealOne(shoe Shoe) (Card, Shoe, error) {
	if len(shoe) == 0 {
		return Card{}, shoe, ErrEmptyShoe
	}
	return shoe[0], shoe[1:], nil
}

// Clone returns a copy that shares no backing array with s.
func (s Shoe) Clone() Shoe {
	if s == nil {
		return nil
	}
	out := make(Shoe, len(s))
	copy(out, s)
	return out
}

// Remaining returns the number of undealt cards.
func (s Shoe) Remaining() int {
	return len(s)
}

// Peek returns the front card without removing it.
func (s Shoe) Peek() (Card, bool) {
	if len(s) == 0 {
		return Card{}, false
	}
	return s[0], true
}

// IndexOf returns the position of the first card matching pred, or -1.
func (s Shoe) IndexOf(pred func(Card) bool) int {
	for i, c := range s {
		if pred(c) {
			return i
		}
	}
	return -1
}

// MoveToFront returns a copy of the shoe with the card at idx moved to
// position pos, shifting the cards in between back by one.
func (s Shoe) MoveToFront(idx, pos int) Shoe {
	out := s.Clone()
	if idx < 0 || idx >= len(out) || pos < 0 || pos > idx {
		return out
	}
	c := out[idx]
	copy(out[pos+1:idx+1], out[pos:idx])
	out[pos] = c
	return out
}
