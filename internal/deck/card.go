package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in shoe-building order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the single-letter form used by ParseCards.
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank from Two to Ace.
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten:
		return fmt.Sprintf("%d", int(r))
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Value returns the blackjack value of the rank. Face cards count 10 and
// an Ace counts 11; HandValue reduces Aces to 1 as needed.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Short returns the parseable form of the card (e.g., "As", "10h").
func (c Card) Short() string {
	return c.Rank.String() + c.Suit.Letter()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Value returns the blackjack value of the card
func (c Card) Value() int {
	return c.Rank.Value()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsFaceCard returns true if the card is a face card (J, Q, K)
func (c Card) IsFaceCard() bool {
	return c.Rank >= Jack && c.Rank <= King
}

// ParseCard parses a single card such as "As", "Td" or "10d".
func ParseCard(s string) (Card, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Card{}, err
	}
	if len(cards) != 1 {
		return Card{}, fmt.Errorf("expected one card, got %d in %q", len(cards), s)
	}
	return cards[0], nil
}

// ParseCards parses a run of cards such as "AsKd" or "10h 6c". Ranks and
// suits are case insensitive; spaces and commas between cards are ignored.
func ParseCards(s string) ([]Card, error) {
	cards := []Card{}
	in := strings.ToLower(s)
	for i := 0; i < len(in); {
		if in[i] == ' ' || in[i] == ',' {
			i++
			continue
		}

		var rank Rank
		if strings.HasPrefix(in[i:], "10") {
			rank = Ten
			i += 2
		} else {
			r, ok := parseRank(in[i])
			if !ok {
				return nil, fmt.Errorf("invalid rank %q in %q", in[i], s)
			}
			rank = r
			i++
		}

		if i >= len(in) {
			return nil, fmt.Errorf("missing suit after rank %s in %q", rank, s)
		}
		suit, ok := parseSuit(in[i])
		if !ok {
			return nil, fmt.Errorf("invalid suit %q in %q", in[i], s)
		}
		i++
		cards = append(cards, NewCard(suit, rank))
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on invalid input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseRank(b byte) (Rank, bool) {
	switch b {
	case 'a':
		return Ace, true
	case 'k':
		return King, true
	case 'q':
		return Queen, true
	case 'j':
		return Jack, true
	case 't':
		return Ten, true
	}
	if b >= '2' && b <= '9' {
		return Rank(b - '0'), true
	}
	return 0, false
}

func parseSuit(b byte) (Suit, bool) {
	switch b {
	case 's':
		return Spades, true
	case 'h':
		return Hearts, true
	case 'd':
		return Diamonds, true
	case 'c':
		return Clubs, true
	}
	return 0, false
}
