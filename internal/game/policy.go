package game

import "github.com/lox/blackjack/internal/deck"

// DealingPolicy decides the order of the next cards before the initial deal.
// The initial deal takes the first four cards as player, dealer upcard,
// player, dealer hole card.
type DealingPolicy interface {
	Arrange(shoe deck.Shoe) deck.Shoe
}

// RandomPolicy deals from the front of the shoe unchanged.
type RandomPolicy struct{}

func (RandomPolicy) Arrange(shoe deck.Shoe) deck.Shoe { return shoe }

// Scenario names a practice situation ScenarioPolicy can set up.
type Scenario string

const (
	ScenarioNone   Scenario = ""
	ScenarioSplit  Scenario = "split"
	ScenarioDouble Scenario = "double-down"
	ScenarioHit    Scenario = "hit"
	ScenarioStand  Scenario = "stand"
)

// ScenarioPolicy searches the shoe for cards that produce a practice
// situation and moves them to the front. If any card cannot be found the
// shoe is dealt unchanged.
type ScenarioPolicy struct {
	Scenario Scenario
}

// slot picks the card for one deal position given the player's cards chosen
// so far.
type slot func(player []deck.Card, c deck.Card) bool

// Deal positions: 0 player, 1 dealer upcard, 2 player.
var scenarioSlots = map[Scenario][3]slot{
	// Splittable pair vs a weak dealer.
	ScenarioSplit: {
		func(_ []deck.Card, c deck.Card) bool {
			switch c.Rank {
			case deck.Ace, deck.Two, deck.Three, deck.Six, deck.Seven, deck.Eight, deck.Nine:
				return true
			}
			return false
		},
		valueBetween(2, 6),
		func(p []deck.Card, c deck.Card) bool { return c.Rank == p[0].Rank },
	},
	// Hard 11 vs a weak dealer.
	ScenarioDouble: {
		valueBetween(2, 9),
		valueBetween(2, 6),
		func(p []deck.Card, c deck.Card) bool { return c.Value() == 11-p[0].Value() },
	},
	// Stiff hard total vs a strong dealer.
	ScenarioHit: {
		valueBetween(10, 10),
		valueBetween(7, 11),
		valueBetween(2, 6),
	},
	// Pat hard total vs a weak dealer.
	ScenarioStand: {
		valueBetween(10, 10),
		valueBetween(2, 6),
		valueBetween(7, 10),
	},
}

func valueBetween(lo, hi int) slot {
	return func(_ []deck.Card, c deck.Card) bool {
		v := c.Value()
		return v >= lo && v <= hi
	}
}

func (p ScenarioPolicy) Arrange(shoe deck.Shoe) deck.Shoe {
	slots, ok := scenarioSlots[p.Scenario]
	if !ok || len(shoe) < 4 {
		return shoe
	}

	out := shoe
	var player []deck.Card
	for pos, match := range slots {
		idx := -1
		for i := pos; i < len(out); i++ {
			if match(player, out[i]) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return shoe
		}
		out = out.MoveToFront(idx, pos)
		if pos != 1 {
			player = append(player, out[pos])
		}
	}
	return out
}
