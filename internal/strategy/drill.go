package strategy

import (
	rand "math/rand/v2"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Drill is a single practice question.
type Drill struct {
	Category    Category
	Hand        deck.Hand
	Upcard      deck.Card
	Correct     game.Action
	Explanation string
}

// Check reports whether a is the correct answer.
func (d Drill) Check(a game.Action) bool {
	return a == d.Correct
}

// GenerateDrills returns n random practice positions drawn evenly from
// categories, or from all categories when none are given.
func GenerateDrills(rng *rand.Rand, n int, categories ...Category) []Drill {
	if len(categories) == 0 {
		categories = Categories
	}
	drills := make([]Drill, 0, n)
	for i := 0; i < n; i++ {
		cat := categories[rng.IntN(len(categories))]
		h := randomHand(rng, cat)
		up := randomCard(rng, deck.Ranks[rng.IntN(len(deck.Ranks))])
		rec, _ := Best(h, up)
		drills = append(drills, Drill{
			Category:    cat,
			Hand:        h,
			Upcard:      up,
			Correct:     rec.Action,
			Explanation: rec.Reasoning,
		})
	}
	return drills
}

func randomCard(rng *rand.Rand, r deck.Rank) deck.Card {
	return deck.NewCard(deck.Suits[rng.IntN(len(deck.Suits))], r)
}

var tenRanks = []deck.Rank{deck.Ten, deck.Jack, deck.Queen, deck.King}

func randomHand(rng *rand.Rand, cat Category) deck.Hand {
	switch cat {
	case CategorySoft:
		second := deck.Rank(2 + rng.IntN(8))
		return deck.NewHand(randomCard(rng, deck.Ace), randomCard(rng, second))
	case CategoryPair:
		r := deck.Ranks[rng.IntN(len(deck.Ranks))]
		return deck.NewHand(randomCard(rng, r), randomCard(rng, r))
	case CategoryBlackjack:
		ten := tenRanks[rng.IntN(len(tenRanks))]
		return deck.NewHand(randomCard(rng, deck.Ace), randomCard(rng, ten))
	default:
		return randomHardHand(rng, 5+rng.IntN(16))
	}
}

// randomHardHand picks two cards of different rank, no aces, summing to
// total.
func randomHardHand(rng *rand.Rand, total int) deck.Hand {
	var options [][2]deck.Rank
	for i, a := range deck.Ranks {
		for _, b := range deck.Ranks[i+1:] {
			if a == deck.Ace || b == deck.Ace {
				continue
			}
			if a.Value()+b.Value() == total {
				options = append(options, [2]deck.Rank{a, b})
			}
		}
	}
	pick := options[rng.IntN(len(options))]
	return deck.NewHand(randomCard(rng, pick[0]), randomCard(rng, pick[1]))
}
