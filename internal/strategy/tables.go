package strategy

import "github.com/lox/blackjack/internal/deck"

// Table cells. Columns are dealer upcards A, 2, 3, 4, 5, 6, 7, 8, 9, 10.
const (
	h = 'H'
	s = 'S'
	p = 'P'
)

// hardTable rows are hard totals 5 through 20.
var hardTable = [16][10]byte{
	{h, h, h, h, h, h, h, h, h, h}, // 5
	{h, h, h, h, h, h, h, h, h, h}, // 6
	{h, h, h, h, h, h, h, h, h, h}, // 7
	{h, h, h, h, h, h, h, h, h, h}, // 8
	{h, h, h, h, h, h, h, h, h, h}, // 9
	{h, h, h, h, h, h, h, h, h, h}, // 10
	{h, h, h, h, h, h, h, h, h, h}, // 11
	{h, h, h, s, s, s, h, h, h, h}, // 12
	{h, s, s, s, s, s, h, h, h, h}, // 13
	{h, s, s, s, s, s, h, h, h, h}, // 14
	{h, s, s, s, s, s, h, h, h, h}, // 15
	{h, s, s, s, s, s, h, h, h, h}, // 16
	{s, s, s, s, s, s, s, s, s, s}, // 17
	{s, s, s, s, s, s, s, s, s, s}, // 18
	{s, s, s, s, s, s, s, s, s, s}, // 19
	{s, s, s, s, s, s, s, s, s, s}, // 20
}

// softTable rows are soft totals 13 (A,2) through 21.
var softTable = [9][10]byte{
	{h, h, h, h, h, h, h, h, h, h}, // A,2
	{h, h, h, h, h, h, h, h, h, h}, // A,3
	{h, h, h, h, h, h, h, h, h, h}, // A,4
	{h, h, h, h, h, h, h, h, h, h}, // A,5
	{h, h, h, h, h, h, h, h, h, h}, // A,6
	{h, s, s, s, s, s, s, s, h, h}, // A,7
	{s, s, s, s, s, s, s, s, s, s}, // A,8
	{s, s, s, s, s, s, s, s, s, s}, // A,9
	{s, s, s, s, s, s, s, s, s, s}, // soft 21
}

// pairTable rows are pairs A,A then 2,2 through 10,10.
var pairTable = [10][10]byte{
	{p, p, p, p, p, p, p, p, p, p}, // A,A
	{h, p, p, p, p, p, p, h, h, h}, // 2,2
	{h, p, p, p, p, p, p, h, h, h}, // 3,3
	{h, h, h, h, p, p, h, h, h, h}, // 4,4
	{h, h, h, h, h, h, h, h, h, h}, // 5,5 (played as hard 10)
	{h, p, p, p, p, p, h, h, h, h}, // 6,6
	{h, p, p, p, p, p, p, h, h, h}, // 7,7
	{p, p, p, p, p, p, p, p, p, p}, // 8,8
	{s, p, p, p, p, p, s, p, p, s}, // 9,9
	{s, s, s, s, s, s, s, s, s, s}, // 10,10
}

// Double-down columns per total, by dealer index.
var (
	hardDoubles = map[int][]int{
		9:  {2, 3, 4, 5},
		10: {1, 2, 3, 4, 5, 6, 7, 8},
		11: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	softDoubles = map[int][]int{
		13: {4, 5},
		14: {4, 5},
		15: {3, 4, 5},
		16: {3, 4, 5},
		17: {2, 3, 4, 5},
		18: {2, 3, 4, 5},
	}
	surrenders = map[int][]int{
		16: {0, 8, 9},
		15: {9},
	}
)

// ranked reports whether every card has a rank from Two to Ace.
func ranked(cards ...deck.Card) bool {
	for _, c := range cards {
		if c.Rank < deck.Two || c.Rank > deck.Ace {
			return false
		}
	}
	return true
}

// dealerIndex maps an upcard to its table column.
func dealerIndex(c deck.Card) int {
	switch {
	case c.Rank == deck.Ace:
		return 0
	case c.Value() == 10:
		return 9
	default:
		return int(c.Rank) - 1
	}
}

// pairIndex maps a pair rank to its table row.
func pairIndex(r deck.Rank) int {
	return dealerIndex(deck.Card{Rank: r})
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
