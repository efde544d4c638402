package strategy

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Category groups hands by which table decides them.
type Category string

const (
	CategoryHard      Category = "hard-total"
	CategorySoft      Category = "soft-total"
	CategoryPair      Category = "pair"
	CategoryBlackjack Category = "blackjack"
)

// Categories lists every category.
var Categories = []Category{CategoryHard, CategorySoft, CategoryPair, CategoryBlackjack}

// ParseCategory accepts a category name or its short form.
func ParseCategory(v string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "hard", "hard-total":
		return CategoryHard, nil
	case "soft", "soft-total":
		return CategorySoft, nil
	case "pair", "pairs":
		return CategoryPair, nil
	case "blackjack", "bj":
		return CategoryBlackjack, nil
	}
	return "", fmt.Errorf("unknown category %q", v)
}

// DealerUpcards are the ten distinct upcards, in chart order 2 through A.
var DealerUpcards = []deck.Rank{
	deck.Two, deck.Three, deck.Four, deck.Five, deck.Six,
	deck.Seven, deck.Eight, deck.Nine, deck.Ten, deck.Ace,
}

// Scenario is one canonical hand against one upcard with its advice.
type Scenario struct {
	Category    Category
	Description string
	Hand        deck.Hand
	Upcard      deck.Card
	Primary     Recommendation
	All         []Recommendation
}

// Describe names a hand the way a strategy chart would.
func Describe(hand deck.Hand) string {
	switch {
	case hand.IsBlackjack:
		return "Blackjack"
	case hand.IsBusted:
		return "Busted"
	case hand.IsPair():
		name := hand.Cards[0].Rank.String()
		if hand.Cards[0].Value() == 10 {
			name = "10"
		}
		return "Pair of " + name + "s"
	case hand.IsSoft:
		return fmt.Sprintf("Soft %d", hand.Total)
	default:
		return fmt.Sprintf("Hard %d", hand.Total)
	}
}

// canonicalHard returns a two-card non-pair hard hand for totals 5 to 20.
func canonicalHard(total int) deck.Hand {
	switch {
	case total <= 11:
		return hand(deck.Rank(total-2), deck.Two)
	case total < 20:
		return hand(deck.Ten, deck.Rank(total-10))
	default:
		return hand(deck.Ten, deck.King)
	}
}

func hand(ranks ...deck.Rank) deck.Hand {
	cards := make([]deck.Card, len(ranks))
	for i, r := range ranks {
		cards[i] = deck.NewCard(deck.Suits[i%len(deck.Suits)], r)
	}
	return deck.NewHand(cards...)
}

// canonicalHands returns the chart rows for a category.
func canonicalHands(cat Category) []deck.Hand {
	var hands []deck.Hand
	switch cat {
	case CategoryHard:
		for total := 5; total <= 20; total++ {
			hands = append(hands, canonicalHard(total))
		}
	case CategorySoft:
		for r := deck.Two; r <= deck.Nine; r++ {
			hands = append(hands, hand(deck.Ace, r))
		}
	case CategoryPair:
		hands = append(hands, hand(deck.Ace, deck.Ace))
		for r := deck.Two; r <= deck.Ten; r++ {
			hands = append(hands, hand(r, r))
		}
	case CategoryBlackjack:
		hands = append(hands, hand(deck.Ace, deck.Ten))
	}
	return hands
}

// GenerateAllScenarios evaluates every canonical hand against every
// upcard: 160 hard, 80 soft, 100 pair and 10 blackjack positions.
func GenerateAllScenarios() []Scenario {
	var out []Scenario
	for _, cat := range Categories {
		for _, h := range canonicalHands(cat) {
			for _, r := range DealerUpcards {
				up := deck.NewCard(deck.Clubs, r)
				all := Recommend(h, up)
				primary, _ := Primary(all)
				out = append(out, Scenario{
					Category:    cat,
					Description: Describe(h),
					Hand:        h,
					Upcard:      up,
					Primary:     primary,
					All:         all,
				})
			}
		}
	}
	return out
}

// ChartRow is one line of a strategy chart.
type ChartRow struct {
	Label   string
	Actions []game.Action
}

// Chart returns the primary action for each canonical hand of cat against
// DealerUpcards.
func Chart(cat Category) []ChartRow {
	var rows []ChartRow
	for _, h := range canonicalHands(cat) {
		row := ChartRow{Label: Describe(h)}
		for _, r := range DealerUpcards {
			rec, _ := Best(h, deck.NewCard(deck.Clubs, r))
			row.Actions = append(row.Actions, rec.Action)
		}
		rows = append(rows, row)
	}
	return rows
}

// Confidence bands used by Analyze.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"

	edgeCaseBelow = 80
)

// Band classifies a confidence score.
func Band(confidence int) string {
	switch {
	case confidence >= 95:
		return BandHigh
	case confidence >= 85:
		return BandMedium
	default:
		return BandLow
	}
}

// Report summarises a scenario set.
type Report struct {
	Total           int
	ByAction        map[game.Action]int
	ByBand          map[string]int
	Inconsistencies []Scenario
	EdgeCases       []Scenario
}

// Analyze counts scenarios by action and confidence band, collects
// positions that appear more than once with different primary actions, and
// flags low-confidence positions as edge cases.
func Analyze(scenarios []Scenario) Report {
	r := Report{
		Total:    len(scenarios),
		ByAction: map[game.Action]int{},
		ByBand:   map[string]int{},
	}

	groups := map[string][]Scenario{}
	var order []string
	for _, sc := range scenarios {
		r.ByAction[sc.Primary.Action]++
		r.ByBand[Band(sc.Primary.Confidence)]++
		if sc.Primary.Confidence < edgeCaseBelow {
			r.EdgeCases = append(r.EdgeCases, sc)
		}
		key := sc.Description + "-vs-" + sc.Upcard.Rank.String()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sc)
	}

	for _, key := range order {
		group := groups[key]
		for _, sc := range group[1:] {
			if sc.Primary.Action != group[0].Primary.Action {
				r.Inconsistencies = append(r.Inconsistencies, group...)
				break
			}
		}
	}
	return r
}

// Markdown renders the report.
func (r Report) Markdown() string {
	var b strings.Builder
	pct := func(n int) float64 {
		if r.Total == 0 {
			return 0
		}
		return float64(n) / float64(r.Total) * 100
	}

	b.WriteString("# Blackjack Strategy Analysis Report\n\n")
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Scenarios**: %d\n", r.Total)
	fmt.Fprintf(&b, "- **Inconsistencies Found**: %d\n", len(r.Inconsistencies))
	fmt.Fprintf(&b, "- **Edge Cases Found**: %d\n\n", len(r.EdgeCases))

	b.WriteString("## Actions Distribution\n")
	actions := make([]string, 0, len(r.ByAction))
	for a := range r.ByAction {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)
	for _, a := range actions {
		n := r.ByAction[game.Action(a)]
		fmt.Fprintf(&b, "- **%s**: %d scenarios (%.1f%%)\n", a, n, pct(n))
	}

	b.WriteString("\n## Confidence Distribution\n")
	for _, band := range []string{BandHigh, BandMedium, BandLow} {
		if n, ok := r.ByBand[band]; ok {
			fmt.Fprintf(&b, "- **%s**: %d scenarios (%.1f%%)\n", band, n, pct(n))
		}
	}

	if len(r.Inconsistencies) > 0 {
		b.WriteString("\n## Inconsistencies\n")
		for _, sc := range r.Inconsistencies {
			fmt.Fprintf(&b, "- %s vs %s: %s\n", sc.Description, sc.Upcard.Rank, sc.Primary.Action)
		}
	}
	if len(r.EdgeCases) > 0 {
		b.WriteString("\n## Edge Cases (Low Confidence)\n")
		for _, sc := range r.EdgeCases {
			fmt.Fprintf(&b, "- %s vs %s: %s (%d%% confidence)\n", sc.Description, sc.Upcard.Rank, sc.Primary.Action, sc.Primary.Confidence)
		}
	}
	return b.String()
}

var csvHeader = []string{
	"Player Hand", "Player Total", "Is Soft", "Is Pair", "Is Blackjack",
	"Dealer Upcard", "Primary Action", "Confidence", "Reasoning",
}

// WriteCSV writes one row per scenario.
func WriteCSV(w io.Writer, scenarios []Scenario) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, sc := range scenarios {
		row := []string{
			sc.Description,
			strconv.Itoa(sc.Hand.Total),
			strconv.FormatBool(sc.Hand.IsSoft),
			strconv.FormatBool(sc.Category == CategoryPair),
			strconv.FormatBool(sc.Hand.IsBlackjack),
			sc.Upcard.Rank.String(),
			string(sc.Primary.Action),
			strconv.Itoa(sc.Primary.Confidence),
			sc.Primary.Reasoning,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
