package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/strategy"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func drill(hand, upcard string, correct game.Action) strategy.Drill {
	return strategy.Drill{
		Category:    strategy.CategoryHard,
		Hand:        deck.NewHand(deck.MustParseCards(hand)...),
		Upcard:      deck.MustParseCards(upcard)[0],
		Correct:     correct,
		Explanation: "because",
	}
}

func TestRunDrills(t *testing.T) {
	drills := []strategy.Drill{
		drill("10h6d", "10c", game.Hit),
		drill("10h7d", "6c", game.Stand),
		drill("6h5d", "5c", game.DoubleDown),
	}

	tests := []struct {
		name    string
		input   string
		correct int
		score   string
	}{
		{"all correct", "h\ns\nd\n", 3, "Score: 3/3 (100%)"},
		{"one wrong", "s\ns\nd\n", 2, "Score: 2/3 (67%)"},
		{"invalid answer retried", "fold\nh\ns\nd\n", 3, "Score: 3/3"},
		{"quit early", "h\nquit\n", 1, "Score: 1/1"},
		{"end of input", "h\n", 1, "Score: 1/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			correct, err := runDrills(strings.NewReader(tt.input), &out, drills)
			require.NoError(t, err)
			assert.Equal(t, tt.correct, correct)
			assert.Contains(t, out.String(), tt.score)
		})
	}
}

func TestRunDrillsReportsMistake(t *testing.T) {
	var out bytes.Buffer
	_, err := runDrills(strings.NewReader("stand\n"), &out, []strategy.Drill{drill("10h6d", "10c", game.Hit)})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wrong: STAND, the play is HIT")
	assert.Contains(t, out.String(), "because")
}

func TestRunDrillsNoAnswers(t *testing.T) {
	var out bytes.Buffer
	correct, err := runDrills(strings.NewReader(""), &out, []strategy.Drill{drill("10h6d", "10c", game.Hit)})
	require.NoError(t, err)
	assert.Zero(t, correct)
	assert.NotContains(t, out.String(), "Score")
}

func TestScenariosFor(t *testing.T) {
	all := scenariosFor(strategy.Categories)
	assert.Len(t, all, len(strategy.GenerateAllScenarios()))

	pairs := scenariosFor([]strategy.Category{strategy.CategoryPair})
	require.NotEmpty(t, pairs)
	for _, sc := range pairs {
		assert.Equal(t, strategy.CategoryPair, sc.Category)
	}
}

func TestRenderChart(t *testing.T) {
	out := renderChart(strategy.CategoryHard)
	assert.Contains(t, out, "Hard 16")
	assert.Contains(t, out, "hard-total")
	for _, r := range strategy.DealerUpcards {
		assert.Contains(t, out, r.String())
	}
}

func TestWriteAdvice(t *testing.T) {
	hand := deck.NewHand(deck.MustParseCards("10h6d")...)
	upcard := deck.MustParseCards("10c")[0]
	advice, ok := strategy.Advise(hand, upcard, strategy.TrainingNone)
	require.True(t, ok)

	var out bytes.Buffer
	writeAdvice(&out, hand, upcard, advice)
	assert.Contains(t, out.String(), "HIT")
	assert.Contains(t, out.String(), "alt: SURRENDER")
}

func TestWriteStats(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := store.Snapshot{
		Balance: 1250,
		Stats: statistics.Record{
			HandsPlayed:      4,
			HandsWon:         3,
			HandsLost:        1,
			TotalWinnings:    250,
			DecisionsTotal:   10,
			DecisionsCorrect: 9,
			Runs: []statistics.Run{
				{ID: "a", StartedAt: start, EndedAt: start.Add(time.Hour), StartingBalance: 1000, EndingBalance: 0, HandsPlayed: 40, Completed: true},
				{ID: "b", StartedAt: start.Add(2 * time.Hour), StartingBalance: 1000, EndingBalance: 1250, PeakBalance: 1300, HandsPlayed: 4},
			},
		},
		UpdatedAt: start,
	}

	var out bytes.Buffer
	writeStats(&out, snap, 5)
	s := out.String()
	assert.Contains(t, s, "Balance:        $1250")
	assert.Contains(t, s, "Won:            3 (75.0%)")
	assert.Contains(t, s, "9/10 correct (90.0%)")
	assert.Contains(t, s, "busted out")
	assert.Contains(t, s, "(+250, peak $1300)  open")
	assert.Less(t, strings.Index(s, "open"), strings.Index(s, "busted out"), "newest run first")

	out.Reset()
	writeStats(&out, snap, 0)
	assert.NotContains(t, out.String(), "Recent runs")
}

func TestGlobalsLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
table {
  min_bet = 25
}
`), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("BLACKJACK_STORAGE_DRIVER=memory\n"), 0o644))

	g := &Globals{Config: cfgPath, Env: envPath}
	cfg, err := g.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Rules.MinBet)
	assert.Equal(t, store.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, cfg.LogLevel(), g.LogLevel(cfg))

	g.Debug = true
	assert.Equal(t, "debug", g.LogLevel(cfg).String())
}

func TestGlobalsLoadConfigInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`table { min_bet = -1 }`), 0o644))

	g := &Globals{Config: cfgPath}
	_, err := g.LoadConfig()
	assert.Error(t, err)
}

func TestProgressMonitor(t *testing.T) {
	var out bytes.Buffer
	m := NewProgressMonitor(&out)

	m.OnStart(1000)
	m.OnProgress(250, 1000)
	assert.Equal(t, "Simulating 1000 rounds: "+strings.Repeat(".", 10), out.String())

	m.OnProgress(100, 1000)
	assert.Equal(t, 10, strings.Count(out.String(), "."), "progress never goes backwards")

	m.OnComplete(&statistics.Statistics{Hands: 1000}, 2*time.Second)
	assert.Contains(t, out.String(), ": "+strings.Repeat(".", progressDots)+" 1000 rounds in 2.0s (500/sec)\n")
}
