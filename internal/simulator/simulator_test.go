package simulator

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestNewDefaults(t *testing.T) {
	sim := New(Config{Hands: 3, Workers: 8, Rules: game.DefaultRules()})
	cfg := sim.Config()

	assert.Equal(t, 3, cfg.Workers, "workers are capped at the hand count")
	assert.Equal(t, 10, cfg.Bet)
	assert.Equal(t, 0.75, cfg.Penetration)
	assert.NotNil(t, cfg.Logger)
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no hands", Config{Rules: game.DefaultRules()}},
		{"bad rules", Config{Hands: 10, Rules: game.Rules{}}},
		{"bet above max", Config{Hands: 10, Rules: game.DefaultRules(), Bet: 10000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg).Run(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	sim := New(Config{
		Hands:   2000,
		Seed:    42,
		Workers: 4,
		Rules:   game.DefaultRules(),
		Logger:  quietLogger(),
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	assert.Equal(t, 2000, stats.Hands)
	assert.Equal(t, stats.Hands, stats.Wins+stats.Losses+stats.Pushes)
	assert.Greater(t, stats.Blackjacks, 0)
	assert.Greater(t, stats.Doubles, 0)
	// Per-round results are bounded by the most a round can win or lose.
	assert.LessOrEqual(t, stats.MaxWin, 8.0)
	assert.GreaterOrEqual(t, stats.MaxLoss, -8.5)
	// Basic strategy is close to break-even; a wide band guards against
	// settlement bugs without being flaky.
	assert.InDelta(t, 0, stats.Mean(), 0.15)
}

func TestRunSingleDeckDeepPenetration(t *testing.T) {
	rules := game.DefaultRules()
	rules.DeckCount = 1
	sim := New(Config{
		Hands:       5000,
		Seed:        7,
		Workers:     2,
		Penetration: 0.99,
		Rules:       rules,
		Logger:      quietLogger(),
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000, stats.Hands)
}

func TestPlayRoundRefillsEmptyShoe(t *testing.T) {
	state, err := game.InitializeGame(deck.Shoe(deck.MustParseCards("Th 7c 8d")), 1000)
	require.NoError(t, err)

	refills := 0
	refill := func() (deck.Shoe, error) {
		refills++
		return deck.Shoe(deck.MustParseCards("Ts 9c 2c")), nil
	}
	sim := New(Config{Hands: 1, Rules: game.DefaultRules(), Logger: quietLogger()})
	result, next, err := sim.playRound(state, refill)
	require.NoError(t, err)

	assert.Equal(t, 1, refills)
	assert.Equal(t, 18, next.PlayerHand.Total)
	assert.Equal(t, 17, next.DealerHand.Total)
	assert.Equal(t, game.PlayerWins, result.Result)
	assert.Equal(t, 1.0, result.Net)
	assert.Len(t, next.Deck, 2)
}

func TestRunDeterministic(t *testing.T) {
	cfg := Config{Hands: 500, Seed: 7, Workers: 2, Rules: game.DefaultRules(), Logger: quietLogger()}

	a, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Sum, b.Sum)
	assert.Equal(t, a.Wins, b.Wins)
	assert.Equal(t, a.Values, b.Values)
}

type recordingMonitor struct {
	mu        sync.Mutex
	started   int
	updates   []int
	completed *statistics.Statistics
}

func (m *recordingMonitor) OnStart(rounds int) { m.started = rounds }

func (m *recordingMonitor) OnProgress(completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, completed)
}

func (m *recordingMonitor) OnComplete(stats *statistics.Statistics, _ time.Duration) {
	m.completed = stats
}

func TestRunReportsProgress(t *testing.T) {
	mon := &recordingMonitor{}
	stats, err := New(Config{
		Hands:   2500,
		Seed:    3,
		Workers: 2,
		Rules:   game.DefaultRules(),
		Logger:  quietLogger(),
		Monitor: mon,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2500, mon.started)
	// Each worker reports its first thousand rounds and then its remainder.
	assert.Len(t, mon.updates, 4)
	assert.Equal(t, 2500, slices.Max(mon.updates))
	assert.Same(t, stats, mon.completed)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Hands: 1000, Rules: game.DefaultRules()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func playerTurn(t *testing.T, cards string, opts ...game.Option) game.GameState {
	t.Helper()
	s, err := game.InitializeGame(deck.Shoe(deck.MustParseCards(cards)), 1000, opts...)
	require.NoError(t, err)
	s, err = game.PlaceBet(s, 100)
	require.NoError(t, err)
	s, err = game.DealInitialCards(s, nil)
	require.NoError(t, err)
	return s
}

func TestChoose(t *testing.T) {
	noSurrender := game.DefaultRules()
	noSurrender.AllowSurrender = false

	tests := []struct {
		name  string
		cards string
		opts  []game.Option
		want  game.Action
	}{
		{"hard 11 doubles", "6h 5c 5d Ts", nil, game.DoubleDown},
		{"eights split", "8h 5c 8d Ts", nil, game.Split},
		{"16 vs 10 hits", "Th Tc 6d 7s", nil, game.Hit},
		{"16 vs 10 hits without surrender", "Th Tc 6d 7s", []game.Option{game.WithRules(noSurrender)}, game.Hit},
		{"hard 17 stands", "Th 9c 7d 7s", nil, game.Stand},
		{"never insurance", "Th Ac 9d 7s", nil, game.Stand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := playerTurn(t, tt.cards, tt.opts...)
			assert.Equal(t, tt.want, Choose(s))
		})
	}
}

func TestChooseFallsBackWhenDoubleUnavailable(t *testing.T) {
	s := playerTurn(t, "6h 5c 3d Ts 2c")
	s, err := game.ExecutePlayerAction(s, game.Hit)
	require.NoError(t, err)
	require.Equal(t, 11, s.PlayerHand.Total)
	require.False(t, s.CanDoubleDown)

	assert.Equal(t, game.Hit, Choose(s))
}

func TestWriteSummary(t *testing.T) {
	stats, err := New(Config{Hands: 200, Seed: 1, Workers: 1, Rules: game.DefaultRules()}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteSummary(&buf, stats)
	out := buf.String()
	assert.Contains(t, out, "Rounds played: 200")
	assert.Contains(t, out, "House edge:")
	assert.Contains(t, out, "95% CI:")
}
