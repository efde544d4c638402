// Package simulator estimates the return of basic strategy by playing many
// rounds against the engine.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
)

// Config holds configuration for running simulations
type Config struct {
	Hands   int
	Seed    int64
	Workers int
	Rules   game.Rules
	// Bet is the flat wager per round; zero means Rules.MinBet.
	Bet int
	// Penetration is the fraction of the shoe dealt before reshuffling.
	Penetration float64
	Logger      *log.Logger
	// Monitor receives progress; nil means none.
	Monitor Monitor
}

// bankrollBets is how many bets each worker's bankroll holds. It is topped
// up between rounds so the simulation never runs out of money.
const bankrollBets = 100

// Simulator plays rounds with basic strategy.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Workers > config.Hands && config.Hands > 0 {
		config.Workers = config.Hands
	}
	if config.Bet == 0 {
		config.Bet = config.Rules.MinBet
	}
	if config.Penetration == 0 {
		config.Penetration = 0.75
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Monitor == nil {
		config.Monitor = NullMonitor{}
	}
	return &Simulator{config: config}
}

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.config }

func (s *Simulator) validate() error {
	if s.config.Hands <= 0 {
		return fmt.Errorf("hands must be positive, got %d", s.config.Hands)
	}
	if err := s.config.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	if s.config.Bet < s.config.Rules.MinBet || s.config.Bet > s.config.Rules.MaxBet {
		return fmt.Errorf("bet %d outside table limits [%d,%d]", s.config.Bet, s.config.Rules.MinBet, s.config.Rules.MaxBet)
	}
	if p := s.config.Penetration; p < 0 || p >= 1 {
		return fmt.Errorf("penetration must be in [0, 1), got %v", p)
	}
	return nil
}

// Run plays Hands rounds split across Workers. Each worker has its own shoe
// and RNG seeded from Seed and its index, so a run is reproducible for a
// given worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	workers := s.config.Workers
	results := make([]*statistics.Statistics, workers)
	progress := &progress{total: s.config.Hands, monitor: s.config.Monitor}
	s.config.Monitor.OnStart(s.config.Hands)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		hands := s.config.Hands / workers
		if w < s.config.Hands%workers {
			hands++
		}
		g.Go(func() error {
			stats, err := s.runWorker(ctx, s.config.Seed+int64(w), hands, progress)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Merge(r)
	}

	// Validate statistics before returning
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	elapsed := time.Since(start)
	s.config.Monitor.OnComplete(stats, elapsed)
	s.config.Logger.Info("simulation complete",
		"hands", stats.Hands,
		"workers", workers,
		"mean", fmt.Sprintf("%.4f", stats.Mean()),
		"elapsed", elapsed.Round(time.Millisecond))
	return stats, nil
}

func (s *Simulator) runWorker(ctx context.Context, seed int64, hands int, progress *progress) (*statistics.Statistics, error) {
	rng := randutil.New(seed)
	rules := s.config.Rules
	bankroll := s.config.Bet * bankrollBets

	shoe, err := deck.NewShuffledShoe(rules.DeckCount, rng)
	if err != nil {
		return nil, err
	}
	state, err := game.InitializeGame(shoe, bankroll, game.WithRules(rules))
	if err != nil {
		return nil, err
	}

	refill := func() (deck.Shoe, error) {
		return deck.NewShuffledShoe(rules.DeckCount, rng)
	}

	stats := &statistics.Statistics{}
	for i := 0; i < hands; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if state.NeedsReshuffle(s.config.Penetration) {
			shoe, err := refill()
			if err != nil {
				return nil, err
			}
			if state, err = game.Reshuffle(state, shoe); err != nil {
				return nil, err
			}
		}
		if state.PlayerScore < bankroll/2 {
			state.PlayerScore = bankroll
		}

		result, next, err := s.playRound(state, refill)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		result.Seed = seed
		stats.Add(result)
		if (i+1)%progressEvery == 0 {
			progress.add(progressEvery)
		}

		if state, err = game.ResetRound(next); err != nil {
			return nil, err
		}
	}

	progress.add(hands % progressEvery)
	s.config.Logger.Debug("worker finished", "seed", seed, "hands", hands, "mean", stats.Mean())
	return stats, nil
}

// progress aggregates completed rounds across workers.
type progress struct {
	done    atomic.Int64
	total   int
	monitor Monitor
}

func (p *progress) add(n int) {
	if n == 0 {
		return
	}
	p.monitor.OnProgress(int(p.done.Add(int64(n))), p.total)
}

// playRound plays one round from the betting phase to game-over. A round
// that outlasts the shoe continues from a fresh one supplied by refill.
func (s *Simulator) playRound(state game.GameState, refill func() (deck.Shoe, error)) (statistics.HandResult, game.GameState, error) {
	bet := s.config.Bet
	state, err := game.PlaceBet(state, bet)
	if err != nil {
		return statistics.HandResult{}, state, err
	}
	deal := func(st game.GameState) (game.GameState, error) { return game.DealInitialCards(st, nil) }
	if state, err = draw(state, refill, deal); err != nil {
		return statistics.HandResult{}, state, err
	}

	natural := state.PlayerHand.IsBlackjack
	surrendered := false
	for state.Phase == game.PhasePlayerTurn {
		action := Choose(state)
		if action == game.Surrender {
			surrendered = true
		}
		play := func(st game.GameState) (game.GameState, error) { return game.ExecutePlayerAction(st, action) }
		if state, err = draw(state, refill, play); err != nil {
			return statistics.HandResult{}, state, err
		}
	}
	if state.Phase == game.PhaseDealerTurn {
		if state, err = draw(state, refill, game.PlayDealerHand); err != nil {
			return statistics.HandResult{}, state, err
		}
	}
	if state.Settlement == nil {
		return statistics.HandResult{}, state, fmt.Errorf("round ended in phase %s without settlement", state.Phase)
	}

	round := statistics.SummarizeRound(state, surrendered)
	return statistics.HandResult{
		Net:         float64(state.Settlement.LastHandWinnings) / float64(bet),
		Result:      state.Result,
		Blackjack:   natural,
		Busted:      round.Busted,
		Doubled:     round.Doubled,
		Split:       round.Split,
		Surrendered: surrendered,
	}, state, nil
}

// draw applies op, replenishing the shoe and retrying once if it runs dry.
func draw(state game.GameState, refill func() (deck.Shoe, error), op func(game.GameState) (game.GameState, error)) (game.GameState, error) {
	next, err := op(state)
	if !errors.Is(err, deck.ErrEmptyShoe) {
		return next, err
	}
	shoe, err := refill()
	if err != nil {
		return state, err
	}
	return op(game.Replenish(state, shoe))
}

// Choose returns the basic-strategy play for the active hand, falling back
// to the best legal alternative when the recommended action is not allowed.
// Insurance is never taken.
func Choose(state game.GameState) game.Action {
	hand := state.ActiveHand()
	upcard, _ := state.DealerUpcard()

	recs := strategy.Recommend(hand, upcard)
	slices.SortStableFunc(recs, func(a, b strategy.Recommendation) int {
		return b.Confidence - a.Confidence
	})
	for _, r := range recs {
		if r.Action != game.Insurance && state.CanAct(r.Action) {
			return r.Action
		}
	}

	switch {
	case hand.Total >= 17:
		return game.Stand
	case hand.Total >= 12 && !hand.IsSoft && upcard.Value() <= 6:
		return game.Stand
	}
	return game.Hit
}

// WriteSummary prints a summary of simulation results in base bets per
// round.
func WriteSummary(w io.Writer, stats *statistics.Statistics) {
	low, high := stats.ConfidenceInterval95()
	pct := func(n int) float64 { return float64(n) / float64(stats.Hands) * 100 }

	fmt.Fprintf(w, "\n=== RESULTS ===\n")
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Hands)
	fmt.Fprintf(w, "Mean: %.4f bets/round\n", stats.Mean())
	fmt.Fprintf(w, "House edge: %.2f%%\n", stats.HouseEdge())
	fmt.Fprintf(w, "Std Dev: %.4f bets\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bets/round\n", low, high)
	fmt.Fprintf(w, "Biggest win: %.1f bets, biggest loss: %.1f bets\n", stats.MaxWin, stats.MaxLoss)

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d (%.1f%%), Losses: %d (%.1f%%), Pushes: %d (%.1f%%)\n",
		stats.Wins, pct(stats.Wins), stats.Losses, pct(stats.Losses), stats.Pushes, pct(stats.Pushes))
	fmt.Fprintf(w, "Blackjacks: %d (%.1f%%), Busts: %d (%.1f%%)\n",
		stats.Blackjacks, pct(stats.Blackjacks), stats.Busts, pct(stats.Busts))
	fmt.Fprintf(w, "Doubles: %d, Splits: %d, Surrenders: %d\n", stats.Doubles, stats.Splits, stats.Surrenders)

	fmt.Fprintf(w, "\n=== BY RESULT ===\n")
	for _, r := range []game.Result{game.PlayerBlackjack, game.PlayerWins, game.Push, game.DealerWins, game.DealerBlackjack} {
		if os, ok := stats.ByOutcome[r]; ok && os.Hands > 0 {
			fmt.Fprintf(w, "%-18s %8d rounds, %+.3f bets/round\n", r.String()+":", os.Hands, stats.OutcomeMean(r))
		}
	}
}
