// Package session runs a player's table: it owns the current GameState,
// reshuffles the shoe, paces the dealer, tracks statistics and persists the
// bankroll after every round.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/gameid"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/strategy"
)

// ErrRunOver is returned by Bet when the bankroll cannot cover the minimum
// bet. Start a new session to continue.
var ErrRunOver = errors.New("run complete: balance below minimum bet")

// Options configure a Controller.
type Options struct {
	Rules  game.Rules
	Store  store.Store
	Logger *log.Logger
	Clock  quartz.Clock
	RNG    *rand.Rand
	// DealerDelay is the pause before the dealer reveals and draws.
	DealerDelay time.Duration
	// Penetration is the fraction of the shoe dealt before reshuffling.
	Penetration float64
	Training    strategy.TrainingMode
	// NewShoe builds each shoe. The default shuffles Rules.DeckCount decks
	// with RNG.
	NewShoe func() (deck.Shoe, error)
}

// Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	rules       game.Rules
	store       store.Store
	logger      *log.Logger
	clock       quartz.Clock
	rng         *rand.Rand
	ids         *gameid.Generator
	delay       time.Duration
	penetration float64
	training    strategy.TrainingMode
	newShoe     func() (deck.Shoe, error)

	state       game.GameState
	stats       statistics.Record
	surrendered bool

	bus *SimpleEventBus
}

// New creates a controller, restoring the balance and statistics from the
// store when it has them.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.RNG == nil {
		opts.RNG = randutil.New(time.Now().UnixNano())
	}
	if opts.Training == "" {
		opts.Training = strategy.TrainingNone
	}

	c := &Controller{
		rules:       opts.Rules,
		store:       opts.Store,
		logger:      opts.Logger.WithPrefix("session"),
		clock:       opts.Clock,
		rng:         opts.RNG,
		ids:         gameid.NewGenerator(nil),
		delay:       opts.DealerDelay,
		penetration: opts.Penetration,
		training:    opts.Training,
		newShoe:     opts.NewShoe,
		bus:         NewEventBus(),
	}
	if c.newShoe == nil {
		c.newShoe = func() (deck.Shoe, error) {
			return deck.NewShuffledShoe(c.rules.DeckCount, c.rng)
		}
	}

	balance := c.rules.StartingBalance
	snap, err := c.store.Load(ctx)
	switch {
	case err == nil:
		balance = snap.Balance
		c.stats = snap.Stats
		c.logger.Debug("restored session", "balance", balance, "hands", c.stats.HandsPlayed)
	case errors.Is(err, store.ErrNotFound):
		c.logger.Debug("no saved session, starting fresh", "balance", balance)
	default:
		c.logger.Warn("failed to load saved session, starting fresh", "error", err)
	}

	shoe, err := c.newShoe()
	if err != nil {
		return nil, err
	}
	c.state, err = game.InitializeGame(shoe, balance, game.WithRules(c.rules))
	if err != nil {
		return nil, err
	}
	if c.stats.CurrentRun() == nil {
		c.stats.StartRun(c.ids.Generate(), c.clock.Now(), balance)
	}
	return c, nil
}

// State returns a copy of the current game state.
func (c *Controller) State() game.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Stats returns a copy of the lifetime statistics.
func (c *Controller) Stats() statistics.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.stats
	out.Runs = append([]statistics.Run(nil), c.stats.Runs...)
	return out
}

// Rules returns the table rules.
func (c *Controller) Rules() game.Rules { return c.rules }

// Training returns the active training mode.
func (c *Controller) Training() strategy.TrainingMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.training
}

// SetTraining changes the training mode from the next deal onwards.
func (c *Controller) SetTraining(mode strategy.TrainingMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.training = mode
}

// Subscribe registers sub for session events.
func (c *Controller) Subscribe(sub EventSubscriber) { c.bus.Subscribe(sub) }

// Unsubscribe removes sub.
func (c *Controller) Unsubscribe(sub EventSubscriber) { c.bus.Unsubscribe(sub) }

// RunOver reports whether the bankroll can no longer cover the minimum bet.
func (c *Controller) RunOver() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runOver()
}

func (c *Controller) runOver() bool {
	return c.state.Phase == game.PhaseBetting && c.state.PlayerScore < c.rules.MinBet
}

// locked runs fn under the lock and publishes the events it returns once
// the lock is released.
func (c *Controller) locked(fn func() ([]Event, error)) error {
	c.mu.Lock()
	events, err := fn()
	c.mu.Unlock()
	for _, e := range events {
		c.bus.Publish(e)
	}
	return err
}

// Bet places a wager and deals the opening cards, reshuffling first when
// the cut card has been reached. A player natural stands automatically
// unless the dealer shows an Ace.
func (c *Controller) Bet(ctx context.Context, amount int) (game.GameState, error) {
	var out game.GameState
	err := c.locked(func() ([]Event, error) {
		var events []Event
		if c.state.Phase == game.PhaseGameOver {
			next, err := game.ResetRound(c.state)
			if err != nil {
				return nil, err
			}
			c.state = next
		}
		if c.runOver() {
			return nil, ErrRunOver
		}

		if c.state.Phase == game.PhaseBetting && c.state.NeedsReshuffle(c.penetration) {
			shoe, err := c.newShoe()
			if err != nil {
				return nil, err
			}
			next, err := game.Reshuffle(c.state, shoe)
			if err != nil {
				return nil, err
			}
			c.state = next
			c.logger.Info("reshuffled shoe", "cards", len(shoe))
			events = append(events, ReshuffledEvent{Cards: len(shoe), timestamp: c.clock.Now()})
		}

		next, err := game.PlaceBet(c.state, amount)
		if err != nil {
			return events, err
		}
		next, refill, err := c.draw(next, func(s game.GameState) (game.GameState, error) {
			return game.DealInitialCards(s, c.training.Policy())
		})
		events = append(events, refill...)
		if err != nil {
			return events, err
		}
		c.state = next
		c.surrendered = false

		upcard, _ := next.DealerUpcard()
		c.logger.Debug("dealt", "bet", amount, "player", next.PlayerHand, "upcard", upcard)
		events = append(events, RoundStartedEvent{
			Bet:        amount,
			PlayerHand: next.PlayerHand.Clone(),
			Upcard:     upcard,
			timestamp:  c.clock.Now(),
		})

		// With an Ace up the player keeps the turn to decide on insurance.
		if next.PlayerHand.IsBlackjack && !next.CanTakeInsurance {
			next, err = game.ExecutePlayerAction(next, game.Stand)
			if err != nil {
				return events, err
			}
			c.state = next
		}
		out = c.state.Clone()
		return events, nil
	})
	if err != nil {
		return c.State(), err
	}
	return out, nil
}

// Act applies a player action and scores it against basic strategy.
func (c *Controller) Act(ctx context.Context, action game.Action) (game.GameState, error) {
	var out game.GameState
	err := c.locked(func() ([]Event, error) {
		var recommended game.Action
		if action != game.Insurance && c.state.Phase == game.PhasePlayerTurn {
			upcard, _ := c.state.DealerUpcard()
			if rec, ok := strategy.Best(c.state.ActiveHand(), upcard); ok && c.state.CanAct(rec.Action) {
				recommended = rec.Action
			}
		}

		next, events, err := c.draw(c.state, func(s game.GameState) (game.GameState, error) {
			return game.ExecutePlayerAction(s, action)
		})
		if err != nil {
			return events, err
		}
		c.state = next
		if action == game.Surrender {
			c.surrendered = true
		}
		if recommended != "" {
			c.stats.AddDecision(action == recommended)
		}

		c.logger.Debug("player action", "action", action, "recommended", recommended, "phase", next.Phase)
		events = append(events, ActionTakenEvent{
			Action:      action,
			Recommended: recommended,
			Hand:        next.PlayerHand.Clone(),
			Phase:       next.Phase,
			timestamp:   c.clock.Now(),
		})
		if next.Phase == game.PhaseGameOver {
			events = append(events, c.settle(ctx)...)
		}
		out = c.state.Clone()
		return events, nil
	})
	if err != nil {
		return c.State(), err
	}
	return out, nil
}

// PlayDealer waits for the dealer delay, then plays out the dealer's hand
// and settles the round. The wait can be cancelled through ctx.
func (c *Controller) PlayDealer(ctx context.Context) (game.GameState, error) {
	c.mu.Lock()
	phase := c.state.Phase
	c.mu.Unlock()
	if phase != game.PhaseDealerTurn {
		return c.State(), fmt.Errorf("play dealer: %w: phase is %s", game.ErrWrongPhase, phase)
	}

	if err := c.wait(ctx, c.delay); err != nil {
		return c.State(), err
	}

	var out game.GameState
	err := c.locked(func() ([]Event, error) {
		next, events, err := c.draw(c.state, game.PlayDealerHand)
		if err != nil {
			return events, err
		}
		c.state = next
		c.logger.Debug("dealer played", "hand", next.DealerHand, "result", next.Result)

		events = append(events, DealerPlayedEvent{DealerHand: next.DealerHand.Clone(), timestamp: c.clock.Now()})
		events = append(events, c.settle(ctx)...)
		out = c.state.Clone()
		return events, nil
	})
	if err != nil {
		return c.State(), err
	}
	return out, nil
}

// draw applies op to s. When the shoe runs dry mid-round a fresh shoe is
// placed behind the remaining cards and op is tried once more.
func (c *Controller) draw(s game.GameState, op func(game.GameState) (game.GameState, error)) (game.GameState, []Event, error) {
	next, err := op(s)
	if !errors.Is(err, deck.ErrEmptyShoe) {
		return next, nil, err
	}
	shoe, err := c.newShoe()
	if err != nil {
		return s, nil, err
	}
	c.logger.Warn("shoe ran out mid-round, replenishing", "remaining", len(s.Deck), "cards", len(shoe))
	next, err = op(game.Replenish(s, shoe))
	if err != nil {
		return s, nil, err
	}
	return next, []Event{ReshuffledEvent{Cards: len(shoe), timestamp: c.clock.Now()}}, nil
}

func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	fired := make(chan struct{})
	timer := c.clock.AfterFunc(d, func() {
		close(fired)
	}, "session", "dealer")
	defer timer.Stop()

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle records a finished round and persists. Called with c.mu held.
func (c *Controller) settle(ctx context.Context) []Event {
	round := statistics.SummarizeRound(c.state, c.surrendered)
	c.stats.AddRound(round)

	var settlement game.Settlement
	if c.state.Settlement != nil {
		settlement = *c.state.Settlement
	}
	c.logger.Info("round settled",
		"result", round.Result,
		"net", round.Net,
		"balance", round.Balance)

	events := []Event{RoundSettledEvent{Round: round, Settlement: settlement, timestamp: c.clock.Now()}}

	if c.state.PlayerScore < c.rules.MinBet {
		c.stats.EndRun(c.clock.Now(), c.state.PlayerScore, true)
		if n := len(c.stats.Runs); n > 0 {
			run := c.stats.Runs[n-1]
			c.logger.Info("run complete", "id", run.ID, "hands", run.HandsPlayed, "peak", run.PeakBalance)
			events = append(events, RunCompleteEvent{Run: run, timestamp: c.clock.Now()})
		}
	}

	c.persist(ctx)
	return events
}

// persist saves the bankroll and statistics. Failures are logged and never
// interrupt play. Called with c.mu held.
func (c *Controller) persist(ctx context.Context) {
	snap := store.Snapshot{
		Balance:   c.state.PlayerScore,
		Stats:     c.stats,
		UpdatedAt: c.clock.Now(),
	}
	snap.Stats.Runs = append([]statistics.Run(nil), c.stats.Runs...)
	if err := c.store.Save(ctx, snap); err != nil {
		c.logger.Error("failed to save session", "error", err)
	}
}

// NextRound clears the table for the next bet.
func (c *Controller) NextRound() (game.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := game.ResetRound(c.state)
	if err != nil {
		return c.state.Clone(), err
	}
	c.state = next
	c.surrendered = false
	return c.state.Clone(), nil
}

// Hint returns the advice for the active hand. ok is false outside the
// player's turn.
func (c *Controller) Hint() (strategy.Advice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != game.PhasePlayerTurn {
		return strategy.Advice{}, false
	}
	upcard, ok := c.state.DealerUpcard()
	if !ok {
		return strategy.Advice{}, false
	}
	return strategy.Advise(c.state.ActiveHand(), upcard, c.training)
}

// NewSession closes the current run and starts another with the starting
// balance and a fresh shoe. A round in progress is abandoned.
func (c *Controller) NewSession(ctx context.Context) (game.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.stats.CurrentRun() != nil {
		c.stats.EndRun(now, c.state.PlayerScore, c.state.PlayerScore < c.rules.MinBet)
	}

	shoe, err := c.newShoe()
	if err != nil {
		return c.state.Clone(), err
	}
	state, err := game.InitializeGame(shoe, c.rules.StartingBalance, game.WithRules(c.rules))
	if err != nil {
		return c.state.Clone(), err
	}
	c.state = state
	c.surrendered = false
	c.stats.StartRun(c.ids.Generate(), now, state.PlayerScore)
	c.logger.Info("new session", "balance", state.PlayerScore)

	c.persist(ctx)
	return c.state.Clone(), nil
}

// Close ends the open run and saves. The store itself is left open.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.EndRun(c.clock.Now(), c.state.PlayerScore, c.state.PlayerScore < c.rules.MinBet)
	snap := store.Snapshot{
		Balance:   c.state.PlayerScore,
		Stats:     c.stats,
		UpdatedAt: c.clock.Now(),
	}
	return c.store.Save(ctx, snap)
}
