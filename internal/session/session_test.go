package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/strategy"
)

// stackedShoe deals cards first, followed by a full ordered deck.
func stackedShoe(cards string) func() (deck.Shoe, error) {
	return func() (deck.Shoe, error) {
		tail, err := deck.BuildShoe(1)
		if err != nil {
			return nil, err
		}
		return append(deck.Shoe(deck.MustParseCards(cards)), tail...), nil
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventType
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

func newController(t *testing.T, opts Options) (*Controller, *recorder) {
	t.Helper()
	if opts.Rules == (game.Rules{}) {
		opts.Rules = game.DefaultRules()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewMock(t)
	}
	c, err := New(context.Background(), opts)
	require.NoError(t, err)

	rec := &recorder{}
	c.Subscribe(rec)
	return c, rec
}

func TestNewStartsFresh(t *testing.T) {
	c, _ := newController(t, Options{})

	s := c.State()
	assert.Equal(t, game.PhaseBetting, s.Phase)
	assert.Equal(t, 1000, s.PlayerScore)
	assert.Len(t, s.Deck, 6*deck.CardsPerDeck)

	stats := c.Stats()
	require.NotNil(t, stats.CurrentRun())
	assert.Equal(t, 1000, stats.CurrentRun().StartingBalance)
}

func TestNewRestoresSnapshot(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Save(context.Background(), store.Snapshot{
		Balance: 750,
		Stats:   statistics.Record{HandsPlayed: 40, HandsWon: 18},
	}))

	c, _ := newController(t, Options{Store: mem})
	assert.Equal(t, 750, c.State().PlayerScore)
	assert.Equal(t, 40, c.Stats().HandsPlayed)
}

func TestRoundPlaysThroughAndPersists(t *testing.T) {
	mem := store.NewMemory()
	c, rec := newController(t, Options{Store: mem, NewShoe: stackedShoe("Th 7c 8d Ts")})
	ctx := context.Background()

	s, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlayerTurn, s.Phase)
	assert.Equal(t, 18, s.PlayerHand.Total)

	s, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseDealerTurn, s.Phase)

	s, err = c.PlayDealer(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseGameOver, s.Phase)
	assert.Equal(t, game.PlayerWins, s.Result)
	assert.Equal(t, 1100, s.PlayerScore)

	stats := c.Stats()
	assert.Equal(t, 1, stats.HandsPlayed)
	assert.Equal(t, 1, stats.HandsWon)
	assert.Equal(t, 100, stats.TotalWinnings)
	assert.Equal(t, 1, stats.DecisionsTotal)
	assert.Equal(t, 1, stats.DecisionsCorrect)

	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1100, snap.Balance)
	assert.Equal(t, 1, snap.Stats.HandsPlayed)

	assert.Equal(t, []EventType{
		EventTypeRoundStarted,
		EventTypeActionTaken,
		EventTypeDealerPlayed,
		EventTypeRoundSettled,
	}, rec.types())

	s, err = c.NextRound()
	require.NoError(t, err)
	assert.Equal(t, game.PhaseBetting, s.Phase)
	assert.Equal(t, 1100, s.PlayerScore)
}

func TestBustSettlesWithoutDealer(t *testing.T) {
	c, rec := newController(t, Options{NewShoe: stackedShoe("Th 7c 6d Ts Kh")})
	ctx := context.Background()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	s, err := c.Act(ctx, game.Hit)
	require.NoError(t, err)

	assert.Equal(t, game.PhaseGameOver, s.Phase)
	assert.Equal(t, game.DealerWins, s.Result)
	assert.Equal(t, 900, s.PlayerScore)
	assert.Equal(t, 1, c.Stats().Busts)
	assert.NotContains(t, rec.types(), EventTypeDealerPlayed)

	_, err = c.PlayDealer(ctx)
	assert.ErrorIs(t, err, game.ErrWrongPhase)
}

func TestDecisionAccuracy(t *testing.T) {
	c, rec := newController(t, Options{NewShoe: stackedShoe("Th 7c 8d Ts Kh")})
	ctx := context.Background()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	_, err = c.Act(ctx, game.Hit)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 1, stats.DecisionsTotal)
	assert.Equal(t, 0, stats.DecisionsCorrect)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var taken ActionTakenEvent
	for _, e := range rec.events {
		if a, ok := e.(ActionTakenEvent); ok {
			taken = a
		}
	}
	assert.Equal(t, game.Stand, taken.Recommended)
	assert.False(t, taken.Correct())
}

func TestNaturalStandsAutomatically(t *testing.T) {
	c, _ := newController(t, Options{NewShoe: stackedShoe("Ah 7c Kd Ts")})
	ctx := context.Background()

	s, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseDealerTurn, s.Phase)

	s, err = c.PlayDealer(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerBlackjack, s.Result)
	assert.Equal(t, 1150, s.PlayerScore)
	assert.Equal(t, 1, c.Stats().Blackjacks)
}

func TestNaturalAgainstAceOffersInsurance(t *testing.T) {
	c, _ := newController(t, Options{NewShoe: stackedShoe("Ah Ac Kd Ts")})
	ctx := context.Background()

	s, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlayerTurn, s.Phase)
	assert.True(t, s.PlayerHand.IsBlackjack)
	assert.True(t, s.CanTakeInsurance)

	_, err = c.Act(ctx, game.Insurance)
	require.NoError(t, err)
	s, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseDealerTurn, s.Phase)

	s, err = c.PlayDealer(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.Push, s.Result)
	assert.Equal(t, 1100, s.PlayerScore, "push returns the bet and insurance pays 2:1")
}

func TestPlayDealerWaitsForDelay(t *testing.T) {
	mClock := quartz.NewMock(t)
	c, _ := newController(t, Options{
		Clock:       mClock,
		DealerDelay: time.Second,
		NewShoe:     stackedShoe("Th 7c 8d Ts"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	_, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)

	done := make(chan game.GameState, 1)
	go func() {
		s, err := c.PlayDealer(ctx)
		assert.NoError(t, err)
		done <- s
	}()

	assert.Never(t, func() bool { return len(done) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, game.PhaseDealerTurn, c.State().Phase)

	for {
		select {
		case s := <-done:
			assert.Equal(t, game.PlayerWins, s.Result)
			return
		default:
			mClock.Advance(time.Second).MustWait(ctx)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestPlayDealerCancelled(t *testing.T) {
	c, _ := newController(t, Options{
		DealerDelay: time.Second,
		NewShoe:     stackedShoe("Th 7c 8d Ts"),
	})
	ctx := context.Background()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	_, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.PlayDealer(cctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, game.PhaseDealerTurn, c.State().Phase)
}

func TestRunCompleteAndNewSession(t *testing.T) {
	rules := game.DefaultRules()
	rules.StartingBalance = 100
	c, rec := newController(t, Options{Rules: rules, NewShoe: stackedShoe("Th 7c 6d Ts Kh")})
	ctx := context.Background()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	s, err := c.Act(ctx, game.Hit)
	require.NoError(t, err)
	assert.Equal(t, 0, s.PlayerScore)
	assert.Contains(t, rec.types(), EventTypeRunComplete)

	stats := c.Stats()
	require.Len(t, stats.Runs, 1)
	assert.True(t, stats.Runs[0].Completed)
	assert.Nil(t, stats.CurrentRun())

	_, err = c.Bet(ctx, 10)
	assert.ErrorIs(t, err, ErrRunOver)
	assert.True(t, c.RunOver())

	s, err = c.NewSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, s.PlayerScore)
	assert.False(t, c.RunOver())

	stats = c.Stats()
	require.Len(t, stats.Runs, 2)
	require.NotNil(t, stats.CurrentRun())
	assert.NotEqual(t, stats.Runs[0].ID, stats.Runs[1].ID)
}

func TestReshuffleBelowMinimum(t *testing.T) {
	shoes := 0
	newShoe := func() (deck.Shoe, error) {
		shoes++
		return deck.Shoe(deck.MustParseCards("Th 7c 8d Ts 2c 3c 4c 5c 6c 2d 3d 4d 5d 6d 2h 3h")), nil
	}
	c, rec := newController(t, Options{NewShoe: newShoe})
	ctx := context.Background()

	_, err := c.Bet(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, shoes)
	_, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)
	_, err = c.PlayDealer(ctx)
	require.NoError(t, err)
	assert.Len(t, c.State().Deck, 12)

	_, err = c.Bet(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, shoes)
	assert.Contains(t, rec.types(), EventTypeReshuffled)
}

func TestSplitRoundOutlastsShoe(t *testing.T) {
	shoes := 0
	newShoe := func() (deck.Shoe, error) {
		shoes++
		if shoes == 1 {
			return deck.Shoe(deck.MustParseCards("2c 2d 2h 2s 3c 3d 2c 2d 2h 2s 2c 2d 2h 2s 2c")), nil
		}
		return stackedShoe("Th")()
	}
	c, rec := newController(t, Options{NewShoe: newShoe})
	ctx := context.Background()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 1, shoes, "fifteen cards start a round")

	s, err := c.Act(ctx, game.Split)
	require.NoError(t, err)
	require.True(t, s.IsSplit)
	for range 3 {
		_, err = c.Act(ctx, game.Hit)
		require.NoError(t, err)
	}
	_, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)
	s, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)
	require.Equal(t, game.PhaseDealerTurn, s.Phase)
	assert.Len(t, s.Deck, 6)

	s, err = c.PlayDealer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, shoes)
	assert.Equal(t, game.PhaseGameOver, s.Phase)
	assert.True(t, s.DealerHand.IsBusted)
	assert.Equal(t, 26, s.DealerHand.Total)
	assert.Equal(t, 1200, s.PlayerScore)
	assert.Contains(t, rec.types(), EventTypeReshuffled)

	_, err = c.Bet(ctx, 100)
	assert.NoError(t, err, "the next round deals from the replenished shoe")
}

func TestHint(t *testing.T) {
	c, _ := newController(t, Options{NewShoe: stackedShoe("Th 7c 8d Ts")})

	_, ok := c.Hint()
	assert.False(t, ok, "no hint while betting")

	_, err := c.Bet(context.Background(), 100)
	require.NoError(t, err)
	c.SetTraining(strategy.TrainingHit)

	advice, ok := c.Hint()
	require.True(t, ok)
	assert.Equal(t, game.Stand, advice.Primary.Action)
	assert.Contains(t, advice.Primary.Reasoning, "Training Note")
}

type failingStore struct {
	*store.Memory
}

func (failingStore) Save(context.Context, store.Snapshot) error {
	return errors.New("disk full")
}

func TestPersistFailureDoesNotInterruptPlay(t *testing.T) {
	c, _ := newController(t, Options{
		Store:   failingStore{store.NewMemory()},
		NewShoe: stackedShoe("Th 7c 8d Ts"),
	})
	ctx := context.Background()

	_, err := c.Bet(ctx, 100)
	require.NoError(t, err)
	_, err = c.Act(ctx, game.Stand)
	require.NoError(t, err)
	s, err := c.PlayDealer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1100, s.PlayerScore)
}

func TestCloseEndsRun(t *testing.T) {
	mem := store.NewMemory()
	c, _ := newController(t, Options{Store: mem})
	require.NoError(t, c.Close(context.Background()))

	snap, err := mem.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Stats.Runs, 1)
	assert.False(t, snap.Stats.Runs[0].EndedAt.IsZero())
	assert.False(t, snap.Stats.Runs[0].Completed)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	a, b := &recorder{}, &recorder{}
	bus.Subscribe(a)
	bus.Subscribe(b)
	bus.Subscribe(SubscriberFunc(func(Event) {}))

	bus.Publish(ReshuffledEvent{Cards: 52})
	bus.Unsubscribe(a)
	bus.Unsubscribe(SubscriberFunc(func(Event) {}))
	bus.Publish(ReshuffledEvent{Cards: 52})

	assert.Len(t, a.types(), 1)
	assert.Len(t, b.types(), 2)
}

func TestTrainingModeDealsPracticeHands(t *testing.T) {
	c, _ := newController(t, Options{Training: strategy.TrainingSplit})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s, err := c.Bet(ctx, 10)
		require.NoError(t, err)
		assert.True(t, s.PlayerHand.IsPair(), "hand %s", s.PlayerHand)
		assert.True(t, s.CanSplit)

		s, err = c.Act(ctx, game.Surrender)
		require.NoError(t, err)
		require.Equal(t, game.PhaseGameOver, s.Phase)
	}
	assert.Equal(t, 5, c.Stats().Surrenders)
}
