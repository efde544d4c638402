package game

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay(t *testing.T) {
	s, err := InitializeGame(stacked("Th7c8dTs"), 1000)
	require.NoError(t, err)

	cmds := []Command{
		PlaceBetCommand(50),
		DealCommand(RandomPolicy{}),
		ActionCommand(Stand),
		DealerPlayCommand(),
		ResetCommand(),
	}
	a, err := Replay(s, cmds...)
	require.NoError(t, err)
	b, err := Replay(s, cmds...)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, PhaseBetting, a.Phase)
	assert.Equal(t, 1050, a.PlayerScore)
}

func TestReplayStopsOnError(t *testing.T) {
	s, err := InitializeGame(stacked("Th7c8dTs"), 1000)
	require.NoError(t, err)

	got, err := Replay(s, PlaceBetCommand(50), ActionCommand(Hit))
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, PhaseDealing, got.Phase)
}

func TestApplyReshuffle(t *testing.T) {
	s, err := InitializeGame(stacked("2s"), 1000)
	require.NoError(t, err)
	fresh, err := deck.BuildShoe(1)
	require.NoError(t, err)

	s, err = Apply(s, ReshuffleCommand(fresh))
	require.NoError(t, err)
	assert.Equal(t, 52, s.Deck.Remaining())

	_, err = Apply(s, Command{Kind: CommandKind(99)})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

// Random legal play across many rounds never drives the balance negative.
func TestBalanceNeverNegative(t *testing.T) {
	rng := randutil.New(11)
	shoe, err := deck.NewShuffledShoe(6, rng)
	require.NoError(t, err)
	s, err := InitializeGame(shoe, 200)
	require.NoError(t, err)

	check := func(s GameState) {
		t.Helper()
		require.GreaterOrEqual(t, s.PlayerScore, 0)
	}

	for round := 0; round < 2000 && s.PlayerScore >= s.Rules.MinBet; round++ {
		if s.Deck.Remaining() < 80 {
			shoe, err = deck.NewShuffledShoe(6, rng)
			require.NoError(t, err)
			s, err = Reshuffle(s, shoe)
			require.NoError(t, err)
		}

		maxBet := min(s.PlayerScore, s.Rules.MaxBet)
		bet := s.Rules.MinBet + rng.IntN(maxBet-s.Rules.MinBet+1)
		s, err = PlaceBet(s, bet)
		require.NoError(t, err)
		check(s)
		s, err = DealInitialCards(s, nil)
		require.NoError(t, err)

		for s.Phase == PhasePlayerTurn {
			actions := s.AvailableActions()
			next, err := ExecutePlayerAction(s, actions[rng.IntN(len(actions))])
			if errors.Is(err, ErrInsufficientFunds) {
				next, err = ExecutePlayerAction(s, Stand)
			}
			require.NoError(t, err)
			s = next
			check(s)
		}
		if s.Phase == PhaseDealerTurn {
			s, err = PlayDealerHand(s)
			require.NoError(t, err)
		}
		require.Equal(t, PhaseGameOver, s.Phase)
		check(s)

		s, err = ResetRound(s)
		require.NoError(t, err)
	}
}
