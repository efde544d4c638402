package statistics

import (
	"testing"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRates(t *testing.T) {
	var r Record
	assert.Zero(t, r.WinRate())
	assert.Zero(t, r.StrategyAccuracy())
	assert.Zero(t, r.AverageHandValue())

	r.AddRound(Round{Result: game.PlayerWins, Net: 50, PlayerTotal: 20})
	r.AddRound(Round{Result: game.PlayerBlackjack, Net: 75, PlayerTotal: 21, Blackjack: true})
	r.AddRound(Round{Result: game.DealerWins, Net: -50, PlayerTotal: 22, Busted: true})
	r.AddRound(Round{Result: game.Push, Net: 0, PlayerTotal: 17})

	assert.Equal(t, 4, r.HandsPlayed)
	assert.Equal(t, 2, r.HandsWon)
	assert.Equal(t, 1, r.HandsLost)
	assert.Equal(t, 1, r.HandsPushed)
	assert.Equal(t, 75, r.TotalWinnings)
	assert.InDelta(t, 50.0, r.WinRate(), 1e-9)
	assert.InDelta(t, 25.0, r.LossRate(), 1e-9)
	assert.InDelta(t, 25.0, r.PushRate(), 1e-9)
	assert.InDelta(t, 25.0, r.BlackjackRate(), 1e-9)
	assert.InDelta(t, 25.0, r.BustRate(), 1e-9)
	assert.InDelta(t, 20.0, r.AverageHandValue(), 1e-9)

	r.AddDecision(true)
	r.AddDecision(true)
	r.AddDecision(false)
	r.AddDecision(true)
	assert.InDelta(t, 75.0, r.StrategyAccuracy(), 1e-9)
}

func TestRecordRuns(t *testing.T) {
	var r Record
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Nil(t, r.CurrentRun())

	r.StartRun("run-1", start, 1000)
	require.NotNil(t, r.CurrentRun())

	r.AddRound(Round{Result: game.PlayerWins, Net: 100, Balance: 1100})
	r.AddRound(Round{Result: game.DealerWins, Net: -1095, Balance: 5})
	run := r.CurrentRun()
	assert.Equal(t, 2, run.HandsPlayed)
	assert.Equal(t, 1100, run.PeakBalance)
	assert.Equal(t, 5, run.EndingBalance)

	r.EndRun(start.Add(time.Hour), 5, true)
	assert.Nil(t, r.CurrentRun())
	assert.True(t, r.Runs[0].Completed)
	assert.Equal(t, -995, r.Runs[0].Net())

	// Starting a new run closes any open run.
	r.StartRun("run-2", start, 1000)
	r.StartRun("run-3", start.Add(time.Minute), 1000)
	require.Len(t, r.Runs, 3)
	assert.Equal(t, start.Add(time.Minute), r.Runs[1].EndedAt)
	assert.Equal(t, "run-3", r.CurrentRun().ID)
}

func TestRecordRunHistoryBounded(t *testing.T) {
	var r Record
	at := time.Unix(0, 0)
	for i := 0; i < MaxRuns+10; i++ {
		r.StartRun("run", at.Add(time.Duration(i)*time.Second), 1000)
	}
	assert.Len(t, r.Runs, MaxRuns)
}

func TestSummarizeRound(t *testing.T) {
	shoe := deck.Shoe(deck.MustParseCards("8h5c8dTc3s2h9c7d"))
	s, err := game.InitializeGame(shoe, 1000)
	require.NoError(t, err)
	s, err = game.Replay(s,
		game.PlaceBetCommand(50),
		game.DealCommand(nil),
		game.ActionCommand(game.Split),
		game.ActionCommand(game.DoubleDown),
		game.ActionCommand(game.Stand),
		game.DealerPlayCommand(),
	)
	require.NoError(t, err)

	round := SummarizeRound(s, false)
	assert.Equal(t, game.PlayerWins, round.Result)
	assert.Equal(t, 150, round.Net)
	assert.True(t, round.Split)
	assert.True(t, round.Doubled)
	assert.False(t, round.Busted)
	assert.Equal(t, 1150, round.Balance)
}
