package statistics

import (
	"time"

	"github.com/lox/blackjack/internal/game"
)

// MaxRuns bounds the run history kept in a Record.
const MaxRuns = 50

// Run is one continuous playing session, from a fresh bankroll until the
// player stops or can no longer cover the minimum bet.
type Run struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at,omitzero"`
	StartingBalance int       `json:"starting_balance"`
	EndingBalance   int       `json:"ending_balance"`
	PeakBalance     int       `json:"peak_balance"`
	HandsPlayed     int       `json:"hands_played"`
	Completed       bool      `json:"completed"`
}

// Net returns the run's profit or loss.
func (r Run) Net() int {
	return r.EndingBalance - r.StartingBalance
}

// Round is the summary of one settled round fed into a Record.
type Round struct {
	Result      game.Result
	Net         int
	PlayerTotal int
	Blackjack   bool
	Busted      bool
	Surrendered bool
	Doubled     bool
	Split       bool
	Balance     int
}

// SummarizeRound extracts a Round from a game-over state.
func SummarizeRound(s game.GameState, surrendered bool) Round {
	r := Round{
		Result:      s.Result,
		PlayerTotal: s.PlayerHand.Total,
		Blackjack:   !s.IsSplit && s.PlayerHand.IsBlackjack,
		Surrendered: surrendered,
		Doubled:     s.Doubled,
		Split:       s.IsSplit,
		Balance:     s.PlayerScore,
		Busted:      s.PlayerHand.IsBusted,
	}
	if s.Settlement != nil {
		r.Net = s.Settlement.LastHandWinnings
	}
	for _, sh := range s.SplitHands {
		r.Doubled = r.Doubled || sh.Doubled
		r.Busted = r.Busted || sh.Hand.IsBusted
	}
	return r
}

// Record is the lifetime statistics persisted between sessions.
type Record struct {
	HandsPlayed      int   `json:"hands_played"`
	HandsWon         int   `json:"hands_won"`
	HandsLost        int   `json:"hands_lost"`
	HandsPushed      int   `json:"hands_pushed"`
	Blackjacks       int   `json:"blackjacks"`
	Busts            int   `json:"busts"`
	Surrenders       int   `json:"surrenders"`
	Doubles          int   `json:"doubles"`
	Splits           int   `json:"splits"`
	TotalWinnings    int   `json:"total_winnings"`
	TotalHandValue   int   `json:"total_hand_value"`
	DecisionsTotal   int   `json:"decisions_total"`
	DecisionsCorrect int   `json:"decisions_correct"`
	Runs             []Run `json:"runs,omitempty"`
}

// AddRound counts a settled round.
func (r *Record) AddRound(round Round) {
	r.HandsPlayed++
	switch {
	case round.Result.IsWin():
		r.HandsWon++
	case round.Result.IsLoss():
		r.HandsLost++
	default:
		r.HandsPushed++
	}
	if round.Blackjack {
		r.Blackjacks++
	}
	if round.Busted {
		r.Busts++
	}
	if round.Surrendered {
		r.Surrenders++
	}
	if round.Doubled {
		r.Doubles++
	}
	if round.Split {
		r.Splits++
	}
	r.TotalWinnings += round.Net
	r.TotalHandValue += round.PlayerTotal

	if run := r.CurrentRun(); run != nil {
		run.HandsPlayed++
		run.EndingBalance = round.Balance
		if round.Balance > run.PeakBalance {
			run.PeakBalance = round.Balance
		}
	}
}

// AddDecision counts a player decision and whether it matched the
// recommended play.
func (r *Record) AddDecision(correct bool) {
	r.DecisionsTotal++
	if correct {
		r.DecisionsCorrect++
	}
}

// StartRun opens a new run, closing any run still open.
func (r *Record) StartRun(id string, at time.Time, balance int) {
	if cur := r.CurrentRun(); cur != nil {
		cur.EndedAt = at
	}
	r.Runs = append(r.Runs, Run{
		ID:              id,
		StartedAt:       at,
		StartingBalance: balance,
		EndingBalance:   balance,
		PeakBalance:     balance,
	})
	if len(r.Runs) > MaxRuns {
		r.Runs = append([]Run(nil), r.Runs[len(r.Runs)-MaxRuns:]...)
	}
}

// EndRun closes the open run. completed marks a run that ended because the
// bankroll was exhausted.
func (r *Record) EndRun(at time.Time, balance int, completed bool) {
	cur := r.CurrentRun()
	if cur == nil {
		return
	}
	cur.EndedAt = at
	cur.EndingBalance = balance
	cur.Completed = completed
}

// CurrentRun returns the open run, or nil.
func (r *Record) CurrentRun() *Run {
	if len(r.Runs) == 0 {
		return nil
	}
	last := &r.Runs[len(r.Runs)-1]
	if !last.EndedAt.IsZero() {
		return nil
	}
	return last
}

func (r *Record) rate(n int) float64 {
	if r.HandsPlayed == 0 {
		return 0
	}
	return float64(n) / float64(r.HandsPlayed) * 100
}

// WinRate is the percentage of rounds won.
func (r *Record) WinRate() float64 { return r.rate(r.HandsWon) }

// LossRate is the percentage of rounds lost.
func (r *Record) LossRate() float64 { return r.rate(r.HandsLost) }

// PushRate is the percentage of rounds pushed.
func (r *Record) PushRate() float64 { return r.rate(r.HandsPushed) }

// BlackjackRate is the percentage of rounds dealt a natural.
func (r *Record) BlackjackRate() float64 { return r.rate(r.Blackjacks) }

// BustRate is the percentage of rounds with a busted hand.
func (r *Record) BustRate() float64 { return r.rate(r.Busts) }

// AverageHandValue is the mean final player total.
func (r *Record) AverageHandValue() float64 {
	if r.HandsPlayed == 0 {
		return 0
	}
	return float64(r.TotalHandValue) / float64(r.HandsPlayed)
}

// StrategyAccuracy is the percentage of decisions that matched basic
// strategy.
func (r *Record) StrategyAccuracy() float64 {
	if r.DecisionsTotal == 0 {
		return 0
	}
	return float64(r.DecisionsCorrect) / float64(r.DecisionsTotal) * 100
}
