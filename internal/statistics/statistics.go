package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// HandResult represents the outcome of a single simulated round
type HandResult struct {
	Net         float64 // Net units won/lost, in base bets
	Seed        int64   // Worker seed the round was played under (for replay)
	Result      game.Result
	Blackjack   bool // Player was dealt a natural
	Busted      bool // Any player hand busted
	Doubled     bool
	Split       bool
	Surrendered bool
}

// OutcomeStats tracks statistics for one result type
type OutcomeStats struct {
	Hands int
	Sum   float64
}

// Statistics tracks running simulation statistics
type Statistics struct {
	Hands  int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // Store all values for median/percentile calculation

	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int
	Busts      int
	Doubles    int
	Splits     int
	Surrenders int
	MaxWin     float64
	MaxLoss    float64
	AllNet     float64 // Total net for the ledger check
	ByOutcome  map[game.Result]*OutcomeStats
}

// Mean returns the arithmetic mean result in base bets per round
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.Sum / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// HouseEdge returns the expected loss per base bet as a percentage.
func (s *Statistics) HouseEdge() float64 {
	return -s.Mean() * 100
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result HandResult) {
	net := result.Net
	s.Hands++
	s.Sum += net
	s.Sum2 += net * net
	s.Values = append(s.Values, net)
	s.AllNet += net

	switch {
	case result.Result.IsWin():
		s.Wins++
	case result.Result.IsLoss():
		s.Losses++
	default:
		s.Pushes++
	}
	if result.Blackjack {
		s.Blackjacks++
	}
	if result.Busted {
		s.Busts++
	}
	if result.Doubled {
		s.Doubles++
	}
	if result.Split {
		s.Splits++
	}
	if result.Surrendered {
		s.Surrenders++
	}
	if net > s.MaxWin {
		s.MaxWin = net
	}
	if net < s.MaxLoss {
		s.MaxLoss = net
	}

	if s.ByOutcome == nil {
		s.ByOutcome = make(map[game.Result]*OutcomeStats)
	}
	os, ok := s.ByOutcome[result.Result]
	if !ok {
		os = &OutcomeStats{}
		s.ByOutcome[result.Result] = os
	}
	os.Hands++
	os.Sum += net
}

// Merge folds other into s. Used to combine per-worker results.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.Hands += other.Hands
	s.Sum += other.Sum
	s.Sum2 += other.Sum2
	s.Values = append(s.Values, other.Values...)
	s.AllNet += other.AllNet
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Busts += other.Busts
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.Surrenders += other.Surrenders
	s.MaxWin = math.Max(s.MaxWin, other.MaxWin)
	s.MaxLoss = math.Min(s.MaxLoss, other.MaxLoss)
	if len(other.ByOutcome) > 0 && s.ByOutcome == nil {
		s.ByOutcome = make(map[game.Result]*OutcomeStats)
	}
	for r, os := range other.ByOutcome {
		dst, ok := s.ByOutcome[r]
		if !ok {
			dst = &OutcomeStats{}
			s.ByOutcome[r] = dst
		}
		dst.Hands += os.Hands
		dst.Sum += os.Sum
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// OutcomeMean returns the mean net result for rounds that ended in r
func (s *Statistics) OutcomeMean(r game.Result) float64 {
	os, ok := s.ByOutcome[r]
	if !ok || os.Hands == 0 {
		return 0
	}
	return os.Sum / float64(os.Hands)
}

// IsLedgerBalanced checks that per-outcome totals add up to the overall net
func (s *Statistics) IsLedgerBalanced() bool {
	var sum float64
	for _, os := range s.ByOutcome {
		sum += os.Sum
	}
	return math.Abs(s.AllNet-sum) <= 1e-6
}

// Validate performs consistency checks on the statistics
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllNet=%.6f does not match outcome totals", s.AllNet)
	}

	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}

	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}

	if total := s.Wins + s.Losses + s.Pushes; total != s.Hands {
		return fmt.Errorf("wins+losses+pushes (%d) does not match total hands (%d)", total, s.Hands)
	}

	outcomeHands := 0
	for _, os := range s.ByOutcome {
		outcomeHands += os.Hands
	}
	if outcomeHands != s.Hands {
		return fmt.Errorf("outcome hands total (%d) does not match total hands (%d)",
			outcomeHands, s.Hands)
	}

	return nil
}
