package simulator

import (
	"time"

	"github.com/lox/blackjack/internal/statistics"
)

// Monitor receives simulation progress. Workers report concurrently, so
// implementations must be safe for concurrent use.
type Monitor interface {
	// OnStart is called once before any round is played.
	OnStart(rounds int)

	// OnProgress is called as batches of rounds finish.
	OnProgress(completed, total int)

	// OnComplete is called once with the merged results.
	OnComplete(stats *statistics.Statistics, elapsed time.Duration)
}

// NullMonitor is a no-op implementation.
type NullMonitor struct{}

func (NullMonitor) OnStart(int)                                      {}
func (NullMonitor) OnProgress(int, int)                              {}
func (NullMonitor) OnComplete(*statistics.Statistics, time.Duration) {}

// progressEvery is how many rounds a worker plays between reports.
const progressEvery = 1000
