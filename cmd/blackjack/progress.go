package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lox/blackjack/internal/statistics"
)

// progressDots is the width of the progress line.
const progressDots = 40

// ProgressMonitor prints a row of dots as a simulation advances, followed by
// the throughput once it finishes.
type ProgressMonitor struct {
	mu          sync.Mutex
	out         io.Writer
	dotsPrinted int
}

// NewProgressMonitor creates a progress monitor writing to out.
func NewProgressMonitor(out io.Writer) *ProgressMonitor {
	return &ProgressMonitor{out: out}
}

// OnStart prints the header.
func (m *ProgressMonitor) OnStart(rounds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "Simulating %d rounds: ", rounds)
}

// OnProgress prints one dot per 2.5% of rounds completed.
func (m *ProgressMonitor) OnProgress(completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if total <= 0 {
		return
	}
	target := min(completed*progressDots/total, progressDots)
	for ; m.dotsPrinted < target; m.dotsPrinted++ {
		fmt.Fprint(m.out, ".")
	}
}

// OnComplete fills the line and prints the throughput.
func (m *ProgressMonitor) OnComplete(stats *statistics.Statistics, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ; m.dotsPrinted < progressDots; m.dotsPrinted++ {
		fmt.Fprint(m.out, ".")
	}
	perSec := float64(stats.Hands) / max(elapsed.Seconds(), 1e-9)
	fmt.Fprintf(m.out, " %d rounds in %.1fs (%.0f/sec)\n", stats.Hands, elapsed.Seconds(), perSec)
}
