package store

import (
	"context"
	"sync"

	"github.com/lox/blackjack/internal/statistics"
)

// Memory is an in-process store, used by tests and the simulator.
type Memory struct {
	mu    sync.Mutex
	snap  Snapshot
	saved bool
	saves int
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return Snapshot{}, ErrNotFound
	}
	return cloneSnapshot(m.snap), nil
}

func (m *Memory) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = cloneSnapshot(snap)
	m.saved = true
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) Close() error { return nil }

func cloneSnapshot(s Snapshot) Snapshot {
	s.Stats.Runs = append([]statistics.Run(nil), s.Stats.Runs...)
	return s
}
