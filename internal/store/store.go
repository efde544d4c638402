// Package store persists the player's bankroll and lifetime statistics
// between sessions.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lox/blackjack/internal/statistics"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("store: no saved data")

// Snapshot is the persisted player state.
type Snapshot struct {
	Balance   int               `json:"balance"`
	Stats     statistics.Record `json:"statistics"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store loads and saves snapshots.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures a storage driver.
type Config struct {
	Driver    string
	Path      string
	RedisURL  string
	KeyPrefix string
}

// DefaultConfig returns a JSON file store.
func DefaultConfig() Config {
	return Config{
		Driver:    DriverFile,
		Path:      "blackjack.json",
		KeyPrefix: "blackjack:",
	}
}

// Validate checks that the driver is known and has what it needs.
func (c Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case DriverMemory:
		return nil
	case DriverFile, DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("storage driver %q requires a path", c.Driver)
		}
		return nil
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("storage driver %q requires redis_url", c.Driver)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
}

// Open returns the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Path), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return OpenRedis(ctx, cfg.RedisURL, cfg.KeyPrefix)
	}
}
