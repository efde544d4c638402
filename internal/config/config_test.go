package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/strategy"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)

	assert.Equal(t, game.DefaultRules(), cfg.Rules)
	assert.Equal(t, 0.75, cfg.Table.ReshufflePenetration)
	assert.Equal(t, 500*time.Millisecond, cfg.Table.DealerDelay)
	assert.Equal(t, store.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, strategy.TrainingNone, cfg.Training.Mode)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "blackjack.hcl", `
rules {
  deck_count          = 2
  dealer_hits_soft_17 = true
  allow_surrender     = false
}

table {
  starting_balance      = 500
  min_bet               = 5
  reshuffle_penetration = 0.5
  dealer_delay_ms       = 0
}

storage {
  driver = "sqlite"
  path   = "/tmp/bj.db"
}

training {
  mode       = "split"
  show_hints = true
}

log {
  level = "debug"
  file  = "blackjack.log"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Rules.DeckCount)
	assert.True(t, cfg.Rules.DealerHitsSoft17)
	assert.False(t, cfg.Rules.AllowSurrender)
	assert.True(t, cfg.Rules.AllowInsurance, "unset booleans keep their default")
	assert.Equal(t, 4, cfg.Rules.MaxSplitHands)
	assert.Equal(t, 500, cfg.Rules.StartingBalance)
	assert.Equal(t, 5, cfg.Rules.MinBet)
	assert.Equal(t, 500, cfg.Rules.MaxBet)
	assert.Equal(t, 0.5, cfg.Table.ReshufflePenetration)
	assert.Equal(t, time.Duration(0), cfg.Table.DealerDelay)
	assert.Equal(t, store.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/bj.db", cfg.Storage.Path)
	assert.Equal(t, strategy.TrainingSplit, cfg.Training.Mode)
	assert.True(t, cfg.Training.ShowHints)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "blackjack.log", cfg.Log.File)
}

func TestLoadDriverWithoutPath(t *testing.T) {
	path := writeFile(t, "blackjack.hcl", `
storage {
  driver = "sqlite"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DataDir(), "blackjack.db"), cfg.Storage.Path)
}

func TestLoadRedisStorage(t *testing.T) {
	path := writeFile(t, "blackjack.hcl", `
storage {
  driver           = "redis"
  redis_url        = "redis://localhost:6379/2"
  redis_key_prefix = "bj:test:"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, store.Config{
		Driver:    store.DriverRedis,
		Path:      defaultPath(store.DriverRedis),
		RedisURL:  "redis://localhost:6379/2",
		KeyPrefix: "bj:test:",
	}, cfg.Storage)

	_, err = Load(writeFile(t, "blackjack.hcl", `storage { key_prefix = "bj:" }`))
	assert.Error(t, err, "the prefix is spelled redis_key_prefix")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `rules {`},
		{"unknown attribute", `table { colour = "green" }`},
		{"invalid deck count", `rules { deck_count = 9 }`},
		{"min above max", `table {
  min_bet = 100
  max_bet = 50
}`},
		{"penetration", `table { reshuffle_penetration = 1.5 }`},
		{"training mode", `training { mode = "count-cards" }`},
		{"redis without url", `storage { driver = "redis" }`},
		{"log level", `log { level = "loud" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "blackjack.hcl", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(map[string]string{
		EnvStorageDriver:   "memory",
		EnvLogLevel:        "warn",
		EnvStartingBalance: "2500",
		EnvTrainingMode:    "double",
	})
	require.NoError(t, err)

	assert.Equal(t, store.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, log.WarnLevel, cfg.LogLevel())
	assert.Equal(t, 2500, cfg.Rules.StartingBalance)
	assert.Equal(t, strategy.TrainingDouble, cfg.Training.Mode)

	assert.Error(t, Default().ApplyEnv(map[string]string{EnvStartingBalance: "lots"}))
	assert.Error(t, Default().ApplyEnv(map[string]string{EnvStorageDriver: "redis"}))
}

func TestEnviron(t *testing.T) {
	dotenv := writeFile(t, ".env", "BLACKJACK_LOG_LEVEL=debug\nBLACKJACK_STORAGE_DRIVER=sqlite\nOTHER=ignored\n")
	t.Setenv(EnvStorageDriver, "memory")

	env, err := Environ(dotenv)
	require.NoError(t, err)

	assert.Equal(t, "debug", env[EnvLogLevel])
	assert.Equal(t, "memory", env[EnvStorageDriver], "process environment wins over .env")
	assert.NotContains(t, env, "OTHER")

	env, err = Environ(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "memory", env[EnvStorageDriver])
}
