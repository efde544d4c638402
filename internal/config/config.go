// Package config loads table, storage and logging settings from an HCL
// file, with .env and BLACKJACK_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/strategy"
)

// Config is the resolved configuration.
type Config struct {
	Rules    game.Rules
	Table    TableSettings
	Storage  store.Config
	Training TrainingSettings
	Log      LogSettings
}

// TableSettings control pacing and the cut card.
type TableSettings struct {
	// ReshufflePenetration is the fraction of the shoe dealt before a
	// reshuffle.
	ReshufflePenetration float64
	DealerDelay          time.Duration
}

// TrainingSettings select a practice mode.
type TrainingSettings struct {
	Mode      strategy.TrainingMode
	ShowHints bool
}

// LogSettings control the log level and destination.
type LogSettings struct {
	Level string
	File  string
}

// file is the HCL schema. Blocks and booleans are pointers so that absent
// values keep their defaults.
type file struct {
	Rules    *rulesBlock    `hcl:"rules,block"`
	Table    *tableBlock    `hcl:"table,block"`
	Storage  *storageBlock  `hcl:"storage,block"`
	Training *trainingBlock `hcl:"training,block"`
	Log      *logBlock      `hcl:"log,block"`
}

type rulesBlock struct {
	DeckCount        int   `hcl:"deck_count,optional"`
	DealerHitsSoft17 *bool `hcl:"dealer_hits_soft_17,optional"`
	AllowSurrender   *bool `hcl:"allow_surrender,optional"`
	AllowInsurance   *bool `hcl:"allow_insurance,optional"`
	DoubleAfterSplit *bool `hcl:"double_after_split,optional"`
	ResplitAces      *bool `hcl:"resplit_aces,optional"`
	MaxSplitHands    int   `hcl:"max_split_hands,optional"`
}

type tableBlock struct {
	StartingBalance      int      `hcl:"starting_balance,optional"`
	MinBet               int      `hcl:"min_bet,optional"`
	MaxBet               int      `hcl:"max_bet,optional"`
	ReshufflePenetration *float64 `hcl:"reshuffle_penetration,optional"`
	DealerDelayMS        *int     `hcl:"dealer_delay_ms,optional"`
}

type storageBlock struct {
	Driver         string `hcl:"driver,optional"`
	Path           string `hcl:"path,optional"`
	RedisURL       string `hcl:"redis_url,optional"`
	RedisKeyPrefix string `hcl:"redis_key_prefix,optional"`
}

type trainingBlock struct {
	Mode      string `hcl:"mode,optional"`
	ShowHints *bool  `hcl:"show_hints,optional"`
}

type logBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// DataDir is where save files live by default.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "blackjack")
	}
	return "."
}

// Default returns the built-in configuration.
func Default() *Config {
	storage := store.DefaultConfig()
	storage.Path = filepath.Join(DataDir(), "save.json")
	return &Config{
		Rules: game.DefaultRules(),
		Table: TableSettings{
			ReshufflePenetration: 0.75,
			DealerDelay:          500 * time.Millisecond,
		},
		Storage:  storage,
		Training: TrainingSettings{Mode: strategy.TrainingNone},
		Log:      LogSettings{Level: "info"},
	}
}

// Load reads the HCL file at filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := cfg.apply(raw); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(raw file) error {
	if r := raw.Rules; r != nil {
		setInt(&c.Rules.DeckCount, r.DeckCount)
		setInt(&c.Rules.MaxSplitHands, r.MaxSplitHands)
		setBool(&c.Rules.DealerHitsSoft17, r.DealerHitsSoft17)
		setBool(&c.Rules.AllowSurrender, r.AllowSurrender)
		setBool(&c.Rules.AllowInsurance, r.AllowInsurance)
		setBool(&c.Rules.DoubleAfterSplit, r.DoubleAfterSplit)
		setBool(&c.Rules.ResplitAces, r.ResplitAces)
	}

	if t := raw.Table; t != nil {
		setInt(&c.Rules.StartingBalance, t.StartingBalance)
		setInt(&c.Rules.MinBet, t.MinBet)
		setInt(&c.Rules.MaxBet, t.MaxBet)
		if t.ReshufflePenetration != nil {
			c.Table.ReshufflePenetration = *t.ReshufflePenetration
		}
		if t.DealerDelayMS != nil {
			c.Table.DealerDelay = time.Duration(*t.DealerDelayMS) * time.Millisecond
		}
	}

	if s := raw.Storage; s != nil {
		if s.Driver != "" {
			c.Storage.Driver = strings.ToLower(s.Driver)
			if s.Path == "" {
				c.Storage.Path = defaultPath(c.Storage.Driver)
			}
		}
		setString(&c.Storage.Path, s.Path)
		setString(&c.Storage.RedisURL, s.RedisURL)
		setString(&c.Storage.KeyPrefix, s.RedisKeyPrefix)
	}

	if tr := raw.Training; tr != nil {
		if tr.Mode != "" {
			mode, err := strategy.ParseTrainingMode(tr.Mode)
			if err != nil {
				return err
			}
			c.Training.Mode = mode
		}
		setBool(&c.Training.ShowHints, tr.ShowHints)
	}

	if l := raw.Log; l != nil {
		setString(&c.Log.Level, l.Level)
		setString(&c.Log.File, l.File)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvStorageDriver   = "BLACKJACK_STORAGE_DRIVER"
	EnvStoragePath     = "BLACKJACK_STORAGE_PATH"
	EnvRedisURL        = "BLACKJACK_REDIS_URL"
	EnvLogLevel        = "BLACKJACK_LOG_LEVEL"
	EnvLogFile         = "BLACKJACK_LOG_FILE"
	EnvStartingBalance = "BLACKJACK_STARTING_BALANCE"
	EnvTrainingMode    = "BLACKJACK_TRAINING_MODE"
)

// Environ returns the BLACKJACK_* variables from the dotenv file (if it
// exists) overlaid with the process environment.
func Environ(dotenv string) (map[string]string, error) {
	env := map[string]string{}
	if dotenv != "" {
		if _, err := os.Stat(dotenv); err == nil {
			vals, err := godotenv.Read(dotenv)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", dotenv, err)
			}
			for k, v := range vals {
				if strings.HasPrefix(k, "BLACKJACK_") {
					env[k] = v
				}
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, "BLACKJACK_") {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides settings from env and revalidates.
func (c *Config) ApplyEnv(env map[string]string) error {
	if v := env[EnvStorageDriver]; v != "" {
		c.Storage.Driver = strings.ToLower(v)
		if env[EnvStoragePath] == "" {
			c.Storage.Path = defaultPath(c.Storage.Driver)
		}
	}
	setString(&c.Storage.Path, env[EnvStoragePath])
	setString(&c.Storage.RedisURL, env[EnvRedisURL])
	setString(&c.Log.Level, env[EnvLogLevel])
	setString(&c.Log.File, env[EnvLogFile])

	if v := env[EnvStartingBalance]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStartingBalance, err)
		}
		c.Rules.StartingBalance = n
	}
	if v := env[EnvTrainingMode]; v != "" {
		mode, err := strategy.ParseTrainingMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTrainingMode, err)
		}
		c.Training.Mode = mode
	}
	return c.Validate()
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if p := c.Table.ReshufflePenetration; p < 0 || p >= 1 {
		return fmt.Errorf("reshuffle_penetration must be in [0, 1), got %v", p)
	}
	if c.Table.DealerDelay < 0 {
		return fmt.Errorf("dealer_delay_ms must be non-negative, got %v", c.Table.DealerDelay)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func defaultPath(driver string) string {
	switch driver {
	case store.DriverSQLite:
		return filepath.Join(DataDir(), "blackjack.db")
	case store.DriverFile:
		return filepath.Join(DataDir(), "save.json")
	}
	return ""
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
