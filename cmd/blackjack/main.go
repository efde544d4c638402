package main

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config  string `kong:"default='${config_file}',help='HCL configuration file',type='path'"`
	Env     string `kong:"default='.env',help='Dotenv file with BLACKJACK_* overrides'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	NoColor bool   `kong:"help='Disable colored output'"`
}

// AfterApply runs once flags are parsed, before any command.
func (g *Globals) AfterApply() error {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

// LoadConfig reads the config file and applies environment overrides.
func (g *Globals) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", g.Config, err)
	}
	env, err := config.Environ(g.Env)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	return cfg, nil
}

// LogLevel is debug when --debug is set and the configured level otherwise.
func (g *Globals) LogLevel(cfg *config.Config) log.Level {
	if g.Debug {
		return log.DebugLevel
	}
	return cfg.LogLevel()
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play blackjack in the terminal"`
	Hint     HintCmd          `cmd:"" help:"Recommend a play for a hand against a dealer upcard"`
	Chart    ChartCmd         `cmd:"" help:"Print the basic strategy chart"`
	Drill    DrillCmd         `cmd:"" help:"Quiz yourself on basic strategy"`
	Simulate SimulateCmd      `cmd:"" help:"Estimate the house edge of basic strategy"`
	Stats    StatsCmd         `cmd:"" help:"Show lifetime statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack trainer with basic strategy hints"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": filepath.Join(config.DataDir(), "config.hcl"),
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
