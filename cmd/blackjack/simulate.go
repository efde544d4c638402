package main

import (
	"fmt"
	"os"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays many rounds of basic strategy and reports the result.
type SimulateCmd struct {
	Hands       int      `kong:"default='100000',help='Number of rounds to simulate'"`
	Workers     int      `kong:"default='0',help='Parallel workers (0 = GOMAXPROCS)'"`
	Seed        *int64   `kong:"help='Deterministic RNG seed (optional)'"`
	Bet         int      `kong:"default='0',help='Flat bet per round (0 = table minimum)'"`
	Penetration *float64 `kong:"help='Fraction of the shoe dealt before reshuffling (default from config)'"`
	Decks       int      `kong:"default='0',help='Override the configured deck count'"`
	H17         bool     `kong:"name='h17',help='Dealer hits soft 17'"`
	Quiet       bool     `kong:"short='q',help='Hide the progress line'"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(g.LogLevel(cfg), "SIM")
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	rules := cfg.Rules
	if c.Decks > 0 {
		rules.DeckCount = c.Decks
	}
	if c.H17 {
		rules.DealerHitsSoft17 = true
	}
	penetration := cfg.Table.ReshufflePenetration
	if c.Penetration != nil {
		penetration = *c.Penetration
	}

	seed, fixed := randutil.Seed(c.Seed)
	if fixed {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Debug("Using random seed", "seed", seed)
	}

	var monitor simulator.Monitor = NewProgressMonitor(os.Stderr)
	if c.Quiet {
		monitor = simulator.NullMonitor{}
	}

	sim := simulator.New(simulator.Config{
		Hands:       c.Hands,
		Seed:        seed,
		Workers:     c.Workers,
		Rules:       rules,
		Bet:         c.Bet,
		Penetration: penetration,
		Logger:      logger,
		Monitor:     monitor,
	})
	eff := sim.Config()
	logger.Info("Starting simulation",
		"hands", eff.Hands,
		"workers", eff.Workers,
		"decks", rules.DeckCount,
		"h17", rules.DealerHitsSoft17,
		"bet", eff.Bet)

	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	simulator.WriteSummary(os.Stdout, stats)
	return nil
}
