package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/session"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the interactive table.
type PlayCmd struct {
	Training string `kong:"default='',help='Practice mode: none, hit, stand, double-down, split'"`
	Hints    bool   `kong:"help='Show the basic strategy play before each decision'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed for shuffling (optional)'"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = filepath.Join(config.DataDir(), "blackjack.log")
	}
	logger, closer, err := shared.SetupFileLogger(logFile, g.LogLevel(cfg), "blackjack")
	if err != nil {
		return err
	}
	defer closer.Close()

	mode := cfg.Training.Mode
	if c.Training != "" {
		if mode, err = strategy.ParseTrainingMode(c.Training); err != nil {
			return err
		}
	}
	showHints := cfg.Training.ShowHints || c.Hints

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	defer st.Close()

	opts := session.Options{
		Rules:       cfg.Rules,
		Store:       st,
		Logger:      logger,
		Clock:       quartz.NewReal(),
		DealerDelay: cfg.Table.DealerDelay,
		Penetration: cfg.Table.ReshufflePenetration,
		Training:    mode,
	}
	seed, fixed := randutil.Seed(c.Seed)
	if fixed {
		logger.Info("Using deterministic seed", "seed", seed)
	}
	opts.RNG = randutil.New(seed)

	ctrl, err := session.New(ctx, opts)
	if err != nil {
		return err
	}
	logger.Info("Starting table",
		"store", cfg.Storage.Driver,
		"decks", cfg.Rules.DeckCount,
		"balance", ctrl.State().PlayerScore,
		"training", mode)

	model := tui.NewTUIModel(ctx, ctrl, logger, tui.Options{ShowHints: showHints})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}

	if err := ctrl.Close(context.Background()); err != nil {
		logger.Error("Failed to save session", "error", err)
	}
	return runErr
}
