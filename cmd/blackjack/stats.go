package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/tui"
)

// StatsCmd shows or resets the saved statistics.
type StatsCmd struct {
	Reset bool `kong:"help='Clear statistics and restore the starting balance'"`
	JSON  bool `kong:"name='json',help='Print the saved snapshot as JSON'"`
	Runs  int  `kong:"default='5',help='Number of recent runs to list'"`
}

func (c *StatsCmd) Run(g *Globals) error {
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	defer st.Close()

	if c.Reset {
		snap := store.Snapshot{Balance: cfg.Rules.StartingBalance, UpdatedAt: time.Now()}
		if err := st.Save(ctx, snap); err != nil {
			return fmt.Errorf("failed to reset statistics: %w", err)
		}
		fmt.Printf("Statistics cleared, balance reset to $%d\n", snap.Balance)
		return nil
	}

	snap, err := st.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("No saved games yet.")
		return nil
	}
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	writeStats(os.Stdout, snap, c.Runs)
	return nil
}

func writeStats(w io.Writer, snap store.Snapshot, runs int) {
	s := snap.Stats
	fmt.Fprintln(w, tui.HeaderStyle.Render("Lifetime statistics"))
	fmt.Fprintf(w, "Balance:        $%d\n", snap.Balance)
	fmt.Fprintf(w, "Hands played:   %d\n", s.HandsPlayed)
	fmt.Fprintf(w, "Won:            %d (%.1f%%)\n", s.HandsWon, s.WinRate())
	fmt.Fprintf(w, "Lost:           %d (%.1f%%)\n", s.HandsLost, s.LossRate())
	fmt.Fprintf(w, "Pushed:         %d (%.1f%%)\n", s.HandsPushed, s.PushRate())
	fmt.Fprintf(w, "Blackjacks:     %d (%.1f%%)\n", s.Blackjacks, s.BlackjackRate())
	fmt.Fprintf(w, "Busts:          %d (%.1f%%)\n", s.Busts, s.BustRate())
	fmt.Fprintf(w, "Doubles/Splits: %d/%d, Surrenders: %d\n", s.Doubles, s.Splits, s.Surrenders)
	fmt.Fprintf(w, "Net winnings:   %+d\n", s.TotalWinnings)
	fmt.Fprintf(w, "Average total:  %.1f\n", s.AverageHandValue())
	if s.DecisionsTotal > 0 {
		fmt.Fprintf(w, "Strategy:       %d/%d correct (%.1f%%)\n", s.DecisionsCorrect, s.DecisionsTotal, s.StrategyAccuracy())
	}
	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Last played:    %s\n", snap.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	if runs <= 0 || len(s.Runs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, tui.HandInfoStyle.Render("Recent runs"))
	start := max(len(s.Runs)-runs, 0)
	for i := len(s.Runs) - 1; i >= start; i-- {
		fmt.Fprintln(w, formatRun(s.Runs[i]))
	}
}

func formatRun(r statistics.Run) string {
	status := "open"
	switch {
	case r.Completed:
		status = "busted out"
	case !r.EndedAt.IsZero():
		status = "stopped"
	}
	return fmt.Sprintf("  %s  %4d hands  $%d -> $%d (%+d, peak $%d)  %s",
		r.StartedAt.Local().Format("2006-01-02 15:04"), r.HandsPlayed,
		r.StartingBalance, r.EndingBalance, r.Net(), r.PeakBalance, status)
}
