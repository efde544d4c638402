package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/internal/tui"
)

// DrillCmd quizzes the player on random positions.
type DrillCmd struct {
	Count    int      `kong:"default='10',help='Number of questions'"`
	Category []string `kong:"help='Limit to categories: hard, soft, pair, blackjack (repeatable)'"`
	Seed     *int64   `kong:"help='Deterministic RNG seed (optional)'"`
}

func (c *DrillCmd) Run() error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	var categories []strategy.Category
	for _, v := range c.Category {
		cat, err := strategy.ParseCategory(v)
		if err != nil {
			return err
		}
		categories = append(categories, cat)
	}

	seed, _ := randutil.Seed(c.Seed)
	drills := strategy.GenerateDrills(randutil.New(seed), c.Count, categories...)
	_, err := runDrills(os.Stdin, os.Stdout, drills)
	return err
}

// runDrills asks each question on out and reads answers from in. It stops
// early on "quit" or end of input and returns the number answered correctly.
func runDrills(in io.Reader, out io.Writer, drills []strategy.Drill) (int, error) {
	scanner := bufio.NewScanner(in)
	correct, asked := 0, 0

	fmt.Fprintln(out, tui.HeaderStyle.Render("Basic strategy drill"))
	fmt.Fprintln(out, "Answer with hit, stand, double, split or surrender (h s d p r). Type quit to stop.")

loop:
	for i, d := range drills {
		fmt.Fprintf(out, "\n%d/%d  %s  %s vs %s\n", i+1, len(drills), d.Category,
			tui.FormatHand(d.Hand), tui.FormatCards([]deck.Card{d.Upcard}))

		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				break loop
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "quit" || input == "q" {
				break loop
			}
			action, err := game.ParseAction(input)
			if err != nil {
				fmt.Fprintln(out, tui.ErrorStyle.Render(err.Error()))
				continue
			}

			asked++
			if d.Check(action) {
				correct++
				fmt.Fprintln(out, tui.SuccessStyle.Render("Correct: "+d.Correct.Label()))
			} else {
				fmt.Fprintln(out, tui.ErrorStyle.Render(fmt.Sprintf("Wrong: %s, the play is %s", action.Label(), d.Correct.Label())))
			}
			fmt.Fprintln(out, tui.InfoStyle.Render("  "+d.Explanation))
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return correct, err
	}

	if asked > 0 {
		fmt.Fprintf(out, "\nScore: %d/%d (%.0f%%)\n", correct, asked, float64(correct)/float64(asked)*100)
	}
	return correct, nil
}
