package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// ChartCmd prints basic strategy as a chart, CSV or analysis report.
type ChartCmd struct {
	Category string `kong:"default='',help='Only show one category: hard, soft, pair or blackjack'"`
	CSV      bool   `kong:"name='csv',xor='format',help='Write every scenario as CSV'"`
	Report   bool   `kong:"xor='format',help='Write the strategy analysis report as Markdown'"`
}

func (c *ChartCmd) Run() error {
	categories := strategy.Categories
	if c.Category != "" {
		cat, err := strategy.ParseCategory(c.Category)
		if err != nil {
			return err
		}
		categories = []strategy.Category{cat}
	}

	switch {
	case c.CSV:
		return strategy.WriteCSV(os.Stdout, scenariosFor(categories))
	case c.Report:
		_, err := io.WriteString(os.Stdout, strategy.Analyze(scenariosFor(categories)).Markdown())
		return err
	}

	for _, cat := range categories {
		if cat == strategy.CategoryBlackjack {
			continue
		}
		fmt.Println(renderChart(cat))
	}
	fmt.Println(chartLegend())
	return nil
}

func scenariosFor(categories []strategy.Category) []strategy.Scenario {
	want := map[strategy.Category]bool{}
	for _, c := range categories {
		want[c] = true
	}
	var out []strategy.Scenario
	for _, sc := range strategy.GenerateAllScenarios() {
		if want[sc.Category] {
			out = append(out, sc)
		}
	}
	return out
}

var actionCodes = map[game.Action]string{
	game.Hit:        "H",
	game.Stand:      "S",
	game.DoubleDown: "D",
	game.Split:      "P",
	game.Surrender:  "R",
	game.Insurance:  "I",
}

var actionColors = map[game.Action]lipgloss.Color{
	game.Hit:        lipgloss.Color("#FF6B6B"),
	game.Stand:      lipgloss.Color("#96CEB4"),
	game.DoubleDown: lipgloss.Color("#FFD700"),
	game.Split:      lipgloss.Color("#45B7D1"),
	game.Surrender:  lipgloss.Color("#FFEAA7"),
}

func renderChart(cat strategy.Category) string {
	rows := strategy.Chart(cat)

	headers := []string{string(cat)}
	for _, r := range strategy.DealerUpcards {
		headers = append(headers, r.String())
	}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{row.Label}
		for _, a := range row.Actions {
			line = append(line, actionCodes[a])
		}
		cells = append(cells, line)
	}

	base := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return base.Bold(true)
			}
			if col == 0 || row >= len(rows) || col-1 >= len(rows[row].Actions) {
				return base
			}
			if color, ok := actionColors[rows[row].Actions[col-1]]; ok {
				return base.Foreground(color)
			}
			return base
		}).
		String()
}

func chartLegend() string {
	return "H = hit, S = stand, D = double down, P = split, R = surrender"
}
