package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type SummaryRow struct {
	Label string
	Value string
	// Negative highlights the value as a warning, e.g. output grew.
	Negative bool
}

// RenderSummary draws rows as a two-column table under an optional title.
func RenderSummary(title string, rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, runewidth.StringWidth(row.Label))
		valueWidth = max(valueWidth, runewidth.StringWidth(row.Value))
	}

	hline := summaryRuleStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{}
	if title != "" {
		lines = append(lines, titleStyle.Render(title))
	}
	lines = append(lines, hline)

	for _, row := range rows {
		style := valueStyle
		if row.Negative {
			style = warnStyle.Bold(true)
		}
		line := fmt.Sprintf("%s | %s",
			summaryLabelStyle.Render(runewidth.FillRight(row.Label, labelWidth)),
			style.Render(runewidth.FillRight(row.Value, valueWidth)),
		)
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

var (
	valueStyle        = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	summaryLabelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	summaryRuleStyle  = lipgloss.NewStyle().Foreground(ColorDim)
)
