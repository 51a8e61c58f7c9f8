package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorHigh    = lipgloss.Color("#E74C3C")
	colorMedium  = lipgloss.Color("#F39C12")
	colorLow     = lipgloss.Color("#4A90E2")
	colorOK      = lipgloss.Color("#2ECC71")
	colorMuted   = lipgloss.Color("#666666")
	colorOdd     = lipgloss.Color("#C678DD")
	colorEven    = lipgloss.Color("#2EC4B6")
	colorMorning = lipgloss.Color("#F7DC6F")
	colorEvening = lipgloss.Color("#9B59B6")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BCD4")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorOK)
	warningStyle = lipgloss.NewStyle().Foreground(colorMedium)
	errorStyle   = lipgloss.NewStyle().Foreground(colorHigh)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

// newTable returns a rounded table with the shared header style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func priorityColor(p int) lipgloss.Color {
	switch {
	case p >= 8:
		return colorHigh
	case p >= 5:
		return colorMedium
	}
	return colorLow
}

// priorityBar draws p as a ten-cell bar followed by the number.
func priorityBar(p int) string {
	n := min(p, 10)
	filled := lipgloss.NewStyle().Foreground(priorityColor(p)).Render(strings.Repeat("█", n))
	empty := mutedStyle.Render(strings.Repeat("░", 10-n))
	return filled + empty + " (" + strconv.Itoa(p) + ")"
}
