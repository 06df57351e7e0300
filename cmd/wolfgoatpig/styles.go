package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E7D32")).
			Bold(true).
			Padding(0, 1)

	holeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	effectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Italic(true)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Width(8).
			Align(lipgloss.Right)

	nameCellStyle = lipgloss.NewStyle().
			Width(14)
)

// setColor forces plain output when colour is off.
func setColor(enabled bool) {
	if !enabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func pointsStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return winStyle
	case v < 0:
		return lossStyle
	default:
		return narrationStyle
	}
}
