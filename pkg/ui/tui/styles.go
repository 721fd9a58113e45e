package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Threads-ish monochrome palette with a few signal colors
	ink        = lipgloss.Color("#F5F5F5")
	slate      = lipgloss.Color("#2A2A2A")
	mutedGrey  = lipgloss.Color("#8A8A8A")
	signalOK   = lipgloss.Color("#3DDC84")
	signalBad  = lipgloss.Color("#FF4D4F")
	signalWarn = lipgloss.Color("#FFB020")
	accent     = lipgloss.Color("#7A5CFF")

	headerStyle = lipgloss.NewStyle().
			Foreground(ink).
			Background(accent).
			Bold(true).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(slate).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedGrey)

	valueStyle = lipgloss.NewStyle().
			Foreground(ink).
			Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(signalOK)
	errorStyle   = lipgloss.NewStyle().Foreground(signalBad)
	warningStyle = lipgloss.NewStyle().Foreground(signalWarn)
	dimStyle     = lipgloss.NewStyle().Foreground(mutedGrey)

	logTimestampStyle = lipgloss.NewStyle().Foreground(slate)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGrey).
			Padding(1, 0, 0, 1)
)

// levelColor picks the color for a log level
func levelColor(level string) lipgloss.Color {
	switch level {
	case "ERROR", "FATAL":
		return signalBad
	case "WARN":
		return signalWarn
	case "DEBUG":
		return mutedGrey
	default:
		return ink
	}
}

// stateStyle picks the style for a post row
func stateStyle(s PostState) lipgloss.Style {
	switch s {
	case PostDropped:
		return errorStyle
	case PostPartial:
		return warningStyle
	default:
		return successStyle
	}
}
