package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/newhook/flagtrack/internal/flag"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	statusStyles = map[flag.Status]lipgloss.Style{
		flag.StatusNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		flag.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		flag.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}

	urgencyStyles = map[flag.Urgency]lipgloss.Style{
		flag.UrgencyUrgent:      errorStyle,
		flag.UrgencyPressing:    warnStyle,
		flag.UrgencyEncouraging: successStyle,
	}
)

// statusIcon is the list marker for a status.
func statusIcon(s flag.Status) string {
	switch s {
	case flag.StatusCompleted:
		return "✓"
	case flag.StatusInProgress:
		return "◐"
	default:
		return "○"
	}
}

func renderStatus(s flag.Status) string {
	return statusStyles[s].Render(s.Label())
}
