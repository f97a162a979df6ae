package tui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	hookStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	statusStyles = map[string]lipgloss.Style{
		"updated":          okStyle,
		"available":        okStyle,
		"up-to-date":       skippedStyle,
		"failed":           failedStyle,
		"pending":          lipgloss.NewStyle().Faint(true),
		"resolving":        activeStyle,
		"downloading":      activeStyle,
		"extracting":       activeStyle,
		"installing":       activeStyle,
		"persisting":       activeStyle,
		"pre-hook":         hookStyle,
		"post-unpack-hook": hookStyle,
		"post-hook":        hookStyle,
	}

	finalStatuses = map[string]bool{
		"updated":    true,
		"up-to-date": true,
		"failed":     true,
		"available":  true,
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// IsFinalStatus reports whether a row with this status needs no more updates.
func IsFinalStatus(status string) bool {
	return finalStatuses[status]
}
