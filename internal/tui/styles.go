package tui

import "github.com/charmbracelet/lipgloss"

// truncate shortens text to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED")
	colorAccent  = lipgloss.Color("#06B6D4")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	// Title
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	// Subtitle
	styleSubtitle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Box
	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	// Selected vendor row
	styleSelected = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	// Field label
	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorMuted)
)
