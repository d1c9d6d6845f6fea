package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderLoading() string {
	var b strings.Builder

	spinner := lipgloss.NewStyle().
		Foreground(colorAccent).
		Render(spinnerFrames[a.state.frame])

	msg := spinner + "  Loading comparison for " + truncate(a.state.userKey, 50)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, msg))
	b.WriteString("\n\n")

	status := styleStatusBar.Render("[Ctrl+C] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}
