package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderError() string {
	var b strings.Builder

	if a.notFound() {
		title := styleTitle.Render("No comparison yet")
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
		b.WriteString("\n\n")

		msg := styleSubtitle.Render("No batches have been processed for " + truncate(a.state.userKey, 50))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, msg))
		b.WriteString("\n\n")

		status := styleStatusBar.Render("[Esc] Back  [Ctrl+C] Quit")
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))
		return a.centerVertically(b.String())
	}

	title := lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true).
		Render("Something went wrong")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	errMsg := "Unknown error"
	if a.state.fetchError != nil {
		errMsg = a.state.fetchError.Error()
	}

	errBox := styleBox.
		Width(min(60, a.width-4)).
		BorderForeground(colorError).
		Render(errMsg)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, errBox))
	b.WriteString("\n\n")

	var suggestions []string
	errLower := strings.ToLower(errMsg)
	if strings.Contains(errLower, "connection") || strings.Contains(errLower, "refused") || strings.Contains(errLower, "timeout") {
		suggestions = append(suggestions, "Check the server is running: vendormail-server")
		suggestions = append(suggestions, "Or pass -server to point at another address")
	}

	if len(suggestions) > 0 {
		suggBox := styleBox.
			Width(min(60, a.width-4)).
			BorderForeground(colorMuted).
			Render("Suggestions:\n" + strings.Join(suggestions, "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, suggBox))
		b.WriteString("\n\n")
	}

	status := styleStatusBar.Render("[Enter] Retry  [Esc] Back  [Ctrl+C] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}
