package tui

import "github.com/charmbracelet/lipgloss"

const logo = `
 ██╗   ██╗███╗   ███╗ █████╗ ██╗██╗
 ██║   ██║████╗ ████║██╔══██╗██║██║
 ██║   ██║██╔████╔██║███████║██║██║
 ╚██╗ ██╔╝██║╚██╔╝██║██╔══██║██║██║
  ╚████╔╝ ██║ ╚═╝ ██║██║  ██║██║███████╗
   ╚═══╝  ╚═╝     ╚═╝╚═╝  ╚═╝╚═╝╚══════╝
`

func (a *App) renderLookup() string {
	logoRendered := styleTitle.Render(logo)

	subtitle := styleSubtitle.Render("Vendor Comparison Viewer")

	prompt := styleSubtitle.Render("\nEnter a user email to load their comparison")

	inputBox := styleBox.Render(a.state.input.View())

	statusBar := styleStatusBar.Render("[Enter] Lookup  [Esc] Quit")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		logoRendered,
		subtitle,
		prompt,
		"",
		inputBox,
	)

	mainArea := lipgloss.Place(
		a.width,
		a.height-2,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)

	statusLine := lipgloss.PlaceHorizontal(a.width, lipgloss.Center, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, mainArea, statusLine)
}
