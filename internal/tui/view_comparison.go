package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderComparison() string {
	agg := a.state.comparison
	if agg == nil {
		return a.renderLookup()
	}

	var b strings.Builder

	title := styleTitle.Render(agg.UserEmailAddress)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n")

	count := styleSubtitle.Render(fmt.Sprintf("%d vendor(s)", len(agg.Vendors)))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, count))
	b.WriteString("\n\n")

	boxWidth := min(76, a.width-4)

	// Vendor list with the selected one expanded
	var rows []string
	for i, v := range agg.Vendors {
		marker := "  "
		name := truncate(v.VendorEmail, 50)
		line := fmt.Sprintf("%s%s  %s", marker, name,
			styleLabel.Render(v.AnalyzedAt.Format("2006-01-02 15:04")))
		if i == a.state.selectedVendor {
			line = styleSelected.Render("> " + name + "  " + v.AnalyzedAt.Format("2006-01-02 15:04"))
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, styleSubtitle.Render("  (no vendors yet)"))
	}

	listBox := styleBox.Width(boxWidth).Render(strings.Join(rows, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	// Detail of the selected vendor
	if a.state.selectedVendor < len(agg.Vendors) {
		v := agg.Vendors[a.state.selectedVendor]
		fields := []struct{ label, value string }{
			{"金額", v.Analysis.Price},
			{"条件", v.Analysis.Conditions},
			{"対応年齢", v.Analysis.AgeRange},
			{"付加価値", v.Analysis.AddedValue},
			{"次のアクション", v.Analysis.NextAction},
		}
		var detail []string
		for _, f := range fields {
			detail = append(detail, styleLabel.Render(f.label+": ")+truncate(f.value, 60))
		}
		detailBox := styleBox.Width(boxWidth).
			BorderForeground(colorAccent).
			Render(strings.Join(detail, "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, detailBox))
		b.WriteString("\n\n")
	}

	// Narrative
	narrativeTitle := styleLabel.Render("比較ナラティブ")
	narrativeBox := styleBox.Width(boxWidth).
		Render(narrativeTitle + "\n" + wrap(agg.ComparisonNarrative, boxWidth-4))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, narrativeBox))
	b.WriteString("\n\n")

	status := styleStatusBar.Render("[↑/↓] Select vendor  [Esc] Back  [Ctrl+C] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return b.String()
}

// wrap breaks text at width runes per line. Narratives come back as one long
// paragraph, often without spaces, so this wraps on rune count.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	count := 0
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			count = 0
			continue
		}
		if count >= width {
			b.WriteRune('\n')
			count = 0
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
