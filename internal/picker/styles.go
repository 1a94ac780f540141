package picker

import "github.com/charmbracelet/lipgloss"

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedText     = lipgloss.NewStyle().Foreground(mutedColor)
	toastStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
			Background(lipgloss.AdaptiveColor{Light: "250", Dark: "252"})
)

// SearchBorder returns a lipgloss style with an accent-colored rounded border.
func SearchBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor)
}

// DialogBorder returns a lipgloss style for the access dialog box.
func DialogBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "208", Dark: "208"}).
		Padding(0, 1)
}
