package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the pass browser.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Bar      lipgloss.Style
	Box      lipgloss.Style
	Status   lipgloss.Style
	Border   lipgloss.Color
	Muted    lipgloss.Color
}

// DefaultTheme matches the colors used by the CLI renderers.
var DefaultTheme = Theme{
	Border: lipgloss.Color("#404040"),
	Muted:  lipgloss.Color("#737373"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#5B8DEF")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Bar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5B8DEF")),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
}
