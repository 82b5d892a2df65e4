package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin mocha.
var (
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Summary = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(0, 1)

	Prompt = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Lavender).
		Foreground(Text).
		Padding(0, 1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Label = lipgloss.NewStyle().Foreground(Subtext0).Width(12)
	Value = lipgloss.NewStyle().Foreground(Text).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Warn  = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Error = lipgloss.NewStyle().Foreground(Red)
)
