package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	banner     lipgloss.Style
	name       lipgloss.Style
	throughput lipgloss.Style
	runs       lipgloss.Style
	regression lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		banner: r.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")). // Brand Color
			Bold(true),
		name: r.NewStyle().
			Foreground(lipgloss.Color("252")),
		throughput: r.NewStyle().
			Foreground(lipgloss.Color("86")),
		runs: r.NewStyle().
			Foreground(lipgloss.Color("241")),
		regression: r.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true),
	}
}
