package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#818CF8")
	success     = lipgloss.Color("#6EE7B7")
	destructive = lipgloss.Color("#F87171")
	muted       = lipgloss.Color("#94A3B8")
)

// Styles groups the lipgloss styles used by the editor view
type Styles struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Panel    lipgloss.Style
	Analysis lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the dark-terminal palette
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Label:    lipgloss.NewStyle().Foreground(muted),
		Focused:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Analysis: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(success).Foreground(success).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(destructive),
		Status:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		Help:     lipgloss.NewStyle().Foreground(muted),
	}
}
