package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent    = "86"
	colorHighlight = "105"
	colorDanger    = "196"
	colorMuted     = "241"
	colorWarning   = "208"
)

var styles = struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Result   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent)),
	Section: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorMuted)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorHighlight)).
		Padding(0, 1),
	Label: lipgloss.NewStyle().
		Bold(true),
	Value: lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorAccent)),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted)).
		Italic(true),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorDanger)),
	Warning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorWarning)),
	Result: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colorAccent)).
		Padding(0, 1),
}
