package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleName   = lipgloss.NewStyle().Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderError renders an error line with a red marker.
func renderError(msg string) string {
	return styleError.Render("✗") + " " + msg
}

// renderTag renders a dim bracketed tag like [paginated].
func renderTag(tag string) string {
	return styleMuted.Render("[" + tag + "]")
}
