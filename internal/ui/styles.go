package ui

import "github.com/charmbracelet/lipgloss"

// Color palette, a restrained two-accent scheme.
const (
	colorAccent = "110" // soft blue for headers and progress
	colorGray   = "245" // secondary text
	colorYellow = "220" // warnings
)

// Styles holds the render styles for CLI output.
type Styles struct {
	Header   lipgloss.Style
	Progress lipgloss.Style
	Warning  lipgloss.Style
	Dim      lipgloss.Style
}

// GetStyles returns styled or plain styles.
func GetStyles(styled bool) Styles {
	if !styled {
		return Styles{
			Header:   lipgloss.NewStyle(),
			Progress: lipgloss.NewStyle(),
			Warning:  lipgloss.NewStyle(),
			Dim:      lipgloss.NewStyle(),
		}
	}
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Progress: lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
	}
}
