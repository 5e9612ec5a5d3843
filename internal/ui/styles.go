package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/zalgoplayer/internal/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"})

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#888888"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6E6E"})

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
)

// barStyle applies the user's style binding to the glyph bar. Empty colors
// leave the terminal default.
func barStyle(s config.StyleConfig) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(s.Bold).PaddingTop(max(s.PaddingTop, 0))
	if s.Foreground != "" {
		st = st.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		st = st.Background(lipgloss.Color(s.Background))
	}
	return st
}
