package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
const (
	colorPrimary   = "#FF4E45"
	colorSuccess   = "#04B575"
	colorWarn      = "#F5A623"
	colorError     = "#E01E1E"
	colorInfo      = "#8A8A8A"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#CC2E26"
)

var (
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorPrimary)).
		MarginTop(1).
		MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorSuccess))

	WarnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorWarn))

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorInfo))

	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(1, 2)

	HighlightStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorHighlight)).
		Background(lipgloss.Color(colorPrimary)).
		Padding(0, 1)
)

// curationBar draws one cell per segment: approved, rejected, then pending.
func curationBar(approved, rejected, total int) string {
	if total <= 0 {
		return ""
	}
	pending := max(total-approved-rejected, 0)
	return StatusStyle.Render(strings.Repeat("█", approved)) +
		ErrorStyle.Render(strings.Repeat("█", rejected)) +
		InfoStyle.Render(strings.Repeat("░", pending))
}
