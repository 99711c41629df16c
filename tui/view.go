package tui

import (
	"strings"

	"clipbot/pipeline"
)

const maxLogLines = 10

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 clipbot"))
	b.WriteString("\n\n")

	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if m.Status.Topic != "" {
		b.WriteString(InfoStyle.Render("🎯 " + m.Status.Topic))
		b.WriteString("\n")
	}
	if m.Status.Title != "" && m.Status.State != pipeline.StateComplete {
		b.WriteString(InfoStyle.Render("📺 " + m.Status.Title))
		b.WriteString("\n")
	}
	if m.Curation != nil {
		b.WriteString(WarnStyle.Render(m.formatCuration()))
		b.WriteString("\n")
		b.WriteString("   " + curationBar(m.Curation.Approved, m.Curation.Rejected, m.Curation.Total))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	logs := m.Status.Logs
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}
	if len(logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, entry := range logs {
			b.WriteString(InfoStyle.Render("   [" + entry.Timestamp.Format("15:04:05") + "] " + entry.Message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Status.State == pipeline.StateComplete {
		b.WriteString(BoxStyle.Render(m.formatResult()))
		b.WriteString("\n\n")
	}

	if m.Err != nil && m.Connected {
		b.WriteString(ErrorStyle.Render("⚠️ " + m.Err.Error()))
		b.WriteString("\n")
	} else if m.Notice != "" {
		b.WriteString(StatusStyle.Render(m.Notice))
		b.WriteString("\n")
	}

	switch {
	case m.Status.State == pipeline.StateCurating:
		b.WriteString(InfoStyle.Render(TextFooterCurating))
	case m.Status.State.Busy():
		b.WriteString(InfoStyle.Render(TextFooterRunning))
	default:
		b.WriteString(InfoStyle.Render(TextFooterIdle))
	}

	return b.String()
}
