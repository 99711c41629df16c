// Package tui is a terminal monitor for a running clipbot API.
package tui

import (
	"fmt"

	"clipbot/curation"
	"clipbot/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

// Model is the TUI state, synced from the API by polling.
type Model struct {
	Client *APIClient

	Status    pipeline.Status
	Curation  *curation.Summary
	Notice    string
	Err       error
	Connected bool
}

func NewModel(apiURL string) Model {
	return Model{
		Client: NewAPIClient(apiURL),
		Status: pipeline.Status{State: pipeline.StateIdle},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		pollStatus(m.Client),
		tickCmd(),
	)
}

func (m Model) getStateText() string {
	if !m.Connected {
		return ErrorStyle.Render("❌ Not connected to clipbot API")
	}

	switch m.Status.State {
	case pipeline.StateIdle:
		return HighlightStyle.Render("👋 Ready to start!")
	case pipeline.StatePicking:
		return StatusStyle.Render("🎯 Picking topic...")
	case pipeline.StateScripting:
		return StatusStyle.Render("📝 Writing script...")
	case pipeline.StateNarrating:
		return StatusStyle.Render("🎙️ Synthesizing narration...")
	case pipeline.StateSegmenting:
		return StatusStyle.Render("✂️ Segmenting script...")
	case pipeline.StateSourcing:
		return StatusStyle.Render(fmt.Sprintf("🔍 Finding media for %d segments...", m.Status.Segments))
	case pipeline.StateCurating:
		return StatusStyle.Render("📱 Waiting for curation...")
	case pipeline.StateRendering:
		return StatusStyle.Render("🎬 Rendering video...")
	case pipeline.StateUploading:
		return StatusStyle.Render("📤 Uploading to YouTube...")
	case pipeline.StateComplete:
		return HighlightStyle.Render("✅ COMPLETE")
	case pipeline.StateCancelled:
		return WarnStyle.Render("🚫 Cancelled")
	case pipeline.StateError:
		errMsg := m.Status.Error
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		return ErrorStyle.Render("❌ Error: " + errMsg)
	default:
		return string(m.Status.State)
	}
}

// formatResult formats the finished run for display.
func (m Model) formatResult() string {
	s := m.Status
	out := HighlightStyle.Render("Run Result") + "\n\n"
	out += fmt.Sprintf("Title: %s\n", s.Title)
	out += fmt.Sprintf("Topic: %s\n", s.Topic)
	out += fmt.Sprintf("Profile: %s\n", s.Profile)
	if s.VideoURL != "" {
		out += fmt.Sprintf("URL: %s\n", StatusStyle.Render(s.VideoURL))
	} else {
		out += InfoStyle.Render("Upload skipped") + "\n"
	}
	return out
}

func (m Model) formatCuration() string {
	c := m.Curation
	return fmt.Sprintf("📱 Curation %s: %d/%d approved, %d rejected, segment %d",
		c.Status, c.Approved, c.Total, c.Rejected, min(c.Current+1, c.Total))
}
