package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func pollStatus(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

func pollCuration(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		summary, err := client.GetCuration()
		return CurationUpdateMsg{Summary: summary, Err: err}
	}
}

func startRun(client *APIClient, profile string) tea.Cmd {
	return func() tea.Msg {
		err := client.Start(profile)
		return ActionMsg{Text: "Run started (" + profileLabel(profile) + ")", Err: err}
	}
}

func approveCuration(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		return ActionMsg{Text: "Curation approved", Err: client.ApproveCuration()}
	}
}

func cancelCuration(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		return ActionMsg{Text: "Curation cancelled", Err: client.CancelCuration()}
	}
}

// tickCmd ticks every 500ms for polling.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func profileLabel(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
