package tui

import (
	"clipbot/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		cmds := []tea.Cmd{pollStatus(m.Client), tickCmd()}
		if m.Status.State == pipeline.StateCurating {
			cmds = append(cmds, pollCuration(m.Client))
		}
		return m, tea.Batch(cmds...)
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case CurationUpdateMsg:
		if msg.Err == nil {
			m.Curation = msg.Summary
		}
		return m, nil
	case ActionMsg:
		m.Err = msg.Err
		if msg.Err == nil {
			m.Notice = msg.Text
		}
		return m, pollStatus(m.Client)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r", "R":
		if !m.Status.State.Busy() {
			return m, startRun(m.Client, "")
		}
	case "s", "S":
		if !m.Status.State.Busy() {
			return m, startRun(m.Client, "short")
		}
	case "a", "A":
		if m.Status.State == pipeline.StateCurating {
			return m, approveCuration(m.Client)
		}
	case "c", "C":
		if m.Status.State == pipeline.StateCurating {
			return m, cancelCuration(m.Client)
		}
	}
	return m, nil
}

func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.Status = *msg.Status
	if m.Status.State != pipeline.StateCurating {
		m.Curation = nil
	}
	return m, nil
}
