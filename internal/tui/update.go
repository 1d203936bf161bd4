package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubble Tea messages and advances the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case StepUpdateMsg:
		id := msg.Result.StepID
		if id == "" {
			return m, nil
		}
		m.ensureStep(id)
		previous := m.steps[id]
		m.steps[id] = msg.Result
		if isTerminal(msg.Result.Status) && !isTerminal(previous.Status) {
			m.completed++
		}
		return m, nil
	case DoneMsg:
		m.summary = msg.Summary
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
