// Package tui renders live installation progress with Bubble Tea.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sqlsweden/sqlZetup/internal/model"
)

// StepUpdateMsg carries a step transition (running or terminal) from the
// pipeline notifier into the TUI.
type StepUpdateMsg struct {
	Result model.StepResult
}

// DoneMsg signals that the pipeline has finished, successfully or not.
type DoneMsg struct {
	Summary model.RunSummary
}

type tickMsg struct{}

// Model contains the Bubble Tea state for the installation run.
type Model struct {
	instance  string
	steps     map[string]model.StepResult
	order     []string
	total     int
	completed int
	finished  bool
	cancelled bool
	summary   model.RunSummary
}

// NewModel builds a model pre-seeded with the planned step order so pending
// steps are visible before they run.
func NewModel(instance string, stepIDs []string) Model {
	m := Model{
		instance: instance,
		steps:    make(map[string]model.StepResult, len(stepIDs)),
	}
	for _, id := range stepIDs {
		if _, exists := m.steps[id]; exists {
			continue
		}
		m.steps[id] = model.StepResult{StepID: id, Status: model.StatusPending}
		m.order = append(m.order, id)
		m.total++
	}
	return m
}

// Init starts the Bubble Tea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// CompletedSteps returns the number of steps in a terminal state.
func (m Model) CompletedSteps() int {
	return m.completed
}

// IsFinished reports whether the run is over.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the operator interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

func (m *Model) ensureStep(id string) {
	if id == "" {
		return
	}
	if _, exists := m.steps[id]; !exists {
		m.steps[id] = model.StepResult{StepID: id, Status: model.StatusPending}
		m.order = append(m.order, id)
		m.total++
	}
}

func isTerminal(status string) bool {
	switch status {
	case model.StatusSuccess, model.StatusSkipped, model.StatusWarning, model.StatusFailed:
		return true
	}
	return false
}
