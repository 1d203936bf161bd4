package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sqlsweden/sqlZetup/internal/model"
)

// View renders the current state of the run.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("sqlZetup • %s", m.instance)))
	sections = append(sections, sectionStyle.Render("Progress"), m.progressView())

	if len(m.order) > 0 {
		sections = append(sections, sectionStyle.Render("Steps"), m.stepsView())
	}

	if m.finished {
		sections = append(sections, sectionStyle.Render("Result"), m.resultView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) progressView() string {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	ratio := 0.0
	if m.total > 0 {
		ratio = math.Min(1.0, float64(m.completed)/float64(m.total))
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", m.completed, m.total))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", bar.ViewAs(ratio))
}

func (m Model) stepsView() string {
	var lines []string
	for _, id := range m.order {
		res := m.steps[id]
		line := fmt.Sprintf(" %s %s", StatusIcon(res.Status), id)
		if strings.TrimSpace(res.Message) != "" {
			line = fmt.Sprintf("%s: %s", line, res.Message)
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) resultView() string {
	switch {
	case m.cancelled:
		return failureStyle.Render("cancelled")
	case m.summary.Failed():
		return failureStyle.Render("failed")
	case len(m.summary.Warnings()) > 0:
		return warningStyle.Render("finished with warnings")
	default:
		return successStyle.Render("finished")
	}
}

// StatusIcon returns the glyph representing a step status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render("⏳")
	case model.StatusWarning:
		return warningStyle.Render("!")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusSkipped:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
