package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kursadm/tomatui/internal/session"
)

type timerModel struct {
	engine *session.Engine
	width  int
	height int
}

func newTimerModel(e *session.Engine) timerModel {
	return timerModel{engine: e}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) view(focused bool) string {
	w := max(m.width-2, 20)

	var timeDisplay, phaseLabel, indicator string
	remaining := formatClock(m.engine.Remaining())

	switch m.engine.State() {
	case session.StateRunning:
		phaseLabel = m.phaseLabel()
		timeDisplay = timerRunningStyle.Width(w - 2).Render(remaining)
		indicator = m.renderProgress()
	case session.StatePaused:
		phaseLabel = m.phaseLabel()
		timeDisplay = timerPausedStyle.Width(w - 2).Render(remaining)
		indicator = warningStyle.Render("⏸  PAUSED")
	default:
		phaseLabel = mutedStyle.Render("Ready")
		timeDisplay = timerStyle.Width(w - 2).Render(remaining)
		indicator = mutedStyle.Render("space: start")
	}

	if m.engine.AlarmActive() {
		indicator = errorStyle.Bold(true).Render("♪  ALARM")
	}

	task := ""
	if name := m.engine.SelectedTaskName(); name != "" {
		task = highlightStyle.Render("▸ " + name)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Timer"),
		"",
		timeDisplay,
		phaseLabel,
		"",
		indicator,
		task,
	)

	style := panelStyle
	if focused {
		style = activePanelStyle
	}
	return style.Width(w).Height(max(m.height-2, 1)).Render(content)
}

func (m timerModel) phaseLabel() string {
	switch m.engine.Phase() {
	case session.PhaseShortBreak:
		return successStyle.Bold(true).Render("SHORT BREAK")
	case session.PhaseLongBreak:
		return highlightStyle.Bold(true).Render("LONG BREAK")
	default:
		return accentStyle.Bold(true).Render("WORK")
	}
}

// renderProgress draws one dot per pomodoro in the current cycle.
func (m timerModel) renderProgress() string {
	target := m.engine.SessionsUntilLongBreak()
	done := m.engine.PomodoroCount() % target
	if done == 0 && m.engine.PomodoroCount() > 0 && m.engine.Phase() == session.PhaseLongBreak {
		done = target
	}

	var parts []string
	for i := 0; i < target; i++ {
		if i < done {
			parts = append(parts, successStyle.Render("●"))
		} else if i == done && m.engine.Phase() == session.PhaseWork {
			parts = append(parts, accentStyle.Render("◐"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d done", m.engine.PomodoroCount()))
	return strings.Join(parts, " ") + counter
}
