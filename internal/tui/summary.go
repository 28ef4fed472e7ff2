package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kursadm/tomatui/internal/history"
	"github.com/kursadm/tomatui/internal/session"
	"github.com/kursadm/tomatui/internal/todo"
)

type summaryModel struct {
	engine  *session.Engine
	todos   *todo.List
	archive *history.Store
	width   int
	height  int

	goalMinutes int
	recent      []session.DailySession
	chart       barchart.Model
}

func newSummaryModel(e *session.Engine, t *todo.List, h *history.Store, goalMinutes int) summaryModel {
	return summaryModel{
		engine:      e,
		todos:       t,
		archive:     h,
		goalMinutes: goalMinutes,
		chart:       barchart.New(30, 6),
	}
}

func (m *summaryModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type summaryDataMsg struct {
	recent []session.DailySession
}

// loadRecent fetches the last week from the archive. The archive may be
// nil when the database failed to open; the chart simply stays empty.
func (m summaryModel) loadRecent() tea.Cmd {
	if m.archive == nil {
		return nil
	}
	return func() tea.Msg {
		recent, _ := m.archive.RecentDays(time.Now(), 7)
		return summaryDataMsg{recent: recent}
	}
}

func (m summaryModel) update(msg tea.Msg) (summaryModel, tea.Cmd) {
	if msg, ok := msg.(summaryDataMsg); ok {
		m.recent = msg.recent
		m.buildChart()
	}
	return m, nil
}

func (m *summaryModel) buildChart() {
	chartWidth := max(m.width-6, 20)
	chartHeight := 6
	if m.height > 14 {
		chartHeight = m.height - 10
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range m.recent {
		label := d.Date
		if t, err := time.Parse(session.DateLayout, d.Date); err == nil {
			label = t.Format("Mon")
		}
		style := lipgloss.NewStyle().Foreground(colorSecondary)
		if d.WorkMinutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: d.Date, Value: float64(d.WorkMinutes), Style: style},
			},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m summaryModel) view(focused bool) string {
	w := max(m.width-2, 20)

	today := m.engine.TodayStats()
	focusedToday := m.todos.TodayMinutes()

	var rows []string
	rows = append(rows, titleStyle.Render("Summary"))
	rows = append(rows, "")
	rows = append(rows, m.renderGoal(today.WorkMinutes, w-4))
	rows = append(rows, fmt.Sprintf("  Sessions    %s", highlightStyle.Render(fmt.Sprintf("%d work / %d break", today.WorkSessions, today.BreakSessions))))
	rows = append(rows, fmt.Sprintf("  On tasks    %s", highlightStyle.Render(formatMinutes(focusedToday))))
	rows = append(rows, fmt.Sprintf("  Yesterday   %s", mutedStyle.Render(formatMinutes(m.todos.YesterdayMinutes()))))
	rows = append(rows, fmt.Sprintf("  Streak      %s", successStyle.Render(fmt.Sprintf("%d days", m.todos.StreakDays()))))
	rows = append(rows, fmt.Sprintf("  Completed   %s", mutedStyle.Render(fmt.Sprintf("%d tasks", m.todos.CompletedCount()))))

	if len(m.recent) > 0 {
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("  Last 7 days (work minutes)"))
		rows = append(rows, m.chart.View())
	}

	style := panelStyle
	if focused {
		style = activePanelStyle
	}
	return style.Width(w).Height(max(m.height-2, 1)).Render(strings.Join(rows, "\n"))
}

// renderGoal draws today's work minutes against the daily goal.
func (m summaryModel) renderGoal(workMinutes, w int) string {
	label := fmt.Sprintf("  Today       %s / %s",
		highlightStyle.Render(formatMinutes(workMinutes)),
		mutedStyle.Render(formatMinutes(m.goalMinutes)),
	)
	if m.goalMinutes <= 0 {
		return label
	}

	barWidth := min(max(w-4, 10), 30)
	filled := workMinutes * barWidth / m.goalMinutes
	if filled > barWidth {
		filled = barWidth
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))
	return label + "\n  " + bar
}
