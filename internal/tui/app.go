package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kursadm/tomatui/internal/config"
	"github.com/kursadm/tomatui/internal/coordinator"
	"github.com/kursadm/tomatui/internal/export"
	"github.com/kursadm/tomatui/internal/history"
	"github.com/kursadm/tomatui/internal/playback"
	"github.com/kursadm/tomatui/internal/session"
	"github.com/kursadm/tomatui/internal/todo"
)

// Tick cadence: fast while the countdown is visible, relaxed otherwise.
const (
	tickFast = 100 * time.Millisecond
	tickIdle = time.Second
)

// App is the root Bubble Tea model. It owns the engines and drives the
// coordinator once per tick; panels render shared engine state and route
// their own keys.
type App struct {
	cfg     *config.Config
	cfgPath string

	session *session.Engine
	player  *playback.Engine
	coord   *coordinator.Coordinator
	todos   *todo.List
	archive *history.Store

	width  int
	height int

	focus         focusArea
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer     timerModel
	summary   summaryModel
	todoPanel todoModel
	playerUI  playerModel
	settings  settingsModel

	help   help.Model
	status string
}

// Options carries everything the TUI needs. Archive may be nil.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Session    *session.Engine
	Playback   *playback.Engine
	Coord      *coordinator.Coordinator
	Todos      *todo.List
	Archive    *history.Store
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	return App{
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		session:   opts.Session,
		player:    opts.Playback,
		coord:     opts.Coord,
		todos:     opts.Todos,
		archive:   opts.Archive,
		focus:     focusTimer,
		timer:     newTimerModel(opts.Session),
		summary:   newSummaryModel(opts.Session, opts.Todos, opts.Archive, opts.Config.Summary.DailyGoalMinutes),
		todoPanel: newTodoModel(opts.Todos, opts.Session),
		playerUI:  newPlayerModel(opts.Playback),
		settings:  newSettingsModel(opts.Config, opts.ConfigPath),
		help:      h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.summary.loadRecent(),
		a.tickCmd(),
	)
}

func (a App) tickCmd() tea.Cmd {
	interval := tickIdle
	if a.session.State() == session.StateRunning || a.player.State() == playback.StatePlaying {
		interval = tickFast
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.layout()
		return a, nil

	case tickMsg:
		return a.handleTick(time.Time(msg))

	case tea.KeyMsg:
		return a.handleKey(msg)

	case summaryDataMsg:
		var cmd tea.Cmd
		a.summary, cmd = a.summary.update(msg)
		return a, cmd

	case settingsSavedMsg:
		return a.applySettings(msg.cfg)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	if a.settings.formActive {
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}
	if a.todoPanel.formActive {
		var cmd tea.Cmd
		a.todoPanel, cmd = a.todoPanel.update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) layout() {
	contentHeight := a.height - 3 // header + footer
	leftWidth := a.width / 2
	rightWidth := a.width - leftWidth
	topHeight := contentHeight / 2
	bottomHeight := contentHeight - topHeight

	a.timer.setSize(leftWidth, topHeight)
	a.summary.setSize(rightWidth, topHeight)
	a.todoPanel.setSize(leftWidth, bottomHeight)
	a.playerUI.setSize(rightWidth, bottomHeight)
	a.settings.setSize(a.width, contentHeight)
}

// handleTick runs one coordinator pass and reschedules. Phase changes
// persist stats and refresh the chart.
func (a App) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	prevPhase := a.session.Phase()
	prevCount := a.session.PomodoroCount()

	a.coord.Tick(now)

	cmds := []tea.Cmd{a.tickCmd()}
	if a.session.Phase() != prevPhase || a.session.PomodoroCount() != prevCount {
		a.persistSessions()
		if cmd := a.summary.loadRecent(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.status = a.phaseChangeStatus()
	}
	return a, tea.Batch(cmds...)
}

func (a App) phaseChangeStatus() string {
	switch a.session.Phase() {
	case session.PhaseShortBreak:
		return "Work done, short break"
	case session.PhaseLongBreak:
		return "Work done, long break"
	default:
		return "Break over, back to work"
	}
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays capture input first.
	if a.settings.formActive {
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}
	if a.todoPanel.formActive {
		var cmd tea.Cmd
		a.todoPanel, cmd = a.todoPanel.update(msg)
		return a, cmd
	}
	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		a.persistSessions()
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Settings):
		var cmd tea.Cmd
		a.settings, cmd = a.settings.showForm()
		return a, cmd
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.FocusNext):
		a.focus = (a.focus + 1) % 4
		return a, nil
	case key.Matches(msg, keys.FocusPrev):
		a.focus = (a.focus + 3) % 4
		return a, nil

	// Timer controls work from any panel.
	case key.Matches(msg, keys.StartPause):
		a.session.ToggleStartPause()
		return a, a.tickCmd()
	case key.Matches(msg, keys.SkipPhase):
		a.session.SkipPhase()
		a.persistSessions()
		return a, nil
	case key.Matches(msg, keys.Reset):
		a.session.Reset()
		return a, nil
	}

	// Everything else belongs to the focused panel.
	var cmd tea.Cmd
	switch a.focus {
	case focusTodo:
		a.todoPanel, cmd = a.todoPanel.update(msg)
	case focusPlayer:
		a.playerUI, cmd = a.playerUI.update(msg)
	}
	return a, cmd
}

// persistSessions pushes the engine's daily stats into the todo file and
// the archive so nothing is lost on crash or quit.
func (a App) persistSessions() {
	days := a.session.ExportDailySessions()
	if a.cfg.Todo.SaveSessionData {
		a.todos.SetSessions(days)
		a.todos.Save()
	}
	if a.archive != nil {
		a.archive.UpsertAll(days)
	}
}

func (a App) applySettings(cfg config.Config) (tea.Model, tea.Cmd) {
	a.coord.SetDefaultVolume(cfg.Music.DefaultVolume)
	a.coord.SetAlarmVolume(cfg.Music.AlarmVolume)
	a.summary.goalMinutes = cfg.Summary.DailyGoalMinutes

	dir := config.ExpandPath(cfg.Music.MusicDirectory)
	if dir != a.player.MusicDir() {
		a.player.ScanLibrary(dir)
	}

	a.status = "Settings saved. Timer durations apply on restart."
	return a, nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.settings.formActive:
		content = a.settings.view()
	case a.exportPicking:
		content = a.renderExportPicker()
	default:
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			a.timer.view(a.focus == focusTimer),
			a.summary.view(a.focus == focusSummary),
		)
		bottom := lipgloss.JoinHorizontal(lipgloss.Top,
			a.todoPanel.view(a.focus == focusTodo),
			a.playerUI.view(a.focus == focusPlayer),
		)
		content = lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range focusNames {
		style := mutedStyle.Padding(0, 1)
		if focusArea(i) == a.focus {
			style = selectedItemStyle.Padding(0, 1)
		}
		tabs = append(tabs, style.Render(name))
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tomatui")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	indicator := ""
	if a.session.AlarmActive() {
		indicator = errorStyle.Render(" ♪ alarm")
	} else if a.session.State() == session.StateRunning {
		indicator = successStyle.Render(" ● " + formatClock(a.session.Remaining()))
	}

	left := footerStyle.Render(helpView)
	right := indicator + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := max(a.width-4, 20)
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		days := a.session.ExportDailySessions()
		if a.archive != nil {
			if all, err := a.archive.All(); err == nil && len(all) > 0 {
				days = all
			}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("tomatui-export-%s.csv", dateStr))
			if err := export.ToCSV(days, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("tomatui-export-%s.json", dateStr))
			if err := export.ToJSON(days, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
