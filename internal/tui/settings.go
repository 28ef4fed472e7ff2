package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kursadm/tomatui/internal/config"
)

type settingsSavedMsg struct {
	cfg config.Config
}

type settingsModel struct {
	cfg    *config.Config
	path   string
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMinutes   *string
	shortBreak    *string
	longBreak     *string
	sessionsUntil *string
	dailyGoal     *string
	musicDir      *string
	defaultVolume *string
	alarmVolume   *string
	alarmDuration *string
}

func newSettingsModel(cfg *config.Config, path string) settingsModel {
	wm, sb, lb, su := "", "", "", ""
	dg, md, dv, av, ad := "", "", "", "", ""
	return settingsModel{
		cfg:           cfg,
		path:          path,
		workMinutes:   &wm,
		shortBreak:    &sb,
		longBreak:     &lb,
		sessionsUntil: &su,
		dailyGoal:     &dg,
		musicDir:      &md,
		defaultVolume: &dv,
		alarmVolume:   &av,
		alarmDuration: &ad,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*m.workMinutes = strconv.Itoa(m.cfg.Timer.WorkMinutes)
	*m.shortBreak = strconv.Itoa(m.cfg.Timer.ShortBreakMinutes)
	*m.longBreak = strconv.Itoa(m.cfg.Timer.LongBreakMinutes)
	*m.sessionsUntil = strconv.Itoa(m.cfg.Timer.SessionsUntilLongBreak)
	*m.dailyGoal = strconv.Itoa(m.cfg.Summary.DailyGoalMinutes)
	*m.musicDir = m.cfg.Music.MusicDirectory
	*m.defaultVolume = formatVolume(m.cfg.Music.DefaultVolume)
	*m.alarmVolume = formatVolume(m.cfg.Music.AlarmVolume)
	*m.alarmDuration = strconv.Itoa(m.cfg.Music.AlarmDurationSeconds)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(m.workMinutes),
			huh.NewInput().Title("Short break (min)").Value(m.shortBreak),
			huh.NewInput().Title("Long break (min)").Value(m.longBreak),
			huh.NewInput().Title("Sessions before long break").Value(m.sessionsUntil),
			huh.NewInput().Title("Daily goal (min)").Value(m.dailyGoal),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Music directory").Value(m.musicDir),
			huh.NewInput().Title("Music volume (0-1)").Value(m.defaultVolume),
			huh.NewInput().Title("Alarm music volume (0-1)").Value(m.alarmVolume),
			huh.NewInput().Title("Alarm duration (sec)").Value(m.alarmDuration),
		).Title("Music"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if !m.formActive || m.form == nil {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.save()
	}

	return m, cmd
}

// save applies the form values to the config, persists it, and announces
// the new config so the rest of the app can pick up what applies live.
func (m settingsModel) save() tea.Cmd {
	applyInt(&m.cfg.Timer.WorkMinutes, *m.workMinutes)
	applyInt(&m.cfg.Timer.ShortBreakMinutes, *m.shortBreak)
	applyInt(&m.cfg.Timer.LongBreakMinutes, *m.longBreak)
	applyInt(&m.cfg.Timer.SessionsUntilLongBreak, *m.sessionsUntil)
	applyInt(&m.cfg.Summary.DailyGoalMinutes, *m.dailyGoal)
	if *m.musicDir != "" {
		m.cfg.Music.MusicDirectory = *m.musicDir
	}
	applyVolume(&m.cfg.Music.DefaultVolume, *m.defaultVolume)
	applyVolume(&m.cfg.Music.AlarmVolume, *m.alarmVolume)
	applyInt(&m.cfg.Music.AlarmDurationSeconds, *m.alarmDuration)

	cfg := *m.cfg
	return func() tea.Msg {
		if err := config.Save(m.path, cfg); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return settingsSavedMsg{cfg: cfg}
	}
}

func (m settingsModel) view() string {
	w := max(m.width-4, 20)
	title := titleStyle.Render("Settings")
	formView := ""
	if m.form != nil {
		formView = m.form.View()
	}
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
	)
}

func applyInt(dst *int, s string) {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		*dst = n
	}
}

func applyVolume(dst *float64, s string) {
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 1 {
		*dst = v
	}
}

func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
