package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kursadm/tomatui/internal/config"
	"github.com/kursadm/tomatui/internal/coordinator"
	"github.com/kursadm/tomatui/internal/history"
	"github.com/kursadm/tomatui/internal/playback"
	"github.com/kursadm/tomatui/internal/session"
	"github.com/kursadm/tomatui/internal/todo"
)

// stubSink satisfies playback.Sink without touching the audio device.
type stubSink struct {
	drained bool
	volume  float64
}

func (s *stubSink) Prepare() { s.drained = false }

func (s *stubSink) Load(path string) error { return nil }

func (s *stubSink) Pause() {}

func (s *stubSink) Resume() {}

func (s *stubSink) Stop() { s.drained = true }

func (s *stubSink) SetVolume(v float64) { s.volume = v }

func (s *stubSink) Drained() bool { return s.drained }

func newTestApp(t *testing.T) App {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Todo.SavePath = filepath.Join(dir, "todos.md")
	cfg.Music.MusicDirectory = filepath.Join(dir, "music")

	musicDir := filepath.Join(dir, "music")
	os.MkdirAll(musicDir, 0o755)
	os.WriteFile(filepath.Join(musicDir, "track-01.mp3"), []byte("x"), 0o644)

	sess := session.NewEngine(session.Options{
		WorkMinutes:            25,
		ShortBreakMinutes:      5,
		LongBreakMinutes:       15,
		SessionsUntilLongBreak: 4,
	})

	player := playback.NewEngine(playback.Options{
		MusicDir:      musicDir,
		DefaultVolume: cfg.Music.DefaultVolume,
		OpenSink: func() (playback.Sink, error) {
			return &stubSink{drained: true}, nil
		},
	})

	todos := todo.NewList(cfg.Todo.SavePath, time.Now)
	if err := todos.Load(); err != nil {
		t.Fatal(err)
	}

	archive, err := history.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { archive.Close() })

	coord := coordinator.New(sess, player, todos, cfg.Music.AlarmVolume, cfg.Music.DefaultVolume)

	return NewApp(Options{
		Config:     &cfg,
		ConfigPath: filepath.Join(dir, "config.yaml"),
		Session:    sess,
		Playback:   player,
		Coord:      coord,
		Todos:      todos,
		Archive:    archive,
	})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	a := newTestApp(t)
	if a.focus != focusTimer {
		t.Fatal("initial focus should be the timer panel")
	}
	if a.session.State() != session.StateStopped {
		t.Fatal("session should start stopped")
	}
}

func TestAppLoadingState(t *testing.T) {
	a := newTestApp(t)
	if a.View() != "Loading..." {
		t.Fatal("zero-width app should render loading state")
	}
}

func TestAppRenderAfterResize(t *testing.T) {
	a := newTestApp(t)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = model.(App)

	view := a.View()
	for _, want := range []string{"tomatui", "Timer", "Summary", "Todo", "Player"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestAppFocusCycling(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a = model.(App)
	if a.focus != focusSummary {
		t.Fatalf("expected summary focus, got %v", a.focus)
	}

	for i := 0; i < 3; i++ {
		model, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
		a = model.(App)
	}
	if a.focus != focusTimer {
		t.Fatal("focus should wrap back to the timer panel")
	}

	model, _ = a.Update(keyRune('h'))
	a = model.(App)
	if a.focus != focusPlayer {
		t.Fatalf("expected player focus after reverse cycle, got %v", a.focus)
	}
}

func TestAppSpaceTogglesTimer(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(tea.KeyMsg{Type: tea.KeySpace})
	a = model.(App)
	if a.session.State() != session.StateRunning {
		t.Fatal("space should start the timer")
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeySpace})
	a = model.(App)
	if a.session.State() != session.StatePaused {
		t.Fatal("space should pause the running timer")
	}
}

func TestAppSkipPhase(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(keyRune('n'))
	a = model.(App)
	if a.session.Phase() != session.PhaseShortBreak {
		t.Fatalf("skip should move to break, got %v", a.session.Phase())
	}
}

func TestAppTickReschedules(t *testing.T) {
	a := newTestApp(t)

	model, cmd := a.Update(tickMsg(time.Now()))
	a = model.(App)
	if cmd == nil {
		t.Fatal("tick must schedule a follow-up")
	}
}

func TestAppTickPersistsOnPhaseChange(t *testing.T) {
	a := newTestApp(t)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = model.(App)

	a.session.ToggleStartPause()
	// Drive the countdown past the work phase.
	model, _ = a.Update(tickMsg(time.Now().Add(26 * time.Minute)))
	a = model.(App)

	if a.session.Phase() != session.PhaseShortBreak {
		t.Fatalf("expected break after full work phase, got %v", a.session.Phase())
	}
	d, err := a.archive.Get(time.Now().Format(session.DateLayout))
	if err != nil {
		t.Fatal(err)
	}
	if d == nil || d.WorkSessions != 1 {
		t.Fatalf("phase change should archive today's stats, got %+v", d)
	}

	data, err := os.ReadFile(a.cfg.Todo.SavePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "## Daily Sessions") {
		t.Fatal("phase change should persist session blocks to the todo file")
	}
}

func TestAppHelpToggle(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(keyRune('?'))
	a = model.(App)
	if !a.showHelp {
		t.Fatal("? should open full help")
	}

	model, _ = a.Update(keyRune('?'))
	a = model.(App)
	if a.showHelp {
		t.Fatal("? should close full help")
	}
}

func TestAppStatusMessage(t *testing.T) {
	a := newTestApp(t)
	model, _ := a.Update(statusMsg{text: "hello"})
	a = model.(App)
	if a.status != "hello" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestAppExportPicker(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(keyRune('e'))
	a = model.(App)
	if !a.exportPicking {
		t.Fatal("e should open the export picker")
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = model.(App)
	if a.exportPicking {
		t.Fatal("esc should close the export picker")
	}
}

func TestAppSettingsSavedAppliesVolumes(t *testing.T) {
	a := newTestApp(t)

	cfg := *a.cfg
	cfg.Music.DefaultVolume = 0.5
	cfg.Summary.DailyGoalMinutes = 240

	model, _ := a.Update(settingsSavedMsg{cfg: cfg})
	a = model.(App)
	if a.summary.goalMinutes != 240 {
		t.Fatalf("goal not applied: %d", a.summary.goalMinutes)
	}
	if a.status == "" {
		t.Fatal("applying settings should set a status line")
	}
}

// ============================================================
// Todo panel
// ============================================================

func TestTodoPanelSelectForTiming(t *testing.T) {
	a := newTestApp(t)
	m := a.todoPanel

	m, _ = m.update(keyRune('s'))
	if a.session.SelectedTaskIndex() != 0 {
		t.Fatalf("expected task 0 selected, got %d", a.session.SelectedTaskIndex())
	}

	// Selecting again deselects.
	m, _ = m.update(keyRune('s'))
	if a.session.SelectedTaskIndex() != -1 {
		t.Fatal("re-selecting should clear the selection")
	}
}

func TestTodoPanelDeleteClearsTimedTask(t *testing.T) {
	a := newTestApp(t)
	m := a.todoPanel

	m, _ = m.update(keyRune('s'))
	m, _ = m.update(keyRune('d'))
	if a.session.SelectedTaskIndex() != -1 {
		t.Fatal("deleting the timed task should clear the selection")
	}
}

func TestTodoPanelToggleDone(t *testing.T) {
	a := newTestApp(t)
	m := a.todoPanel

	m, _ = m.update(keyRune('x'))
	if !a.todos.Items()[0].Done {
		t.Fatal("x should mark the task done")
	}

	m, _ = m.update(keyRune('u'))
	if a.todos.Items()[0].Done {
		t.Fatal("u should undo the toggle")
	}
}

func TestTodoPanelAddOpensForm(t *testing.T) {
	a := newTestApp(t)
	m := a.todoPanel

	m, _ = m.update(keyRune('a'))
	if !m.formActive {
		t.Fatal("a should open the task form")
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive {
		t.Fatal("esc should close the task form")
	}
}

// ============================================================
// Player panel
// ============================================================

func TestPlayerPanelPlaySelected(t *testing.T) {
	a := newTestApp(t)
	m := a.playerUI

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if a.player.State() != playback.StatePlaying {
		t.Fatalf("enter should start playback, got %v", a.player.State())
	}

	m, _ = m.update(keyRune('p'))
	if a.player.State() != playback.StatePaused {
		t.Fatal("p should pause playback")
	}
}

func TestPlayerPanelCycleMode(t *testing.T) {
	a := newTestApp(t)
	m := a.playerUI

	_, cmd := m.update(keyRune('m'))
	if a.player.Mode() != playback.ModeRandom {
		t.Fatalf("m should cycle the mode, got %v", a.player.Mode())
	}
	if cmd == nil {
		t.Fatal("mode change should announce a status")
	}
}

// ============================================================
// Rendering
// ============================================================

func TestTimerViewStates(t *testing.T) {
	a := newTestApp(t)
	a.timer.setSize(50, 12)

	view := a.timer.view(true)
	if !strings.Contains(view, "25:00") {
		t.Fatalf("stopped timer should show the full work duration:\n%s", view)
	}

	a.session.ToggleStartPause()
	view = a.timer.view(true)
	if !strings.Contains(view, "WORK") {
		t.Fatal("running timer should show the phase")
	}
}

func TestPlayerViewListsTracks(t *testing.T) {
	a := newTestApp(t)
	a.playerUI.setSize(50, 12)

	view := a.playerUI.view(false)
	if !strings.Contains(view, "track-01") {
		t.Fatalf("player should list scanned tracks:\n%s", view)
	}
}

func TestSummaryViewShowsGoal(t *testing.T) {
	a := newTestApp(t)
	a.summary.setSize(60, 14)

	view := a.summary.view(false)
	if !strings.Contains(view, "Today") {
		t.Fatal("summary should show today's progress")
	}
	if !strings.Contains(view, "Streak") {
		t.Fatal("summary should show the streak")
	}
}

// ============================================================
// Helpers and key map
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{61 * time.Second, "01:01"},
		{25 * time.Minute, "25:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.d); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0h 00m"},
		{25, "0h 25m"},
		{60, "1h 00m"},
		{135, "2h 15m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.minutes); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	rows := keys.FullHelp()
	if len(rows) == 0 {
		t.Fatal("full help should not be empty")
	}
	for i, row := range rows {
		if len(row) == 0 {
			t.Fatalf("full help row %d is empty", i)
		}
	}
}

func TestFocusNames(t *testing.T) {
	if len(focusNames) != 4 {
		t.Fatalf("expected 4 panels, got %d", len(focusNames))
	}
}
