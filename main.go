package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kursadm/tomatui/internal/audio"
	"github.com/kursadm/tomatui/internal/config"
	"github.com/kursadm/tomatui/internal/coordinator"
	"github.com/kursadm/tomatui/internal/history"
	"github.com/kursadm/tomatui/internal/log"
	"github.com/kursadm/tomatui/internal/playback"
	"github.com/kursadm/tomatui/internal/session"
	"github.com/kursadm/tomatui/internal/todo"
	"github.com/kursadm/tomatui/internal/tui"
)

func main() {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.New(filepath.Dir(cfgPath))
	if err != nil {
		logger = log.Discard()
	}

	if err := audio.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing audio: %v\n", err)
		os.Exit(1)
	}

	alarmDir := config.ExpandPath(cfg.Music.AlarmSoundDirectory)
	alarmDuration := time.Duration(cfg.Music.AlarmDurationSeconds) * time.Second

	sess := session.NewEngine(session.Options{
		WorkMinutes:            cfg.Timer.WorkMinutes,
		ShortBreakMinutes:      cfg.Timer.ShortBreakMinutes,
		LongBreakMinutes:       cfg.Timer.LongBreakMinutes,
		SessionsUntilLongBreak: cfg.Timer.SessionsUntilLongBreak,
		AlarmDuration:          alarmDuration,
		Ringer: func() {
			audio.RingAlarm(alarmDir, alarmDuration, logger)
		},
	})

	player := playback.NewEngine(playback.Options{
		MusicDir:      config.ExpandPath(cfg.Music.MusicDirectory),
		DefaultVolume: cfg.Music.DefaultVolume,
		OpenSink: func() (playback.Sink, error) {
			return audio.NewSink(logger), nil
		},
		Logger: logger,
	})

	todoPath := config.ExpandPath(cfg.Todo.SavePath)
	todos := todo.NewList(todoPath, time.Now)
	if err := todos.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "error loading todo file: %v\n", err)
		os.Exit(1)
	}
	sess.LoadDailySessions(todos.Sessions())

	// The archive is optional; the app degrades to file-only persistence.
	var archive *history.Store
	if dbPath, err := history.DefaultDBPath(); err == nil {
		if archive, err = history.New(dbPath); err == nil {
			defer archive.Close()
		}
	}

	coord := coordinator.New(sess, player, todos, cfg.Music.AlarmVolume, cfg.Music.DefaultVolume)

	app := tui.NewApp(tui.Options{
		Config:     &cfg,
		ConfigPath: cfgPath,
		Session:    sess,
		Playback:   player,
		Coord:      coord,
		Todos:      todos,
		Archive:    archive,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Final save in case the program exits without passing through the
	// quit key path.
	if cfg.Todo.SaveSessionData {
		todos.SetSessions(sess.ExportDailySessions())
		todos.Save()
	}
	if archive != nil {
		archive.UpsertAll(sess.ExportDailySessions())
	}
}
