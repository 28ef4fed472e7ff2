package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if c.Timer.WorkMinutes != 25 {
		t.Fatalf("expected 25 work minutes, got %d", c.Timer.WorkMinutes)
	}
	if c.Timer.SessionsUntilLongBreak != 4 {
		t.Fatalf("expected 4 sessions until long break, got %d", c.Timer.SessionsUntilLongBreak)
	}
	if c.Music.DefaultVolume != 0.7 {
		t.Fatalf("expected default volume 0.7, got %v", c.Music.DefaultVolume)
	}
	if !c.Todo.SaveSessionData {
		t.Fatal("expected session saving on by default")
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Timer.WorkMinutes != 25 {
		t.Fatalf("expected default config, got %+v", c.Timer)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c := Default()
	c.Timer.WorkMinutes = 50
	c.Music.AlarmVolume = 0.1
	c.Music.MusicDirectory = "/tmp/music"
	if err := Save(path, c); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Timer.WorkMinutes != 50 {
		t.Fatalf("expected 50, got %d", got.Timer.WorkMinutes)
	}
	if got.Music.AlarmVolume != 0.1 {
		t.Fatalf("expected 0.1, got %v", got.Music.AlarmVolume)
	}
	if got.Music.MusicDirectory != "/tmp/music" {
		t.Fatalf("expected /tmp/music, got %s", got.Music.MusicDirectory)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "timer:\n  work_minutes: 30\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Timer.WorkMinutes != 30 {
		t.Fatalf("expected 30, got %d", c.Timer.WorkMinutes)
	}
	if c.Timer.ShortBreakMinutes != 5 {
		t.Fatalf("expected default short break, got %d", c.Timer.ShortBreakMinutes)
	}
}

func TestNormalizeClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	bad := "timer:\n  work_minutes: -3\nmusic:\n  default_volume: 9.5\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Timer.WorkMinutes != 25 {
		t.Fatalf("expected clamped work minutes, got %d", c.Timer.WorkMinutes)
	}
	if c.Music.DefaultVolume != 0.7 {
		t.Fatalf("expected clamped volume, got %v", c.Music.DefaultVolume)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got := ExpandPath("~/Music")
	if got != filepath.Join(home, "Music") {
		t.Fatalf("unexpected expansion: %s", got)
	}
	if ExpandPath("/abs/path") != "/abs/path" {
		t.Fatal("absolute paths must pass through")
	}
}
