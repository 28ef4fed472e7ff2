// Package config handles reading and writing ~/.config/tomatui/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Timer   TimerConfig   `yaml:"timer"`
	Summary SummaryConfig `yaml:"summary"`
	Todo    TodoConfig    `yaml:"todo"`
	Music   MusicConfig   `yaml:"music"`
}

// TimerConfig holds the Pomodoro durations.
type TimerConfig struct {
	WorkMinutes            int `yaml:"work_minutes"`
	ShortBreakMinutes      int `yaml:"short_break_minutes"`
	LongBreakMinutes       int `yaml:"long_break_minutes"`
	SessionsUntilLongBreak int `yaml:"sessions_until_long_break"`
}

// SummaryConfig holds summary panel settings.
type SummaryConfig struct {
	DailyGoalMinutes int `yaml:"daily_goal_minutes"`
}

// TodoConfig holds todo list settings.
type TodoConfig struct {
	SavePath        string `yaml:"save_path"`
	SaveSessionData bool   `yaml:"save_session_data"`
}

// MusicConfig holds music player and alarm settings.
type MusicConfig struct {
	MusicDirectory       string  `yaml:"music_directory"`
	DefaultVolume        float64 `yaml:"default_volume"`
	AlarmVolume          float64 `yaml:"alarm_volume"`
	AlarmDurationSeconds int     `yaml:"alarm_duration_seconds"`
	AlarmSoundDirectory  string  `yaml:"alarm_sound_directory"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		Timer: TimerConfig{
			WorkMinutes:            25,
			ShortBreakMinutes:      5,
			LongBreakMinutes:       15,
			SessionsUntilLongBreak: 4,
		},
		Summary: SummaryConfig{
			DailyGoalMinutes: 120,
		},
		Todo: TodoConfig{
			SavePath:        "~/.config/tomatui/todos.md",
			SaveSessionData: true,
		},
		Music: MusicConfig{
			MusicDirectory:       "~/Music",
			DefaultVolume:        0.7,
			AlarmVolume:          0.3,
			AlarmDurationSeconds: 15,
			AlarmSoundDirectory:  "~/.config/tomatui",
		},
	}
}

// DefaultPath returns ~/.config/tomatui/config.yaml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tomatui", "config.yaml"), nil
}

// Load reads the config from path. If the file does not exist, the default
// configuration is written there and returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		c := Default()
		if err := Save(path, c); err != nil {
			return c, err
		}
		return c, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.normalize()
	return c, nil
}

// Save writes the config as YAML, creating the parent directory if needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// normalize clamps values that would break the engines.
func (c *Config) normalize() {
	if c.Timer.WorkMinutes < 1 {
		c.Timer.WorkMinutes = 25
	}
	if c.Timer.ShortBreakMinutes < 1 {
		c.Timer.ShortBreakMinutes = 5
	}
	if c.Timer.LongBreakMinutes < 1 {
		c.Timer.LongBreakMinutes = 15
	}
	if c.Timer.SessionsUntilLongBreak < 1 {
		c.Timer.SessionsUntilLongBreak = 4
	}
	if c.Music.DefaultVolume < 0 || c.Music.DefaultVolume > 1 {
		c.Music.DefaultVolume = 0.7
	}
	if c.Music.AlarmVolume < 0 || c.Music.AlarmVolume > 1 {
		c.Music.AlarmVolume = 0.3
	}
	if c.Music.AlarmDurationSeconds < 1 {
		c.Music.AlarmDurationSeconds = 15
	}
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
