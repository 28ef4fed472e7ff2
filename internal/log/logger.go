// Package log provides structured event logging.
// The TUI owns the terminal, so failures are appended to log.jsonl
// instead of being written to stderr.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventLibraryScanned = "library_scanned"
	EventDecodeFailed   = "decode_failed"
	EventAlarmStarted   = "alarm_started"
	EventAlarmFallback  = "alarm_fallback"
	EventSessionSaved   = "session_saved"
	EventParseSkipped   = "parse_skipped"
)

// Event is a single structured event written to the log.
type Event struct {
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	Path    string    `json:"path,omitempty"`
	Date    string    `json:"date,omitempty"`
	Tracks  int       `json:"tracks,omitempty"`
	Error   string    `json:"error,omitempty"`
	Details string    `json:"details,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// New creates a Logger that writes to log.jsonl inside dir, creating dir
// if it does not already exist. An existing log file is not truncated.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Logger{path: filepath.Join(dir, "log.jsonl")}, nil
}

// Discard returns a logger whose events are dropped. Used where no log
// destination is configured, so callers never need a nil check.
func Discard() *Logger {
	return &Logger{}
}

// Append writes a single Event as one JSON line. If event.Time is zero it
// is set to time.Now().UTC(). Thread-safe; may be called from detached
// playback goroutines.
func (l *Logger) Append(event Event) error {
	if l.path == "" {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}
	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]Event, error) {
	if l.path == "" {
		return []Event{}, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return events, nil
}
