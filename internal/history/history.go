// Package history archives daily session stats in SQLite so summaries
// survive edits to the todo file.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kursadm/tomatui/internal/session"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS daily_sessions (
		date           TEXT PRIMARY KEY,
		work_sessions  INTEGER NOT NULL DEFAULT 0,
		work_minutes   INTEGER NOT NULL DEFAULT 0,
		break_sessions INTEGER NOT NULL DEFAULT 0,
		break_minutes  INTEGER NOT NULL DEFAULT 0,
		tasks          TEXT NOT NULL DEFAULT '',
		updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_daily_sessions_date ON daily_sessions(date);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Upsert writes one day's stats, replacing any existing row for the date.
func (s *Store) Upsert(d session.DailySession) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO daily_sessions (date, work_sessions, work_minutes, break_sessions, break_minutes, tasks, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   work_sessions  = excluded.work_sessions,
		   work_minutes   = excluded.work_minutes,
		   break_sessions = excluded.break_sessions,
		   break_minutes  = excluded.break_minutes,
		   tasks          = excluded.tasks,
		   updated_at     = excluded.updated_at`,
		d.Date, d.WorkSessions, d.WorkMinutes, d.BreakSessions, d.BreakMinutes,
		strings.Join(d.Tasks, ", "), now,
	)
	if err != nil {
		return fmt.Errorf("upsert daily session %s: %w", d.Date, err)
	}
	return nil
}

// UpsertAll writes every day's stats in one transaction.
func (s *Store) UpsertAll(days []session.DailySession) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, d := range days {
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.Exec(
			`INSERT INTO daily_sessions (date, work_sessions, work_minutes, break_sessions, break_minutes, tasks, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(date) DO UPDATE SET
			   work_sessions  = excluded.work_sessions,
			   work_minutes   = excluded.work_minutes,
			   break_sessions = excluded.break_sessions,
			   break_minutes  = excluded.break_minutes,
			   tasks          = excluded.tasks,
			   updated_at     = excluded.updated_at`,
			d.Date, d.WorkSessions, d.WorkMinutes, d.BreakSessions, d.BreakMinutes,
			strings.Join(d.Tasks, ", "), now,
		); err != nil {
			return fmt.Errorf("upsert daily session %s: %w", d.Date, err)
		}
	}
	return tx.Commit()
}

// Get returns the stats for one date, or nil when no row exists.
func (s *Store) Get(date string) (*session.DailySession, error) {
	d := &session.DailySession{}
	var tasks string
	err := s.db.QueryRow(
		`SELECT date, work_sessions, work_minutes, break_sessions, break_minutes, tasks
		 FROM daily_sessions WHERE date = ?`, date,
	).Scan(&d.Date, &d.WorkSessions, &d.WorkMinutes, &d.BreakSessions, &d.BreakMinutes, &tasks)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily session %s: %w", date, err)
	}
	d.Tasks = splitTasks(tasks)
	return d, nil
}

// RecentDays returns up to n days ending at (and including) end,
// oldest first, with zero rows filled in for missing dates.
func (s *Store) RecentDays(end time.Time, n int) ([]session.DailySession, error) {
	if n <= 0 {
		return nil, nil
	}
	start := end.AddDate(0, 0, -(n - 1))

	rows, err := s.db.Query(
		`SELECT date, work_sessions, work_minutes, break_sessions, break_minutes, tasks
		 FROM daily_sessions
		 WHERE date >= ? AND date <= ?
		 ORDER BY date`,
		start.Format(session.DateLayout), end.Format(session.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query recent days: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]session.DailySession)
	for rows.Next() {
		var d session.DailySession
		var tasks string
		if err := rows.Scan(&d.Date, &d.WorkSessions, &d.WorkMinutes, &d.BreakSessions, &d.BreakMinutes, &tasks); err != nil {
			return nil, fmt.Errorf("scan daily session: %w", err)
		}
		d.Tasks = splitTasks(tasks)
		byDate[d.Date] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days := make([]session.DailySession, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i).Format(session.DateLayout)
		if d, ok := byDate[date]; ok {
			days = append(days, d)
		} else {
			days = append(days, session.DailySession{Date: date})
		}
	}
	return days, nil
}

// All returns every archived day, oldest first.
func (s *Store) All() ([]session.DailySession, error) {
	rows, err := s.db.Query(
		`SELECT date, work_sessions, work_minutes, break_sessions, break_minutes, tasks
		 FROM daily_sessions ORDER BY date`,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily sessions: %w", err)
	}
	defer rows.Close()

	var days []session.DailySession
	for rows.Next() {
		var d session.DailySession
		var tasks string
		if err := rows.Scan(&d.Date, &d.WorkSessions, &d.WorkMinutes, &d.BreakSessions, &d.BreakMinutes, &tasks); err != nil {
			return nil, fmt.Errorf("scan daily session: %w", err)
		}
		d.Tasks = splitTasks(tasks)
		days = append(days, d)
	}
	return days, rows.Err()
}

// TotalWorkMinutes sums work minutes over every archived day.
func (s *Store) TotalWorkMinutes() (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(work_minutes), 0) FROM daily_sessions`,
	).Scan(&total)
	return total, err
}

func splitTasks(tasks string) []string {
	if tasks == "" {
		return nil
	}
	parts := strings.Split(tasks, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultDBPath returns ~/.config/tomatui/history.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tomatui", "history.db"), nil
}
