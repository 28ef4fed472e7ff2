// Package todo implements the task list collaborator: markdown
// persistence, undo, and the minute-crediting interface the coordinator
// calls when a work phase completes. The save file also carries the
// daily-session blocks, so one document holds both.
package todo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kursadm/tomatui/internal/session"
)

const (
	fileHeader   = "# TODO List"
	focusedInfix = " | Focused time: "
	maxUndoDepth = 10
)

// WorkEntry is one day's worth of credited time on an item.
type WorkEntry struct {
	Date    string // YYYY-MM-DD
	Minutes int
	At      string // HH:MM of the latest credit
}

// Item is a single todo entry.
type Item struct {
	Task           string
	Done           bool
	FocusedMinutes int
	Timeline       []WorkEntry
}

// List owns the items, the selection cursor, and the save file.
type List struct {
	items    []Item
	sessions []session.DailySession
	path     string
	selected int
	undo     [][]Item
	clock    func() time.Time
}

// NewList creates a list backed by path. The file is not read until Load.
func NewList(path string, clock func() time.Time) *List {
	if clock == nil {
		clock = time.Now
	}
	return &List{path: path, clock: clock}
}

func (l *List) Items() []Item { return l.items }

func (l *List) SelectedIndex() int { return l.selected }

func (l *List) Sessions() []session.DailySession { return l.sessions }

func (l *List) SetSessions(s []session.DailySession) { l.sessions = s }

// Get returns the item at index, reporting whether it exists.
func (l *List) Get(index int) (Item, bool) {
	if index < 0 || index >= len(l.items) {
		return Item{}, false
	}
	return l.items[index], true
}

// TaskName returns the task text at index, for labeling the timer.
func (l *List) TaskName(index int) (string, bool) {
	item, ok := l.Get(index)
	if !ok {
		return "", false
	}
	return item.Task, true
}

// Load reads the save file. A missing file seeds a starter list and
// writes it out; any other read error is returned.
func (l *List) Load() error {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		l.items = []Item{
			{Task: "Add your first task with 'a'"},
			{Task: "Select a task with 's' to time it"},
		}
		return l.Save()
	}
	if err != nil {
		return fmt.Errorf("read todo file: %w", err)
	}

	content := string(data)
	l.items = parseItems(content)
	l.sessions = session.ParseBlocks(content)
	l.clampSelection()
	return nil
}

// Save writes items and daily-session blocks, creating parent
// directories as needed.
func (l *List) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create todo directory: %w", err)
	}

	var b strings.Builder
	b.WriteString(fileHeader + "\n\n")
	for _, item := range l.items {
		box := "- [ ]"
		if item.Done {
			box = "- [x]"
		}
		b.WriteString(box + " " + item.Task)
		if item.FocusedMinutes > 0 {
			fmt.Fprintf(&b, "%s%d minutes", focusedInfix, item.FocusedMinutes)
		}
		b.WriteString("\n")
		for _, w := range item.Timeline {
			fmt.Fprintf(&b, "  - %s: %d minutes at %s\n", w.Date, w.Minutes, w.At)
		}
	}
	if len(l.sessions) > 0 {
		b.WriteString("\n" + session.FormatBlocks(l.sessions))
	}

	if err := os.WriteFile(l.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write todo file: %w", err)
	}
	return nil
}

func parseItems(content string) []Item {
	var items []Item
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "- [x] "), strings.HasPrefix(line, "- [ ] "):
			done := strings.HasPrefix(line, "- [x]")
			rest := line[6:]
			item := Item{Done: done, Task: rest}
			if at := strings.Index(rest, focusedInfix); at >= 0 {
				item.Task = rest[:at]
				minStr := strings.TrimSuffix(rest[at+len(focusedInfix):], " minutes")
				if n, err := strconv.Atoi(strings.TrimSpace(minStr)); err == nil {
					item.FocusedMinutes = n
				}
			}
			items = append(items, item)
		case strings.HasPrefix(line, "  - "):
			// Timeline line attached to the previous item.
			if len(items) == 0 {
				continue
			}
			if w, ok := parseTimelineLine(line); ok {
				items[len(items)-1].Timeline = append(items[len(items)-1].Timeline, w)
			}
		}
	}
	return items
}

// parseTimelineLine parses "  - 2025-03-10: 25 minutes at 09:30".
func parseTimelineLine(line string) (WorkEntry, bool) {
	rest := strings.TrimPrefix(line, "  - ")
	date, tail, ok := strings.Cut(rest, ": ")
	if !ok || len(date) != 10 {
		return WorkEntry{}, false
	}
	minStr, at, ok := strings.Cut(tail, " minutes at ")
	if !ok {
		return WorkEntry{}, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(minStr))
	if err != nil {
		return WorkEntry{}, false
	}
	return WorkEntry{Date: date, Minutes: minutes, At: strings.TrimSpace(at)}, true
}

// Add appends a task. Blank input is ignored.
func (l *List) Add(task string) {
	task = strings.TrimSpace(task)
	if task == "" {
		return
	}
	l.pushUndo()
	l.items = append(l.items, Item{Task: task})
	l.Save()
}

// ToggleSelected flips the done state of the selected item.
func (l *List) ToggleSelected() {
	if l.selected >= len(l.items) {
		return
	}
	l.pushUndo()
	l.items[l.selected].Done = !l.items[l.selected].Done
	l.Save()
}

// DeleteSelected removes the selected item.
func (l *List) DeleteSelected() {
	if l.selected >= len(l.items) {
		return
	}
	l.pushUndo()
	l.items = append(l.items[:l.selected], l.items[l.selected+1:]...)
	l.clampSelection()
	l.Save()
}

// Undo restores the most recent snapshot, up to 10 deep.
func (l *List) Undo() bool {
	if len(l.undo) == 0 {
		return false
	}
	l.items = l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.clampSelection()
	l.Save()
	return true
}

func (l *List) pushUndo() {
	if len(l.undo) >= maxUndoDepth {
		l.undo = l.undo[1:]
	}
	snapshot := make([]Item, len(l.items))
	copy(snapshot, l.items)
	l.undo = append(l.undo, snapshot)
}

func (l *List) clampSelection() {
	if l.selected >= len(l.items) {
		l.selected = len(l.items) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// MoveSelection moves the cursor without wrapping.
func (l *List) MoveSelection(delta int) {
	next := l.selected + delta
	if next < 0 || next >= len(l.items) {
		return
	}
	l.selected = next
}

// CreditMinutes adds focused time to the item at index, recording it on
// today's timeline entry. Out-of-range indexes are no-ops. Implements
// the coordinator's TaskCrediter.
func (l *List) CreditMinutes(index, minutes int) {
	if index < 0 || index >= len(l.items) || minutes <= 0 {
		return
	}
	l.pushUndo()
	item := &l.items[index]
	item.FocusedMinutes += minutes

	now := l.clock()
	today := now.Format(session.DateLayout)
	at := now.Format("15:04")
	for i := range item.Timeline {
		if item.Timeline[i].Date == today {
			item.Timeline[i].Minutes += minutes
			item.Timeline[i].At = at
			l.Save()
			return
		}
	}
	item.Timeline = append(item.Timeline, WorkEntry{Date: today, Minutes: minutes, At: at})
	l.Save()
}

// TodayMinutes sums timeline minutes credited today across all items.
func (l *List) TodayMinutes() int {
	return l.minutesOn(l.clock().Format(session.DateLayout))
}

// YesterdayMinutes sums timeline minutes credited yesterday.
func (l *List) YesterdayMinutes() int {
	return l.minutesOn(l.clock().AddDate(0, 0, -1).Format(session.DateLayout))
}

func (l *List) minutesOn(date string) int {
	total := 0
	for _, item := range l.items {
		for _, w := range item.Timeline {
			if w.Date == date {
				total += w.Minutes
			}
		}
	}
	return total
}

// StreakDays counts consecutive days ending today with credited work.
func (l *List) StreakDays() int {
	worked := make(map[string]bool)
	for _, item := range l.items {
		for _, w := range item.Timeline {
			worked[w.Date] = true
		}
	}
	streak := 0
	day := l.clock()
	for worked[day.Format(session.DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// CompletedCount returns the number of done items.
func (l *List) CompletedCount() int {
	n := 0
	for _, item := range l.items {
		if item.Done {
			n++
		}
	}
	return n
}
