package todo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kursadm/tomatui/internal/session"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTestList(t *testing.T) *List {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.md")
	l := NewList(path, fixedClock())
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLoadSeedsStarterItems(t *testing.T) {
	l := newTestList(t)
	if len(l.Items()) == 0 {
		t.Fatal("expected starter items on first load")
	}
	if _, err := os.Stat(l.path); err != nil {
		t.Fatalf("first load must write the file: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "todos.md")
	l := NewList(path, fixedClock())
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}
	l.Add("write the parser")
	l.Add("ship it")
	l.selected = len(l.items) - 2 // "write the parser"
	l.ToggleSelected()
	l.CreditMinutes(l.selected, 25)

	l2 := NewList(path, fixedClock())
	if err := l2.Load(); err != nil {
		t.Fatal(err)
	}
	items := l2.Items()
	if len(items) != len(l.Items()) {
		t.Fatalf("item count changed across reload: %d vs %d", len(items), len(l.Items()))
	}
	var found *Item
	for i := range items {
		if items[i].Task == "write the parser" {
			found = &items[i]
		}
	}
	if found == nil {
		t.Fatal("task lost across reload")
	}
	if !found.Done || found.FocusedMinutes != 25 {
		t.Fatalf("state lost across reload: %+v", found)
	}
	if len(found.Timeline) != 1 || found.Timeline[0].Date != "2025-03-10" || found.Timeline[0].Minutes != 25 {
		t.Fatalf("timeline lost across reload: %+v", found.Timeline)
	}
}

func TestAddIgnoresBlank(t *testing.T) {
	l := newTestList(t)
	n := len(l.Items())
	l.Add("   ")
	if len(l.Items()) != n {
		t.Fatal("blank task must be ignored")
	}
}

func TestDeleteAdjustsSelection(t *testing.T) {
	l := newTestList(t)
	l.items = []Item{{Task: "a"}, {Task: "b"}}
	l.selected = 1
	l.DeleteSelected()
	if len(l.Items()) != 1 || l.SelectedIndex() != 0 {
		t.Fatalf("expected selection clamp, got sel=%d items=%d", l.SelectedIndex(), len(l.Items()))
	}
}

func TestUndoRestoresSnapshot(t *testing.T) {
	l := newTestList(t)
	l.items = []Item{{Task: "keep me"}}
	l.selected = 0
	l.DeleteSelected()
	if len(l.Items()) != 0 {
		t.Fatal("delete failed")
	}
	if !l.Undo() {
		t.Fatal("expected undo to succeed")
	}
	if len(l.Items()) != 1 || l.Items()[0].Task != "keep me" {
		t.Fatalf("undo lost the item: %+v", l.Items())
	}
	// Undo depth is bounded.
	for i := 0; i < 20; i++ {
		l.Add("task")
	}
	undos := 0
	for l.Undo() {
		undos++
	}
	if undos > maxUndoDepth {
		t.Fatalf("undo depth must cap at %d, got %d", maxUndoDepth, undos)
	}
}

func TestCreditMinutes(t *testing.T) {
	l := newTestList(t)
	l.items = []Item{{Task: "focus"}}

	l.CreditMinutes(0, 25)
	l.CreditMinutes(0, 25)

	item := l.Items()[0]
	if item.FocusedMinutes != 50 {
		t.Fatalf("expected 50 minutes, got %d", item.FocusedMinutes)
	}
	if len(item.Timeline) != 1 || item.Timeline[0].Minutes != 50 {
		t.Fatalf("same-day credits must merge: %+v", item.Timeline)
	}

	l.CreditMinutes(9, 25) // out of range: no-op
	if l.Items()[0].FocusedMinutes != 50 {
		t.Fatal("out-of-range credit must not touch other items")
	}
}

func TestTaskName(t *testing.T) {
	l := newTestList(t)
	l.items = []Item{{Task: "alpha"}}
	if name, ok := l.TaskName(0); !ok || name != "alpha" {
		t.Fatalf("expected alpha, got %q ok=%v", name, ok)
	}
	if _, ok := l.TaskName(5); ok {
		t.Fatal("expected miss for out-of-range index")
	}
}

func TestStats(t *testing.T) {
	l := newTestList(t)
	l.items = []Item{
		{Task: "a", Done: true, Timeline: []WorkEntry{
			{Date: "2025-03-10", Minutes: 50},
			{Date: "2025-03-09", Minutes: 25},
			{Date: "2025-03-08", Minutes: 25},
		}},
		{Task: "b", Timeline: []WorkEntry{
			{Date: "2025-03-10", Minutes: 25},
		}},
	}

	if got := l.TodayMinutes(); got != 75 {
		t.Fatalf("expected 75 today, got %d", got)
	}
	if got := l.YesterdayMinutes(); got != 25 {
		t.Fatalf("expected 25 yesterday, got %d", got)
	}
	if got := l.StreakDays(); got != 3 {
		t.Fatalf("expected 3-day streak, got %d", got)
	}
	if got := l.CompletedCount(); got != 1 {
		t.Fatalf("expected 1 completed, got %d", got)
	}
}

func TestStreakBreaks(t *testing.T) {
	l := newTestList(t)
	l.items = []Item{{Task: "a", Timeline: []WorkEntry{
		{Date: "2025-03-10", Minutes: 25},
		{Date: "2025-03-08", Minutes: 25}, // gap on the 9th
	}}}
	if got := l.StreakDays(); got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}
}

func TestSessionsPersistInSameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.md")
	l := NewList(path, fixedClock())
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}
	l.SetSessions([]session.DailySession{
		{Date: "2025-03-10", WorkSessions: 2, WorkMinutes: 50, BreakSessions: 1, BreakMinutes: 5, Tasks: []string{"focus"}},
	})
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "## Daily Sessions") {
		t.Fatalf("session blocks missing from file:\n%s", data)
	}

	l2 := NewList(path, fixedClock())
	if err := l2.Load(); err != nil {
		t.Fatal(err)
	}
	sessions := l2.Sessions()
	if len(sessions) != 1 || sessions[0].WorkMinutes != 50 {
		t.Fatalf("sessions lost across reload: %+v", sessions)
	}
	if len(l2.Items()) != len(l.Items()) {
		t.Fatal("session blocks must not disturb item parsing")
	}
}

func TestMalformedLinesSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.md")
	content := "# TODO List\n\n- [ ] good task\nnoise line\n- [x] done task | Focused time: 30 minutes\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewList(path, fixedClock())
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}
	items := l.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[1].FocusedMinutes != 30 || !items[1].Done {
		t.Fatalf("focused time lost: %+v", items[1])
	}
}
