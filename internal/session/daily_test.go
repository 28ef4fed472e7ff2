package session

import (
	"strings"
	"testing"
)

func TestFormatParseRoundTrip(t *testing.T) {
	in := []DailySession{
		{Date: "2025-03-09", WorkSessions: 3, WorkMinutes: 75, BreakSessions: 2, BreakMinutes: 10, Tasks: []string{"write report", "review"}},
		{Date: "2025-03-10", WorkSessions: 1, WorkMinutes: 25, BreakSessions: 0, BreakMinutes: 0},
	}

	out := ParseBlocks(FormatBlocks(in))
	if len(out) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(out))
	}
	first := out[0]
	if first.Date != "2025-03-09" || first.WorkSessions != 3 || first.WorkMinutes != 75 ||
		first.BreakSessions != 2 || first.BreakMinutes != 10 {
		t.Fatalf("lossy round trip: %+v", first)
	}
	if len(first.Tasks) != 2 || first.Tasks[0] != "write report" {
		t.Fatalf("tasks lost: %+v", first.Tasks)
	}
	if out[1].WorkMinutes != 25 || len(out[1].Tasks) != 0 {
		t.Fatalf("lossy round trip: %+v", out[1])
	}
}

func TestFormatBlocksDateOrdered(t *testing.T) {
	got := FormatBlocks([]DailySession{
		{Date: "2025-03-10", WorkSessions: 1, WorkMinutes: 25},
		{Date: "2025-03-08", WorkSessions: 1, WorkMinutes: 25},
	})
	if strings.Index(got, "2025-03-08") > strings.Index(got, "2025-03-10") {
		t.Fatalf("blocks must be date ordered:\n%s", got)
	}
}

func TestParseSkipsMalformedBlock(t *testing.T) {
	doc := `## Daily Sessions

### 2025-03-08
- Work sessions: 2 | 50 minutes
- Break sessions: 1 | 5 minutes

### not-a-date
- Work sessions: 9 | 225 minutes
- Break sessions: 0 | 0 minutes

### 2025-03-09
- Work sessions: oops | 25 minutes
- Break sessions: 0 | 0 minutes

### 2025-03-10
- Work sessions: 1 | 25 minutes
- Break sessions: 1 | 5 minutes
- Tasks: deep work
`
	out := ParseBlocks(doc)
	if len(out) != 2 {
		t.Fatalf("expected 2 well-formed blocks, got %d: %+v", len(out), out)
	}
	if out[0].Date != "2025-03-08" || out[1].Date != "2025-03-10" {
		t.Fatalf("wrong blocks survived: %+v", out)
	}
}

func TestParseIgnoresSurroundingTodoContent(t *testing.T) {
	doc := `# TODO List

- [ ] write more tests | Focused time: 50 minutes
- [x] fix scanner

## Daily Sessions

### 2025-03-10
- Work sessions: 2 | 50 minutes
- Break sessions: 1 | 5 minutes
`
	out := ParseBlocks(doc)
	if len(out) != 1 || out[0].WorkSessions != 2 {
		t.Fatalf("expected one block from mixed document, got %+v", out)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if got := ParseBlocks(""); len(got) != 0 {
		t.Fatalf("expected nothing, got %+v", got)
	}
}

func TestTouchTask(t *testing.T) {
	var d DailySession
	d.TouchTask("a")
	d.TouchTask("b")
	d.TouchTask("a")
	d.TouchTask("")
	if len(d.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", d.Tasks)
	}
}
