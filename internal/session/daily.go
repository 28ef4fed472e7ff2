package session

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DateLayout is the calendar-date key format for daily aggregates.
const DateLayout = "2006-01-02"

// DailySession aggregates completed work and break time for one calendar
// date, plus the distinct task names touched that day.
type DailySession struct {
	Date          string
	WorkSessions  int
	WorkMinutes   int
	BreakSessions int
	BreakMinutes  int
	Tasks         []string
}

// TouchTask adds a task name with set semantics, preserving insertion order.
func (d *DailySession) TouchTask(name string) {
	if name == "" {
		return
	}
	for _, t := range d.Tasks {
		if t == name {
			return
		}
	}
	d.Tasks = append(d.Tasks, name)
}

const blocksHeader = "## Daily Sessions"

// FormatBlocks serializes sessions as markdown blocks, one per date, in
// date order. The shape is compatible with the todo save file so both can
// live in the same document.
func FormatBlocks(sessions []DailySession) string {
	sorted := make([]DailySession, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var b strings.Builder
	b.WriteString(blocksHeader + "\n")
	for _, s := range sorted {
		b.WriteString("\n### " + s.Date + "\n")
		fmt.Fprintf(&b, "- Work sessions: %d | %d minutes\n", s.WorkSessions, s.WorkMinutes)
		fmt.Fprintf(&b, "- Break sessions: %d | %d minutes\n", s.BreakSessions, s.BreakMinutes)
		if len(s.Tasks) > 0 {
			b.WriteString("- Tasks: " + strings.Join(s.Tasks, ", ") + "\n")
		}
	}
	return b.String()
}

// ParseBlocks reads daily-session blocks back out of a document. Lines
// outside blocks are ignored, so the codec can run over the whole todo
// file. A malformed block is skipped; well-formed blocks around it are
// kept losslessly.
func ParseBlocks(content string) []DailySession {
	var sessions []DailySession

	lines := strings.Split(content, "\n")
	i := 0
	for i < len(lines) {
		date, ok := strings.CutPrefix(lines[i], "### ")
		if !ok {
			i++
			continue
		}
		block, next := collectBlock(lines, i+1)
		i = next
		s, ok := parseBlock(strings.TrimSpace(date), block)
		if !ok {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// collectBlock gathers the body lines of a block starting at index from,
// stopping at the next heading. Returns the body and the index to resume at.
func collectBlock(lines []string, from int) ([]string, int) {
	var body []string
	i := from
	for i < len(lines) {
		l := lines[i]
		if strings.HasPrefix(l, "### ") || strings.HasPrefix(l, "## ") || strings.HasPrefix(l, "# ") {
			break
		}
		body = append(body, l)
		i++
	}
	return body, i
}

func parseBlock(date string, body []string) (DailySession, bool) {
	if !validDate(date) {
		return DailySession{}, false
	}
	s := DailySession{Date: date}
	sawWork, sawBreak := false, false

	for _, line := range body {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- Work sessions: "):
			n, m, ok := parseCountLine(strings.TrimPrefix(line, "- Work sessions: "))
			if !ok {
				return DailySession{}, false
			}
			s.WorkSessions, s.WorkMinutes, sawWork = n, m, true
		case strings.HasPrefix(line, "- Break sessions: "):
			n, m, ok := parseCountLine(strings.TrimPrefix(line, "- Break sessions: "))
			if !ok {
				return DailySession{}, false
			}
			s.BreakSessions, s.BreakMinutes, sawBreak = n, m, true
		case strings.HasPrefix(line, "- Tasks: "):
			for _, t := range strings.Split(strings.TrimPrefix(line, "- Tasks: "), ",") {
				s.TouchTask(strings.TrimSpace(t))
			}
		}
	}
	if !sawWork || !sawBreak {
		return DailySession{}, false
	}
	return s, true
}

// parseCountLine parses "N | M minutes".
func parseCountLine(rest string) (count, minutes int, ok bool) {
	countStr, minStr, found := strings.Cut(rest, " | ")
	if !found {
		return 0, 0, false
	}
	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil || count < 0 {
		return 0, 0, false
	}
	minStr = strings.TrimSuffix(strings.TrimSpace(minStr), " minutes")
	minutes, err = strconv.Atoi(minStr)
	if err != nil || minutes < 0 {
		return 0, 0, false
	}
	return count, minutes, true
}

func validDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
