// Package session implements the Pomodoro phase state machine, daily
// statistics, and the alarm lifecycle.
package session

import (
	"sort"
	"time"
)

// Phase is the current slot in the Pomodoro cycle.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseShortBreak
	PhaseLongBreak
)

var phaseNames = map[Phase]string{
	PhaseWork:       "WORK",
	PhaseShortBreak: "SHORT BREAK",
	PhaseLongBreak:  "LONG BREAK",
}

func (p Phase) String() string { return phaseNames[p] }

// State is the run state of the timer, orthogonal to Phase.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

// Ringer is the fire-and-forget alarm side effect. It must not block; the
// real implementation spawns a goroutine that plays a sound file or falls
// back to the terminal bell.
type Ringer func()

// Options configures a new Engine.
type Options struct {
	WorkMinutes            int
	ShortBreakMinutes      int
	LongBreakMinutes       int
	SessionsUntilLongBreak int
	AlarmDuration          time.Duration
	Ringer                 Ringer
	Clock                  func() time.Time // defaults to time.Now
}

// Engine drives the work/break cycle and owns the per-date statistics.
// All methods must be called from the single control goroutine.
type Engine struct {
	phase     Phase
	state     State
	remaining time.Duration
	lastTick  time.Time
	ticking   bool

	pomodoroCount int

	selectedTask  int // -1 when none
	selectedName  string
	workCompleted bool

	alarmActive bool
	alarmEnd    time.Time

	daily map[string]*DailySession

	workDuration      time.Duration
	shortBreak        time.Duration
	longBreak         time.Duration
	longBreakInterval int
	alarmDuration     time.Duration
	ringer            Ringer
	clock             func() time.Time
}

// NewEngine builds an engine in (Stopped, Work) with the work duration on
// the clock.
func NewEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Ringer == nil {
		opts.Ringer = func() {}
	}
	if opts.SessionsUntilLongBreak < 1 {
		opts.SessionsUntilLongBreak = 4
	}
	e := &Engine{
		phase:             PhaseWork,
		state:             StateStopped,
		selectedTask:      -1,
		daily:             make(map[string]*DailySession),
		workDuration:      time.Duration(opts.WorkMinutes) * time.Minute,
		shortBreak:        time.Duration(opts.ShortBreakMinutes) * time.Minute,
		longBreak:         time.Duration(opts.LongBreakMinutes) * time.Minute,
		longBreakInterval: opts.SessionsUntilLongBreak,
		alarmDuration:     opts.AlarmDuration,
		ringer:            opts.Ringer,
		clock:             opts.Clock,
	}
	e.remaining = e.phaseDuration(PhaseWork)
	return e
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) State() State { return e.state }

func (e *Engine) Remaining() time.Duration { return e.remaining }

func (e *Engine) PomodoroCount() int { return e.pomodoroCount }

// PhaseTotal returns the configured duration of the current phase.
func (e *Engine) PhaseTotal() time.Duration { return e.phaseDuration(e.phase) }

func (e *Engine) AlarmActive() bool { return e.alarmActive }

func (e *Engine) SelectedTaskName() string { return e.selectedName }

// WorkSessionMinutes is the credit granted per completed work phase.
func (e *Engine) WorkSessionMinutes() int { return int(e.workDuration / time.Minute) }

// SelectedTaskIndex returns the index of the task being timed, or -1.
func (e *Engine) SelectedTaskIndex() int { return e.selectedTask }

func (e *Engine) SessionsUntilLongBreak() int { return e.longBreakInterval }

func (e *Engine) phaseDuration(p Phase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return e.shortBreak
	case PhaseLongBreak:
		return e.longBreak
	default:
		return e.workDuration
	}
}

// ToggleStartPause flips Stopped/Paused to Running and Running to Paused.
// Remaining time is preserved across pauses.
func (e *Engine) ToggleStartPause() {
	switch e.state {
	case StateStopped, StatePaused:
		e.state = StateRunning
		e.lastTick = e.clock()
		e.ticking = true
	case StateRunning:
		e.state = StatePaused
		e.ticking = false
	}
}

// Advance moves the countdown forward to now. It is a no-op unless
// Running, and safe to call arbitrarily often between completions.
func (e *Engine) Advance(now time.Time) {
	if e.state != StateRunning {
		return
	}
	if !e.ticking {
		e.lastTick = now
		e.ticking = true
		return
	}
	elapsed := now.Sub(e.lastTick)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= e.remaining {
		e.remaining = 0
		e.completePhase()
		return
	}
	e.remaining -= elapsed
	e.lastTick = now
}

// SkipPhase forces the current phase to complete regardless of remaining
// time.
func (e *Engine) SkipPhase() {
	e.completePhase()
}

// Reset stops the timer and restores the current phase's full duration.
// Counters and statistics are untouched.
func (e *Engine) Reset() {
	e.state = StateStopped
	e.ticking = false
	e.remaining = e.phaseDuration(e.phase)
}

func (e *Engine) completePhase() {
	now := e.clock()
	e.triggerAlarm(now)
	day := e.today(now)

	switch e.phase {
	case PhaseWork:
		day.WorkSessions++
		day.WorkMinutes += int(e.workDuration / time.Minute)
		e.pomodoroCount++
		if e.selectedTask >= 0 {
			e.workCompleted = true
		}
		if e.pomodoroCount%e.longBreakInterval == 0 {
			e.phase = PhaseLongBreak
		} else {
			e.phase = PhaseShortBreak
		}
	case PhaseShortBreak, PhaseLongBreak:
		day.BreakSessions++
		day.BreakMinutes += int(e.phaseDuration(e.phase) / time.Minute)
		e.phase = PhaseWork
	}

	e.remaining = e.phaseDuration(e.phase)
	e.state = StateStopped
	e.ticking = false
}

func (e *Engine) today(now time.Time) *DailySession {
	key := now.Format(DateLayout)
	if d, ok := e.daily[key]; ok {
		return d
	}
	d := &DailySession{Date: key}
	e.daily[key] = d
	return d
}

// SetSelectedTask records which external task is being timed. A non-empty
// name is also added to today's task list with set semantics.
func (e *Engine) SetSelectedTask(index int, name string) {
	e.selectedTask = index
	e.selectedName = name
	if name != "" {
		e.today(e.clock()).TouchTask(name)
	}
}

// ClearSelectedTask drops the task association without touching the flag.
func (e *Engine) ClearSelectedTask() {
	e.selectedTask = -1
	e.selectedName = ""
}

// ConsumeWorkCompleted returns the selected task index if a work phase
// just completed with a task selected, clearing the flag. The coordinator
// uses this to credit the todo list exactly once per completion.
func (e *Engine) ConsumeWorkCompleted() (int, bool) {
	if !e.workCompleted || e.selectedTask < 0 {
		e.workCompleted = false
		return -1, false
	}
	e.workCompleted = false
	return e.selectedTask, true
}

func (e *Engine) triggerAlarm(now time.Time) {
	if e.alarmDuration <= 0 {
		return
	}
	e.alarmActive = true
	e.alarmEnd = now.Add(e.alarmDuration)
	e.ringer()
}

// UpdateAlarmState reports whether the alarm is sounding at now, clearing
// the active flag once the end timestamp has passed.
func (e *Engine) UpdateAlarmState(now time.Time) bool {
	if !e.alarmActive {
		return false
	}
	if !now.Before(e.alarmEnd) {
		e.alarmActive = false
		return false
	}
	return true
}

// TodayStats returns today's aggregate, or a zero-valued one if nothing
// has completed yet.
func (e *Engine) TodayStats() DailySession {
	key := e.clock().Format(DateLayout)
	if d, ok := e.daily[key]; ok {
		return *d
	}
	return DailySession{Date: key}
}

// LoadDailySessions bulk-replaces the date map, restoring today's
// pomodoro count from the stored work-session count.
func (e *Engine) LoadDailySessions(history []DailySession) {
	e.daily = make(map[string]*DailySession, len(history))
	for i := range history {
		s := history[i]
		if !validDate(s.Date) {
			continue
		}
		e.daily[s.Date] = &s
	}
	if today, ok := e.daily[e.clock().Format(DateLayout)]; ok {
		e.pomodoroCount = today.WorkSessions
	}
}

// ExportDailySessions returns all aggregates in date order.
func (e *Engine) ExportDailySessions() []DailySession {
	out := make([]DailySession, 0, len(e.daily))
	for _, d := range e.daily {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
