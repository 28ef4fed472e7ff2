// Package coordinator glues the session and playback engines together:
// it drives both on each scheduler tick, turns alarm-state edges into
// one-shot volume ducking, and relays work completions to the todo list.
package coordinator

import (
	"time"

	"github.com/kursadm/tomatui/internal/playback"
	"github.com/kursadm/tomatui/internal/session"
)

// TaskCrediter is the todo collaborator interface consumed on work
// completion.
type TaskCrediter interface {
	CreditMinutes(taskIndex, minutes int)
}

// Coordinator runs on the control goroutine only.
type Coordinator struct {
	session  *session.Engine
	playback *playback.Engine
	todo     TaskCrediter

	alarmVolume   float64
	defaultVolume float64

	wasAlarmActive bool
}

// New wires the coordinator. todo may be nil when no task crediting is
// wanted.
func New(s *session.Engine, p *playback.Engine, todo TaskCrediter, alarmVolume, defaultVolume float64) *Coordinator {
	return &Coordinator{
		session:       s,
		playback:      p,
		todo:          todo,
		alarmVolume:   alarmVolume,
		defaultVolume: defaultVolume,
	}
}

// Tick advances the session, polls the playback engine for finished
// tracks, reconciles alarm edges, and credits completed work. Called once
// per event-loop iteration.
func (c *Coordinator) Tick(now time.Time) {
	c.session.Advance(now)
	c.playback.PollFinished()
	c.reconcileAlarm(now)
	c.creditCompletedWork()
}

// reconcileAlarm compares alarm-active against the previous tick and
// fires duck/restore exactly once per edge. Ticks that observe an
// unchanged state produce no volume calls.
func (c *Coordinator) reconcileAlarm(now time.Time) {
	active := c.session.UpdateAlarmState(now)
	switch {
	case active && !c.wasAlarmActive:
		c.playback.DuckVolume(c.alarmVolume)
	case !active && c.wasAlarmActive:
		c.playback.RestoreVolume(c.defaultVolume)
	}
	c.wasAlarmActive = active
}

// creditCompletedWork drains the work-completed flag, crediting the
// selected task with the work-session minutes and releasing the
// selection.
func (c *Coordinator) creditCompletedWork() {
	idx, ok := c.session.ConsumeWorkCompleted()
	if !ok {
		return
	}
	if c.todo != nil {
		c.todo.CreditMinutes(idx, c.session.WorkSessionMinutes())
	}
	c.session.ClearSelectedTask()
}

// SetDefaultVolume updates the restore target after a config reload.
func (c *Coordinator) SetDefaultVolume(v float64) { c.defaultVolume = v }

// SetAlarmVolume updates the duck target after a config reload.
func (c *Coordinator) SetAlarmVolume(v float64) { c.alarmVolume = v }
