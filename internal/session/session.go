// Package session defines the focus session record and its states.
package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the current phase of a session.
type State string

const (
	Idle       State = "idle"
	Active     State = "active"
	Paused     State = "paused"
	ShortBreak State = "shortBreak"
	LongBreak  State = "longBreak"
)

// Session is the single mutable record describing the current focus
// cycle. Exactly one session is live at a time; it is replaced
// wholesale (new ID) on reset or on a fresh start.
type Session struct {
	ID               string      `json:"id"`
	StartTime        time.Time   `json:"start_time"`
	StateStartTime   time.Time   `json:"state_start_time"`
	State            State       `json:"state"`
	ElapsedTime      int         `json:"elapsed_time"` // focus seconds
	ShortBreaksTaken []time.Time `json:"short_breaks_taken"`
	ShortBreakCount  int         `json:"short_break_count"`
	PauseStartTime   time.Time   `json:"pause_start_time"`
	TotalPausedTime  time.Duration `json:"total_paused_time"`
}

// New returns a fresh idle session with its own identity.
func New(now time.Time) *Session {
	return &Session{
		ID:             uuid.NewString(),
		StartTime:      now,
		StateStartTime: now,
		State:          Idle,
	}
}

// Transition moves the session into a new state and restarts the
// state clock. It does not check edge legality; callers own that.
func (s *Session) Transition(state State, now time.Time) {
	s.State = state
	s.StateStartTime = now
}

// TimeInState reports how long the session has been in its current
// state. Break countdowns use this rather than ElapsedTime, which
// only advances while active.
func (s *Session) TimeInState(now time.Time) time.Duration {
	return now.Sub(s.StateStartTime)
}

// RecordShortBreak appends a short break entry, keeping the count in
// lockstep with the list.
func (s *Session) RecordShortBreak(now time.Time) {
	s.ShortBreaksTaken = append(s.ShortBreaksTaken, now)
	s.ShortBreakCount = len(s.ShortBreaksTaken)
}

// BeginPause marks the start of a pause.
func (s *Session) BeginPause(now time.Time) {
	s.PauseStartTime = now
}

// EndPause folds the just-ended pause into TotalPausedTime and clears
// the pause marker.
func (s *Session) EndPause(now time.Time) {
	if s.PauseStartTime.IsZero() {
		return
	}

	s.TotalPausedTime += now.Sub(s.PauseStartTime)
	s.PauseStartTime = time.Time{}
}

// Clone returns a copy safe to hand to observers.
func (s *Session) Clone() *Session {
	c := *s
	c.ShortBreaksTaken = append([]time.Time(nil), s.ShortBreaksTaken...)

	return &c
}
