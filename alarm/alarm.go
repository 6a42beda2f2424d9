// Package alarm abstracts the wake-up facility that delivers break
// alarms at or after their scheduled time.
package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/halidom/respite/internal/apperr"
)

// Kind classifies an alarm.
type Kind string

const (
	ShortBreak Kind = "short_break"
	LongBreak  Kind = "long_break"
)

var errUnrecognizedAlarm = &apperr.Error{
	Message: "unrecognized alarm name: %s",
}

// ID identifies a scheduled alarm. Alarms are owned by the session
// that scheduled them; a fired alarm whose session is no longer live
// must be ignored by the receiver.
type ID struct {
	Session string
	Kind    Kind
	Index   int
}

// Name renders the ID as its canonical wire name:
// {session}_short_break_{index} or {session}_long_break.
func (id ID) Name() string {
	if id.Kind == LongBreak {
		return id.Session + "_long_break"
	}

	return fmt.Sprintf("%s_short_break_%d", id.Session, id.Index)
}

// Parse recovers an ID from its wire name.
func Parse(name string) (ID, error) {
	if session, ok := strings.CutSuffix(name, "_long_break"); ok {
		return ID{Session: session, Kind: LongBreak}, nil
	}

	marker := "_short_break_"

	i := strings.LastIndex(name, marker)
	if i < 0 {
		return ID{}, errUnrecognizedAlarm.Fmt(name)
	}

	index, err := strconv.Atoi(name[i+len(marker):])
	if err != nil {
		return ID{}, errUnrecognizedAlarm.Fmt(name)
	}

	return ID{
		Session: name[:i],
		Kind:    ShortBreak,
		Index:   index,
	}, nil
}

// Scheduler registers one-shot wake-ups. Delivery is at or after the
// requested time, possibly duplicated, never before. There is no
// ordering guarantee between independently scheduled alarms beyond
// their fire times.
type Scheduler interface {
	// Schedule registers a wake-up, replacing any pending alarm with
	// the same ID.
	Schedule(id ID, at time.Time) error
	// Cancel removes a pending alarm. Unknown IDs are a no-op.
	Cancel(id ID)
	// CancelSession removes every pending alarm owned by a session.
	CancelSession(sessionID string)
}
