// Package notify delivers desktop notifications for break events.
package notify

import (
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gen2brain/beeep"

	"github.com/halidom/respite/config"
)

// Kind identifies a notification event. Kinds map one-to-one to the
// break and completion transitions of the session state machine.
type Kind string

const (
	ShortBreakStarted Kind = "short_break_started"
	ShortBreakEnded   Kind = "short_break_ended"
	LongBreakStarted  Kind = "long_break_started"
	LongBreakEnded    Kind = "long_break_ended"
)

var messages = map[Kind][2]string{
	ShortBreakStarted: {"Time for a breather", "Look away from the screen for a moment"},
	ShortBreakEnded:   {"Break over", "Back to your task"},
	LongBreakStarted:  {"Focus period complete", "Take a long break, you earned it"},
	LongBreakEnded:    {"Long break over", "Ready for the next focus period"},
}

// Notifier sends a fire-and-forget notification. Implementations must
// never block the caller on delivery problems.
type Notifier interface {
	Notify(kind Kind)
}

// Desktop sends system notifications through beeep.
type Desktop struct{}

func (Desktop) Notify(kind Kind) {
	m, ok := messages[kind]
	if !ok {
		return
	}

	// pathToIcon will be an empty string if file is not found
	pathToIcon, _ := xdg.SearchDataFile(
		filepath.Join(config.Dir(), "static", "icon.png"),
	)

	err := beeep.Notify(m[0], m[1], pathToIcon)
	if err != nil {
		slog.Error(
			"unable to display notification",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}

// Noop discards notifications. Used when notifications are disabled
// and in tests.
type Noop struct{}

func (Noop) Notify(Kind) {}
