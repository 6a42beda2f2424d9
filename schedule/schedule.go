// Package schedule computes randomized short-break times and registers
// them with the alarm facility.
package schedule

import (
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/halidom/respite/alarm"
)

const (
	// EdgeMargin keeps breaks away from the window boundaries.
	EdgeMargin = 30 * time.Second

	// minSpacing is the smallest admissible segment length; windows too
	// short to honor it get their break count reduced.
	minSpacing = time.Minute

	maxBreaks = 12

	// jitterFraction bounds the random perturbation of each midpoint,
	// as a fraction of the segment length.
	jitterFraction = 0.15
)

// Count determines how many breaks fit in a window: one per five
// minutes, at least 1, at most 12, reduced when the window cannot
// hold the implied spacing.
func Count(window time.Duration) int {
	count := int(window.Minutes()) / 5
	if count < 1 {
		count = 1
	}

	if count > maxBreaks {
		count = maxBreaks
	}

	if window/time.Duration(count+1) < minSpacing {
		reduced := int(window/minSpacing) - 1
		if reduced < 1 {
			reduced = 1
		}

		if reduced < count {
			count = reduced
		}
	}

	return count
}

// Times computes the break times for a window beginning at start:
// segment midpoints perturbed within ±15% of segment length, clamped
// to [start+30s, end-30s], ascending. Successive calls yield
// different times but the same count and bounds.
func Times(window time.Duration, start time.Time, rng *rand.Rand) []time.Time {
	count := Count(window)

	segment := window / time.Duration(count+1)

	lo := start.Add(EdgeMargin)

	hi := start.Add(window - EdgeMargin)
	if hi.Before(lo) {
		hi = lo
	}

	times := make([]time.Time, 0, count)

	for i := 1; i <= count; i++ {
		midpoint := start.Add(segment * time.Duration(i))

		jitter := time.Duration(
			(rng.Float64()*2 - 1) * jitterFraction * float64(segment),
		)

		t := midpoint.Add(jitter)

		if t.Before(lo) {
			t = lo
		}

		if t.After(hi) {
			t = hi
		}

		times = append(times, t)
	}

	sort.Slice(times, func(i, j int) bool {
		return times[i].Before(times[j])
	})

	return times
}

// Register clears every pending wake-up for the session, then
// registers one alarm per short-break time (indexed from firstIndex)
// and one for the long break. Registration is best-effort: a failed
// alarm is logged and skipped, never fatal.
func Register(
	s alarm.Scheduler,
	sessionID string,
	shorts []time.Time,
	firstIndex int,
	long time.Time,
) {
	s.CancelSession(sessionID)

	for i, t := range shorts {
		id := alarm.ID{
			Session: sessionID,
			Kind:    alarm.ShortBreak,
			Index:   firstIndex + i,
		}

		err := s.Schedule(id, t)
		if err != nil {
			slog.Error(
				"failed to register short break alarm",
				slog.String("alarm", id.Name()),
				slog.Any("error", err),
			)
		}
	}

	if long.IsZero() {
		return
	}

	id := alarm.ID{Session: sessionID, Kind: alarm.LongBreak}

	err := s.Schedule(id, long)
	if err != nil {
		slog.Error(
			"failed to register long break alarm",
			slog.String("alarm", id.Name()),
			slog.Any("error", err),
		)
	}
}
