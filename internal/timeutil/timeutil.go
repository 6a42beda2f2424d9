// Package timeutil provides helpers for statistics bucket keys and
// day arithmetic.
package timeutil

import (
	"fmt"
	"time"
)

// DayKey formats a time as a daily statistics bucket key (YYYY-MM-DD).
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey formats a time as an ISO-week statistics bucket key
// (YYYY-Www). The year is the ISO week-numbering year, which differs
// from the calendar year around January 1st.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()

	return fmt.Sprintf("%d-W%02d", year, week)
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// LastNDays returns day keys for the n days ending today, oldest
// first.
func LastNDays(now time.Time, n int) []string {
	keys := make([]string, 0, n)

	start := RoundToStart(now).AddDate(0, 0, -(n - 1))
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		keys = append(keys, DayKey(d))
	}

	return keys
}
