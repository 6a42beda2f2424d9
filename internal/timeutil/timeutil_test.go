package timeutil

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	d := time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)

	if got := DayKey(d); got != "2026-03-07" {
		t.Errorf("DayKey: expected 2026-03-07, got %s", got)
	}
}

func TestWeekKey(t *testing.T) {
	table := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC), "2026-W10"},
		// Jan 1 2027 falls in ISO week 53 of 2026
		{time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
		{time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), "2026-W02"},
	}

	for _, v := range table {
		if got := WeekKey(v.date); got != v.want {
			t.Errorf("WeekKey(%v): expected %s, got %s", v.date, v.want, got)
		}
	}
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

	keys := LastNDays(now, 3)

	want := []string{"2026-03-05", "2026-03-06", "2026-03-07"}

	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}

	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}
