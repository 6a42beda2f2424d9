package stats

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/halidom/respite/store"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()

	db, err := store.NewClient(filepath.Join(t.TempDir(), "respite.db"))
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return New(db)
}

func TestRecordAccumulates(t *testing.T) {
	a := newTestAggregator(t)

	a.now = func() time.Time {
		return time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	}

	if err := a.Record(125, 2, 0); err != nil {
		t.Fatal(err)
	}

	if err := a.Record(0, 0, 1); err != nil {
		t.Fatal(err)
	}

	want := &store.Bucket{
		TotalFocusTime:    125,
		ShortBreaksTaken:  2,
		LongBreaksTaken:   1,
		SessionsCompleted: 1,
	}

	today, err := a.Today()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, today); diff != "" {
		t.Errorf("daily bucket mismatch (-want +got):\n%s", diff)
	}

	week, err := a.ThisWeek()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, week); diff != "" {
		t.Errorf("weekly bucket mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletionRequiresLongBreak(t *testing.T) {
	a := newTestAggregator(t)

	// hours of focus time without a long break never complete a session
	if err := a.Record(7200, 5, 0); err != nil {
		t.Fatal(err)
	}

	today, err := a.Today()
	if err != nil {
		t.Fatal(err)
	}

	if today.SessionsCompleted != 0 {
		t.Errorf(
			"expected 0 completed sessions, got %d",
			today.SessionsCompleted,
		)
	}

	// each long-break call counts one completion
	if err = a.Record(0, 0, 1); err != nil {
		t.Fatal(err)
	}

	if err = a.Record(0, 0, 1); err != nil {
		t.Fatal(err)
	}

	today, err = a.Today()
	if err != nil {
		t.Fatal(err)
	}

	if today.SessionsCompleted != 2 {
		t.Errorf(
			"expected 2 completed sessions, got %d",
			today.SessionsCompleted,
		)
	}
}

func TestDailyRetention(t *testing.T) {
	a := newTestAggregator(t)

	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

	for i := range 35 {
		day := base.AddDate(0, 0, i)
		a.now = func() time.Time { return day }

		if err := a.Record(60, 0, 0); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := a.db.DailyKeys()
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 30 {
		t.Fatalf("expected 30 daily buckets, got %d", len(keys))
	}

	// the oldest five days must be gone
	if keys[0] != "2026-01-06" {
		t.Errorf("expected oldest surviving key 2026-01-06, got %s", keys[0])
	}

	last := keys[len(keys)-1]
	if last != "2026-02-04" {
		t.Errorf("expected newest key 2026-02-04, got %s", last)
	}
}

func TestWeeklyRetention(t *testing.T) {
	a := newTestAggregator(t)

	base := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)

	// 15 distinct ISO weeks
	for i := range 15 {
		day := base.AddDate(0, 0, i*7)
		a.now = func() time.Time { return day }

		if err := a.Record(60, 0, 0); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := a.db.WeeklyKeys()
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 12 {
		t.Fatalf("expected 12 weekly buckets, got %d", len(keys))
	}
}

func TestLastNDaysZeroFills(t *testing.T) {
	a := newTestAggregator(t)

	now := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	if err := a.Record(300, 1, 0); err != nil {
		t.Fatal(err)
	}

	days, err := a.LastNDays(7)
	if err != nil {
		t.Fatal(err)
	}

	if len(days) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(days))
	}

	for i, d := range days {
		wantKey := fmt.Sprintf("2026-03-%02d", i+1)
		if d.Date != wantKey {
			t.Errorf("entry %d: expected date %s, got %s", i, wantKey, d.Date)
		}

		if i < 6 && d.Bucket.TotalFocusTime != 0 {
			t.Errorf("entry %d: expected zeroed bucket, got %+v", i, d.Bucket)
		}
	}

	if days[6].Bucket.TotalFocusTime != 300 {
		t.Errorf(
			"expected today's focus time 300, got %d",
			days[6].Bucket.TotalFocusTime,
		)
	}
}
