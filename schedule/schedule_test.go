package schedule

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/halidom/respite/alarm"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 0))
}

func TestCount(t *testing.T) {
	table := []struct {
		window time.Duration
		want   int
	}{
		{1 * time.Minute, 1},
		{4 * time.Minute, 1},
		{5 * time.Minute, 1},
		{10 * time.Minute, 2},
		{60 * time.Minute, 12},
		{90 * time.Minute, 12},
		{240 * time.Minute, 12},
	}

	for _, v := range table {
		if got := Count(v.window); got != v.want {
			t.Errorf("Count(%v): expected %d, got %d", v.window, v.want, got)
		}
	}
}

func TestTimesBounds(t *testing.T) {
	rng := newRand()

	start := time.Date(2026, time.March, 7, 9, 0, 0, 0, time.UTC)

	for mins := 1; mins <= 240; mins++ {
		window := time.Duration(mins) * time.Minute

		times := Times(window, start, rng)

		if len(times) < 1 || len(times) > 12 {
			t.Fatalf(
				"window %v: expected 1..12 breaks, got %d",
				window,
				len(times),
			)
		}

		if len(times) != Count(window) {
			t.Errorf(
				"window %v: expected %d breaks, got %d",
				window,
				Count(window),
				len(times),
			)
		}

		lo := start.Add(EdgeMargin)

		hi := start.Add(window - EdgeMargin)
		if hi.Before(lo) {
			hi = lo
		}

		for i, bt := range times {
			if bt.Before(lo) || bt.After(hi) {
				t.Errorf(
					"window %v: break %d at %v outside [%v, %v]",
					window,
					i,
					bt,
					lo,
					hi,
				)
			}

			if i > 0 && len(times) > 1 && !times[i-1].Before(bt) {
				t.Errorf(
					"window %v: breaks not strictly increasing at %d",
					window,
					i,
				)
			}
		}
	}
}

func TestTimesRandomized(t *testing.T) {
	rng := newRand()

	start := time.Now()
	window := 30 * time.Minute

	a := Times(window, start, rng)
	b := Times(window, start, rng)

	if len(a) != len(b) {
		t.Fatalf("expected equal counts, got %d and %d", len(a), len(b))
	}

	same := true

	for i := range a {
		if !a[i].Equal(b[i]) {
			same = false
			break
		}
	}

	if same {
		t.Error("expected successive generations to differ")
	}
}

type recordingScheduler struct {
	scheduled []alarm.ID
	cancelled []string
	failFor   map[alarm.Kind]error
}

func (r *recordingScheduler) Schedule(id alarm.ID, _ time.Time) error {
	if err := r.failFor[id.Kind]; err != nil {
		return err
	}

	r.scheduled = append(r.scheduled, id)

	return nil
}

func (r *recordingScheduler) Cancel(alarm.ID) {}

func (r *recordingScheduler) CancelSession(sessionID string) {
	r.cancelled = append(r.cancelled, sessionID)
}

func TestRegister(t *testing.T) {
	rec := &recordingScheduler{}

	now := time.Now()

	shorts := []time.Time{
		now.Add(2 * time.Minute),
		now.Add(4 * time.Minute),
	}

	Register(rec, "sess", shorts, 3, now.Add(90*time.Minute))

	if len(rec.cancelled) != 1 || rec.cancelled[0] != "sess" {
		t.Errorf("expected prior alarms cleared, got %v", rec.cancelled)
	}

	wantNames := []string{
		"sess_short_break_3",
		"sess_short_break_4",
		"sess_long_break",
	}

	if len(rec.scheduled) != len(wantNames) {
		t.Fatalf(
			"expected %d alarms, got %d",
			len(wantNames),
			len(rec.scheduled),
		)
	}

	for i, id := range rec.scheduled {
		if id.Name() != wantNames[i] {
			t.Errorf(
				"alarm %d: expected %s, got %s",
				i,
				wantNames[i],
				id.Name(),
			)
		}
	}
}

func TestRegisterBestEffort(t *testing.T) {
	rec := &recordingScheduler{
		failFor: map[alarm.Kind]error{
			alarm.ShortBreak: errors.New("platform rejected alarm"),
		},
	}

	now := time.Now()

	Register(
		rec,
		"sess",
		[]time.Time{now.Add(time.Minute)},
		0,
		now.Add(time.Hour),
	)

	// the long break alarm must still be registered after a short
	// break failure
	if len(rec.scheduled) != 1 || rec.scheduled[0].Kind != alarm.LongBreak {
		t.Errorf("expected long break registered, got %v", rec.scheduled)
	}
}
