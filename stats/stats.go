// Package stats accumulates focus time and break counts into daily
// and ISO-week buckets.
package stats

import (
	"sync"
	"time"

	"github.com/halidom/respite/internal/timeutil"
	"github.com/halidom/respite/store"
)

const (
	dailyRetention  = 30
	weeklyRetention = 12
)

// DayStat pairs a daily bucket with its date key.
type DayStat struct {
	Date   string       `json:"date"`
	Bucket store.Bucket `json:"bucket"`
}

// Aggregator loads, updates and trims statistics buckets. Counts
// within a bucket only ever grow.
type Aggregator struct {
	mu  sync.Mutex
	db  store.DB
	now func() time.Time
}

func New(db store.DB) *Aggregator {
	return &Aggregator{
		db:  db,
		now: time.Now,
	}
}

// Record adds the deltas to today's and this week's buckets, creating
// them zeroed if absent. A session counts as completed exactly when a
// call carries longBreaks > 0: completion means reaching the long
// break, not accumulating focus time. Retention trimming runs after
// every update.
func (a *Aggregator) Record(focusSeconds, shortBreaks, longBreaks int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()

	dayKey := timeutil.DayKey(now)
	weekKey := timeutil.WeekKey(now)

	daily, err := a.db.Daily(dayKey)
	if err != nil {
		return err
	}

	if daily == nil {
		daily = &store.Bucket{}
	}

	weekly, err := a.db.Weekly(weekKey)
	if err != nil {
		return err
	}

	if weekly == nil {
		weekly = &store.Bucket{}
	}

	for _, b := range []*store.Bucket{daily, weekly} {
		b.TotalFocusTime += focusSeconds
		b.ShortBreaksTaken += shortBreaks
		b.LongBreaksTaken += longBreaks

		if longBreaks > 0 {
			b.SessionsCompleted++
		}
	}

	if err = a.db.PutDaily(dayKey, daily); err != nil {
		return err
	}

	if err = a.db.PutWeekly(weekKey, weekly); err != nil {
		return err
	}

	return a.trim()
}

// trim evicts the oldest buckets beyond the retention windows. Keys
// sort chronologically, so the head of the list is the oldest.
func (a *Aggregator) trim() error {
	dailyKeys, err := a.db.DailyKeys()
	if err != nil {
		return err
	}

	if excess := len(dailyKeys) - dailyRetention; excess > 0 {
		if err = a.db.DeleteDaily(dailyKeys[:excess]...); err != nil {
			return err
		}
	}

	weeklyKeys, err := a.db.WeeklyKeys()
	if err != nil {
		return err
	}

	if excess := len(weeklyKeys) - weeklyRetention; excess > 0 {
		if err = a.db.DeleteWeekly(weeklyKeys[:excess]...); err != nil {
			return err
		}
	}

	return nil
}

// Today returns today's bucket, zeroed when absent.
func (a *Aggregator) Today() (*store.Bucket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := a.db.Daily(timeutil.DayKey(a.now()))
	if err != nil {
		return nil, err
	}

	if b == nil {
		b = &store.Bucket{}
	}

	return b, nil
}

// ThisWeek returns the current ISO week's bucket, zeroed when absent.
func (a *Aggregator) ThisWeek() (*store.Bucket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := a.db.Weekly(timeutil.WeekKey(a.now()))
	if err != nil {
		return nil, err
	}

	if b == nil {
		b = &store.Bucket{}
	}

	return b, nil
}

// LastNDays returns one entry per day for the n days ending today,
// oldest first. Missing days come back zeroed, not as errors.
func (a *Aggregator) LastNDays(n int) ([]DayStat, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys := timeutil.LastNDays(a.now(), n)

	result := make([]DayStat, 0, len(keys))

	for _, key := range keys {
		b, err := a.db.Daily(key)
		if err != nil {
			return nil, err
		}

		if b == nil {
			b = &store.Bucket{}
		}

		result = append(result, DayStat{Date: key, Bucket: *b})
	}

	return result, nil
}
