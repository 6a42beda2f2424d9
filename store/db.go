package store

import "github.com/halidom/respite/internal/session"

// Bucket is one daily or weekly statistics aggregate. Counts only
// ever grow within a bucket.
type Bucket struct {
	TotalFocusTime    int `json:"total_focus_time"` // seconds
	ShortBreaksTaken  int `json:"short_breaks_taken"`
	LongBreaksTaken   int `json:"long_breaks_taken"`
	SessionsCompleted int `json:"sessions_completed"`
}

// DB is the persistence interface. The in-memory session is always
// authoritative; the store is a mirror for cross-context observers.
type DB interface {
	// SaveSession overwrites the current session snapshot.
	SaveSession(sess *session.Session) error
	// Session returns the persisted snapshot, or nil if none exists.
	Session() (*session.Session, error)

	// Daily returns the bucket for a day key, or nil if absent.
	Daily(key string) (*Bucket, error)
	// Weekly returns the bucket for an ISO-week key, or nil if absent.
	Weekly(key string) (*Bucket, error)
	// PutDaily overwrites a daily bucket.
	PutDaily(key string, b *Bucket) error
	// PutWeekly overwrites a weekly bucket.
	PutWeekly(key string, b *Bucket) error
	// DailyKeys returns all daily bucket keys in ascending order.
	DailyKeys() ([]string, error)
	// WeeklyKeys returns all weekly bucket keys in ascending order.
	WeeklyKeys() ([]string, error)
	// DeleteDaily removes daily buckets by key.
	DeleteDaily(keys ...string) error
	// DeleteWeekly removes weekly buckets by key.
	DeleteWeekly(keys ...string) error

	// Close ends the database connection.
	Close() error
}
