// Package store connects to the data store and manages the session
// snapshot and statistics buckets.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/halidom/respite/internal/apperr"
	"github.com/halidom/respite/internal/session"
)

const (
	sessionBucket = "session"
	dailyBucket   = "daily_stats"
	weeklyBucket  = "weekly_stats"

	sessionKey = "current"
)

var errRespiteRunning = &apperr.Error{
	Message: "is respite already running? Only one instance can be active at a time",
}

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// Compile-time check that *Client implements DB.
var _ DB = (*Client)(nil)

func (c *Client) SaveSession(sess *session.Session) error {
	value, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(sessionKey), value)
	})
}

func (c *Client) Session() (*session.Session, error) {
	var sess *session.Session

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket)).Get([]byte(sessionKey))
		if len(b) == 0 {
			return nil
		}

		sess = &session.Session{}

		return json.Unmarshal(b, sess)
	})

	return sess, err
}

func (c *Client) bucketGet(bucket, key string) (*Bucket, error) {
	var result *Bucket

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if len(b) == 0 {
			return nil
		}

		result = &Bucket{}

		return json.Unmarshal(b, result)
	})

	return result, err
}

func (c *Client) bucketPut(bucket, key string, v *Bucket) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), value)
	})
}

func (c *Client) bucketKeys(bucket string) ([]string, error) {
	var keys []string

	err := c.View(func(tx *bolt.Tx) error {
		// bolt cursors iterate in byte order, which matches the
		// chronological order of YYYY-MM-DD and YYYY-Www keys
		cur := tx.Bucket([]byte(bucket)).Cursor()

		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			keys = append(keys, string(k))
		}

		return nil
	})

	return keys, err
}

func (c *Client) bucketDelete(bucket string, keys []string) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))

		for _, k := range keys {
			err := b.Delete([]byte(k))
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (c *Client) Daily(key string) (*Bucket, error) {
	return c.bucketGet(dailyBucket, key)
}

func (c *Client) Weekly(key string) (*Bucket, error) {
	return c.bucketGet(weeklyBucket, key)
}

func (c *Client) PutDaily(key string, b *Bucket) error {
	return c.bucketPut(dailyBucket, key, b)
}

func (c *Client) PutWeekly(key string, b *Bucket) error {
	return c.bucketPut(weeklyBucket, key, b)
}

func (c *Client) DailyKeys() ([]string, error) {
	return c.bucketKeys(dailyBucket)
}

func (c *Client) WeeklyKeys() ([]string, error) {
	return c.bucketKeys(weeklyBucket)
}

func (c *Client) DeleteDaily(keys ...string) error {
	return c.bucketDelete(dailyBucket, keys)
}

func (c *Client) DeleteWeekly(keys ...string) error {
	return c.bucketDelete(weeklyBucket, keys)
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errRespiteRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{sessionBucket, dailyBucket, weeklyBucket} {
			_, err = tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
