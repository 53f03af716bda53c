// Package store connects to the data store and synchronises the in-memory
// working state with it.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/tally/internal/models"
)

var pathToDB string

var errTallyRunning = errors.New(
	"is Tally already running? Only one instance can be active at a time",
)

const (
	bucketProjects     = "projects"
	bucketEntries      = "entries"
	bucketProjectsTest = "projects_test"
	bucketEntriesTest  = "entries_test"
	bucketState        = "state"
)

const (
	keySettings     = "settings"
	keyTimerSession = "timer_session"
)

var buckets = []string{
	bucketProjects,
	bucketEntries,
	bucketProjectsTest,
	bucketEntriesTest,
	bucketState,
}

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

func projectsBucket(u Universe) []byte {
	if u == Test {
		return []byte(bucketProjectsTest)
	}

	return []byte(bucketProjects)
}

func entriesBucket(u Universe) []byte {
	if u == Test {
		return []byte(bucketEntriesTest)
	}

	return []byte(bucketEntries)
}

func (c *Client) LoadProjects(u Universe) ([]models.Project, error) {
	var projects []models.Project

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(projectsBucket(u)).Cursor()

		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var p models.Project

			if jsonErr := json.Unmarshal(v, &p); jsonErr != nil {
				// corrupt records are dropped, not fatal
				slog.Debug(
					"discarding corrupt project record",
					slog.String("key", string(k)),
					slog.Any("error", jsonErr),
				)

				continue
			}

			projects = append(projects, p)
		}

		return nil
	})

	return projects, err
}

func (c *Client) SaveProjects(u Universe, projects []models.Project) error {
	return c.replaceAll(projectsBucket(u), len(projects), func(i int) (key, value []byte, err error) {
		b, err := json.Marshal(projects[i])

		return []byte(projects[i].ID), b, err
	})
}

func (c *Client) LoadEntries(u Universe) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(entriesBucket(u)).Cursor()

		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var e models.TimeEntry

			if jsonErr := json.Unmarshal(v, &e); jsonErr != nil {
				slog.Debug(
					"discarding corrupt entry record",
					slog.String("key", string(k)),
					slog.Any("error", jsonErr),
				)

				continue
			}

			entries = append(entries, e)
		}

		return nil
	})

	return entries, err
}

func (c *Client) SaveEntries(u Universe, entries []models.TimeEntry) error {
	return c.replaceAll(entriesBucket(u), len(entries), func(i int) (key, value []byte, err error) {
		b, err := json.Marshal(entries[i])

		return []byte(entries[i].ID), b, err
	})
}

// replaceAll overwrites the contents of a bucket with a new record set in a
// single transaction.
func (c *Client) replaceAll(
	bucket []byte,
	n int,
	record func(i int) (key, value []byte, err error),
) error {
	return c.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil {
			return err
		}

		b, err := tx.CreateBucket(bucket)
		if err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			k, v, err := record(i)
			if err != nil {
				return err
			}

			if err := b.Put(k, v); err != nil {
				return err
			}
		}

		return nil
	})
}

func (c *Client) LoadSettings() (*models.Settings, error) {
	settings := &models.Settings{}

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketState)).Get([]byte(keySettings))
		if len(v) == 0 {
			return nil
		}

		return json.Unmarshal(v, settings)
	})
	if err != nil {
		// fall back to defaults rather than failing startup
		slog.Debug("discarding corrupt settings record", slog.Any("error", err))

		return &models.Settings{}, nil
	}

	return settings, nil
}

func (c *Client) SaveSettings(settings *models.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketState)).Put([]byte(keySettings), value)
	})
}

func (c *Client) TimerSession() (*models.TimerSession, error) {
	var (
		sess  models.TimerSession
		found bool
	)

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketState)).Get([]byte(keyTimerSession))
		if len(v) == 0 {
			return nil
		}

		if jsonErr := json.Unmarshal(v, &sess); jsonErr != nil {
			slog.Debug(
				"discarding corrupt timer session record",
				slog.Any("error", jsonErr),
			)

			return nil
		}

		found = true

		return nil
	})
	if err != nil || !found {
		return nil, err
	}

	return &sess, nil
}

func (c *Client) SaveTimerSession(sess *models.TimerSession) error {
	value, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketState)).
			Put([]byte(keyTimerSession), value)
	})
}

func (c *Client) DeleteTimerSession() error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketState)).Delete([]byte(keyTimerSession))
	})
}

func (c *Client) Open() error {
	db, err := openDB(pathToDB)
	if err != nil {
		return err
	}

	*c = Client{
		db,
	}

	return nil
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
			return nil, errTallyRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	pathToDB = dbPath

	db, err := openDB(pathToDB)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
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
