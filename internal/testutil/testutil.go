// Package testutil provides helpers shared by tests across the module.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/store"
)

// Logger returns a logger that discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewClient opens a Bolt client against a throwaway database.
func NewClient(t *testing.T) *store.Client {
	t.Helper()

	db, err := store.NewClient(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewSyncer wraps a throwaway database in a Syncer with a short debounce so
// tests do not have to wait out the production interval.
func NewSyncer(t *testing.T) *store.Syncer {
	t.Helper()

	s := store.NewSyncer(
		NewClient(t),
		Logger(),
		store.WithDebounce(10*time.Millisecond),
	)

	if err := s.Load(); err != nil {
		t.Fatalf("loading syncer: %v", err)
	}

	t.Cleanup(s.Close)

	return s
}

// Project builds a project with fixed timestamps for deterministic
// assertions.
func Project(id, name string, capacity float64) models.Project {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)

	return models.Project{
		ID:              id,
		Name:            name,
		MonthlyCapacity: capacity,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

// Entry builds a committed entry for the given span.
func Entry(id, projectID string, start, end time.Time) models.TimeEntry {
	return models.TimeEntry{
		ID:        id,
		ProjectID: projectID,
		StartTime: start,
		EndTime:   end,
		CreatedAt: end,
		UpdatedAt: end,
	}
}
