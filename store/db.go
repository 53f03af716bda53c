package store

import (
	"github.com/ayoisaiah/tally/internal/models"
)

// Universe selects which of the two parallel datasets a read or write is
// routed to. Production and test data are never merged.
type Universe string

const (
	Production Universe = "production"
	Test       Universe = "test"
)

// DB is the persistence backend contract.
type DB interface {
	// LoadProjects returns all saved projects in the given universe.
	LoadProjects(u Universe) ([]models.Project, error)
	// SaveProjects replaces the saved project set in the given universe.
	SaveProjects(u Universe, projects []models.Project) error
	// LoadEntries returns all saved time entries in the given universe.
	LoadEntries(u Universe) ([]models.TimeEntry, error)
	// SaveEntries replaces the saved entry set in the given universe.
	SaveEntries(u Universe, entries []models.TimeEntry) error
	// LoadSettings returns the persisted local state, or defaults when
	// nothing has been saved yet.
	LoadSettings() (*models.Settings, error)
	SaveSettings(settings *models.Settings) error
	// TimerSession returns the persisted in-progress session record, or nil
	// when there is none.
	TimerSession() (*models.TimerSession, error)
	SaveTimerSession(sess *models.TimerSession) error
	DeleteTimerSession() error
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}
