// Package models defines the entities recorded by Tally
package models

import (
	"time"

	"github.com/google/uuid"
)

// MinEntryDuration is the shortest span of work that may be persisted as a
// time entry.
const MinEntryDuration = time.Minute

// Project is a client or category that time is recorded against.
type Project struct {
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	MonthlyCapacity float64    `json:"monthly_capacity"`
	IsArchived      bool       `json:"is_archived"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewProject initialises a project. capacity is the fraction of the base
// monthly-hours figure allocated to the project and is clamped to [0, 1].
func NewProject(name, description string, capacity float64) *Project {
	if capacity < 0 {
		capacity = 0
	}

	if capacity > 1 {
		capacity = 1
	}

	now := time.Now()

	return &Project{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     description,
		MonthlyCapacity: capacity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Archive marks the project as archived. Archived projects are excluded from
// aggregation and cannot be tracked against.
func (p *Project) Archive(now time.Time) {
	p.IsArchived = true
	p.ArchivedAt = &now
	p.UpdatedAt = now
}

// TimeEntry is one committed, day-bounded record of work on a project.
type TimeEntry struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	// EndTime is the zero value only while the entry is still running. The
	// sentinel never reaches persisted storage.
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTimeEntry initialises a committed entry for the given span.
func NewTimeEntry(
	projectID, description string,
	startTime, endTime time.Time,
) *TimeEntry {
	now := time.Now()

	return &TimeEntry{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Description: description,
		StartTime:   startTime,
		EndTime:     endTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Running reports whether the entry carries the transient running sentinel.
func (e *TimeEntry) Running() bool {
	return e.EndTime.IsZero()
}

// Duration returns the span of the entry. Running entries are durationed
// against now.
func (e *TimeEntry) Duration(now time.Time) time.Duration {
	end := e.EndTime
	if e.Running() {
		end = now
	}

	return end.Sub(e.StartTime)
}

// TimerSession is an in-progress, not-yet-committed timer run. It is
// persisted as a side channel record so that it survives a process restart
// without becoming a committed entry.
type TimerSession struct {
	ProjectID string    `json:"project_id"`
	StartTime time.Time `json:"start_time"`
	IsRunning bool      `json:"is_running"`
}

// Settings is the persisted local application state.
type Settings struct {
	ActivePage string `json:"active_page"`
	DarkTheme  bool   `json:"dark_theme"`
	TestMode   bool   `json:"test_mode"`
}
