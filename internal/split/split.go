// Package split converts a raw timer span into one or more
// calendar-day-bounded time entries.
package split

import (
	"fmt"
	"time"

	"github.com/ayoisaiah/tally/internal/apperr"
	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/timeutil"
)

var (
	ErrEndBeforeStart = &apperr.Error{
		Message: "the end of an entry must be later than its start",
	}

	ErrTooShort = &apperr.Error{
		Message: "a time entry must last for at least one minute",
	}
)

// Span splits the (start, end) span at local day boundaries and returns the
// resulting entries in chronological order. The first fragment is clipped to
// the end of its day, the last to the start of its day, and any full
// intermediate days receive full-day spans. Fragments after the first are
// marked as continuations through a description suffix.
//
// The one-minute floor applies to the whole span and to each fragment on its
// own: a boundary sliver shorter than a minute is dropped rather than stored,
// so every returned entry satisfies the floor.
func Span(
	projectID, description string,
	start, end time.Time,
) ([]models.TimeEntry, error) {
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	if end.Sub(start) < models.MinEntryDuration {
		return nil, ErrTooShort
	}

	if timeutil.SameDay(start, end) {
		return []models.TimeEntry{
			*models.NewTimeEntry(projectID, description, start, end),
		}, nil
	}

	type fragment struct {
		start, end time.Time
	}

	var frags []fragment

	for cursor := start; cursor.Before(end); cursor = timeutil.RoundToStart(cursor).AddDate(0, 0, 1) {
		fragEnd := timeutil.RoundToEnd(cursor)

		if timeutil.SameDay(cursor, end) {
			fragEnd = end
		}

		if fragEnd.Sub(cursor) < models.MinEntryDuration {
			continue
		}

		frags = append(frags, fragment{start: cursor, end: fragEnd})
	}

	if len(frags) == 0 {
		return nil, ErrTooShort
	}

	entries := make([]models.TimeEntry, 0, len(frags))

	for i, f := range frags {
		desc := description
		if i > 0 {
			desc = continuation(description, i+1)
		}

		entries = append(
			entries,
			*models.NewTimeEntry(projectID, desc, f.start, f.end),
		)
	}

	return entries, nil
}

// continuation marks a split fragment so it can be told apart from the
// original note.
func continuation(description string, day int) string {
	if description == "" {
		return fmt.Sprintf("(day %d)", day)
	}

	return fmt.Sprintf("%s (day %d)", description, day)
}
