// Package stats derives aggregate statistics from recorded time entries.
// Every function is pure: the output is re-derivable from the inputs and no
// input slice is ever mutated.
package stats

import (
	"sort"
	"time"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/timeutil"
)

// DefaultBaseMonthlyHours is the baseline monthly-hours figure that project
// capacity ratios are applied to.
const DefaultBaseMonthlyHours = 140

// ProjectHours pairs a project with its total recorded hours for a period.
type ProjectHours struct {
	ProjectID string  `json:"project_id"`
	Name      string  `json:"name"`
	Hours     float64 `json:"hours"`
}

// WeekBucket is one month-relative week of a monthly distribution.
type WeekBucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Week  int       `json:"week"`
	Hours float64   `json:"hours"`
}

// entryHours returns the duration of an entry in hours, with running entries
// durationed against now.
func entryHours(e *models.TimeEntry, now time.Time) float64 {
	return e.Duration(now).Hours()
}

// DailyHours sums the hours of all entries that started on the given day,
// rounded to one decimal place.
func DailyHours(
	entries []models.TimeEntry,
	day time.Time,
	now time.Time,
) float64 {
	var total float64

	for i := range entries {
		e := entries[i]

		if timeutil.WithinRange(e.StartTime, day, day) {
			total += entryHours(&e, now)
		}
	}

	return timeutil.RoundHours(total)
}

// DailyProjectHours groups the hours recorded on the given day by project
// name. Archived projects are excluded even when they have entries that day.
// The result is sorted descending by hours.
func DailyProjectHours(
	entries []models.TimeEntry,
	projects []models.Project,
	day time.Time,
	now time.Time,
) []ProjectHours {
	return distribution(entries, projects, day, day, now, false)
}

// ProjectDistribution sums hours per project across a range. Archived
// projects, unknown project IDs, and zero-hour results are dropped, and the
// result is sorted descending by hours.
func ProjectDistribution(
	entries []models.TimeEntry,
	projects []models.Project,
	start, end time.Time,
	now time.Time,
) []ProjectHours {
	return distribution(entries, projects, start, end, now, true)
}

func distribution(
	entries []models.TimeEntry,
	projects []models.Project,
	start, end time.Time,
	now time.Time,
	dropZero bool,
) []ProjectHours {
	active := make(map[string]*models.Project, len(projects))

	for i := range projects {
		p := &projects[i]

		if !p.IsArchived {
			active[p.ID] = p
		}
	}

	totals := make(map[string]float64)

	for i := range entries {
		e := entries[i]

		if _, ok := active[e.ProjectID]; !ok {
			continue
		}

		if timeutil.WithinRange(e.StartTime, start, end) {
			totals[e.ProjectID] += entryHours(&e, now)
		}
	}

	result := make([]ProjectHours, 0, len(totals))

	for id, hours := range totals {
		rounded := timeutil.RoundHours(hours)

		if dropZero && rounded == 0 {
			continue
		}

		result = append(result, ProjectHours{
			ProjectID: id,
			Name:      active[id].Name,
			Hours:     rounded,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Hours != result[j].Hours {
			return result[i].Hours > result[j].Hours
		}

		return result[i].Name < result[j].Name
	})

	return result
}

// WeeklyDistribution tiles the 7 days beginning at weekStart into day
// buckets of total hours.
func WeeklyDistribution(
	entries []models.TimeEntry,
	weekStart time.Time,
	now time.Time,
) [7]float64 {
	var days [7]float64

	for i := range days {
		day := weekStart.AddDate(0, 0, i)
		days[i] = DailyHours(entries, day, now)
	}

	return days
}

// WeekOfMonth returns the month-relative week number of t:
// ceil((dayOfMonth + firstWeekdayOffset) / 7), where firstWeekdayOffset is
// the 0-indexed weekday of the 1st of the month. Week boundaries are
// month-relative, not ISO calendar weeks.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := int(first.Weekday())

	return (t.Day() + offset + 6) / 7
}

// MonthlyDistribution tiles the month containing the given time into
// month-relative week buckets of total hours.
func MonthlyDistribution(
	entries []models.TimeEntry,
	month time.Time,
	now time.Time,
) []WeekBucket {
	first := time.Date(
		month.Year(),
		month.Month(),
		1,
		0,
		0,
		0,
		0,
		month.Location(),
	)
	last := first.AddDate(0, 1, -1)

	numWeeks := WeekOfMonth(last)

	buckets := make([]WeekBucket, numWeeks)

	for i := range buckets {
		// the first bucket starts at the 1st; subsequent buckets start on
		// the Sunday that begins the month-relative week
		start := first.AddDate(0, 0, i*7-int(first.Weekday()))
		if start.Before(first) {
			start = first
		}

		end := first.AddDate(0, 0, (i+1)*7-int(first.Weekday())-1)
		if end.After(last) {
			end = last
		}

		buckets[i] = WeekBucket{
			Week:  i + 1,
			Start: timeutil.RoundToStart(start),
			End:   timeutil.RoundToEnd(end),
		}
	}

	for i := range entries {
		e := entries[i]

		if !timeutil.WithinRange(e.StartTime, first, last) {
			continue
		}

		w := WeekOfMonth(e.StartTime) - 1
		if w >= 0 && w < numWeeks {
			buckets[w].Hours += entryHours(&e, now)
		}
	}

	for i := range buckets {
		buckets[i].Hours = timeutil.RoundHours(buckets[i].Hours)
	}

	return buckets
}

// LongestSession returns the longest session on the given day in whole
// minutes, or 0 when no entries exist that day.
func LongestSession(
	entries []models.TimeEntry,
	day time.Time,
	now time.Time,
) int {
	var longest float64

	for i := range entries {
		e := entries[i]

		if !timeutil.WithinRange(e.StartTime, day, day) {
			continue
		}

		mins := e.Duration(now).Minutes()
		if mins > longest {
			longest = mins
		}
	}

	return timeutil.Round(longest)
}

// AverageSession returns the mean session length on the given day in whole
// minutes, or 0 when no entries exist that day.
func AverageSession(
	entries []models.TimeEntry,
	day time.Time,
	now time.Time,
) int {
	var (
		total float64
		count int
	)

	for i := range entries {
		e := entries[i]

		if !timeutil.WithinRange(e.StartTime, day, day) {
			continue
		}

		total += e.Duration(now).Minutes()
		count++
	}

	if count == 0 {
		return 0
	}

	return timeutil.Round(total / float64(count))
}
