package stats

import (
	"time"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/timeutil"
)

// HeatmapCell is one day of a calendar heatmap.
type HeatmapCell struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
	Level int       `json:"level"`
}

// HeatmapLevel buckets a daily hours value into an activity level from 0-4.
func HeatmapLevel(hours float64) int {
	switch {
	case hours <= 0:
		return 0
	case hours < 2:
		return 1
	case hours < 4:
		return 2
	case hours < 6:
		return 3
	default:
		return 4
	}
}

// Rolling12MonthRange returns the [now - 1 year + 1 day, now] range used for
// the activity heatmap, normalised to whole-day boundaries.
func Rolling12MonthRange(now time.Time) (start, end time.Time) {
	start = timeutil.RoundToStart(now.AddDate(-1, 0, 1))
	end = timeutil.RoundToEnd(now)

	return start, end
}

// GenerateHeatmap produces Sunday-aligned week rows of 7 cells each for the
// requested range. Cells before the first day and after the last day of the
// range are nil, mirroring the padding of a calendar-heatmap display.
func GenerateHeatmap(
	entries []models.TimeEntry,
	start, end time.Time,
	now time.Time,
) [][]*HeatmapCell {
	start = timeutil.RoundToStart(start)
	end = timeutil.RoundToStart(end)

	if end.Before(start) {
		return nil
	}

	var weeks [][]*HeatmapCell

	week := make([]*HeatmapCell, 0, 7)

	// left-pad the first week so that cell 0 is always a Sunday
	for i := 0; i < int(start.Weekday()); i++ {
		week = append(week, nil)
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		hours := DailyHours(entries, day, now)

		week = append(week, &HeatmapCell{
			Date:  day,
			Hours: hours,
			Level: HeatmapLevel(hours),
		})

		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]*HeatmapCell, 0, 7)
		}
	}

	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, nil)
		}

		weeks = append(weeks, week)
	}

	return weeks
}
