package stats

import (
	"math"
	"time"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/timeutil"
)

// MonthlyTargetHours computes the hours targeted for a project from its
// allocation percentage and the base monthly-hours figure. The allocation is
// clamped to [0, 100] and the result is rounded to one decimal place.
func MonthlyTargetHours(allocationPercent, baseMonthlyHours float64) float64 {
	if allocationPercent < 0 {
		allocationPercent = 0
	}

	if allocationPercent > 100 {
		allocationPercent = 100
	}

	return timeutil.RoundHours(allocationPercent / 100 * baseMonthlyHours)
}

// TotalMonthlyTarget sums the monthly target hours over all non-archived
// projects.
func TotalMonthlyTarget(
	projects []models.Project,
	baseMonthlyHours float64,
) float64 {
	var total float64

	for i := range projects {
		p := projects[i]

		if p.IsArchived {
			continue
		}

		total += MonthlyTargetHours(
			p.MonthlyCapacity*100,
			baseMonthlyHours,
		)
	}

	return timeutil.RoundHours(total)
}

// RemainingWorkingDays counts the weekdays (Mon-Fri) from the given date
// through the last day of its month, inclusive of the given day.
func RemainingWorkingDays(date time.Time) int {
	last := time.Date(
		date.Year(),
		date.Month(),
		timeutil.DaysIn(date),
		0,
		0,
		0,
		0,
		date.Location(),
	)

	var days int

	for d := timeutil.RoundToStart(date); !d.After(last); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			days++
		}
	}

	return days
}

// PredictCompletionDate estimates when the target will be reached at the
// given daily average pace. It returns nil if the target is already met or
// the pace is not positive.
func PredictCompletionDate(
	current, target, dailyAverage float64,
	now time.Time,
) *time.Time {
	if current >= target || dailyAverage <= 0 {
		return nil
	}

	days := int(math.Ceil((target - current) / dailyAverage))

	date := now.AddDate(0, 0, days)

	return &date
}

// RecommendedDailyHours divides the remaining hours by the remaining working
// days in the month (inclusive of today). It returns 0 once the target is
// met or no working days remain.
func RecommendedDailyHours(current, target float64, now time.Time) float64 {
	remaining := target - current
	if remaining <= 0 {
		return 0
	}

	days := RemainingWorkingDays(now)
	if days == 0 {
		return 0
	}

	return timeutil.RoundHours(remaining / float64(days))
}
