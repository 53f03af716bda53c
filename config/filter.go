package config

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/tally/internal/timeutil"
)

// FilterConfig is the reporting period derived from command-line arguments.
type FilterConfig struct {
	StartTime time.Time
	EndTime   time.Time
}

// timeRange returns the start and end time according to the specified time
// period.
func timeRange(period timeutil.Period) (start, end time.Time) {
	now := time.Now()

	start = timeutil.RoundToStart(now)

	end = timeutil.RoundToEnd(now)

	//nolint:exhaustive // other cases covered by default
	switch period {
	case timeutil.PeriodToday:
		return
	case timeutil.PeriodYesterday:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
		end = timeutil.RoundToEnd(start)

		return
	case timeutil.PeriodAllTime:
		start = time.Time{}
		return
	case timeutil.PeriodThisMonth:
		start = time.Date(
			now.Year(),
			now.Month(),
			1,
			0,
			0,
			0,
			0,
			now.Location(),
		)

		return
	default:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
	}

	return
}

// setFilterConfig updates the filter configuration from command-line
// arguments.
func setFilterConfig(ctx *cli.Context, cfg *FilterConfig) error {
	period := timeutil.Period(strings.TrimSpace(ctx.String("period")))

	if period != "" && !slices.Contains(timeutil.PeriodCollection, period) {
		return errInvalidPeriod
	}

	if period != "" {
		cfg.StartTime, cfg.EndTime = timeRange(period)

		return nil
	}

	// default to the current month when no period is given
	cfg.StartTime, cfg.EndTime = timeRange(timeutil.PeriodThisMonth)

	start := ctx.String("start")
	if start != "" {
		dateTime, err := dateparse.ParseAny(start)
		if err != nil {
			return err
		}

		cfg.StartTime = dateTime
	}

	end := ctx.String("end")
	if end != "" {
		dateTime, err := dateparse.ParseAny(end)
		if err != nil {
			return err
		}

		cfg.EndTime = dateTime
	}

	if cfg.EndTime.Before(cfg.StartTime) {
		return errInvalidDateRange
	}

	return nil
}

// Filter initializes and returns the reporting period from command-line
// arguments.
func Filter(ctx *cli.Context) *FilterConfig {
	cfg := &FilterConfig{}

	if err := setFilterConfig(ctx, cfg); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	return cfg
}
