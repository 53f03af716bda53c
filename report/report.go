package report

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/hako/durafmt"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/ui"
)

// SessionAdded confirms that a span was recorded, noting when it was split
// into several entries.
func SessionAdded(count int) {
	if count > 1 {
		pterm.Info.Printfln("entry recorded as %d day-bounded parts", count)
		return
	}

	pterm.Info.Println("entry recorded")
}

// ListEntries prints a table of time entries with their project names in the
// order given; callers control sorting so that row numbers stay meaningful
// for follow-up selection.
func ListEntries(
	w io.Writer,
	entries []models.TimeEntry,
	projects []models.Project,
	twentyFourHour bool,
) {
	byID := make(map[string]string, len(projects))

	for i := range projects {
		byID[projects[i].ID] = projects[i].Name
	}

	timeFormat := "03:04 PM"
	if twentyFourHour {
		timeFormat = "15:04"
	}

	tableBody := make([][]string, 0, len(entries)+1)

	tableBody = append(tableBody, []string{
		"#",
		"DATE",
		"START",
		"END",
		"DURATION",
		"PROJECT",
		"NOTES",
	})

	for i := range entries {
		e := entries[i]

		duration := durafmt.Parse(e.EndTime.Sub(e.StartTime)).
			LimitToUnit("hours").
			LimitFirstN(2)

		tableBody = append(tableBody, []string{
			fmt.Sprintf("%d", i+1),
			e.StartTime.Format("Jan 02, 2006"),
			e.StartTime.Format(timeFormat),
			e.EndTime.Format(timeFormat),
			duration.String(),
			byID[e.ProjectID],
			e.Description,
		})
	}

	ui.PrintTable(tableBody, w)
}

// ListProjects prints a table of projects with their allocation and
// archival state.
func ListProjects(
	w io.Writer,
	projects []models.Project,
	baseMonthlyHours float64,
) {
	tableBody := make([][]string, 0, len(projects)+1)

	tableBody = append(tableBody, []string{
		"#",
		"NAME",
		"DESCRIPTION",
		"ALLOCATION",
		"TARGET",
		"STATUS",
	})

	for i := range projects {
		p := projects[i]

		status := ui.Green("active")
		if p.IsArchived {
			status = ui.Red("archived")
		}

		tableBody = append(tableBody, []string{
			fmt.Sprintf("%d", i+1),
			p.Name,
			p.Description,
			fmt.Sprintf("%.0f%%", p.MonthlyCapacity*100),
			fmt.Sprintf("%.1fh", p.MonthlyCapacity*baseMonthlyHours),
			status,
		})
	}

	ui.PrintTable(tableBody, w)
}

// Elapsed renders a duration as HH:MM:SS for the live timer display.
func Elapsed(d time.Duration) string {
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
