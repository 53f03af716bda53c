// Package report renders recorded data for humans and for CSV interchange.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ayoisaiah/tally/internal/apperr"
	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/split"
	"github.com/ayoisaiah/tally/internal/timeutil"
)

var csvHeader = []string{
	"date",
	"start_time",
	"end_time",
	"duration_minutes",
	"project_name",
	"project_description",
	"notes",
}

var (
	errBadHeader = &apperr.Error{
		Message: "unrecognised CSV header: expected " +
			"date,start_time,end_time,duration_minutes,project_name,project_description,notes",
	}

	errBadRow = &apperr.Error{
		Message: "CSV row %d is invalid",
	}
)

const (
	csvDateFormat = "2006-01-02"
	csvTimeFormat = "15:04"
)

// Row is the CSV interchange shape for one time entry.
type Row struct {
	Date               string
	StartTime          string
	EndTime            string
	DurationMinutes    int
	ProjectName        string
	ProjectDescription string
	Notes              string
}

// ExportCSV writes all entries with their project context as CSV.
func ExportCSV(
	w io.Writer,
	entries []models.TimeEntry,
	projects []models.Project,
) error {
	byID := make(map[string]*models.Project, len(projects))

	for i := range projects {
		byID[projects[i].ID] = &projects[i]
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := range entries {
		e := entries[i]

		var name, description string

		if p, ok := byID[e.ProjectID]; ok {
			name = p.Name
			description = p.Description
		}

		mins := timeutil.Round(e.EndTime.Sub(e.StartTime).Minutes())

		record := []string{
			e.StartTime.Format(csvDateFormat),
			e.StartTime.Format(csvTimeFormat),
			e.EndTime.Format(csvTimeFormat),
			strconv.Itoa(mins),
			name,
			description,
			e.Description,
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// ImportCSV parses the CSV interchange format into raw rows. Rows are
// validated structurally here; entry-level invariants are enforced when the
// rows are applied.
func ImportCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	if len(header) != len(csvHeader) {
		return nil, errBadHeader
	}

	for i, col := range csvHeader {
		if header[i] != col {
			return nil, errBadHeader
		}
	}

	var rows []Row

	line := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		line++

		mins, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, errBadRow.Fmt(line).Wrap(err)
		}

		rows = append(rows, Row{
			Date:               record[0],
			StartTime:          record[1],
			EndTime:            record[2],
			DurationMinutes:    mins,
			ProjectName:        record[4],
			ProjectDescription: record[5],
			Notes:              record[6],
		})
	}

	return rows, nil
}

// EntriesFromRows converts imported rows into projects and entries. Projects
// are resolved by name against the existing set; unknown names produce new
// projects. Each row is subject to the same invariants as any other entry:
// the one-minute floor applies, and a row crossing midnight is split at day
// boundaries.
func EntriesFromRows(
	rows []Row,
	existing []models.Project,
) ([]models.Project, []models.TimeEntry, error) {
	byName := make(map[string]*models.Project, len(existing))

	for i := range existing {
		byName[existing[i].Name] = &existing[i]
	}

	var (
		created []models.Project
		entries []models.TimeEntry
	)

	for i, row := range rows {
		start, end, err := rowSpan(row)
		if err != nil {
			return nil, nil, errBadRow.Fmt(i + 2).Wrap(err)
		}

		project, ok := byName[row.ProjectName]
		if !ok {
			project = models.NewProject(
				row.ProjectName,
				row.ProjectDescription,
				0,
			)
			created = append(created, *project)
			byName[project.Name] = project
		}

		split, err := split.Span(project.ID, row.Notes, start, end)
		if err != nil {
			return nil, nil, errBadRow.Fmt(i + 2).Wrap(err)
		}

		entries = append(entries, split...)
	}

	return created, entries, nil
}

// rowSpan derives the absolute span of a row. The end time is taken from
// end_time when it parses, with duration_minutes as the fallback; an end
// clock time at or before the start clock time means the span crossed
// midnight.
func rowSpan(row Row) (start, end time.Time, err error) {
	day, err := time.ParseInLocation(csvDateFormat, row.Date, time.Local)
	if err != nil {
		return start, end, err
	}

	st, err := time.Parse(csvTimeFormat, row.StartTime)
	if err != nil {
		return start, end, err
	}

	start = time.Date(
		day.Year(),
		day.Month(),
		day.Day(),
		st.Hour(),
		st.Minute(),
		0,
		0,
		time.Local,
	)

	et, err := time.Parse(csvTimeFormat, row.EndTime)
	if err != nil {
		if row.DurationMinutes <= 0 {
			return start, end, fmt.Errorf(
				"no usable end time or duration: %w",
				err,
			)
		}

		end = start.Add(time.Duration(row.DurationMinutes) * time.Minute)

		return start, end, nil
	}

	end = time.Date(
		day.Year(),
		day.Month(),
		day.Day(),
		et.Hour(),
		et.Minute(),
		0,
		0,
		time.Local,
	)

	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return start, end, nil
}
