package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/timeutil"
	"github.com/ayoisaiah/tally/internal/ui"
)

const barChartChar = "▇"

const noEntriesMsg = "No entries found for the specified time range"

var heatmapGlyphs = [5]string{" ", "░", "▒", "▓", "█"}

// DaySummary is the activity breakdown for a single day.
type DaySummary struct {
	Date               time.Time      `json:"date"`
	Hours              float64        `json:"hours"`
	ByProject          []ProjectHours `json:"by_project"`
	LongestSessionMins int            `json:"longest_session_mins"`
	AverageSessionMins int            `json:"average_session_mins"`
}

// Report is the full statistics output for a reporting period.
type Report struct {
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	TotalHours      float64        `json:"total_hours"`
	Distribution    []ProjectHours `json:"distribution"`
	TargetHours     float64        `json:"target_hours"`
	RecommendedDay  float64        `json:"recommended_daily_hours"`
	PredictedFinish *time.Time     `json:"predicted_finish,omitempty"`
	Today           DaySummary     `json:"today"`
	WeekStart       time.Time      `json:"week_start"`
	Weekly          [7]float64     `json:"weekly"`
	Monthly         []WeekBucket   `json:"monthly"`
}

// Compute derives the report for a period.
func Compute(
	entries []models.TimeEntry,
	projects []models.Project,
	start, end time.Time,
	baseMonthlyHours float64,
	now time.Time,
) *Report {
	dist := ProjectDistribution(entries, projects, start, end, now)

	var total float64
	for _, d := range dist {
		total += d.Hours
	}

	total = timeutil.RoundHours(total)

	target := TotalMonthlyTarget(projects, baseMonthlyHours)

	days := end.Sub(start).Hours() / timeutil.HoursInADay

	var avg float64
	if days >= 1 {
		avg = total / days
	}

	today := timeutil.RoundToStart(now)
	// weeks start on Monday
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	return &Report{
		StartTime:       start,
		EndTime:         end,
		TotalHours:      total,
		Distribution:    dist,
		TargetHours:     target,
		RecommendedDay:  RecommendedDailyHours(total, target, now),
		PredictedFinish: PredictCompletionDate(total, target, avg, now),
		Today: DaySummary{
			Date:               today,
			Hours:              DailyHours(entries, today, now),
			ByProject:          DailyProjectHours(entries, projects, today, now),
			LongestSessionMins: LongestSession(entries, today, now),
			AverageSessionMins: AverageSession(entries, today, now),
		},
		WeekStart: weekStart,
		Weekly:    WeeklyDistribution(entries, weekStart, now),
		Monthly:   MonthlyDistribution(entries, now, now),
	}
}

// ToJSON serialises the report.
func (r *Report) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// Render writes the report to w with pterm styling.
func (r *Report) Render(w io.Writer) {
	reportingStart := r.StartTime.Format("January 02, 2006")
	reportingEnd := r.EndTime.Format("January 02, 2006")

	header := pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintfln("Reporting period: %s - %s", reportingStart, reportingEnd)

	output := fmt.Sprint(
		header,
		r.summary(),
		r.todaySummary(),
		r.distributionChart(),
		r.weeklyChart(),
		r.monthlyBreakdown(),
	)

	fmt.Fprintln(w, strings.TrimSpace(output))
}

func (r *Report) summary() string {
	header := fmt.Sprintf("%s\n", ui.Blue("Summary"))

	lines := header +
		fmt.Sprintln("Time logged:", ui.Green(fmt.Sprintf("%.1f hours", r.TotalHours))) +
		fmt.Sprintln("Monthly target:", ui.Green(fmt.Sprintf("%.1f hours", r.TargetHours))) +
		fmt.Sprintln("Recommended daily:", ui.Green(fmt.Sprintf("%.1f hours", r.RecommendedDay)))

	if r.PredictedFinish != nil {
		lines += fmt.Sprintln(
			"Predicted completion:",
			ui.Green(r.PredictedFinish.Format("January 02, 2006")),
		)
	}

	return lines
}

func (r *Report) todaySummary() string {
	header := fmt.Sprintf("%s\n", ui.Blue("\nToday"))

	lines := header +
		fmt.Sprintln("Time logged:", ui.Green(fmt.Sprintf("%.1f hours", r.Today.Hours))) +
		fmt.Sprintln("Longest session:", ui.Green(fmt.Sprintf("%d mins", r.Today.LongestSessionMins))) +
		fmt.Sprintln("Average session:", ui.Green(fmt.Sprintf("%d mins", r.Today.AverageSessionMins)))

	for _, p := range r.Today.ByProject {
		lines += fmt.Sprintf("  %s: %.1f hours\n", p.Name, p.Hours)
	}

	return lines
}

func (r *Report) weeklyChart() string {
	header := ui.Blue("\nThis week (hours)")

	var bars pterm.Bars

	for i, hours := range r.Weekly {
		bars = append(bars, pterm.Bar{
			Value: timeutil.Round(hours),
			Label: r.WeekStart.AddDate(0, 0, i).Format("Mon"),
		})
	}

	chart, err := pterm.DefaultBarChart.
		WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return header + chart
}

func (r *Report) monthlyBreakdown() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s\n", ui.Blue("\nThis month by week")))

	for _, wk := range r.Monthly {
		b.WriteString(fmt.Sprintf(
			"Week %d (%s - %s): %s\n",
			wk.Week,
			wk.Start.Format("Jan 02"),
			wk.End.Format("Jan 02"),
			ui.Green(fmt.Sprintf("%.1f hours", wk.Hours)),
		))
	}

	return b.String()
}

func (r *Report) distributionChart() string {
	if len(r.Distribution) == 0 {
		return "\n" + noEntriesMsg
	}

	header := ui.Blue("\nProject breakdown (hours)")

	var bars pterm.Bars

	for _, d := range r.Distribution {
		bars = append(bars, pterm.Bar{
			Value: timeutil.Round(d.Hours),
			Label: d.Name,
		})
	}

	chart, err := pterm.DefaultBarChart.
		WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return header + chart
}

// RenderHeatmap writes a calendar heatmap of daily activity to w, one
// weekday per output row in the style of a contribution graph.
func RenderHeatmap(
	w io.Writer,
	entries []models.TimeEntry,
	now time.Time,
) {
	start, end := Rolling12MonthRange(now)

	weeks := GenerateHeatmap(entries, start, end, now)

	fmt.Fprintln(w, ui.Blue(fmt.Sprintf(
		"Activity %s - %s",
		start.Format("Jan 02, 2006"),
		end.Format("Jan 02, 2006"),
	)))

	dayLabels := [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

	for day := 0; day < 7; day++ {
		var row strings.Builder

		row.WriteString(dayLabels[day] + " ")

		for _, week := range weeks {
			cell := week[day]

			if cell == nil {
				row.WriteString(" ")
				continue
			}

			glyph := heatmapGlyphs[cell.Level]

			if cell.Level >= 3 {
				glyph = ui.Green(glyph)
			}

			row.WriteString(glyph)
		}

		fmt.Fprintln(w, row.String())
	}
}
