package store

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ayoisaiah/tally/internal/models"
)

// demoDataset synthesises the test-mode universe: a handful of projects with
// day-bounded entries spread over the 90 days leading up to now.
func demoDataset(
	now time.Time,
) ([]models.Project, []models.TimeEntry) {
	rng := rand.New(rand.NewSource(now.UnixNano()))

	specs := []struct {
		name        string
		description string
		capacity    float64
	}{
		{"Acme Website", "Marketing site redesign", 0.5},
		{"Internal Tools", "Dashboards and automation", 0.3},
		{"Consulting", "Ad-hoc client work", 0.2},
	}

	projects := make([]models.Project, 0, len(specs))

	for _, spec := range specs {
		projects = append(
			projects,
			*models.NewProject(spec.name, spec.description, spec.capacity),
		)
	}

	var entries []models.TimeEntry

	for dayOffset := 90; dayOffset >= 0; dayOffset-- {
		day := now.AddDate(0, 0, -dayOffset)

		// weekends are mostly idle
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			if rng.Intn(4) != 0 {
				continue
			}
		}

		sessions := 1 + rng.Intn(3)

		hour := 8 + rng.Intn(2)

		for i := 0; i < sessions; i++ {
			p := projects[rng.Intn(len(projects))]

			start := time.Date(
				day.Year(),
				day.Month(),
				day.Day(),
				hour,
				rng.Intn(60),
				0,
				0,
				day.Location(),
			)

			mins := 30 + rng.Intn(150)
			end := start.Add(time.Duration(mins) * time.Minute)

			entries = append(entries, *models.NewTimeEntry(
				p.ID,
				fmt.Sprintf("%s work", p.Name),
				start,
				end,
			))

			hour += 1 + mins/60
			if hour > 17 {
				break
			}
		}
	}

	return projects, entries
}
