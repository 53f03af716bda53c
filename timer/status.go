package timer

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/tally/config"
	"github.com/ayoisaiah/tally/report"
)

// Status mirrors the running session for out-of-process status queries while
// the database is locked by the tracking process.
type Status struct {
	StartTime   time.Time `json:"start_time"`
	ProjectName string    `json:"project_name"`
}

// writeStatusFile records the running session next to the database.
func (t *Timer) writeStatusFile(projectName string, startTime time.Time) {
	s := Status{
		ProjectName: projectName,
		StartTime:   startTime,
	}

	b, err := json.Marshal(s)
	if err != nil {
		return
	}

	if err := os.WriteFile(config.StatusFilePath(), b, 0o600); err != nil {
		t.log.Debug("writing status file failed")
	}
}

func removeStatusFile() {
	_ = os.Remove(config.StatusFilePath())
}

// ReportStatus prints the status of a timer running in another process.
func ReportStatus() error {
	fileBytes, err := os.ReadFile(config.StatusFilePath())
	if err != nil {
		// a missing file means no timer is running
		if os.IsNotExist(err) {
			pterm.Println("No timer is currently running")
			return nil
		}

		return err
	}

	var s Status

	if err = json.Unmarshal(fileBytes, &s); err != nil {
		return err
	}

	elapsed := time.Since(s.StartTime)

	if elapsed > MaxDuration {
		pterm.Println("No timer is currently running")
		return nil
	}

	pterm.Printfln("[%s]: %s", s.ProjectName, report.Elapsed(elapsed))

	return nil
}
