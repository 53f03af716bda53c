// Package bridge notifies the host process of timer transitions. All calls
// are best-effort: a failing notification is logged and never blocks a state
// transition.
package bridge

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier is the host-bridge notification contract.
type Notifier interface {
	TimerStart(projectName string)
	TimerStop()
	MaxTimeExceeded(projectName string)
}

// Desktop sends desktop notifications.
type Desktop struct {
	log *slog.Logger
}

func NewDesktop(log *slog.Logger) *Desktop {
	return &Desktop{log: log}
}

func (d *Desktop) notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		d.log.Debug("desktop notification failed", slog.Any("error", err))
	}
}

func (d *Desktop) TimerStart(projectName string) {
	d.notify("Tally", "Timer started for "+projectName)
}

func (d *Desktop) TimerStop() {
	d.notify("Tally", "Timer stopped")
}

func (d *Desktop) MaxTimeExceeded(projectName string) {
	d.notify(
		"Tally",
		"Maximum session time reached for "+projectName+", the timer was stopped",
	)
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) TimerStart(string)      {}
func (Noop) TimerStop()             {}
func (Noop) MaxTimeExceeded(string) {}
