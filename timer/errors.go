package timer

import "github.com/ayoisaiah/tally/internal/apperr"

var (
	errProjectNotFound = &apperr.Error{
		Message: "cannot start a timer: project not found",
	}

	errProjectArchived = &apperr.Error{
		Message: "cannot start a timer for an archived project",
	}

	errNotRunning = &apperr.Error{
		Message: "no timer is currently running",
	}
)
