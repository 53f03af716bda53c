// Package timer operates the Tally work timer and handles the recovery of
// sessions that were running when the process last exited.
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/tally/bridge"
	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/split"
	"github.com/ayoisaiah/tally/store"
)

// MaxDuration is the hard auto-stop ceiling: no session may run, and no
// entry may be committed, for longer than this via the timer path.
const MaxDuration = 8 * time.Hour

const tickInterval = time.Second

// Timer is the timer lifecycle controller. It is either idle or running one
// session; there is no paused state in the committed model.
type Timer struct {
	store   *store.Syncer
	bridge  bridge.Notifier
	log     *slog.Logger
	now     func() time.Time
	tick    time.Duration
	mu      sync.Mutex
	session *models.TimerSession
	stop    chan struct{}
	// OnTick is called once a second with the recomputed elapsed time while
	// the timer is running.
	OnTick func(elapsed time.Duration)
	// OnAutoStop is called after the ceiling forces a stop.
	OnAutoStop func()
}

// New creates an idle timer.
func New(s *store.Syncer, n bridge.Notifier, log *slog.Logger) *Timer {
	return &Timer{
		store:  s,
		bridge: n,
		log:    log,
		now:    time.Now,
		tick:   tickInterval,
	}
}

// Running reports whether a session is in progress.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.session != nil
}

// Elapsed returns the time since the running session started, or 0 when
// idle. Elapsed time is always recomputed from the start time, never
// accumulated.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return 0
	}

	return t.now().Sub(t.session.StartTime)
}

// ProjectID returns the project of the running session, or "" when idle.
func (t *Timer) ProjectID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return ""
	}

	return t.session.ProjectID
}

// Start begins a session for the given project. Starting is rejected for
// missing or archived projects. A session that is already running is stopped
// first; at most one session exists system-wide.
func (t *Timer) Start(projectID string) error {
	project, err := t.store.Project(projectID)
	if err != nil {
		return errProjectNotFound
	}

	if project.IsArchived {
		return errProjectArchived
	}

	if t.Running() {
		// discard the stop error: a sub-minute session is dropped, not
		// allowed to block the new start
		if err := t.Stop(); err != nil {
			t.log.Debug(
				"previous session discarded on start",
				slog.Any("error", err),
			)
		}
	}

	sess := &models.TimerSession{
		ProjectID: projectID,
		StartTime: t.now(),
		IsRunning: true,
	}

	if err := t.store.SaveTimerSession(sess); err != nil {
		return err
	}

	t.mu.Lock()
	t.session = sess
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.run(stop)

	t.writeStatusFile(project.Name, sess.StartTime)

	go t.bridge.TimerStart(project.Name)

	return nil
}

// Stop ends the running session. When at least a minute has elapsed, the
// span is split at day boundaries and committed to the entry store. A
// shorter session is rejected with an error, but the timer still resets to
// idle and nothing is committed.
func (t *Timer) Stop() error {
	t.mu.Lock()

	sess := t.session
	if sess == nil {
		t.mu.Unlock()
		return errNotRunning
	}

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}

	t.session = nil

	t.mu.Unlock()

	removeStatusFile()

	// the session record is discarded regardless of whether the span is
	// accepted
	if err := t.store.DeleteTimerSession(); err != nil {
		t.log.Error(
			"deleting timer session record failed",
			slog.Any("error", err),
		)
	}

	go t.bridge.TimerStop()

	end := t.now()

	// the ceiling guarantees no entry longer than MaxDuration is committed
	// via the timer path
	if end.Sub(sess.StartTime) > MaxDuration {
		end = sess.StartTime.Add(MaxDuration)
	}

	entries, err := split.Span(sess.ProjectID, "", sess.StartTime, end)
	if err != nil {
		return err
	}

	t.store.AddEntries(entries)

	return nil
}

// Recover resumes a session persisted by a previous process. The record is
// discarded instead of resumed when it is not running, older than the
// auto-stop ceiling, or its project is missing or archived.
func (t *Timer) Recover() error {
	sess, err := t.store.TimerSession()
	if err != nil {
		return err
	}

	if sess == nil || !sess.IsRunning {
		return nil
	}

	discard := func(reason string) error {
		t.log.Info(
			"discarding persisted timer session",
			slog.String("reason", reason),
			slog.String("project_id", sess.ProjectID),
		)

		return t.store.DeleteTimerSession()
	}

	if t.now().Sub(sess.StartTime) > MaxDuration {
		return discard("older than the auto-stop ceiling")
	}

	project, err := t.store.Project(sess.ProjectID)
	if err != nil {
		return discard("project missing")
	}

	if project.IsArchived {
		return discard("project archived")
	}

	t.mu.Lock()
	t.session = sess
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.run(stop)

	t.writeStatusFile(project.Name, sess.StartTime)

	return nil
}

// run ticks once a second, recomputing the elapsed time and enforcing the
// auto-stop ceiling. It exits when the stop channel closes.
func (t *Timer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			sess := t.session
			t.mu.Unlock()

			if sess == nil {
				return
			}

			elapsed := t.now().Sub(sess.StartTime)

			if elapsed >= MaxDuration {
				t.autoStop(sess)
				return
			}

			if t.OnTick != nil {
				t.OnTick(elapsed)
			}
		}
	}
}

// autoStop force-stops the session at the ceiling and raises a max-time
// notification.
func (t *Timer) autoStop(sess *models.TimerSession) {
	projectName := sess.ProjectID

	if p, err := t.store.Project(sess.ProjectID); err == nil {
		projectName = p.Name
	}

	if err := t.Stop(); err != nil {
		t.log.Error("auto-stop failed", slog.Any("error", err))
	}

	go t.bridge.MaxTimeExceeded(projectName)

	if t.OnAutoStop != nil {
		t.OnAutoStop()
	}
}

// Shutdown persists the running session state and cancels the ticker without
// committing an entry, so the session can be recovered on the next start.
func (t *Timer) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}

	t.session = nil
}
