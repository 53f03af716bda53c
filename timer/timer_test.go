package timer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayoisaiah/tally/bridge"
	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/testutil"
	"github.com/ayoisaiah/tally/store"
)

// fakeClock lets tests move time forward without sleeping. It is mutex
// guarded because the tick loop reads the clock from its own goroutine.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

func newTestTimer(t *testing.T) (*Timer, *store.Syncer, *fakeClock) {
	t.Helper()

	s := testutil.NewSyncer(t)

	tm := New(s, bridge.Noop{}, testutil.Logger())

	clock := &fakeClock{
		t: time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local),
	}
	tm.now = clock.now

	t.Cleanup(tm.Shutdown)

	return tm, s, clock
}

func addProject(t *testing.T, s *store.Syncer, name string) *models.Project {
	t.Helper()

	p := models.NewProject(name, "", 0.5)
	s.AddProject(p)

	return p
}

func TestStartAndStopCommitsEntry(t *testing.T) {
	tm, s, clock := newTestTimer(t)

	p := addProject(t, s, "Acme")

	if err := tm.Start(p.ID); err != nil {
		t.Fatalf("starting timer: %v", err)
	}

	if !tm.Running() {
		t.Fatal("timer should be running")
	}

	if got := tm.ProjectID(); got != p.ID {
		t.Errorf("ProjectID = %q, want %q", got, p.ID)
	}

	clock.advance(2 * time.Hour)

	if got := tm.Elapsed(); got != 2*time.Hour {
		t.Errorf("Elapsed = %v, want 2h", got)
	}

	if err := tm.Stop(); err != nil {
		t.Fatalf("stopping timer: %v", err)
	}

	if tm.Running() {
		t.Error("timer should be idle after stop")
	}

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("committed %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.ProjectID != p.ID {
		t.Errorf("entry project = %q, want %q", e.ProjectID, p.ID)
	}

	if got := e.EndTime.Sub(e.StartTime); got != 2*time.Hour {
		t.Errorf("entry duration = %v, want 2h", got)
	}

	sess, err := s.TimerSession()
	if err != nil {
		t.Fatal(err)
	}

	if sess != nil {
		t.Errorf("session record should be deleted after stop, got %+v", sess)
	}
}

func TestStopRejectsShortSessions(t *testing.T) {
	tm, s, clock := newTestTimer(t)

	p := addProject(t, s, "Acme")

	if err := tm.Start(p.ID); err != nil {
		t.Fatalf("starting timer: %v", err)
	}

	clock.advance(30 * time.Second)

	if err := tm.Stop(); err == nil {
		t.Fatal("expected short session to be rejected")
	}

	// the rejection still resets the timer to idle
	if tm.Running() {
		t.Error("timer should be idle after a rejected stop")
	}

	if got := s.Entries(); len(got) != 0 {
		t.Errorf("no entry should be committed, got %+v", got)
	}

	sess, err := s.TimerSession()
	if err != nil {
		t.Fatal(err)
	}

	if sess != nil {
		t.Errorf("session record should be deleted, got %+v", sess)
	}
}

func TestStopClampsToCeiling(t *testing.T) {
	tm, s, clock := newTestTimer(t)

	p := addProject(t, s, "Acme")

	if err := tm.Start(p.ID); err != nil {
		t.Fatalf("starting timer: %v", err)
	}

	clock.advance(9 * time.Hour)

	if err := tm.Stop(); err != nil {
		t.Fatalf("stopping timer: %v", err)
	}

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("committed %d entries, want 1", len(entries))
	}

	if got := entries[0].EndTime.Sub(entries[0].StartTime); got != MaxDuration {
		t.Errorf("entry duration = %v, want the %v ceiling", got, MaxDuration)
	}
}

func TestStopWhenIdle(t *testing.T) {
	tm, _, _ := newTestTimer(t)

	if err := tm.Stop(); !errors.Is(err, errNotRunning) {
		t.Errorf("expected errNotRunning, got %v", err)
	}
}

func TestStartRejectsMissingAndArchivedProjects(t *testing.T) {
	tm, s, _ := newTestTimer(t)

	if err := tm.Start("missing"); !errors.Is(err, errProjectNotFound) {
		t.Errorf("expected errProjectNotFound, got %v", err)
	}

	p := addProject(t, s, "Legacy")

	if err := s.ArchiveProject(p.ID); err != nil {
		t.Fatal(err)
	}

	if err := tm.Start(p.ID); !errors.Is(err, errProjectArchived) {
		t.Errorf("expected errProjectArchived, got %v", err)
	}

	if tm.Running() {
		t.Error("timer should not be running after rejected starts")
	}
}

func TestStartStopsPreviousSession(t *testing.T) {
	tm, s, clock := newTestTimer(t)

	first := addProject(t, s, "Acme")
	second := addProject(t, s, "Internal")

	if err := tm.Start(first.ID); err != nil {
		t.Fatalf("starting first session: %v", err)
	}

	clock.advance(90 * time.Minute)

	if err := tm.Start(second.ID); err != nil {
		t.Fatalf("starting second session: %v", err)
	}

	if got := tm.ProjectID(); got != second.ID {
		t.Errorf("running project = %q, want %q", got, second.ID)
	}

	entries := s.Entries()
	if len(entries) != 1 || entries[0].ProjectID != first.ID {
		t.Fatalf("expected the first session to be committed, got %+v", entries)
	}

	if got := entries[0].EndTime.Sub(entries[0].StartTime); got != 90*time.Minute {
		t.Errorf("committed duration = %v, want 90m", got)
	}
}

func TestShutdownPreservesSessionRecord(t *testing.T) {
	tm, s, _ := newTestTimer(t)

	p := addProject(t, s, "Acme")

	if err := tm.Start(p.ID); err != nil {
		t.Fatalf("starting timer: %v", err)
	}

	tm.Shutdown()

	if tm.Running() {
		t.Error("timer should be idle after shutdown")
	}

	// the persisted record survives so the session can be recovered
	sess, err := s.TimerSession()
	if err != nil {
		t.Fatal(err)
	}

	if sess == nil || sess.ProjectID != p.ID || !sess.IsRunning {
		t.Errorf("expected a recoverable session record, got %+v", sess)
	}

	if got := s.Entries(); len(got) != 0 {
		t.Errorf("shutdown must not commit entries, got %+v", got)
	}
}

func TestRecoverResumesSession(t *testing.T) {
	tm, s, clock := newTestTimer(t)

	p := addProject(t, s, "Acme")

	started := clock.now().Add(-2 * time.Hour)

	err := s.SaveTimerSession(&models.TimerSession{
		ProjectID: p.ID,
		StartTime: started,
		IsRunning: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := tm.Recover(); err != nil {
		t.Fatalf("recovering: %v", err)
	}

	if !tm.Running() {
		t.Fatal("session should have been resumed")
	}

	// elapsed time is recomputed from the original start, not reset
	if got := tm.Elapsed(); got != 2*time.Hour {
		t.Errorf("Elapsed = %v, want 2h", got)
	}
}

func TestRecoverDiscardsUnsalvageableSessions(t *testing.T) {
	cases := []struct {
		name string
		sess func(s *store.Syncer, clock *fakeClock) *models.TimerSession
	}{
		{
			name: "stale session",
			sess: func(s *store.Syncer, clock *fakeClock) *models.TimerSession {
				p := models.NewProject("Acme", "", 0.5)
				s.AddProject(p)

				return &models.TimerSession{
					ProjectID: p.ID,
					StartTime: clock.now().Add(-9 * time.Hour),
					IsRunning: true,
				}
			},
		},
		{
			name: "missing project",
			sess: func(s *store.Syncer, clock *fakeClock) *models.TimerSession {
				return &models.TimerSession{
					ProjectID: "ghost",
					StartTime: clock.now().Add(-time.Hour),
					IsRunning: true,
				}
			},
		},
		{
			name: "archived project",
			sess: func(s *store.Syncer, clock *fakeClock) *models.TimerSession {
				p := models.NewProject("Legacy", "", 0.5)
				s.AddProject(p)

				if err := s.ArchiveProject(p.ID); err != nil {
					panic(err)
				}

				return &models.TimerSession{
					ProjectID: p.ID,
					StartTime: clock.now().Add(-time.Hour),
					IsRunning: true,
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tm, s, clock := newTestTimer(t)

			if err := s.SaveTimerSession(tc.sess(s, clock)); err != nil {
				t.Fatal(err)
			}

			if err := tm.Recover(); err != nil {
				t.Fatalf("recovering: %v", err)
			}

			if tm.Running() {
				t.Error("session should have been discarded, not resumed")
			}

			sess, err := s.TimerSession()
			if err != nil {
				t.Fatal(err)
			}

			if sess != nil {
				t.Errorf("discarded record should be deleted, got %+v", sess)
			}

			if got := s.Entries(); len(got) != 0 {
				t.Errorf("discard must not commit entries, got %+v", got)
			}
		})
	}
}

// recordingNotifier captures the max-time notification for assertions.
type recordingNotifier struct {
	maxTime chan string
}

func (n *recordingNotifier) TimerStart(string) {}

func (n *recordingNotifier) TimerStop() {}

func (n *recordingNotifier) MaxTimeExceeded(name string) {
	n.maxTime <- name
}

func TestAutoStopAtCeiling(t *testing.T) {
	s := testutil.NewSyncer(t)

	notifier := &recordingNotifier{maxTime: make(chan string, 1)}

	tm := New(s, notifier, testutil.Logger())

	clock := &fakeClock{
		t: time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local),
	}
	tm.now = clock.now
	tm.tick = time.Millisecond

	t.Cleanup(tm.Shutdown)

	p := addProject(t, s, "Acme")

	stopped := make(chan struct{})
	tm.OnAutoStop = func() {
		close(stopped)
	}

	if err := tm.Start(p.ID); err != nil {
		t.Fatalf("starting timer: %v", err)
	}

	clock.advance(MaxDuration + time.Second)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the auto-stop")
	}

	select {
	case name := <-notifier.maxTime:
		if name != "Acme" {
			t.Errorf("max-time notification for %q, want Acme", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the max-time notification")
	}

	if tm.Running() {
		t.Error("timer should be idle after the auto-stop")
	}

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("committed %d entries, want 1", len(entries))
	}

	if got := entries[0].EndTime.Sub(entries[0].StartTime); got != MaxDuration {
		t.Errorf("entry duration = %v, want the %v ceiling", got, MaxDuration)
	}
}

func TestConcurrentStartAndStop(t *testing.T) {
	tm, s, clock := newTestTimer(t)

	p := addProject(t, s, "Acme")

	for i := 0; i < 10; i++ {
		if err := tm.Start(p.ID); err != nil {
			t.Fatalf("starting timer: %v", err)
		}

		clock.advance(2 * time.Hour)

		var wg sync.WaitGroup

		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = tm.Stop()
		}()

		_ = tm.Stop()

		wg.Wait()

		if tm.Running() {
			t.Fatal("timer should be idle after both stops return")
		}
	}
}

func TestRecoverWithNoSession(t *testing.T) {
	tm, _, _ := newTestTimer(t)

	if err := tm.Recover(); err != nil {
		t.Fatalf("recovering with no record: %v", err)
	}

	if tm.Running() {
		t.Error("timer should stay idle")
	}
}
