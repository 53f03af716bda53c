package store_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/testutil"
	"github.com/ayoisaiah/tally/store"
)

// memDB is an in-memory store.DB that counts writes so tests can observe
// debounce coalescing.
type memDB struct {
	mu           sync.Mutex
	projects     map[store.Universe][]models.Project
	entries      map[store.Universe][]models.TimeEntry
	settings     models.Settings
	session      *models.TimerSession
	projectSaves int
	entrySaves   int
}

func newMemDB() *memDB {
	return &memDB{
		projects: make(map[store.Universe][]models.Project),
		entries:  make(map[store.Universe][]models.TimeEntry),
	}
}

func (m *memDB) LoadProjects(u store.Universe) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.Project(nil), m.projects[u]...), nil
}

func (m *memDB) SaveProjects(u store.Universe, projects []models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects[u] = append([]models.Project(nil), projects...)
	m.projectSaves++

	return nil
}

func (m *memDB) LoadEntries(u store.Universe) ([]models.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.TimeEntry(nil), m.entries[u]...), nil
}

func (m *memDB) SaveEntries(u store.Universe, entries []models.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[u] = append([]models.TimeEntry(nil), entries...)
	m.entrySaves++

	return nil
}

func (m *memDB) LoadSettings() (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := m.settings

	return &settings, nil
}

func (m *memDB) SaveSettings(settings *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = *settings

	return nil
}

func (m *memDB) TimerSession() (*models.TimerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, nil
	}

	sess := *m.session

	return &sess, nil
}

func (m *memDB) SaveTimerSession(sess *models.TimerSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := *sess
	m.session = &s

	return nil
}

func (m *memDB) DeleteTimerSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil

	return nil
}

func (m *memDB) Open() error { return nil }

func (m *memDB) Close() error { return nil }

func (m *memDB) storedSettings() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.settings
}

func (m *memDB) saves() (projects, entries int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.projectSaves, m.entrySaves
}

func newTestSyncer(t *testing.T, db *memDB) *store.Syncer {
	t.Helper()

	s := store.NewSyncer(
		db,
		testutil.Logger(),
		store.WithDebounce(10*time.Millisecond),
	)

	if err := s.Load(); err != nil {
		t.Fatalf("loading syncer: %v", err)
	}

	t.Cleanup(s.Close)

	return s
}

func waitForSaves(t *testing.T, db *memDB, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		if got, _ := db.saves(); got >= want {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	got, _ := db.saves()
	t.Fatalf("timed out waiting for %d project saves, got %d", want, got)
}

func TestDebounceCoalescesMutations(t *testing.T) {
	db := newMemDB()
	s := newTestSyncer(t, db)

	for i := 0; i < 10; i++ {
		s.AddProject(models.NewProject("Project", "", 0.1))
	}

	waitForSaves(t, db, 1)

	// give a straggler save the chance to fire before counting
	time.Sleep(50 * time.Millisecond)

	if got, _ := db.saves(); got != 1 {
		t.Errorf("expected 1 coalesced save, got %d", got)
	}

	projects, err := db.LoadProjects(store.Production)
	if err != nil {
		t.Fatal(err)
	}

	if len(projects) != 10 {
		t.Errorf("persisted %d projects, want 10", len(projects))
	}
}

func TestFlushWritesPendingState(t *testing.T) {
	db := newMemDB()
	s := newTestSyncer(t, db)

	s.AddProject(models.NewProject("Acme", "", 0.5))
	s.Flush()

	if got, _ := db.saves(); got != 1 {
		t.Errorf("expected flush to write immediately, got %d saves", got)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	db := newMemDB()
	s := newTestSyncer(t, db)

	p := models.NewProject("Acme", "", 0.5)
	other := models.NewProject("Internal", "", 0.25)

	s.AddProject(p)
	s.AddProject(other)

	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	s.AddEntries([]models.TimeEntry{
		testutil.Entry("e1", p.ID, start, start.Add(time.Hour)),
		testutil.Entry("e2", p.ID, start.Add(2*time.Hour), start.Add(3*time.Hour)),
		testutil.Entry("e3", other.ID, start, start.Add(time.Hour)),
	})

	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatalf("deleting project: %v", err)
	}

	entries := s.Entries()
	if len(entries) != 1 || entries[0].ID != "e3" {
		t.Errorf("expected only e3 to survive the cascade, got %+v", entries)
	}

	if err := s.DeleteProject("missing"); !errors.Is(err, store.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	db := newMemDB()
	s := newTestSyncer(t, db)

	p := models.NewProject("Acme", "client work", 0.5)
	s.AddProject(p)

	p.Name = "Acme Corp"
	p.Description = "retainer"
	p.MonthlyCapacity = 0.75

	if err := s.UpdateProject(p); err != nil {
		t.Fatalf("updating project: %v", err)
	}

	s.Flush()

	persisted, err := db.LoadProjects(store.Production)
	if err != nil {
		t.Fatal(err)
	}

	if len(persisted) != 1 {
		t.Fatalf("persisted %d projects, want 1", len(persisted))
	}

	got := persisted[0]

	if got.Name != "Acme Corp" || got.Description != "retainer" ||
		got.MonthlyCapacity != 0.75 {
		t.Errorf("updated fields not persisted: %+v", got)
	}

	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("UpdatedAt was not refreshed")
	}

	missing := models.NewProject("Ghost", "", 0.1)

	if err := s.UpdateProject(missing); !errors.Is(err, store.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestSettingsSettersPersistImmediately(t *testing.T) {
	db := newMemDB()
	s := newTestSyncer(t, db)

	// settings writes bypass the debounce window entirely
	s.SetDarkTheme(true)
	s.SetActivePage("stats")

	got := db.storedSettings()

	if !got.DarkTheme {
		t.Error("dark theme flag not persisted")
	}

	if got.ActivePage != "stats" {
		t.Errorf("active page = %q, want %q", got.ActivePage, "stats")
	}

	if !s.Settings().DarkTheme || s.Settings().ActivePage != "stats" {
		t.Errorf("in-memory settings out of date: %+v", s.Settings())
	}
}

func TestSaveTimePrunesOrphanedEntries(t *testing.T) {
	db := newMemDB()

	p := testutil.Project("p1", "Acme", 0.5)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	db.projects[store.Production] = []models.Project{p}
	db.entries[store.Production] = []models.TimeEntry{
		testutil.Entry("e1", "p1", start, start.Add(time.Hour)),
		testutil.Entry("ghost", "deleted-project", start, start.Add(time.Hour)),
	}

	s := newTestSyncer(t, db)

	// any mutation triggers the integrity pass on the next save
	s.AddEntries([]models.TimeEntry{
		testutil.Entry("e2", "p1", start.Add(2*time.Hour), start.Add(3*time.Hour)),
	})
	s.Flush()

	persisted, err := db.LoadEntries(store.Production)
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range persisted {
		if e.ID == "ghost" {
			t.Error("orphaned entry survived the integrity pass")
		}
	}

	if len(persisted) != 2 {
		t.Errorf("persisted %d entries, want 2", len(persisted))
	}
}

func TestExplicitDeletionPersistsEmptyState(t *testing.T) {
	db := newMemDB()

	p := testutil.Project("p1", "Acme", 0.5)
	db.projects[store.Production] = []models.Project{p}

	s := newTestSyncer(t, db)

	if err := s.DeleteProject("p1"); err != nil {
		t.Fatalf("deleting project: %v", err)
	}

	s.Flush()

	if got, _ := db.saves(); got != 1 {
		t.Errorf("expected the deliberate empty state to be written, got %d saves", got)
	}

	persisted, err := db.LoadProjects(store.Production)
	if err != nil {
		t.Fatal(err)
	}

	if len(persisted) != 0 {
		t.Errorf("deleted project came back: %+v", persisted)
	}
}

func TestSetTestModeRequiresCapabilityFlag(t *testing.T) {
	t.Setenv(store.EnvTestMode, "")

	db := newMemDB()
	s := newTestSyncer(t, db)

	if err := s.SetTestMode(true); !errors.Is(err, store.ErrTestModeDisabled) {
		t.Errorf("expected ErrTestModeDisabled, got %v", err)
	}
}

func TestSetTestModeSwitchesUniverse(t *testing.T) {
	t.Setenv(store.EnvTestMode, "true")

	db := newMemDB()

	p := testutil.Project("p1", "Acme", 0.5)
	db.projects[store.Production] = []models.Project{p}

	s := newTestSyncer(t, db)

	var notified []bool

	s.OnModeChange(func(testMode bool) {
		notified = append(notified, testMode)
	})

	if err := s.SetTestMode(true); err != nil {
		t.Fatalf("enabling test mode: %v", err)
	}

	// the empty test universe is seeded with demo data on first entry
	demo := s.Projects()
	if len(demo) == 0 {
		t.Fatal("expected the test universe to be seeded with demo data")
	}

	for _, dp := range demo {
		if dp.ID == "p1" {
			t.Error("production project leaked into the test universe")
		}
	}

	if !s.Settings().TestMode {
		t.Error("test-mode flag was not recorded")
	}

	if err := s.SetTestMode(false); err != nil {
		t.Fatalf("disabling test mode: %v", err)
	}

	back := s.Projects()
	if len(back) != 1 || back[0].ID != "p1" {
		t.Errorf("production data not restored, got %+v", back)
	}

	if len(notified) != 2 || !notified[0] || notified[1] {
		t.Errorf("observer notifications = %v, want [true false]", notified)
	}
}

func TestStoredTestModeIgnoredWithoutCapability(t *testing.T) {
	t.Setenv(store.EnvTestMode, "")

	db := newMemDB()
	db.settings = models.Settings{TestMode: true}

	p := testutil.Project("p1", "Acme", 0.5)
	db.projects[store.Production] = []models.Project{p}

	s := newTestSyncer(t, db)

	if s.Settings().TestMode {
		t.Error("stored test-mode flag honoured without the capability flag")
	}

	if got := s.Projects(); len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("expected production data, got %+v", got)
	}
}

func TestTimerSessionBypassesDebounce(t *testing.T) {
	db := newMemDB()
	s := newTestSyncer(t, db)

	sess := &models.TimerSession{
		ProjectID: "p1",
		StartTime: time.Now(),
		IsRunning: true,
	}

	if err := s.SaveTimerSession(sess); err != nil {
		t.Fatalf("saving session: %v", err)
	}

	// the side channel write lands immediately, without a debounce window
	got, err := db.TimerSession()
	if err != nil {
		t.Fatal(err)
	}

	if got == nil || got.ProjectID != "p1" {
		t.Errorf("session not persisted immediately: %+v", got)
	}

	if err := s.DeleteTimerSession(); err != nil {
		t.Fatalf("deleting session: %v", err)
	}

	got, err = db.TimerSession()
	if err != nil {
		t.Fatal(err)
	}

	if got != nil {
		t.Errorf("expected session to be removed, got %+v", got)
	}
}
