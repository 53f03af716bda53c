package store

import (
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ayoisaiah/tally/internal/apperr"
	"github.com/ayoisaiah/tally/internal/models"
)

// EnvTestMode is the environment capability flag that gates whether test
// mode can ever be enabled, independent of the stored flag value.
const EnvTestMode = "TALLY_ENABLE_TEST_MODE"

// DefaultDebounce is how long the Syncer coalesces mutations before writing
// them out.
const DefaultDebounce = time.Second

var (
	ErrProjectNotFound = &apperr.Error{
		Message: "project not found",
	}

	ErrTestModeDisabled = &apperr.Error{
		Message: "test mode is not enabled in this environment",
	}
)

// Syncer keeps the in-memory working state and schedules debounced writes to
// the persistence backend. It routes reads and writes to one of two parallel
// universes (production or test) selected by the test-mode flag; the two are
// never merged.
type Syncer struct {
	db        DB
	log       *slog.Logger
	mu        sync.Mutex
	projects  []models.Project
	entries   []models.TimeEntry
	settings  models.Settings
	saveTimer *time.Timer
	debounce  time.Duration
	// persistedNonEmpty records whether the active universe held data at
	// load time, so an accidentally-empty in-memory state never overwrites
	// real data. Explicit deletions clear it: a user emptying the dataset
	// on purpose must still persist.
	persistedNonEmpty bool
	onModeChange      []func(testMode bool)
	closed            bool
}

// SyncerOption modifies the Syncer.
type SyncerOption func(*Syncer)

// WithDebounce overrides the save debounce interval.
func WithDebounce(d time.Duration) SyncerOption {
	return func(s *Syncer) {
		s.debounce = d
	}
}

// NewSyncer wraps a persistence backend. Call Load before use.
func NewSyncer(db DB, log *slog.Logger, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		db:       db,
		log:      log,
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TestModeAllowed reports the environment capability flag.
func TestModeAllowed() bool {
	v, _ := strconv.ParseBool(os.Getenv(EnvTestMode))
	return v
}

func (s *Syncer) universe() Universe {
	if s.settings.TestMode {
		return Test
	}

	return Production
}

// Load reads the persisted settings and the active universe into memory. A
// stored test-mode flag is honoured only when the environment capability
// flag allows it. An empty test universe is synthesised on first load.
func (s *Syncer) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.db.LoadSettings()
	if err != nil {
		return err
	}

	s.settings = *settings

	if s.settings.TestMode && !TestModeAllowed() {
		s.settings.TestMode = false
	}

	return s.loadUniverse()
}

// loadUniverse refreshes the in-memory sets from the active universe. The
// caller must hold the mutex.
func (s *Syncer) loadUniverse() error {
	u := s.universe()

	projects, err := s.db.LoadProjects(u)
	if err != nil {
		return err
	}

	entries, err := s.db.LoadEntries(u)
	if err != nil {
		return err
	}

	if u == Test && len(projects) == 0 {
		projects, entries = demoDataset(time.Now())

		if err := s.db.SaveProjects(u, projects); err != nil {
			return err
		}

		if err := s.db.SaveEntries(u, entries); err != nil {
			return err
		}
	}

	s.projects = projects
	s.entries = entries
	s.persistedNonEmpty = len(projects) > 0 || len(entries) > 0

	return nil
}

// Projects returns a copy of the in-memory project set.
func (s *Syncer) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Project, len(s.projects))
	copy(out, s.projects)

	return out
}

// Entries returns a copy of the in-memory entry set.
func (s *Syncer) Entries() []models.TimeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TimeEntry, len(s.entries))
	copy(out, s.entries)

	return out
}

// Settings returns the current local state.
func (s *Syncer) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings
}

// Project looks up a project by ID.
func (s *Syncer) Project(id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findProject(id)
}

// ProjectByName looks up a project by its display name.
func (s *Syncer) ProjectByName(name string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].Name == name {
			p := s.projects[i]
			return &p, nil
		}
	}

	return nil, ErrProjectNotFound
}

func (s *Syncer) findProject(id string) (*models.Project, error) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := s.projects[i]
			return &p, nil
		}
	}

	return nil, ErrProjectNotFound
}

// AddProject appends a project and schedules a save.
func (s *Syncer) AddProject(p *models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append(s.projects, *p)

	s.scheduleSave()
}

// UpdateProject replaces a project in place and schedules a save.
func (s *Syncer) UpdateProject(p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			p.UpdatedAt = time.Now()
			s.projects[i] = *p

			s.scheduleSave()

			return nil
		}
	}

	return ErrProjectNotFound
}

// ArchiveProject flags a project as archived and schedules a save.
func (s *Syncer) ArchiveProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].Archive(time.Now())

			s.scheduleSave()

			return nil
		}
	}

	return ErrProjectNotFound
}

// DeleteProject removes a project and cascades to all of its entries.
func (s *Syncer) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false

	projects := s.projects[:0]

	for i := range s.projects {
		if s.projects[i].ID == id {
			found = true
			continue
		}

		projects = append(projects, s.projects[i])
	}

	if !found {
		return ErrProjectNotFound
	}

	s.projects = projects

	entries := s.entries[:0]

	for i := range s.entries {
		if s.entries[i].ProjectID != id {
			entries = append(entries, s.entries[i])
		}
	}

	s.entries = entries

	s.markDeliberateEmpty()

	s.scheduleSave()

	return nil
}

// AddEntries appends committed entries and schedules a save.
func (s *Syncer) AddEntries(entries []models.TimeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entries...)

	s.scheduleSave()
}

// DeleteEntry removes a single entry by ID.
func (s *Syncer) DeleteEntry(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[:0]

	for i := range s.entries {
		if s.entries[i].ID != id {
			entries = append(entries, s.entries[i])
		}
	}

	s.entries = entries

	s.markDeliberateEmpty()

	s.scheduleSave()
}

// markDeliberateEmpty lifts the empty-save guard when an explicit deletion
// has emptied the dataset. The caller must hold the mutex.
func (s *Syncer) markDeliberateEmpty() {
	if len(s.projects) == 0 && len(s.entries) == 0 {
		s.persistedNonEmpty = false
	}
}

// SetActivePage records the last-active UI page.
func (s *Syncer) SetActivePage(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.ActivePage = page

	s.saveSettingsLocked()
}

// SetDarkTheme records the theme mode.
func (s *Syncer) SetDarkTheme(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.DarkTheme = on

	s.saveSettingsLocked()
}

// OnModeChange registers an observer that is notified after the active
// universe switches.
func (s *Syncer) OnModeChange(fn func(testMode bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onModeChange = append(s.onModeChange, fn)
}

// SetTestMode switches between the production and test universes. It is
// gated by the environment capability flag, persists the flag together with
// the now-active dataset, and notifies registered observers.
func (s *Syncer) SetTestMode(on bool) error {
	if on && !TestModeAllowed() {
		return ErrTestModeDisabled
	}

	s.mu.Lock()

	if s.settings.TestMode == on {
		s.mu.Unlock()
		return nil
	}

	// flush any pending write for the outgoing universe first
	s.saveLocked()

	s.settings.TestMode = on

	s.saveSettingsLocked()

	err := s.loadUniverse()

	observers := make([]func(bool), len(s.onModeChange))
	copy(observers, s.onModeChange)

	s.mu.Unlock()

	if err != nil {
		return err
	}

	for _, fn := range observers {
		fn(on)
	}

	return nil
}

// TimerSession reads the persisted in-progress session record.
func (s *Syncer) TimerSession() (*models.TimerSession, error) {
	return s.db.TimerSession()
}

// SaveTimerSession writes the in-progress session record immediately; the
// side channel is not debounced so a crash cannot lose a running session.
func (s *Syncer) SaveTimerSession(sess *models.TimerSession) error {
	return s.db.SaveTimerSession(sess)
}

// DeleteTimerSession removes the persisted in-progress session record.
func (s *Syncer) DeleteTimerSession() error {
	return s.db.DeleteTimerSession()
}

// scheduleSave coalesces rapid successive mutations into one write using
// cancel-and-reschedule semantics: a mutation arriving before the pending
// save fires resets the timer, so at most one save is logically in flight.
// The caller must hold the mutex.
func (s *Syncer) scheduleSave() {
	if s.closed {
		return
	}

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}

	s.saveTimer = time.AfterFunc(s.debounce, s.save)
}

func (s *Syncer) save() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// the debounce timer may fire between Close stopping it and the
	// callback acquiring the mutex
	if s.closed {
		return
	}

	s.saveLocked()
}

// saveLocked runs the integrity pass and writes both record sets to the
// active universe. The caller must hold the mutex.
func (s *Syncer) saveLocked() {
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}

	s.pruneOrphans()

	if len(s.projects) == 0 && len(s.entries) == 0 && s.persistedNonEmpty {
		s.log.Warn("suppressing save of empty state over existing data")
		return
	}

	u := s.universe()

	if err := s.db.SaveProjects(u, s.projects); err != nil {
		// memory stays the source of truth; the next debounce cycle
		// retries implicitly
		s.log.Error("saving projects failed", slog.Any("error", err))
		return
	}

	if err := s.db.SaveEntries(u, s.entries); err != nil {
		s.log.Error("saving entries failed", slog.Any("error", err))
		return
	}

	s.persistedNonEmpty = len(s.projects) > 0 || len(s.entries) > 0
}

func (s *Syncer) saveSettingsLocked() {
	if err := s.db.SaveSettings(&s.settings); err != nil {
		s.log.Error("saving settings failed", slog.Any("error", err))
	}
}

// pruneOrphans drops entries referencing a project that is no longer in the
// project set. The pruned in-memory set is what gets persisted, so memory
// and disk cannot diverge silently. The caller must hold the mutex.
func (s *Syncer) pruneOrphans() {
	known := make(map[string]struct{}, len(s.projects))

	for i := range s.projects {
		known[s.projects[i].ID] = struct{}{}
	}

	entries := s.entries[:0]

	for i := range s.entries {
		e := s.entries[i]

		if _, ok := known[e.ProjectID]; !ok {
			s.log.Debug(
				"pruning entry with missing project",
				slog.String("entry_id", e.ID),
				slog.String("project_id", e.ProjectID),
			)

			continue
		}

		entries = append(entries, e)
	}

	s.entries = entries
}

// Flush forces any pending debounced save to run now.
func (s *Syncer) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer == nil {
		return
	}

	s.saveLocked()
}

// Close flushes pending writes and prevents further scheduling. It does not
// close the underlying database.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer != nil {
		s.saveLocked()
	}

	s.closed = true
}
