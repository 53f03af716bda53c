package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/tally/bridge"
	"github.com/ayoisaiah/tally/config"
	"github.com/ayoisaiah/tally/internal/models"
	"github.com/ayoisaiah/tally/internal/split"
	"github.com/ayoisaiah/tally/internal/timeutil"
	"github.com/ayoisaiah/tally/internal/ui"
	"github.com/ayoisaiah/tally/report"
	"github.com/ayoisaiah/tally/stats"
	"github.com/ayoisaiah/tally/store"
	"github.com/ayoisaiah/tally/timer"
)

// session ties together the open database and the synchroniser for the
// duration of one command.
type session struct {
	db   *store.Client
	sync *store.Syncer
}

func openSession() (*session, error) {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return nil, err
	}

	sync := store.NewSyncer(db, slog.Default())

	if err := sync.Load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	ui.DarkTheme = sync.Settings().DarkTheme

	return &session{db: db, sync: sync}, nil
}

func (s *session) close() {
	s.sync.Close()

	if err := s.db.Close(); err != nil {
		slog.Error("closing database failed", slog.Any("error", err))
	}
}

// entriesInRange narrows the entry set to the reporting period.
func entriesInRange(
	entries []models.TimeEntry,
	cfg *config.FilterConfig,
) []models.TimeEntry {
	var filtered []models.TimeEntry

	for i := range entries {
		if timeutil.WithinRange(
			entries[i].StartTime,
			cfg.StartTime,
			cfg.EndTime,
		) {
			filtered = append(filtered, entries[i])
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartTime.After(filtered[j].StartTime)
	})

	return filtered
}

// defaultAction starts the timer for the specified project and runs until it
// is interrupted with Ctrl-C or the auto-stop ceiling is reached.
func defaultAction(ctx *cli.Context) error {
	cfg := config.Tracker(ctx)

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	var notifier bridge.Notifier = bridge.Noop{}
	if cfg.Notify {
		notifier = bridge.NewDesktop(slog.Default())
	}

	t := timer.New(sess.sync, notifier, slog.Default())

	// resume a session that survived a previous process before considering
	// a new start
	if err := t.Recover(); err != nil {
		return err
	}

	name := ctx.String("project")
	if name == "" {
		name = ctx.Args().First()
	}

	if name != "" {
		project, err := sess.sync.ProjectByName(name)
		if err != nil {
			return err
		}

		if err := t.Start(project.ID); err != nil {
			return err
		}
	}

	if !t.Running() {
		return cli.ShowAppHelp(ctx)
	}

	project, err := sess.sync.Project(t.ProjectID())
	if err != nil {
		return err
	}

	pterm.Printfln(
		"Tracking %s (started at %s). Press Ctrl-C to stop.",
		ui.Green(project.Name),
		ui.Highlight(time.Now().Format("15:04:05")),
	)

	done := make(chan struct{})

	t.OnTick = func(elapsed time.Duration) {
		fmt.Fprintf(
			os.Stdout,
			"\r🕒%s",
			ui.Yellow(report.Elapsed(elapsed)),
		)
	}

	t.OnAutoStop = func() {
		pterm.Println()
		pterm.Warning.Println(
			"Maximum session time reached, the timer was stopped",
		)
		close(done)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-interrupt:
		pterm.Println()

		if err := t.Stop(); err != nil {
			return err
		}
	case <-done:
	}

	sess.sync.Flush()

	pterm.Success.Println("entry recorded")

	return nil
}

// addAction records a manual entry without running the timer.
func addAction(ctx *cli.Context) error {
	name := ctx.String("project")
	if name == "" {
		name = ctx.Args().First()
	}

	start, err := dateparse.ParseAny(ctx.String("start"))
	if err != nil {
		return err
	}

	end, err := dateparse.ParseAny(ctx.String("end"))
	if err != nil {
		return err
	}

	// spans beyond a day are accepted only after explicit confirmation;
	// the splitter itself handles arbitrarily long spans
	if end.Sub(start) > timeutil.HoursInADay*time.Hour && !ctx.Bool("yes") {
		if !confirm(fmt.Sprintf(
			"This entry spans %.1f hours. Record it anyway?",
			end.Sub(start).Hours(),
		)) {
			return nil
		}
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	project, err := sess.sync.ProjectByName(name)
	if err != nil {
		return err
	}

	entries, err := split.Span(project.ID, ctx.String("note"), start, end)
	if err != nil {
		return err
	}

	sess.sync.AddEntries(entries)
	sess.sync.Flush()

	report.SessionAdded(len(entries))

	return nil
}

// projectAddAction creates a new project.
func projectAddAction(ctx *cli.Context) error {
	name := strings.TrimSpace(ctx.Args().First())
	if name == "" {
		return fmt.Errorf("a project name is required")
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	project := models.NewProject(
		name,
		ctx.String("description"),
		ctx.Float64("allocation")/100,
	)

	sess.sync.AddProject(project)
	sess.sync.Flush()

	pterm.Success.Printfln("project %s created", name)

	return nil
}

// projectEditAction updates a project's name, description, or allocation.
func projectEditAction(ctx *cli.Context) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	project, err := sess.sync.ProjectByName(ctx.Args().First())
	if err != nil {
		return err
	}

	changed := false

	if ctx.IsSet("rename") {
		name := strings.TrimSpace(ctx.String("rename"))
		if name == "" {
			return fmt.Errorf("the new project name cannot be empty")
		}

		project.Name = name
		changed = true
	}

	if ctx.IsSet("description") {
		project.Description = ctx.String("description")
		changed = true
	}

	if ctx.IsSet("allocation") {
		capacity := ctx.Float64("allocation") / 100
		if capacity < 0 || capacity > 1 {
			return fmt.Errorf("allocation must be between 0 and 100")
		}

		project.MonthlyCapacity = capacity
		changed = true
	}

	if !changed {
		return fmt.Errorf("nothing to change: pass --rename, --description, or --allocation")
	}

	if err := sess.sync.UpdateProject(project); err != nil {
		return err
	}

	sess.sync.Flush()

	pterm.Success.Printfln("project %s updated", project.Name)

	return nil
}

func projectArchiveAction(ctx *cli.Context) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	project, err := sess.sync.ProjectByName(ctx.Args().First())
	if err != nil {
		return err
	}

	if err := sess.sync.ArchiveProject(project.ID); err != nil {
		return err
	}

	sess.sync.Flush()

	pterm.Success.Printfln("project %s archived", project.Name)

	return nil
}

func projectDeleteAction(ctx *cli.Context) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	project, err := sess.sync.ProjectByName(ctx.Args().First())
	if err != nil {
		return err
	}

	if !confirm(fmt.Sprintf(
		"Deleting %s also deletes all of its entries. Continue?",
		project.Name,
	)) {
		return nil
	}

	if err := sess.sync.DeleteProject(project.ID); err != nil {
		return err
	}

	sess.sync.Flush()

	pterm.Success.Printfln("project %s deleted", project.Name)

	return nil
}

func projectListAction(ctx *cli.Context) error {
	cfg := config.Tracker(ctx)

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	report.ListProjects(os.Stdout, sess.sync.Projects(), cfg.BaseMonthlyHours)

	return nil
}

// entriesAction prints a table of all the entries recorded within a time
// period.
func entriesAction(ctx *cli.Context) error {
	cfg := config.Tracker(ctx)

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	sess.sync.SetActivePage("entries")

	entries := entriesInRange(sess.sync.Entries(), config.Filter(ctx))

	if ctx.Bool("json") {
		b, err := json.Marshal(entries)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	report.ListEntries(
		os.Stdout,
		entries,
		sess.sync.Projects(),
		cfg.TwentyFourHourClock,
	)

	return nil
}

// entriesDeleteAction lists the entries in the period and deletes the ones
// selected by the user.
func entriesDeleteAction(ctx *cli.Context) error {
	cfg := config.Tracker(ctx)

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	entries := entriesInRange(sess.sync.Entries(), config.Filter(ctx))

	if len(entries) == 0 {
		pterm.Println("No entries found for the specified time range")
		return nil
	}

	report.ListEntries(
		os.Stdout,
		entries,
		sess.sync.Projects(),
		cfg.TwentyFourHourClock,
	)

	selected, err := selectEntries(entries)
	if err != nil {
		return err
	}

	for _, e := range selected {
		sess.sync.DeleteEntry(e.ID)
	}

	sess.sync.Flush()

	pterm.Success.Printfln("%d entries deleted", len(selected))

	return nil
}

// statsAction computes the stats for the specified time period.
func statsAction(ctx *cli.Context) error {
	cfg := config.Tracker(ctx)

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	sess.sync.SetActivePage("stats")

	filter := config.Filter(ctx)

	r := stats.Compute(
		sess.sync.Entries(),
		sess.sync.Projects(),
		filter.StartTime,
		filter.EndTime,
		cfg.BaseMonthlyHours,
		time.Now(),
	)

	if ctx.Bool("json") {
		b, err := r.ToJSON()
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	r.Render(os.Stdout)

	return nil
}

// heatmapAction prints the rolling 12-month activity heatmap.
func heatmapAction(_ *cli.Context) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	sess.sync.SetActivePage("heatmap")

	stats.RenderHeatmap(os.Stdout, sess.sync.Entries(), time.Now())

	return nil
}

// exportAction writes all entries as CSV to stdout or the specified file.
func exportAction(ctx *cli.Context) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	out := os.Stdout

	if path := ctx.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()

		out = f
	}

	return report.ExportCSV(out, sess.sync.Entries(), sess.sync.Projects())
}

// importAction reads entries from a CSV file, creating any projects that do
// not exist yet.
func importAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return fmt.Errorf("a CSV file path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := report.ImportCSV(f)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	projects, entries, err := report.EntriesFromRows(rows, sess.sync.Projects())
	if err != nil {
		return err
	}

	for i := range projects {
		sess.sync.AddProject(&projects[i])
	}

	sess.sync.AddEntries(entries)
	sess.sync.Flush()

	pterm.Success.Printfln(
		"imported %d entries (%d new projects)",
		len(entries),
		len(projects),
	)

	return nil
}

// testModeAction switches between the production and the synthetic test
// dataset.
func testModeAction(ctx *cli.Context) error {
	var on bool

	switch ctx.Args().First() {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("expected 'on' or 'off'")
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	sess.sync.OnModeChange(func(testMode bool) {
		slog.Info("test mode switched", slog.Bool("enabled", testMode))
	})

	if err := sess.sync.SetTestMode(on); err != nil {
		return err
	}

	if on {
		pterm.Success.Println("test mode enabled: synthetic data is active")
	} else {
		pterm.Success.Println("test mode disabled: production data is active")
	}

	return nil
}

// themeAction switches the colour scheme used by every command.
func themeAction(ctx *cli.Context) error {
	var dark bool

	switch ctx.Args().First() {
	case "dark":
		dark = true
	case "light":
		dark = false
	default:
		return fmt.Errorf("expected 'dark' or 'light'")
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	sess.sync.SetDarkTheme(dark)

	pterm.Success.Printfln("theme set to %s", ctx.Args().First())

	return nil
}

// statusAction prints the status of the currently running timer.
func statusAction(_ *cli.Context) error {
	return timer.ReportStatus()
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting tally")

	return nil
}

// confirm asks the user a yes/no question on stdin.
func confirm(question string) bool {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprintf(os.Stdout, "%s [y/N] ", question)

	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	input = strings.ToLower(strings.TrimSpace(input))

	return input == "y" || input == "yes"
}

// selectEntries prompts for comma-separated entry numbers from the listed
// table.
func selectEntries(
	entries []models.TimeEntry,
) ([]models.TimeEntry, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprint(os.Stdout, "Select the entries to delete and press ENTER: ")

	input, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}

	input = strings.TrimSpace(input)

	if input == "" {
		return nil, nil
	}

	var selected []models.TimeEntry

	for _, v := range strings.Split(input, ",") {
		num, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			continue
		}

		index := num - 1

		if index < 0 || index >= len(entries) {
			continue
		}

		selected = append(selected, entries[index])
	}

	return selected, nil
}
