// Package app wires up the Tally command-line interface
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/tally/config"
)

const (
	envNoColor      = "NO_COLOR"
	envTallyNoColor = "TALLY_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the tally app instance.
func Get() *cli.App {
	tallyApp := &cli.App{
		Name: "tally",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Tally records the time you spend on each of your projects and reports
		daily, weekly, and monthly totals, activity heatmaps, and completion
		predictions against your monthly allocation targets.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Record a completed entry without running the timer",
				Action:    addAction,
				Flags:     []cli.Flag{projectFlag, startFlag, endFlag, noteFlag, yesFlag},
			},
			{
				Name:  "project",
				Usage: "Manage projects",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Create a new project",
						ArgsUsage: "NAME",
						Action:    projectAddAction,
						Flags:     []cli.Flag{descriptionFlag, allocationFlag},
					},
					{
						Name:      "edit",
						Usage:     "Update a project's name, description, or allocation",
						ArgsUsage: "NAME",
						Action:    projectEditAction,
						Flags:     []cli.Flag{renameFlag, descriptionFlag, allocationFlag},
					},
					{
						Name:      "archive",
						Usage:     "Archive a project, excluding it from aggregation and new timers",
						ArgsUsage: "NAME",
						Action:    projectArchiveAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete a project and all of its entries",
						ArgsUsage: "NAME",
						Action:    projectDeleteAction,
					},
					{
						Name:   "list",
						Usage:  "List all projects",
						Action: projectListAction,
					},
				},
			},
			{
				Name:   "entries",
				Usage:  "List the entries recorded within a time period",
				Action: entriesAction,
				Flags:  []cli.Flag{periodFlag, startFlag, endFlag, jsonFlag},
				Subcommands: []*cli.Command{
					{
						Name:   "delete",
						Usage:  "Delete one or more entries",
						Action: entriesDeleteAction,
						Flags:  []cli.Flag{periodFlag, startFlag, endFlag},
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Report aggregate statistics for a time period. Defaults to the current month",
				Action: statsAction,
				Flags:  []cli.Flag{periodFlag, startFlag, endFlag, jsonFlag, baseHoursFlag},
			},
			{
				Name:   "heatmap",
				Usage:  "Print an activity heatmap of the last 12 months",
				Action: heatmapAction,
			},
			{
				Name:   "export",
				Usage:  "Export all entries as CSV",
				Action: exportAction,
				Flags:  []cli.Flag{outputFlag},
			},
			{
				Name:      "import",
				Usage:     "Import entries from a CSV file",
				ArgsUsage: "FILE",
				Action:    importAction,
			},
			{
				Name:      "theme",
				Usage:     "Switch between the dark and light colour schemes",
				ArgsUsage: "dark|light",
				Action:    themeAction,
			},
			{
				Name:      "testmode",
				Usage:     "Switch between the production and the synthetic test dataset",
				ArgsUsage: "on|off",
				Action:    testModeAction,
			},
			{
				Name:   "status",
				Usage:  "Print the status of the timer",
				Action: statusAction,
			},
		},
		Flags: []cli.Flag{
			projectFlag,
			noteFlag,
			disableNotificationFlag,
			noColorFlag,
			baseHoursFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return tallyApp
}

func beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if TALLY_NO_COLOR is set
	if _, exists := os.LookupEnv(envTallyNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
