package app

import "github.com/urfave/cli/v2"

var (
	projectFlag = &cli.StringFlag{
		Name:    "project",
		Aliases: []string{"p"},
		Usage:   "The name of the project to track time against",
	}

	noteFlag = &cli.StringFlag{
		Name:    "note",
		Aliases: []string{"n"},
		Usage:   "Attach a note to the entry",
	}

	startFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "The start of the entry or reporting period (e.g. '2025-01-01 09:00')",
	}

	endFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "The end of the entry or reporting period",
	}

	periodFlag = &cli.StringFlag{
		Name:  "period",
		Usage: "Set a reporting period: today, yesterday, 7days, 14days, 30days, 90days, 365days, this-month, or all-time",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON instead of a formatted report",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write CSV output to the specified file instead of stdout",
	}

	descriptionFlag = &cli.StringFlag{
		Name:    "description",
		Aliases: []string{"d"},
		Usage:   "Describe the project",
	}

	renameFlag = &cli.StringFlag{
		Name:  "rename",
		Usage: "Change the project's name",
	}

	allocationFlag = &cli.Float64Flag{
		Name:    "allocation",
		Aliases: []string{"a"},
		Usage:   "Percentage of the base monthly hours allocated to the project (0-100)",
	}

	baseHoursFlag = &cli.Float64Flag{
		Name:  "base-hours",
		Usage: "Override the base monthly-hours figure used for targets (default: 140)",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:  "disable-notification",
		Usage: "Disable desktop notifications for timer transitions",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt for entries longer than 24 hours",
	}
)
