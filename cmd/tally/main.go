package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/tally/app"
	"github.com/ayoisaiah/tally/config"
)

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	config.InitializePaths()

	config.InitLogger()

	err := run(os.Args)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
