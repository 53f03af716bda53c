// Package config is responsible for setting the program config from
// the config file and command-line arguments
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

const Version = "v0.3.0"

var (
	configDir      = "tally"
	configFileName = "config.yml"
	dbFileName     = "tally.db"
	logFileName    = "tally.log"
	statusFileName = "status.json"
	dbFilePath     string
	configFilePath string
	logFilePath    string
	statusFilePath string
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

func StatusFilePath() string {
	return statusFilePath
}

// InitializePaths resolves the config, database, and log file locations. A
// TALLY_ENV value suffixes the file names so that development data stays
// separate.
func InitializePaths() {
	tallyEnv := strings.TrimSpace(os.Getenv("TALLY_ENV"))
	if tallyEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", tallyEnv)
		dbFileName = fmt.Sprintf("tally_%s.db", tallyEnv)
		logFileName = fmt.Sprintf("tally_%s.log", tallyEnv)
		statusFileName = fmt.Sprintf("status_%s.json", tallyEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, logFileName)

	statusFilePath = filepath.Join(dataDir, statusFileName)
}
