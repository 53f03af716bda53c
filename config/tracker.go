package config

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	keyBaseMonthlyHours = "settings.base_monthly_hours"
	keyTwentyFourHour   = "settings.24hr_clock"
	keyNotify           = "notifications.enabled"
)

const defaultBaseMonthlyHours = 140

var trackerCfg *TrackerConfig

var once sync.Once

// TrackerConfig represents the program configuration derived from the config
// file and command-line arguments.
type TrackerConfig struct {
	Stderr              io.Writer `json:"-"`
	Stdout              io.Writer `json:"-"`
	Stdin               io.Reader `json:"-"`
	PathToConfig        string    `json:"path_to_config"`
	PathToDB            string    `json:"path_to_db"`
	BaseMonthlyHours    float64   `json:"base_monthly_hours"`
	Notify              bool      `json:"notify"`
	TwentyFourHourClock bool      `json:"twenty_four_hour_clock"`
}

// setTrackerConfig loads the configuration file, writing the defaults on
// first run, and applies any command-line overrides.
func setTrackerConfig(ctx *cli.Context) error {
	v := viper.New()

	v.SetConfigFile(configFilePath)
	v.SetConfigType("yaml")

	v.SetDefault(keyBaseMonthlyHours, defaultBaseMonthlyHours)
	v.SetDefault(keyTwentyFourHour, false)
	v.SetDefault(keyNotify, true)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}
	}

	trackerCfg.BaseMonthlyHours = v.GetFloat64(keyBaseMonthlyHours)
	trackerCfg.TwentyFourHourClock = v.GetBool(keyTwentyFourHour)
	trackerCfg.Notify = v.GetBool(keyNotify)

	if ctx.IsSet("base-hours") {
		trackerCfg.BaseMonthlyHours = ctx.Float64("base-hours")
	}

	if ctx.Bool("disable-notification") {
		trackerCfg.Notify = false
	}

	if trackerCfg.BaseMonthlyHours <= 0 {
		return errInvalidBaseHours
	}

	return nil
}

// Tracker initializes and returns the application configuration.
func Tracker(ctx *cli.Context) *TrackerConfig {
	once.Do(func() {
		trackerCfg = &TrackerConfig{
			PathToConfig: configFilePath,
			PathToDB:     dbFilePath,
			Stdin:        os.Stdin,
			Stdout:       os.Stdout,
			Stderr:       os.Stderr,
		}

		if err := setTrackerConfig(ctx); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
	})

	return trackerCfg
}
