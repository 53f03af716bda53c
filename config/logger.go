package config

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger configures the default slog logger to write JSON records to a
// size-rotated log file.
func InitLogger() *slog.Logger {
	w := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}

	level := slog.LevelInfo

	if os.Getenv("TALLY_ENV") == "development" {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))

	slog.SetDefault(log)

	return log
}
