// Package logging configures structured logging for the grill service.
//
// Usage:
//
//	logging.Setup("development")  // colored tint output, level from LOG_LEVEL
//	logging.Setup("production")   // JSON lines on stdout
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FORMAT: text or json; overrides the choice made from the environment name
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger for the given app environment.
func Setup(env string) {
	slog.SetDefault(New(os.Stderr, env, levelFromEnv()))
}

// New builds a logger writing to w. Production uses JSON unless LOG_FORMAT
// says otherwise.
func New(w io.Writer, env string, level slog.Level) *slog.Logger {
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if format == "" && env == "production" {
		format = "json"
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
	}))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
