package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// parseLevel maps the LOG_LEVEL config value to a slog level.
func parseLevel(level string) slog.Level {
	switch level {
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

// weekKey returns the ISO week key used in log file names, e.g. 2026-W35.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// SetupLogger builds the application logger. Log lines are written to
// stderr as text; when logDir is non-empty a per-week JSON log file is
// opened alongside it. File open failures degrade to console-only
// logging rather than aborting startup.
func SetupLogger(logDir, level string) *slog.Logger {
	lvl := parseLevel(level)

	var out io.Writer = os.Stderr
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			slog.Warn("Failed to create log directory, logging to console only", "dir", logDir, "error", err)
		} else {
			logPath := filepath.Join(logDir, fmt.Sprintf("app-%s.log", weekKey(time.Now())))
			file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				slog.Warn("Failed to open log file, logging to console only", "path", logPath, "error", err)
			} else {
				out = io.MultiWriter(os.Stderr, file)
			}
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
}
