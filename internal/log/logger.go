// Package log provides structured logging for the Galaxy demo.
//
// Records go to a debug log file under ~/.galaxy/debug.log so that the
// terminal stays free for the progress view.
package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPath returns ~/.galaxy/debug.log
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".galaxy", "debug.log")
}

// New constructs a text slog.Logger writing to w at the provided level
func New(w io.Writer, lvl slog.Level, version string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With(
		slog.String("service", "galaxy-demo"),
		slog.String("version", version))
}

// OpenFile opens (creating or appending) the debug log at path and
// returns a logger writing to it. The caller closes the returned file.
func OpenFile(path string, lvl slog.Level, version string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	logger := New(file, lvl, version)
	logger.Info("=== Galaxy demo started ===")
	return logger, file, nil
}

// ParseLevel maps debug, info, warn and error to slog levels, defaulting
// to info for anything else
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
