// Package logging sets up the file logger. The TUI owns the terminal, so
// log output never goes to stdout.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to file at the given level
// (debug, info, warn, error). The closer releases the file.
func New(level, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level %q: %w", level, err)
	}
	if file == "" {
		file = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("open log file: %w", err)
	}
	closer = func() { _ = f.Close() }

	l := zerolog.New(f).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

// DefaultPath is $XDG_STATE_HOME/prreview/prreview.log, falling back to
// ~/Library/Logs on macOS and ~/.local/state elsewhere.
func DefaultPath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "prreview", "prreview.log")
	}
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "prreview", "prreview.log")
	}
	return filepath.Join(home, ".local", "state", "prreview", "prreview.log")
}

// Component returns a child of base tagged with a component field.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
