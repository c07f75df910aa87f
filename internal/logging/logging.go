// Package logging provides a file-backed structured logger. The TUI owns the
// terminal, so nothing may write to stdout or stderr while it runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// New returns a JSON slog.Logger appending to a log file under the user state
// directory, plus a close func. When the file cannot be opened the returned
// logger discards everything; a broken log destination must never stop the
// dashboard.
func New(appName string) (*slog.Logger, func() error) {
	dir := filepath.Join(xdg.StateHome, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discard()
	}

	f, err := os.OpenFile(filepath.Join(dir, appName+".log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discard()
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler).With("app", appName), f.Close
}

func discard() (*slog.Logger, func() error) {
	handler := slog.NewJSONHandler(io.Discard, nil)
	return slog.New(handler), func() error { return nil }
}
