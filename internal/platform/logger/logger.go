package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text output on stdout; services and
// handlers attach their own key/value context per call.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
