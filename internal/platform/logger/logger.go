package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON lines on stdout so
// the fixture server and the console log the same shape.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
