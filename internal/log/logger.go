// Package log wraps slog with component-scoped loggers and the field names
// used across the service.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide default logger at the given level and
// returns it.
func Setup(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// ForComponent returns a logger tagged with a component name.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With(FieldComponent, component)
}
