package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// New builds the application logger. Debug mode lowers the level and
// annotates records with their source location.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:     level,
		AddSource: debug,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
