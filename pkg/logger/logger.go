package logger

import (
	"log/slog"
	"os"
)

// Log defaults to the stdlib logger until Init installs the JSON handler,
// so packages can log before main wires things up.
var Log = slog.Default()

func Init() {
	// JSON handler so log aggregators can index fields
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
