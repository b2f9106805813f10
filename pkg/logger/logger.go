package logger

import (
	"log/slog"
	"os"
)

// L is the global structured logger. It writes to stderr so stdout stays
// clean for the rendered banner.
var L *slog.Logger

func init() {
	L = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Init configures the global logger. Verbose mode lowers the level to debug
// so per-source fallbacks become visible during troubleshooting.
func Init(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	L = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(L)
}
