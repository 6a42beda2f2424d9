// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init routes the default slog logger to a size-rotated file. The
// daemon logs for weeks at a time, so stdout is reserved for the CLI
// surfaces and everything diagnostic goes here.
func Init(path string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	slog.SetDefault(
		slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	)
}
