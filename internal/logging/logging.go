// Package logging configures the process-wide slog logger and keeps an
// in-memory copy of the session so it can be flushed when automation stops.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", s)
	}
}

// NewHandler builds a text or JSON handler writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s (use text or json)", format)
	}
}

// Setup installs a default logger writing to w and mirroring every record
// into the returned Recorder.
func Setup(w io.Writer, levelName, format string) (*Recorder, error) {
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	h, err := NewHandler(w, level, format)
	if err != nil {
		return nil, err
	}
	rec := NewRecorder(level)
	slog.SetDefault(slog.New(NewTee(h, rec)))
	return rec, nil
}
