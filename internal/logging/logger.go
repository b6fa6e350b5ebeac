// Package logging builds the structured slog loggers used by the CLI, the
// API server and the feed.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/seenimoa/dashcore/internal/config"
)

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldStatement  = "statement"
	FieldPeriod     = "period"
	FieldDataset    = "dataset"
	FieldSnapshotID = "snapshot_id"
	FieldClients    = "clients"
	FieldError      = "error"
)

// Component names.
const (
	ComponentCLI  = "cli"
	ComponentHTTP = "http"
	ComponentFeed = "feed"
)

// New returns a logger writing to w in the configured format and level.
// A nil writer logs to stderr.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent tags every record from the returned logger with a component name.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	return l.With(FieldComponent, component)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
