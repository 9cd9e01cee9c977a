package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Format selects how log records are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewHandler returns a slog handler that renders through charmbracelet/log.
func NewHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	formatter := log.TextFormatter
	if format == FormatJSON {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           log.Level(level),
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Formatter:       formatter,
	})
}

// NewSentryHub creates a hub reporting to dsn. An empty dsn returns nil,
// which disables reporting.
func NewSentryHub(dsn, release string) (*sentry.Hub, error) {
	if dsn == "" {
		return nil, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, fmt.Errorf("observability: sentry client: %w", err)
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}

// New builds a CoreLogger writing to w, reporting to hub when non-nil.
func New(w io.Writer, level slog.Level, format Format, hub *sentry.Hub, tags Tags) *CoreLogger {
	return NewCoreLogger(
		slog.New(NewHandler(w, level, format)),
		&CoreLoggerParams{Hub: hub, Tags: tags},
	)
}
