package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// Tags are key/value pairs attached to reported events.
type Tags map[string]string

// NewTags creates Tags from a mix of slog.Attr values and string keys followed
// by their values. Incomplete pairs and other types are ignored.
func NewTags(args ...any) Tags {
	tags := Tags{}
	for len(args) > 0 {
		switch x := args[0].(type) {
		case slog.Attr:
			tags[x.Key] = x.Value.String()
			args = args[1:]
		case string:
			if len(args) < 2 {
				return tags
			}
			attr := slog.Any(x, args[1])
			tags[attr.Key] = attr.Value.String()
			args = args[2:]
		default:
			args = args[1:]
		}
	}
	return tags
}

// LevelFatal is logged by CaptureFatal.
const LevelFatal = slog.Level(12)

type CoreLoggerParams struct {
	// Hub receives captured errors. Nil disables reporting.
	Hub *sentry.Hub

	Tags Tags
}

// CoreLogger is a slog.Logger that can also report to Sentry.
type CoreLogger struct {
	*slog.Logger
	baseTags Tags
	hub      *sentry.Hub
}

func NewCoreLogger(logger *slog.Logger, params *CoreLoggerParams) *CoreLogger {
	if params == nil {
		params = &CoreLoggerParams{}
	}

	tags := Tags{}
	var args []any
	for key, value := range params.Tags {
		args = append(args, slog.String(key, value))
		tags[key] = value
	}

	return &CoreLogger{
		Logger:   logger.With(args...),
		baseTags: tags,
		hub:      params.Hub,
	}
}

// withArgs merges args with the base tags; base tags win.
func (cl *CoreLogger) withArgs(args ...any) Tags {
	tags := NewTags(args...)
	for key, value := range cl.baseTags {
		tags[key] = value
	}
	return tags
}

// With returns a derived logger that includes the given attributes in each
// message.
func (cl *CoreLogger) With(args ...any) *CoreLogger {
	return &CoreLogger{
		Logger:   cl.Logger.With(args...),
		baseTags: cl.baseTags,
		hub:      cl.hub,
	}
}

// CaptureError logs an error and sends it to Sentry.
func (cl *CoreLogger) CaptureError(err error, args ...any) {
	if err == nil {
		return
	}
	cl.Error(err.Error(), args...)

	if cl.hub != nil {
		cl.report(args, func(h *sentry.Hub) { h.CaptureException(err) })
	}
}

// CaptureFatal logs a fatal error and sends it to Sentry.
func (cl *CoreLogger) CaptureFatal(err error, args ...any) {
	cl.Log(context.Background(), LevelFatal, err.Error(), args...)

	if cl.hub != nil {
		cl.report(args, func(h *sentry.Hub) { h.CaptureException(err) })
	}
}

// CaptureWarn logs a warning and sends it to Sentry.
func (cl *CoreLogger) CaptureWarn(msg string, args ...any) {
	cl.Warn(msg, args...)

	if cl.hub != nil {
		cl.report(args, func(h *sentry.Hub) { h.CaptureMessage(msg) })
	}
}

func (cl *CoreLogger) report(args []any, capture func(*sentry.Hub)) {
	local := cl.hub.Clone()
	local.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(cl.withArgs(args...))
	})
	capture(local)
}

// Reraise reports a recovered panic and panics again.
func (cl *CoreLogger) Reraise(args ...any) {
	if err := recover(); err != nil {
		if cl.hub != nil {
			cl.report(args, func(h *sentry.Hub) { h.Recover(err) })
			cl.hub.Flush(flushTimeout)
		}
		panic(err)
	}
}

// Flush waits for buffered events to reach Sentry.
func (cl *CoreLogger) Flush() {
	if cl.hub != nil {
		cl.hub.Flush(flushTimeout)
	}
}

// GetTags returns the tags associated with the logger.
//
// Used for testing.
func (cl *CoreLogger) GetTags() Tags {
	return cl.baseTags
}

// NewNoOpLogger returns a logger that discards all messages.
//
// Used for testing.
func NewNoOpLogger() *CoreLogger {
	return NewCoreLogger(
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
		nil,
	)
}
