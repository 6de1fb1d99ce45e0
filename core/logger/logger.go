package logger

import (
	"log/slog"
	"os"
)

type options struct {
	level   slog.Level
	json    bool
	appName string
	attrs   []slog.Attr
}

// Option configures the logger constructor.
type Option func(*options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithJSON switches output to JSON, the format used in production.
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithDevelopment configures human-readable text output at debug level,
// tagged with the application name.
func WithDevelopment(appName string) Option {
	return func(o *options) {
		o.level = slog.LevelDebug
		o.json = false
		o.appName = appName
	}
}

// WithAttrs attaches attributes to every record produced by the logger.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// New creates a slog.Logger writing to stderr.
// Defaults to text output at info level.
func New(opts ...Option) *slog.Logger {
	o := options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}

	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	if o.appName != "" {
		o.attrs = append([]slog.Attr{slog.String("app", o.appName)}, o.attrs...)
	}
	if len(o.attrs) > 0 {
		handler = handler.WithAttrs(o.attrs)
	}

	return slog.New(handler)
}
