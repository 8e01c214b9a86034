// Package logging configures routerd's structured JSON logs. Every line
// carries the service name and environment so route audit lines can be
// correlated with receipts downstream.
package logging

import (
	"io"
	"log"
	"log/slog"
	"strings"
)

// ParseLevel maps a config string onto a slog level. Unrecognised or empty
// values fall back to info.
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

// Setup builds the daemon logger writing JSON to w at the given level and
// installs it as the process default. The timestamp, severity and message
// keys match what the log pipeline expects.
func Setup(w io.Writer, service, env string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "timestamp"
			case slog.LevelKey:
				attr = slog.String("severity", strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	})

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}

	logger := slog.New(handler.WithAttrs(attrs))
	slog.SetDefault(logger)

	// Route anything still using the stdlib logger through the same handler.
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(handler.WithAttrs(attrs), slog.LevelInfo).Writer())

	return logger
}
