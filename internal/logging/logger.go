// Package logging builds dayguard's structured loggers and the generic
// audit-wrapper helper used by every authenticated operation.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// LoggerConfig holds configuration for creating loggers.
type LoggerConfig struct {
	Format string     // "json" or "text"
	Level  slog.Level
	Output io.Writer
}

// NewLogger creates a new slog.Logger with the given configuration.
func NewLogger(config LoggerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: config.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}

	var handler slog.Handler
	if config.Format == "text" {
		handler = slog.NewTextHandler(config.Output, opts)
	} else {
		handler = slog.NewJSONHandler(config.Output, opts)
	}

	return slog.New(handler)
}

// MultiLogger holds loggers for dayguard's three logical output streams.
type MultiLogger struct {
	Core   *slog.Logger // supervisor/policy/storage internals
	Audit  *slog.Logger // one line per authenticated operation outcome
	Notify *slog.Logger // notification manager delivery attempts
	files  []*os.File
}

func (m *MultiLogger) Close() error {
	for _, f := range m.files {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// MultiLoggerConfig holds configuration for creating a MultiLogger.
type MultiLoggerConfig struct {
	Format        string
	Level         slog.Level
	CorePath      string
	AuditPath     string
	NotifyPath    string
}

// NewMultiLogger creates a MultiLogger with separate output files per stream.
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	ml := &MultiLogger{files: make([]*os.File, 0, 3)}

	open := func(path string) (*slog.Logger, error) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		ml.files = append(ml.files, f)
		return NewLogger(LoggerConfig{Format: config.Format, Level: config.Level, Output: f}), nil
	}

	var err error
	if ml.Core, err = open(config.CorePath); err != nil {
		return nil, err
	}
	if ml.Audit, err = open(config.AuditPath); err != nil {
		ml.Close()
		return nil, err
	}
	if ml.Notify, err = open(config.NotifyPath); err != nil {
		ml.Close()
		return nil, err
	}

	return ml, nil
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
