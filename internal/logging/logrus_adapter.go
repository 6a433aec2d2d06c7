package logging

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of logrus.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter creates a logger for level ("trace" to "error", case-insensitive)
// and format ("json" or "text").
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterWithOutput(level, format, nil)
}

// NewLogrusAdapterWithOutput is NewLogrusAdapter writing to out. A nil out
// keeps stderr, which leaves stdout free for CSV written with "-o -".
func NewLogrusAdapterWithOutput(level, format string, out io.Writer) Logger {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	}

	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewLogrusAdapterFromLogger creates a LogrusAdapter from an existing logrus.Logger.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

func (l *LogrusAdapter) with(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(convertFields(fields))
}

func (l *LogrusAdapter) derive(entry *logrus.Entry) Logger {
	return &LogrusAdapter{logger: l.logger, entry: entry}
}

// Debug logs at debug level
func (l *LogrusAdapter) Debug(msg string, fields ...Field) { l.with(fields).Debug(msg) }

// Info logs at info level
func (l *LogrusAdapter) Info(msg string, fields ...Field) { l.with(fields).Info(msg) }

// Warn logs at warning level
func (l *LogrusAdapter) Warn(msg string, fields ...Field) { l.with(fields).Warn(msg) }

// Error logs at error level
func (l *LogrusAdapter) Error(msg string, fields ...Field) { l.with(fields).Error(msg) }

// WithError returns a logger carrying err
func (l *LogrusAdapter) WithError(err error) Logger { return l.derive(l.entry.WithError(err)) }

// WithField returns a logger carrying one extra field
func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return l.derive(l.entry.WithField(key, value))
}

// WithFields returns a logger carrying extra fields, e.g. the run id
func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return l.derive(l.with(fields))
}

func convertFields(fields []Field) logrus.Fields {
	logrusFields := make(logrus.Fields, len(fields))
	for _, field := range fields {
		logrusFields[field.Key] = field.Value
	}
	return logrusFields
}

// Fatal logs and exits the program
func (l *LogrusAdapter) Fatal(msg string, fields ...Field) { l.with(fields).Fatal(msg) }

// Fatalf logs a formatted message and exits the program
func (l *LogrusAdapter) Fatalf(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}
