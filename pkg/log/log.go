// Package log provides the logger used throughout the emulator. The
// default implementation is backed by logrus, but any type satisfying
// Logger may be supplied by the host.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface consumed by the emulator's components.
// Both *logrus.Logger and *logrus.Entry satisfy it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Fields is a set of structured key/value pairs attached to a log line.
type Fields = logrus.Fields

// New returns a Logger writing plain text to stderr at info level.
func New() Logger {
	return NewWithWriter(os.Stderr, logrus.InfoLevel)
}

// NewWithWriter returns a Logger writing to w at the given level.
func NewWithWriter(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}

// WithFields attaches fields to l when it is backed by logrus. Other
// loggers are returned unchanged.
func WithFields(l Logger, fields Fields) Logger {
	switch v := l.(type) {
	case *logrus.Logger:
		return v.WithFields(fields)
	case *logrus.Entry:
		return v.WithFields(fields)
	}
	return l
}

// ParseLevel parses a level name such as "debug" or "warn".
func ParseLevel(name string) (logrus.Level, error) {
	return logrus.ParseLevel(name)
}
