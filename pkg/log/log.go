// Package log provides the logging interface used throughout the
// emulator, backed by logrus.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface accepted by every component.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatal(args ...interface{})
}

type logger struct {
	*logrus.Logger
}

// New returns a Logger writing text lines to stderr at info level.
func New() Logger {
	return newLogger(os.Stderr, logrus.InfoLevel)
}

// NewWithLevel returns a Logger writing to stderr at the given level
// ("debug", "info", "error", ...).
func NewWithLevel(level string) (Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return newLogger(os.Stderr, lvl), nil
}

// NewWriter returns a Logger writing to w at the given level.
func NewWriter(w io.Writer, level logrus.Level) Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level logrus.Level) *logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	})
	return &logger{Logger: l}
}
