// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var std = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Logger returns the shared logger.
func Logger() *logrus.Logger { return std }

// Setup applies a level name ("debug", "info", "warn", "error"). debug forces
// the debug level regardless of level.
func Setup(level string, debug bool) error {
	if debug {
		std.SetLevel(logrus.DebugLevel)
		return nil
	}
	if strings.TrimSpace(level) == "" {
		return nil
	}
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lv)
	return nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	return newLogger(io.Discard)
}
