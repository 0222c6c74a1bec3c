// Package logging sets up the logrus logger shared by the CLI and the
// packages it wires together.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to output (debug, info, warn, error).
	Level string
	// JSON switches from the text formatter to the JSON formatter.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger for cfg. Unknown levels fall back to warn so the CLI
// stays quiet unless asked.
func New(cfg Config) *logrus.Logger {
	l := logrus.New()
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	l.SetOutput(cfg.Output)
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	l.SetLevel(ParseLevel(cfg.Level))
	return l
}

// ParseLevel parses a level name case-insensitively, defaulting to warn.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
