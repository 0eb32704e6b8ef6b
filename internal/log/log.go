/*
Package log holds the logger singleton and helper functions used across deprecier.
*/
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const timestampFormat = "2006-01-02 15:04:05"

// Config selects the output and format of a logger built by New.
type Config struct {
	Level      logrus.Level
	Structured bool
	Output     io.Writer
}

// log is the singleton used by the package helpers. It discards everything
// until Set is called so library consumers get silence by default.
var log = discard()

func discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New builds a logrus logger from cfg. A nil Output writes to stderr.
func New(cfg Config) *logrus.Logger {
	l := logrus.New()

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	l.SetOutput(output)
	l.SetLevel(cfg.Level)

	if cfg.Structured {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		l.SetFormatter(&prefixed.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	}
	return l
}

// ParseLevel accepts logrus level names plus "warning" and "quiet".
func ParseLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return logrus.InfoLevel, nil
	case "quiet":
		return logrus.PanicLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func Set(l *logrus.Logger) {
	if l == nil {
		l = discard()
	}
	log = l
}

func Get() *logrus.Logger {
	return log
}

// WithFields returns an entry carrying fields, for structured context.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// Errorf takes a formatted template string and template arguments for the error logging level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Warnf takes a formatted template string and template arguments for the warning logging level.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Infof takes a formatted template string and template arguments for the info logging level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Debugf takes a formatted template string and template arguments for the debug logging level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}
