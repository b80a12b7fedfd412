package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var defaultLogger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Default returns the process-wide logger. Packages attach fields with
// Default().WithField(...) rather than holding logger state of their own.
func Default() *logrus.Logger {
	return defaultLogger
}

func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	defaultLogger.SetLevel(parsed)
	return nil
}

func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		defaultLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		defaultLogger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("log format %q: must be text or json", format)
	}
	return nil
}

// SetFileOutput mirrors log output into a size-rotated file alongside stderr.
func SetFileOutput(path string, maxSizeMB, maxBackups int) {
	if path == "" {
		return
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 100
	}
	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	defaultLogger.SetOutput(io.MultiWriter(os.Stderr, rotated))
}
