// ABOUTME: Builds the process logger from config.
// ABOUTME: Writes text logs to stderr, or to a size-rotated file when a log file is set.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level   string
	File    string
	Verbose bool
	// Output replaces stderr when File is empty.
	Output io.Writer
}

// New returns a logger. Verbose forces debug level.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.WarnLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
		logger.SetOutput(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		return logger, nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	logger.SetOutput(out)
	return logger, nil
}

// Close releases the rotating log file opened by New. Writers supplied by the
// caller are left open.
func Close(logger *logrus.Logger) error {
	if lj, ok := logger.Out.(*lumberjack.Logger); ok {
		return lj.Close()
	}
	return nil
}
