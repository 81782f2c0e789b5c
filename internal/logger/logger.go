package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string
	Format string // text or json
	File   string // empty logs to stdout
}

// Setup configures the standard logrus logger. With a file set, output goes
// through a rotating lumberjack writer.
func Setup(opts Options) error {
	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	formatter, err := newFormatter(opts.Format)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	logrus.SetOutput(newOutput(opts.File))
	return nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}, nil
	case "json":
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}, nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func newOutput(file string) io.Writer {
	if file == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}
}
