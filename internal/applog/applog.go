// Package applog wires up the pipeline's structured logging: a
// human-readable console stream on stderr and, optionally, a rotated JSON
// file. Both sinks share one level: info and above, or debug and above
// when debug logging is enabled.
package applog

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger. An empty logPath disables
// the rotating file sink and logs to the console only. The returned
// closer flushes and closes the log file; callers should defer it.
func Init(logPath string, debug bool) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if logPath == "" {
		logger := zerolog.New(console).With().Timestamp().Logger().Level(level)
		zerolog.DefaultContextLogger = &logger
		log.Logger = logger
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		LocalTime:  true,
	}

	multi := zerolog.MultiLevelWriter(console, rotator)
	logger := zerolog.New(multi).With().Timestamp().Logger().Level(level)
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger

	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
