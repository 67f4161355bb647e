// Package logging builds the process-wide zap logger.
//
// Every entry is written to two sinks: a persistent log file opened in
// append mode and a live console stream. Both use the same line format:
//
//	2026-01-02T15:04:05.000+0100	INFO	Copied file	{"source": "in/a.txt", "destination": "out/txt/a.txt"}
//
// The logger is safe for concurrent use by multiple goroutines.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is the log file used when none is configured.
const DefaultFile = "sort_files.log"

// Config holds the configuration for creating a new logger.
type Config struct {
	// File is the persistent log destination. Empty disables the file sink.
	File string

	// Console receives the live log stream.
	// If nil, defaults to os.Stderr.
	Console io.Writer

	// Debug enables debug entries on both sinks.
	Debug bool

	// Quiet limits the console to errors. The file still receives everything.
	Quiet bool

	// Color enables colored level names on the console.
	Color bool
}

// Logger is a zap logger bound to an open log file.
type Logger struct {
	*zap.Logger

	file *os.File
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "message",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: "\t",
	}
}

// Levels returns the minimum levels of the file and console sinks.
func (c Config) Levels() (zapcore.Level, zapcore.Level) {
	file := zapcore.InfoLevel
	if c.Debug {
		file = zapcore.DebugLevel
	}

	console := file
	if c.Quiet {
		console = zapcore.ErrorLevel
	}

	return file, console
}

// New creates a Logger writing to cfg.File and cfg.Console.
// Call Close when done to flush and release the file.
func New(cfg Config) (*Logger, error) {
	if cfg.Console == nil {
		cfg.Console = os.Stderr
	}

	fileLevel, consoleLevel := cfg.Levels()

	consoleEncoding := encoderConfig()
	if cfg.Color {
		consoleEncoding.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoding),
			zapcore.Lock(zapcore.AddSync(cfg.Console)),
			consoleLevel,
		),
	}

	l := &Logger{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}

		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		l.file = f

		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.Lock(f),
			fileLevel,
		))
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))

	return l, nil
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	// Sync on a terminal returns EINVAL on some platforms; only the file matters.
	_ = l.Sync()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil

	return err
}
