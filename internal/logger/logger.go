package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log level, encoding, and destination.
type Config struct {
	// Level is "debug", "info", "warn" or "error". Default: "info".
	Level string

	// Format is "json" or "console". Default: "console".
	Format string

	// File, when set, receives all log output instead of stderr.
	// The TUI always logs to a file so the alternate screen stays clean.
	File string
}

var log = zap.NewNop()

// Initialize sets up the global logger with the given configuration.
func Initialize(cfg Config) error {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	level, err := zapcore.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	sink := zapcore.AddSync(os.Stderr)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		sink = zapcore.AddSync(f)
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, level)
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Get returns the global logger. It is a no-op logger until Initialize
// has been called.
func Get() *zap.Logger {
	return log
}

// Set replaces the global logger. Tests use it to capture output.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// Sync flushes any buffered log entries.
func Sync() error {
	return log.Sync()
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}
