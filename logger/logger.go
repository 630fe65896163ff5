// Package logger configures structured logging for the analyzer.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Until Init runs, everything logged through this package is discarded.
var defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name as given on the command line to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// Init replaces the package logger and the slog default.
func Init(cfg Config) error {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return nil
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// With returns a child of the package logger carrying args.
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

// LogPhase logs the start of an analysis phase.
func LogPhase(l *slog.Logger, phase string) {
	l.Debug("starting phase", "phase", phase)
}

// LogPhaseComplete logs the end of an analysis phase with the number of
// diagnostics reported so far.
func LogPhaseComplete(l *slog.Logger, phase string, diagnostics int) {
	l.Debug("completed phase", "phase", phase, "diagnostics", diagnostics)
}

func LogFileProcessing(file string) {
	Info("processing file", "file", file)
}

// LogResult logs the outcome of analyzing a file.
func LogResult(file string, diagnostics int) {
	if diagnostics == 0 {
		Info("analysis succeeded", "file", file)
		return
	}
	Warn("analysis failed", "file", file, "diagnostics", diagnostics)
}
