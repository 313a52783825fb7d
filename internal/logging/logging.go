// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"wavescan/internal/wave"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       false,
		FilePath:   filepath.Join(home, ".config", "wavescan", "logs", "wavescan.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithInput adds the input source to the logger context.
func WithInput(logger zerolog.Logger, path string) zerolog.Logger {
	return logger.With().Str("input", path).Logger()
}

// LogScan logs a completed engine run from its diagnostics. The
// engine itself never logs; callers surface its counters here.
func LogScan(logger zerolog.Logger, patterns int, diag wave.Diagnostics, elapsed time.Duration) {
	logger.Info().
		Str("event", "scan").
		Int("patterns", patterns).
		Int("segments", diag.SegmentsBuilt).
		Int("explored", diag.Explored).
		Int("pruned", diag.Pruned).
		Int("suppressed", diag.Suppressed).
		Bool("budget_exhausted", diag.BudgetExhausted).
		Dur("elapsed", elapsed).
		Msg("Scan completed")
}

// LogTune logs a tuner result.
func LogTune(logger zerolog.Logger, evaluated, patterns int, bestConf float64, elapsed time.Duration) {
	logger.Info().
		Str("event", "tune").
		Int("evaluated", evaluated).
		Int("patterns", patterns).
		Float64("best_confidence", bestConf).
		Dur("elapsed", elapsed).
		Msg("Tuning completed")
}
