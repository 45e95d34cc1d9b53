package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	charmLog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hylla/tavla/internal/config"
)

// runtimeLogger fans log events to a styled console sink and a rotated
// file sink. The console sink can be muted while the board owns the
// terminal; the file sink always receives events.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	fileOutput     io.Closer
	filePath       string
	consoleEnabled bool
}

// newRuntimeLogger configures the runtime log sinks from CLI/config state.
// An empty logging.file keeps the console-only setup.
func newRuntimeLogger(stderr io.Writer, appName string, cfg config.LoggingConfig, fallbackLogPath string) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}

	logPath := cfg.File
	if logPath == "" {
		logPath = fallbackLogPath
	}
	if logPath == "" {
		return logger, nil
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Clean(logPath),
		MaxSize:    maxOrDefault(cfg.MaxSizeMB, 5),
		MaxBackups: maxOrDefault(cfg.MaxBackups, 2),
	}
	// Keep file output parseable and unstyled while preserving styled
	// console logs.
	fileLogger := charmLog.NewWithOptions(rotated, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.fileOutput = rotated
	logger.filePath = rotated.Filename
	return logger, nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func maxOrDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// LogFilePath returns the active rotated log file path.
func (l *runtimeLogger) LogFilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Close closes the rotated file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.fileOutput == nil {
		return nil
	}
	return l.fileOutput.Close()
}

// SetConsoleEnabled toggles whether the console sink receives events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Debug(msg, keyvals...)
	}
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Info(msg, keyvals...)
	}
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Warn(msg, keyvals...)
	}
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Error(msg, keyvals...)
	}
}
