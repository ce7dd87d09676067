// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents the logging level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warnings.
	LevelWarn
	// LevelError is for errors.
	LevelError
)

// EnvDebug enables debug logging when set to "true".
const EnvDebug = "WEBLIB_DEBUG"

var (
	mu           sync.RWMutex
	globalLogger *slog.Logger
	levelVar     = new(slog.LevelVar)
	currentLevel           = LevelInfo
	isStructured           = false
	outputWriter io.Writer = os.Stderr
)

func init() {
	SetupLogger(false, false)
}

// SetupLogger configures the global logger to write to stderr.
// debug enables debug-level output (as does WEBLIB_DEBUG=true); structured
// switches from text to JSON lines.
// This function is safe for concurrent use.
func SetupLogger(debug, structured bool) {
	SetupLoggerWithWriter(os.Stderr, debug, structured)
}

// SetupLoggerWithWriter configures the global logger with a custom writer.
// This is useful for testing or redirecting logs.
// This function is safe for concurrent use.
func SetupLoggerWithWriter(w io.Writer, debug, structured bool) {
	mu.Lock()
	defer mu.Unlock()

	outputWriter = w
	isStructured = structured
	if debug || os.Getenv(EnvDebug) == "true" {
		currentLevel = LevelDebug
	} else {
		currentLevel = LevelInfo
	}
	rebuild()
}

// SetOutput redirects the logger without changing level or format.
// This function is safe for concurrent use.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	outputWriter = w
	rebuild()
}

// SetLevel sets the logging level programmatically.
// This function is safe for concurrent use.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	levelVar.Set(toSlog(level))
}

// rebuild recreates the handler. Caller must hold mu.
func rebuild() {
	levelVar.Set(toSlog(currentLevel))
	opts := &slog.HandlerOptions{Level: levelVar}

	var handler slog.Handler
	if isStructured {
		handler = slog.NewJSONHandler(outputWriter, opts)
	} else {
		handler = slog.NewTextHandler(outputWriter, opts)
	}
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func toSlog(level Level) slog.Level {
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

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return GetLevel() == LevelDebug
}

// GetLevel returns the current logging level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// ParseLevel parses a string into a Level.
// Valid values are: "debug", "info", "warn", "warning", "error".
// Returns LevelInfo for unrecognized values.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger returns the underlying slog.Logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Debug logs a debug message with optional key-value pairs.
//
// Example:
//
//	logutil.Debug("normalized url", "in", raw, "out", u)
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
//
// Example:
//
//	logutil.Error("request failed", "url", u, "error", err)
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
