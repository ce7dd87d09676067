// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import "log/slog"

// ComponentLogger is a logger scoped to one package or subsystem.
type ComponentLogger struct {
	slogger   *slog.Logger
	component string
}

// NewLogger creates a Logger scoped to a named component.
// The logger is bound to the global handler at the time of the call.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{
		slogger:   Logger().With("component", component),
		component: component,
	}
}

// WithOperation returns a new Logger with the operation context added.
func (l *ComponentLogger) WithOperation(name string) *ComponentLogger {
	return l.with("operation", name)
}

// WithFields returns a new Logger with additional alternating key-value fields.
func (l *ComponentLogger) WithFields(fields ...any) *ComponentLogger {
	return l.with(fields...)
}

func (l *ComponentLogger) with(args ...any) *ComponentLogger {
	return &ComponentLogger{
		slogger:   l.slogger.With(args...),
		component: l.component,
	}
}

// Component returns the component name for this logger.
func (l *ComponentLogger) Component() string {
	return l.component
}

func (l *ComponentLogger) Debug(msg string, args ...any) { l.slogger.Debug(msg, args...) }
func (l *ComponentLogger) Info(msg string, args ...any)  { l.slogger.Info(msg, args...) }
func (l *ComponentLogger) Warn(msg string, args ...any)  { l.slogger.Warn(msg, args...) }
func (l *ComponentLogger) Error(msg string, args ...any) { l.slogger.Error(msg, args...) }
