// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides the structured logging used across weblib, built
// on log/slog.
//
// # Basic Usage
//
//	// Initialize logging (typically in main.go)
//	logutil.SetupLogger(debug, structured)
//
//	logutil.Debug("normalized url", "url", u)
//	logutil.Warn("retrying request", "attempt", n)
//
// Packages that log often create a component logger:
//
//	log := logutil.NewLogger("httpclient")
//	log.WithOperation("execute").Info("request sent", "status", code)
//
// # Debug Mode
//
// Debug logging is enabled by passing debug=true to SetupLogger or by setting
// WEBLIB_DEBUG=true before SetupLogger runs.
//
// # Structured Logging
//
// With structured=true logs are JSON lines:
//
//	{"time":"2024-01-15T10:30:00Z","level":"INFO","msg":"request sent","status":200}
//
// Otherwise the slog text format is used.
package logutil
