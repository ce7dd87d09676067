// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerCreatesWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)

	logger := NewLogger("urlutil")
	if logger.Component() != "urlutil" {
		t.Errorf("expected component 'urlutil', got %q", logger.Component())
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), "component=urlutil") {
		t.Errorf("expected output to contain component=urlutil, got: %s", buf.String())
	}
}

func TestChainingContexts(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)

	logger := NewLogger("httpclient").WithOperation("execute").WithFields("host", "example.com", "attempt", 2)
	logger.Info("chain test")

	output := buf.String()
	for _, want := range []string{"component=httpclient", "operation=execute", "host=example.com", "attempt=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
	if logger.Component() != "httpclient" {
		t.Errorf("expected component 'httpclient', got %q", logger.Component())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(*ComponentLogger, string, ...any)
		level   string
	}{
		{"debug", (*ComponentLogger).Debug, "DEBUG"},
		{"info", (*ComponentLogger).Info, "INFO"},
		{"warn", (*ComponentLogger).Warn, "WARN"},
		{"error", (*ComponentLogger).Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLoggerWithWriter(&buf, true, false)

			tt.logFunc(NewLogger("lvl-test"), "level test msg", "k", "v")

			output := buf.String()
			if !strings.Contains(output, tt.level) {
				t.Errorf("expected level %s in output, got: %s", tt.level, output)
			}
			if !strings.Contains(output, "level test msg") {
				t.Errorf("expected message in output, got: %s", output)
			}
		})
	}
}

func TestLogLevelsStructured(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, true, true)

	NewLogger("json-test").Info("structured msg", "count", 42)

	output := buf.String()
	if !strings.Contains(output, `"component":"json-test"`) {
		t.Errorf("expected component in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"count":42`) {
		t.Errorf("expected count in JSON output, got: %s", output)
	}
}
