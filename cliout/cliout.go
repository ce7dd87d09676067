// Package cliout provides output formatting for the weblib CLI.
// It supports human-readable text and JSON, with ANSI colors when stdout is a
// terminal.
package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

const (
	// FormatDefault is the default human-readable format.
	FormatDefault Format = "default"
	// FormatJSON is JSON format.
	FormatJSON Format = "json"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)

const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

var (
	mu           sync.RWMutex
	globalFormat           = FormatDefault
	out          io.Writer = os.Stdout
	noColor                = detectNoColor()
)

// detectNoColor disables color when NO_COLOR is set or stdout is not a terminal.
func detectNoColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// ForceColor enables color output regardless of terminal detection.
func ForceColor() {
	mu.Lock()
	noColor = false
	mu.Unlock()
}

// NoColor disables color output.
func NoColor() {
	mu.Lock()
	noColor = true
	mu.Unlock()
}

// SetOutput redirects all output. Passing nil restores os.Stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

func writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// SetFormat sets the global output format.
func SetFormat(format string) error {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(format) {
	case "default", "text", "":
		globalFormat = FormatDefault
	case "json":
		globalFormat = FormatJSON
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", format)
	}
	return nil
}

// GetFormat returns the current output format.
func GetFormat() Format {
	mu.RLock()
	defer mu.RUnlock()
	return globalFormat
}

// IsJSON returns true if the output format is JSON.
func IsJSON() bool {
	return GetFormat() == FormatJSON
}

// PrintJSON prints data as indented JSON.
func PrintJSON(data any) error {
	encoder := json.NewEncoder(writer())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

// Print outputs data in the configured format.
// For default format, uses the formatter function.
// For JSON format, marshals the data object.
func Print(data any, formatter func()) error {
	if IsJSON() {
		return PrintJSON(data)
	}
	formatter()
	return nil
}

func colorize(color, text string) string {
	mu.RLock()
	disabled := noColor
	mu.RUnlock()
	if disabled {
		return text
	}
	return color + text + Reset
}

// Header prints a bold header with a divider.
func Header(text string) {
	w := writer()
	fmt.Fprintf(w, "\n%s\n", colorize(Bold, text))
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(text))))
}

// Plain prints an unstyled line.
func Plain(format string, args ...any) {
	fmt.Fprintf(writer(), format+"\n", args...)
}

// Success prints a success line.
func Success(format string, args ...any) {
	fmt.Fprintf(writer(), "%s %s\n", colorize(Green, SymbolCheck), fmt.Sprintf(format, args...))
}

// Error prints an error line.
func Error(format string, args ...any) {
	fmt.Fprintf(writer(), "%s %s\n", colorize(Red, SymbolCross), fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func Warning(format string, args ...any) {
	fmt.Fprintf(writer(), "%s %s\n", colorize(Yellow, SymbolWarning), fmt.Sprintf(format, args...))
}

// Info prints an informational line.
func Info(format string, args ...any) {
	fmt.Fprintf(writer(), "%s %s\n", colorize(Cyan, SymbolInfo), fmt.Sprintf(format, args...))
}

// Label prints a "label: value" line with the label muted.
func Label(label, value string) {
	fmt.Fprintf(writer(), "%s %s\n", colorize(Gray, label+":"), value)
}
