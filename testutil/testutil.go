// Package testutil provides helpers shared by weblib tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lorien/weblib/cliout"
)

// CaptureOutput captures everything written to stdout and through cliout while
// fn runs. Both are restored afterwards, even if fn returns an error.
//
// Example:
//
//	output := testutil.CaptureOutput(t, func() error {
//	    return cmd.Execute()
//	})
func CaptureOutput(t *testing.T, fn func() error) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	cliout.SetOutput(w)

	// Buffered to avoid a goroutine leak.
	outCh := make(chan string, 1)
	go func() {
		var output strings.Builder
		_, _ = io.Copy(&output, r)
		outCh <- output.String()
	}()

	fnErr := fn()

	if err := w.Close(); err != nil {
		t.Logf("Failed to close pipe writer: %v", err)
	}
	os.Stdout = origStdout
	cliout.SetOutput(nil)

	output := <-outCh
	if fnErr != nil {
		t.Logf("Command error: %v", fnErr)
	}
	return output
}

// WriteFile writes content to name inside a per-test temporary directory and
// returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
