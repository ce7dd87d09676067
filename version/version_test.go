package version

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/testutil"
)

func TestNew_Defaults(t *testing.T) {
	info := New("weblib")
	if info.Version != "0.0.0-dev" {
		t.Errorf("expected Version '0.0.0-dev', got %q", info.Version)
	}
	if info.BuildDate != "unknown" || info.GitCommit != "unknown" {
		t.Errorf("expected unknown build metadata, got %+v", info)
	}
	if info.Name != "weblib" {
		t.Errorf("expected Name 'weblib', got %q", info.Name)
	}
}

func TestInfo_String(t *testing.T) {
	info := &Info{Version: "1.2.3", BuildDate: "2024-01-01", GitCommit: "abc123", Name: "weblib"}
	expected := "weblib version 1.2.3 (commit: abc123, built: 2024-01-01)"
	if got := info.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestNewCommand_HumanReadable(t *testing.T) {
	cmd := NewCommand(New("weblib"))
	cmd.SetArgs([]string{})
	output := testutil.CaptureOutput(t, cmd.Execute)

	for _, want := range []string{"weblib Version", "Version:", "Build Date:", "Git Commit:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestNewCommand_JSON(t *testing.T) {
	if err := cliout.SetFormat("json"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cliout.SetFormat("default") })

	cmd := NewCommand(New("weblib"))
	cmd.SetArgs([]string{})
	output := testutil.CaptureOutput(t, cmd.Execute)

	var parsed Info
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("expected valid JSON, got error: %v\noutput: %s", err, output)
	}
	if parsed.Version != "0.0.0-dev" {
		t.Errorf("expected version '0.0.0-dev', got %q", parsed.Version)
	}
}

func TestNewCommand_Quiet(t *testing.T) {
	cmd := NewCommand(New("weblib"))
	cmd.SetArgs([]string{"--quiet"})
	output := testutil.CaptureOutput(t, cmd.Execute)

	if trimmed := strings.TrimSpace(output); trimmed != "0.0.0-dev" {
		t.Errorf("expected '0.0.0-dev', got %q", trimmed)
	}
}
