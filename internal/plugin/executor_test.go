package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func scriptPlugin(name, path, executable string) *Plugin {
	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: filepath.Base(executable),
			Actions:    []string{"play"},
		},
		Path:       path,
		Executable: executable,
	}
}

func TestExecutor_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := writeScript(t, tmpDir, "test-plugin.sh", `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"hello world"}}
EOF
`)

	plugin := scriptPlugin("test-plugin", tmpDir, scriptPath)
	request := &Request{
		Action: "play",
		Event:  "punch:left",
		Config: json.RawMessage(`{"key":"value"}`),
		Params: json.RawMessage(`{"power":0.8}`),
	}

	executor := NewExecutor(5000)
	response, err := executor.Execute(plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true, got false")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := writeScript(t, tmpDir, "echo-plugin.sh", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	plugin := scriptPlugin("echo-plugin", tmpDir, scriptPath)
	request := &Request{
		Action: "play",
		Event:  "punch:right",
		Params: json.RawMessage(`{"power":1}`),
	}

	executor := NewExecutor(5000)
	response, err := executor.Execute(plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data.Received.Event != "punch:right" {
		t.Errorf("plugin received event %q, want %q", data.Received.Event, "punch:right")
	}
	if data.Received.Action != "play" {
		t.Errorf("plugin received action %q, want %q", data.Received.Action, "play")
	}
}

func TestExecutor_Execute_EventEnvVar(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := writeScript(t, tmpDir, "env-plugin.sh", `#!/bin/sh
echo "{\"success\":true,\"data\":{\"event\":\"$SHADOWBOX_EVENT\"}}"
`)

	plugin := scriptPlugin("env-plugin", tmpDir, scriptPath)
	executor := NewExecutor(5000)

	response, err := executor.Execute(plugin, &Request{Action: "play", Event: "stance:jabLeft"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["event"] != "stance:jabLeft" {
		t.Errorf("SHADOWBOX_EVENT = %q, want %q", data["event"], "stance:jabLeft")
	}
}

func TestExecutor_Execute_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := writeScript(t, tmpDir, "slow-plugin.sh", `#!/bin/sh
sleep 5
echo '{"success":true}'
`)

	plugin := scriptPlugin("slow-plugin", tmpDir, scriptPath)
	executor := NewExecutor(100)

	_, err := executor.Execute(plugin, &Request{Action: "play", Event: "punch"})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestExecutor_Execute_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := writeScript(t, tmpDir, "bad-plugin.sh", `#!/bin/sh
echo "boom" >&2
exit 1
`)

	plugin := scriptPlugin("bad-plugin", tmpDir, scriptPath)
	executor := NewExecutor(5000)

	_, err := executor.Execute(plugin, &Request{Action: "play", Event: "punch"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %v, want stderr content", err)
	}
}

func TestExecutor_Execute_InvalidResponse(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := writeScript(t, tmpDir, "garbage-plugin.sh", `#!/bin/sh
echo "not json"
`)

	plugin := scriptPlugin("garbage-plugin", tmpDir, scriptPath)
	executor := NewExecutor(5000)

	_, err := executor.Execute(plugin, &Request{Action: "play", Event: "punch"})
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
