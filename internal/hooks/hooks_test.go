package hooks

import (
	"strings"
	"testing"

	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
)

func TestInstallScriptWritesExecutableFile(t *testing.T) {
	fs := fsys.NewFake()

	path, err := InstallScript(fs, "/base")
	if err != nil {
		t.Fatalf("InstallScript: %v", err)
	}
	if want := "/base/bin/summ-hook"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "RUNTIME_DIR") {
		t.Errorf("script missing expected content: %s", data)
	}
}

func TestInstallScriptIsIdempotent(t *testing.T) {
	fs := fsys.NewFake()

	if _, err := InstallScript(fs, "/base"); err != nil {
		t.Fatal(err)
	}
	if _, err := InstallScript(fs, "/base"); err != nil {
		t.Fatalf("second InstallScript: %v", err)
	}
}

func TestWireSessionClaudeWritesFourHooks(t *testing.T) {
	fs := fsys.NewFake()

	err := WireSession(fs, "/base/sessions/abc/workspace", "claude --some-flag", "/base/bin/summ-hook", "abc", "/base/sessions/abc/runtime")
	if err != nil {
		t.Fatalf("WireSession: %v", err)
	}

	data, err := fs.ReadFile("/base/sessions/abc/workspace/.claude/settings.local.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	for _, name := range []string{"SessionStart", "Stop", "SubagentStop", "SessionEnd"} {
		if !strings.Contains(content, name) {
			t.Errorf("settings missing hook entry %q:\n%s", name, content)
		}
	}
	if !strings.Contains(content, "SESSION_ID=abc") || !strings.Contains(content, "RUNTIME_DIR=/base/sessions/abc/runtime") {
		t.Errorf("settings missing expected env vars:\n%s", content)
	}
}

func TestWireSessionNonClaudeCliIsNoop(t *testing.T) {
	fs := fsys.NewFake()

	err := WireSession(fs, "/base/sessions/xyz/workspace", "codex", "/base/bin/summ-hook", "xyz", "/base/sessions/xyz/runtime")
	if err != nil {
		t.Fatalf("WireSession: %v", err)
	}

	if _, err := fs.ReadFile("/base/sessions/xyz/workspace/.claude/settings.local.json"); err == nil {
		t.Error("expected no settings file for a non-claude cli")
	}
}
