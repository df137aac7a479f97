package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("REPLICATE_API_TOKEN", "")
}

func TestAnalyzeListOnly(t *testing.T) {
	clearProviderEnv(t)
	root := writeTree(t, map[string]string{
		"Alpha/a.txt":    "alpha content with enough words to count",
		"Beta/b.md":      "# Beta\n\nsome beta content",
		"standalone.txt": "loose file",
	})

	out, err := execute(t, "analyze", "--list-only", root)
	if err != nil {
		t.Fatalf("analyze --list-only failed: %v\n%s", err, out)
	}

	for _, want := range []string{"Alpha", "Beta", "standalone.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Analysis Summary") {
		t.Error("list-only must not run the analysis")
	}
}

func TestAnalyzeFullRunWithoutAI(t *testing.T) {
	clearProviderEnv(t)
	root := writeTree(t, map[string]string{
		"Alpha/a.txt": strings.Repeat("alpha words for the analyzer to chew on. ", 5),
		"Beta/b.txt":  strings.Repeat("beta words for the analyzer to chew on. ", 5),
	})
	outputDir := t.TempDir()

	out, err := execute(t, "analyze", "--output-dir", outputDir, root)
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}

	if !strings.Contains(out, "Analysis Summary") {
		t.Errorf("missing summary:\n%s", out)
	}

	sessions, err := os.ReadDir(outputDir)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("expected one session dir, got %v (err %v)", sessions, err)
	}
	sessionDir := filepath.Join(outputDir, sessions[0].Name())

	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		t.Fatalf("read session dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"COMPREHENSIVE", "OVERVIEW", "CROSS_PROJECT", "PROJECT_Alpha", "PROJECT_Beta", "docparser.log"} {
		if !strings.Contains(joined, want) {
			t.Errorf("session dir missing %s: %v", want, names)
		}
	}

	// Without --ai the reports carry the skipped marker, not basic analysis.
	for _, e := range entries {
		if strings.Contains(e.Name(), "OVERVIEW") {
			data, _ := os.ReadFile(filepath.Join(sessionDir, e.Name()))
			if !strings.Contains(string(data), "AI analysis skipped") {
				t.Error("expected skipped-AI marker in overview report")
			}
		}
	}
}

func TestAnalyzeSucceedsDespiteExtractionFailures(t *testing.T) {
	clearProviderEnv(t)
	root := writeTree(t, map[string]string{
		"Alpha/good.txt":   strings.Repeat("working file content here. ", 5),
		"Alpha/broken.xml": "<unclosed>",
	})

	out, err := execute(t, "analyze", "--output-dir", t.TempDir(), root)
	if err != nil {
		t.Fatalf("per-file failures must not fail the command: %v\n%s", err, out)
	}
}

func TestAnalyzeMissingDirectory(t *testing.T) {
	out, err := execute(t, "analyze", filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("expected error for missing directory:\n%s", out)
	}
}

func TestAnalyzeInvalidLevel(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "content"})
	_, err := execute(t, "analyze", "--level", "0", root)
	if err == nil {
		t.Fatal("expected validation error for level 0")
	}
	if !strings.Contains(err.Error(), "level") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAnalyzeMalformedConfig(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "content"})
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("ai_providers:\n\t- tabs are not yaml"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := execute(t, "analyze", "--config", cfgPath, root)
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestProvidersCommand(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	out, err := execute(t, "providers")
	if err != nil {
		t.Fatalf("providers failed: %v\n%s", err, out)
	}

	for _, want := range []string{"openai (default)", "active", "anthropic", "ollama"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
