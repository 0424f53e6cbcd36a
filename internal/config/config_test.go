package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STRATIFY_API_KEY", "from-env")
	t.Setenv("STRATIFY_PREVIEW_ROWS", "7")

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.APIKey != "from-env" || c.PreviewRows != 7 {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.DefaultProvider != ai.ProviderOpenRouter || c.DefaultModel != ai.DefaultModels[ai.ProviderOpenRouter] {
		t.Fatalf("provider defaults = %q %q", c.DefaultProvider, c.DefaultModel)
	}
	if c.HistorySize != 5 || c.SampleHistorySize != 4 || c.AISampleRows != 50 || c.ChatSampleRows != 100 {
		t.Fatalf("session defaults = %+v", c)
	}
	if filepath.Base(c.WorkspaceDir) != ".stratify" {
		t.Fatalf("workspace dir = %q", c.WorkspaceDir)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := &Global{DefaultProvider: ai.ProviderOllama, HistorySize: 9, LogLevel: "debug"}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DefaultProvider != ai.ProviderOllama || got.DefaultModel != ai.DefaultModels[ai.ProviderOllama] {
		t.Fatalf("provider = %q model = %q", got.DefaultProvider, got.DefaultModel)
	}
	if opts := got.SessionOptions(); opts.HistorySize != 9 || opts.SampleHistorySize != 4 {
		t.Fatalf("session options = %+v", opts)
	}
	if got.Model("", "explicit") != "explicit" || got.Model(ai.ProviderGemini, "") != ai.DefaultModels[ai.ProviderGemini] {
		t.Fatalf("model resolution")
	}
	if _, err := got.Runtime(""); err != nil {
		t.Fatalf("runtime: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STRATIFY_DEFAULT_PROVIDER=gemini\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("STRATIFY_DEFAULT_PROVIDER") })
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DefaultProvider != ai.ProviderGemini {
		t.Fatalf("provider = %q", c.DefaultProvider)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
