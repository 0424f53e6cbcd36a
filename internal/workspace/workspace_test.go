package workspace_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/workspace"
)

func stratified() sampling.Config {
	return sampling.Config{
		Method: sampling.MethodStratified,
		Levels: []sampling.Level{{
			ID: "l1", Column: "region", ColumnType: table.Categorical,
			Categorical: []sampling.CategoricalStratum{{Value: "North", Count: 2, SampleSize: "50%"}},
		}},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	s, err := workspace.Open(dir)
	if err != nil {
		t.Fatalf("open empty: %v", err)
	}
	if len(s.Names()) != 0 {
		t.Fatalf("expected empty store")
	}
	if _, err := s.Put("q3 audit", "sales.csv", stratified()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put("baseline", "", sampling.DefaultConfig()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := workspace.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := strings.Join(again.Names(), ","); got != "baseline,q3 audit" {
		t.Fatalf("names = %s", got)
	}
	e, err := again.Get("q3 audit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Source != "sales.csv" || e.Config.Method != sampling.MethodStratified {
		t.Fatalf("entry = %+v", e)
	}
	if got := e.Config.Levels[0].Categorical[0].SampleSize; got != "50%" {
		t.Fatalf("sample size = %q", got)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	s, _ := workspace.Open(t.TempDir())
	first, _ := s.Put("a", "", sampling.DefaultConfig())
	created := first.CreatedAt
	cfg := sampling.DefaultConfig()
	cfg.SampleSize = 42
	e, err := s.Put(" a ", "", cfg)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(s.Names()) != 1 || e.Config.SampleSize != 42 || !e.CreatedAt.Equal(created) {
		t.Fatalf("overwrite failed: %+v", e)
	}
	if _, err := s.Put("  ", "", cfg); !errors.Is(err, workspace.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestStoreRenameAndDelete(t *testing.T) {
	s, _ := workspace.Open(t.TempDir())
	_, _ = s.Put("a", "", sampling.DefaultConfig())
	_, _ = s.Put("b", "", sampling.DefaultConfig())

	if err := s.Rename("a", "b"); !errors.Is(err, workspace.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	if err := s.Rename("a", "a"); err != nil {
		t.Fatalf("renaming to itself should be a no-op: %v", err)
	}
	if err := s.Rename("a", "c"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if e, err := s.Get("c"); err != nil || e.Name != "c" {
		t.Fatalf("renamed entry = %+v, %v", e, err)
	}
	if _, err := s.Get("a"); !errors.Is(err, workspace.ErrConfigNotFound) {
		t.Fatalf("old name should be gone, got %v", err)
	}
	if err := s.Delete("b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete("b"); !errors.Is(err, workspace.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if got := strings.Join(s.Names(), ","); got != "c" {
		t.Fatalf("names = %s", got)
	}
}
