package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/stratify-cli/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short", "hi", 1},
		{"simple", "hello world", 2},
		{"long", strings.Repeat("a", 4000), 1000},
		{"runes", strings.Repeat("é", 8), 2},
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	text := strings.Repeat("abcd ", 1000)
	trunc := utils.TruncateToTokenLimit(text, 300)
	if n := utils.CountTokens(trunc); n > 300 || n == 0 {
		t.Fatalf("tokens=%d, want 1..300", n)
	}
	if utils.TruncateToTokenLimit("short", 10) != "short" {
		t.Fatalf("short text should be unchanged")
	}
	if utils.TruncateToTokenLimit("x", 0) != "" {
		t.Fatalf("zero limit should give empty text")
	}
}

func TestTokenBreakdown(t *testing.T) {
	per, total := utils.TokenBreakdown([]utils.Section{{"a", "12345678"}, {"b", ""}, {"c", "1234"}})
	if len(per) != 3 || per[0] != 2 || per[1] != 0 || per[2] != 1 || total != 3 {
		t.Fatalf("per=%v total=%d", per, total)
	}
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, ".stratify"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := utils.FindUp(deep, ".stratify")
	if err != nil || got != root {
		t.Fatalf("FindUp = %q, %v", got, err)
	}
	if _, err := utils.FindUp(deep, "no-such-marker-here"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "x.json")
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, b); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _ := os.ReadFile(p)
	if string(got) != "{\n  \"a\": 1\n}" {
		t.Fatalf("content = %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(p))
	if err != nil || len(entries) != 1 {
		t.Fatalf("temp file left behind: %v %v", entries, err)
	}
}
