package cmd

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
)

const claimsCSV = "id,region,amount\n" +
	"1,North,100\n" +
	"2,North,250\n" +
	"3,South,40\n" +
	"4,South,75\n" +
	"5,South,1200\n" +
	"6,East,900\n"

// resetFlags clears values and Changed state that persist on the shared
// command tree between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate points HOME, the config and the workspace at temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STRATIFY_API_KEY", "")
	cfg = nil
	t.Cleanup(func() { cfg = nil })
	return home
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	recs, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(b), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return recs
}

func TestCLI_InspectShowsSchema(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)

	out := runCmd(t, "inspect", data)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 6", "[INFERRED TYPES]", "| amount | numeric | 6 |", "| region | categorical | 3 |"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_ViewFiltersSortsAndExports(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)
	dest := filepath.Join(home, "out", "view.csv")

	runCmd(t, "view", data, "--filter", "region in North|South", "--filter", "amount>50", "--sort", "amount:desc", "--export", dest)
	recs := readCSV(t, dest)
	if len(recs) != 5 {
		t.Fatalf("expected header + 4 rows, got %v", recs)
	}
	var ids []string
	for _, r := range recs[1:] {
		ids = append(ids, r[0])
	}
	if got := strings.Join(ids, ","); got != "5,2,1,4" {
		t.Fatalf("unexpected order %s", got)
	}

	out := runCmd(t, "view", data, "--search", "east", "--rows", "5")
	if !strings.Contains(out, "Showing 1 of 1 rows (dataset has 6)") {
		t.Fatalf("unexpected preview output:\n%s", out)
	}
}

func TestCLI_ViewRejectsBadFilter(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)
	if _, err := execCmd("view", data, "--filter", "nosuch>1"); err == nil {
		t.Fatal("expected error for unknown filter column")
	}
}

func TestCLI_StatsAndChart(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)

	out := runCmd(t, "stats", data, "--column", "amount", "--correlations")
	for _, want := range []string{"- amount: numeric", "[CORRELATIONS]", "id ~ amount"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	out = runCmd(t, "stats", data, "--chart", "bar", "--x", "region")
	if !strings.HasPrefix(out, "South") {
		t.Fatalf("largest group should come first:\n%s", out)
	}
}

func TestCLI_CleanDedupesAndDropsColumn(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "dupes.csv", "id,name,notes\n1,a,\n1,a,\n2,b,\n,,\n")
	dest := filepath.Join(home, "clean.csv")

	report := runCmd(t, "clean", data)
	if !strings.Contains(report, "1 groups, 1 removable rows") || !strings.Contains(report, "Blank columns: notes") {
		t.Fatalf("unexpected report:\n%s", report)
	}
	out := runCmd(t, "clean", data, "--dedupe", "--blank-rows", "--blank-cols", "--move-column", "name:0", "-o", dest)
	if !strings.Contains(out, "Removed 1 duplicate rows") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	recs := readCSV(t, dest)
	want := [][]string{{"name", "id"}, {"a", "1"}, {"b", "2"}}
	if len(recs) != len(want) {
		t.Fatalf("got %v, want %v", recs, want)
	}
	for i := range want {
		if strings.Join(recs[i], ",") != strings.Join(want[i], ",") {
			t.Fatalf("row %d: got %v, want %v", i, recs[i], want[i])
		}
	}
}

func TestCLI_SampleRandomAndSystematic(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)
	dest := filepath.Join(home, "sample.csv")

	runCmd(t, "sample", data, "--method", "random", "--size", "2", "--seed", "7", "-o", dest)
	if recs := readCSV(t, dest); len(recs) != 3 {
		t.Fatalf("expected 2 sampled rows, got %v", recs)
	}
	runCmd(t, "sample", data, "--method", "random", "--size", "50", "--percent", "--seed", "7", "-o", dest)
	if recs := readCSV(t, dest); len(recs) != 4 {
		t.Fatalf("expected 3 sampled rows, got %v", recs)
	}
	runCmd(t, "sample", data, "--method", "systematic", "--interval", "2", "-o", dest)
	recs := readCSV(t, dest)
	if len(recs) != 4 || recs[1][0] != "1" || recs[2][0] != "3" || recs[3][0] != "5" {
		t.Fatalf("unexpected systematic sample %v", recs)
	}
}

func TestCLI_StratifiedPlanSaveLoadAndConfigs(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)
	plan := writeFile(t, home, "plan.yaml", "method: stratified\nlevels:\n  - column: region\n    sizes: {North: 1, South: \"50%\"}\n")
	ws := filepath.Join(home, "ws")
	xlsx := filepath.Join(home, "cfg.xlsx")

	out := runCmd(t, "--workspace", ws, "sample", data, "--plan", plan, "--save", "audit", "--export-config", xlsx, "--seed", "3")
	for _, want := range []string{"Level 1: region", "Saved configuration 'audit'", "Drew 3 rows"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Fatalf("config workbook not written: %v", err)
	}

	// Rehydrating against a filtered view keeps sizes for the strata still present.
	dest := filepath.Join(home, "north.csv")
	runCmd(t, "--workspace", ws, "sample", data, "--filter", "region=North", "--load", "audit", "-o", dest)
	recs := readCSV(t, dest)
	if len(recs) != 2 || recs[1][1] != "North" {
		t.Fatalf("unexpected rehydrated sample %v", recs)
	}

	if out := runCmd(t, "--workspace", ws, "configs", "list"); !strings.Contains(out, "- audit: stratified by region") {
		t.Fatalf("unexpected list:\n%s", out)
	}
	runCmd(t, "--workspace", ws, "configs", "rename", "audit", "q3")
	if out := runCmd(t, "--workspace", ws, "configs", "show", "q3"); !strings.Contains(out, "Source: claims.csv") {
		t.Fatalf("unexpected show:\n%s", out)
	}
	runCmd(t, "--workspace", ws, "configs", "delete", "q3")
	if out := runCmd(t, "--workspace", ws, "configs", "list"); !strings.Contains(out, "(no saved configurations)") {
		t.Fatalf("expected empty list:\n%s", out)
	}
}

func TestCLI_InvalidStrataBlockDraw(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)
	plan := writeFile(t, home, "plan.yaml", "method: stratified\nlevels:\n  - column: region\n    sizes: {North: 5}\n")
	dest := filepath.Join(home, "never.csv")

	out, err := execCmd("sample", data, "--plan", plan, "-o", dest)
	if !errors.Is(err, sampling.ErrStrataInvalid) {
		t.Fatalf("expected ErrStrataInvalid, got %v", err)
	}
	if !strings.Contains(out, "✗ region / North: cannot exceed available population (2)") {
		t.Fatalf("expected per-stratum error:\n%s", out)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("blocked draw must not write output")
	}
}

func TestCLI_AnalyzeDryRun(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "claims.csv", claimsCSV)

	out := runCmd(t, "analyze", data, "--dry-run")
	for _, want := range []string{"Tokens: total≈", "--dry-run", "Column names: id, region, amount"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	out = runCmd(t, "chat", data, "Which region is largest?", "--dry-run")
	if !strings.Contains(out, "User: Which region is largest?") {
		t.Fatalf("expected question in prompt:\n%s", out)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.yaml")

	runCmd(t, "--config", path, "config", "set", "api_key", "sk-abcdef123456")
	runCmd(t, "--config", path, "config", "set", "preview_rows", "7")
	if _, err := execCmd("--config", path, "config", "set", "default_provider", "nope"); err == nil {
		t.Fatal("expected invalid provider error")
	}
	cfg = nil
	out := runCmd(t, "--config", path, "config", "show")
	for _, want := range []string{"api_key: sk-****456", "preview_rows: 7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
