package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/stratify-cli/internal/parser"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

func TestParseFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.docx")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := parser.ParseFile(p, parser.Options{}); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := parser.ParseFile(filepath.Join(dir, "missing.csv"), parser.Options{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A1": "region", "B1": "revenue", "C1": "code",
		"A2": "North", "B2": 1200.5, "C2": "007",
		"A3": "South", "B3": 80, "C3": "x1",
	}
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatalf("set %s: %v", ref, err)
		}
	}
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetCellValue("Other", "A1", "only"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.SetCellValue("Other", "A2", "row"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestParseFileXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, p)

	ds, err := parser.ParseFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds.Headers) != 3 || ds.Headers[1] != "revenue" {
		t.Fatalf("headers = %v", ds.Headers)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows = %d", ds.Len())
	}
	rev := ds.Rows[0].Get("revenue")
	if rev.Kind() != table.KindNumber {
		t.Fatalf("numeric cell should be a Number, got %v", rev.Kind())
	}
	if n, _ := rev.Num(); n != 1200.5 {
		t.Fatalf("revenue = %v", n)
	}
	if code := ds.Rows[0].Get("code"); code.Kind() != table.KindText || code.String() != "007" {
		t.Fatalf("string cell should stay text, got %v %q", code.Kind(), code.String())
	}
	if !table.IsNumeric("revenue", ds) || table.IsNumeric("region", ds) {
		t.Fatalf("unexpected column types")
	}

	other, err := parser.ParseFile(p, parser.Options{Sheet: "other"})
	if err != nil {
		t.Fatalf("parse sheet: %v", err)
	}
	if other.Headers[0] != "only" || other.Len() != 1 {
		t.Fatalf("sheet Other = %+v", other)
	}
	if _, err := parser.ParseFile(p, parser.Options{Sheet: "nope"}); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}
