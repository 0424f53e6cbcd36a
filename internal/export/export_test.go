package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

var (
	headers = []string{"name", "amount"}
	rows    = []table.Row{
		{"name": table.Text("Acme, Inc."), "amount": table.Number(12.5)},
		{"name": table.Text(`say "hi"`)},
	}
)

func TestEncodeCSV(t *testing.T) {
	b, err := EncodeCSV(headers, rows)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "\ufeffname,amount\r\n\"Acme, Inc.\",12.5\r\n\"say \"\"hi\"\"\",\r\n"
	if string(b) != want {
		t.Fatalf("csv = %q, want %q", b, want)
	}
}

func TestRowsPicksFormat(t *testing.T) {
	dir := t.TempDir()
	if err := Rows(filepath.Join(dir, "out.csv"), headers, nil); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := Rows(filepath.Join(dir, "out.pdf"), headers, rows); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	p := filepath.Join(dir, "nested", "out.csv")
	if err := Rows(p, headers, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("csv not written: %v", err)
	}
}

func TestXLSXDataSheet(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.xlsx")
	if err := Rows(p, headers, rows); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenFile(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Data" {
		t.Fatalf("sheets = %v", got)
	}
	v, _ := f.GetCellValue("Data", "B2")
	if v != "12.5" {
		t.Fatalf("B2 = %q", v)
	}
	typ, _ := f.GetCellType("Data", "B2")
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Fatalf("number stored as text")
	}
	w, _ := f.GetColWidth("Data", "A")
	if w != float64(len("Acme, Inc.")+2) {
		t.Fatalf("column A width = %v", w)
	}
}

func TestConfigWorkbook(t *testing.T) {
	dir := t.TempDir()

	random := sampling.DefaultConfig()
	random.IsPercentage = true
	p := filepath.Join(dir, "random.xlsx")
	if err := Config(p, random); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenFile(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rowsGot, _ := f.GetRows("Summary")
	f.Close()
	if len(rowsGot) != 4 || rowsGot[3][1] != "Yes" {
		t.Fatalf("summary = %v", rowsGot)
	}

	strat := sampling.Config{
		Method: sampling.MethodStratified,
		Levels: []sampling.Level{
			{ID: "a", Column: "region", ColumnType: table.Categorical, Categorical: []sampling.CategoricalStratum{
				{Value: "North", Count: 3, SampleSize: "2"},
				{Value: "South", Count: 2, SampleSize: "50%"},
			}},
			{ID: "b", Column: "amount", ColumnType: table.Numeric, Numeric: []sampling.NumericStratum{
				{ID: "r1", Operator: sampling.OpGt, Threshold: 10, Label: "> 10", Count: 1, SampleSize: "1"},
				{ID: sampling.RemainderID, Label: sampling.RemainderLabel, Count: 4, SampleSize: "0"},
			}},
		},
	}
	p = filepath.Join(dir, "strat.xlsx")
	if err := Config(p, strat); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err = excelize.OpenFile(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if got := strings.Join(f.GetSheetList(), ","); got != "Summary,Strata" {
		t.Fatalf("sheets = %s", got)
	}
	detail, _ := f.GetRows("Strata")
	if len(detail) != 5 {
		t.Fatalf("strata rows = %d", len(detail))
	}
	if strings.Join(detail[2], "|") != "1|region|South|2|50%" {
		t.Fatalf("row = %v", detail[2])
	}
	if detail[4][2] != sampling.RemainderLabel || detail[4][0] != "2" {
		t.Fatalf("remainder row = %v", detail[4])
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	b, err := RenderHTML("Q3 <sales>", headers, []table.Row{{"name": table.Text("<b>x</b>")}}, time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(b)
	for _, want := range []string{"<th>name</th>", "&lt;b&gt;x&lt;/b&gt;", "Q3 &lt;sales&gt;", "2026-01-02 03:04", "window.print()"} {
		if !strings.Contains(out, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}
