package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

const (
	dataSheet    = "Data"
	summarySheet = "Summary"
	strataSheet  = "Strata"
)

// XLSX writes rows to a single "Data" sheet with columns sized to their
// widest cell.
func XLSX(path string, headers []string, rows []table.Row) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	f := newBook(dataSheet)
	defer f.Close()

	grid := make([][]any, 0, len(rows)+1)
	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	grid = append(grid, head)
	for _, r := range rows {
		line := make([]any, len(headers))
		for i, h := range headers {
			line[i] = cell(r.Get(h))
		}
		grid = append(grid, line)
	}
	if err := fill(f, dataSheet, grid, 0); err != nil {
		return err
	}
	return save(f, path)
}

// cell maps a value to what excelize should store: numbers stay numeric.
func cell(v table.Value) any {
	if n, ok := v.Num(); ok && v.Kind() == table.KindNumber {
		return n
	}
	return v.String()
}

// Config writes a sampling configuration as a workbook: a summary sheet and,
// for stratified configs with strata, a detail sheet listing each stratum.
func Config(path string, cfg sampling.Config) error {
	f := newBook(summarySheet)
	defer f.Close()

	summary := [][]any{
		{"Setting", "Value"},
		{"Method", string(cfg.Method)},
	}
	switch cfg.Method {
	case sampling.MethodRandom:
		pct := "No"
		if cfg.IsPercentage {
			pct = "Yes"
		}
		summary = append(summary, []any{"Sample size", cfg.SampleSize}, []any{"Is percentage", pct})
	case sampling.MethodSystematic:
		summary = append(summary, []any{"Interval", cfg.SystematicInterval})
	}
	if err := fill(f, summarySheet, summary, 10); err != nil {
		return err
	}

	if cfg.Method == sampling.MethodStratified {
		strata := [][]any{{"Level", "Column", "Stratum", "Records", "Requested sample size"}}
		for i, l := range cfg.Levels {
			if l.ColumnType == table.Numeric {
				for _, s := range l.Numeric {
					strata = append(strata, []any{i + 1, l.Column, s.Label, s.Count, string(s.SampleSize)})
				}
				continue
			}
			for _, s := range l.Categorical {
				strata = append(strata, []any{i + 1, l.Column, s.Value, s.Count, string(s.SampleSize)})
			}
		}
		if len(strata) > 1 {
			if _, err := f.NewSheet(strataSheet); err != nil {
				return fmt.Errorf("add sheet: %w", err)
			}
			if err := fill(f, strataSheet, strata, 15); err != nil {
				return err
			}
		}
	}
	return save(f, path)
}

func newBook(first string) *excelize.File {
	f := excelize.NewFile()
	// a new workbook always starts with Sheet1
	_ = f.SetSheetName("Sheet1", first)
	return f
}

// fill writes grid from A1 and widens each column to its longest text plus
// two, never below minWidth.
func fill(f *excelize.File, sheet string, grid [][]any, minWidth int) error {
	widths := map[int]int{}
	for r, line := range grid {
		ref, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &line); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
		for c, v := range line {
			if w := len([]rune(text(v))); w > widths[c] {
				widths[c] = w
			}
		}
	}
	for c, w := range widths {
		w += 2
		if w < minWidth {
			w = minWidth
		}
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(w)); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}
	return nil
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return table.FormatNumber(x)
	}
	return fmt.Sprint(v)
}

func save(f *excelize.File, path string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	return write(path, buf.Bytes())
}
