package parser

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Parse reads one sheet. Cells stored as numbers become Number values; all
// other cells keep their displayed text.
func (xlsxParser) Parse(path string, opt Options) (table.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return table.Dataset{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f, path, opt.Sheet)
	if err != nil {
		return table.Dataset{}, err
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return table.Dataset{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return table.Dataset{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(shown) == 0 {
		return table.Dataset{}, fmt.Errorf("sheet %q in %s is empty", sheet, filepath.Base(path))
	}
	headers := normalizeHeaders(shown[0])

	var rows []table.Row
	for i := 1; i < len(shown); i++ {
		if blankRow(shown[i]) {
			continue
		}
		row := make(table.Row, len(headers))
		for j, h := range headers {
			if j >= len(shown[i]) {
				continue
			}
			row[h] = cellValue(f, sheet, i, j, shown[i][j], at(raw, i, j))
		}
		rows = append(rows, row)
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
	}
	return table.New(headers, rows)
}

func pickSheet(f *excelize.File, path, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
		name, filepath.Base(path), strings.Join(sheets, ", "))
}

func at(rows [][]string, i, j int) string {
	if i < len(rows) && j < len(rows[i]) {
		return rows[i][j]
	}
	return ""
}

// cellValue reads a cell as a Number when the workbook stores it as one,
// else as its formatted text. i and j are zero-based.
func cellValue(f *excelize.File, sheet string, i, j int, shown, raw string) table.Value {
	if shown == "" && raw == "" {
		return table.Empty()
	}
	ref, err := excelize.CoordinatesToCellName(j+1, i+1)
	if err != nil {
		return table.Text(shown)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
		return table.Text(shown)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return table.Text(shown)
	}
	// date and time formats store serial numbers; keep what the user sees
	if _, ok := table.ToNumber(table.Text(strings.ReplaceAll(shown, ",", ""))); !ok {
		return table.Text(shown)
	}
	return table.Number(n)
}
