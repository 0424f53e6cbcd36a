// Package export writes datasets and sampling configurations to files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
)

// ErrNoRows is returned when there is nothing to export.
var ErrNoRows = errors.New("no rows to export")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// FormatFor picks a format from the output file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use .csv, .xlsx or .html)", filepath.Ext(path))
}

// Rows writes rows in the given header order, choosing the format from the
// file extension.
func Rows(path string, headers []string, rows []table.Row) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	switch f {
	case FormatXLSX:
		return XLSX(path, headers, rows)
	case FormatHTML:
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return HTML(path, title, headers, rows)
	default:
		return CSV(path, headers, rows)
	}
}

// EncodeCSV renders rows as UTF-8 CSV with a byte order mark and CRLF line
// endings, the form spreadsheet applications open without prompting.
func EncodeCSV(headers []string, rows []table.Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(table.Records(headers, rows)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// CSV writes rows to path.
func CSV(path string, headers []string, rows []table.Row) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	b, err := EncodeCSV(headers, rows)
	if err != nil {
		return err
	}
	return write(path, b)
}

func write(path string, data []byte) error {
	return utils.SafeWriteFile(path, data)
}
