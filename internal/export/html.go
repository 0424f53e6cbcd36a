package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

var printable = template.Must(template.New("printable").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; }
h1 { color: #333; }
p { color: #666; font-size: 10pt; }
table { width: 100%; border-collapse: collapse; font-size: 9pt; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; word-break: break-all; }
th { background-color: #f2f2f2; }
@media print {
  @page { size: A4 landscape; margin: 1.5cm; }
  body { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Exported: {{.Exported}}</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
<script>window.onload = function () { setTimeout(function () { window.print(); }, 500); };</script>
</body>
</html>
`))

// RenderHTML renders rows as a print-ready HTML page. Cell text is escaped.
func RenderHTML(title string, headers []string, rows []table.Row, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := printable.Execute(&buf, struct {
		Title    string
		Exported string
		Headers  []string
		Rows     [][]string
	}{title, now.Format("2006-01-02 15:04"), headers, table.Records(headers, rows)})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// HTML writes a printable page to path.
func HTML(path, title string, headers []string, rows []table.Row) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	b, err := RenderHTML(title, headers, rows, time.Now())
	if err != nil {
		return err
	}
	return write(path, b)
}
