package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
)

// AnalysisRows is how many rows of the current view an analysis request sees.
const AnalysisRows = 50

const analysisSystem = "You are an expert data analyst and internal auditor. Be concise and direct. " +
	"Use **bold** for key numbers, keywords and serious findings."

const analysisTask = `Required: a very short, focused report with this structure.

**Executive summary**
* Two points on what the data is and what it is for.

**Risk indicators and notable patterns**
* Three or four short points on important relationships, outliers or illogical trends that need review.

**Suggested visuals**
* A brief suggestion of two charts that support the review.

After the text, give the charts as strict JSON inside a fenced block:
` + "```json" + `
[
  {"type": "bar", "title": "Chart 1", "xCol": "<column>", "yCol": "<column or empty>", "agg": "count|sum|avg|distinct"},
  {"type": "pie", "title": "Chart 2", "data": [{"name": "A", "value": 30}, {"name": "B", "value": 70}]}
]
` + "```" + `
Chart types: bar, bar-horizontal, pie, donut, line, ticket.`

// rowsJSON renders at most limit rows as JSON objects.
func rowsJSON(rows []table.Row, limit int) (string, error) {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	b, err := utils.PrettyJSON(rows)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BuildAnalysisPrompt asks for a narrative report plus chart suggestions
// over at most the first AnalysisRows rows. Callers may pass fewer.
func BuildAnalysisPrompt(headers []string, rows []table.Row) ([]Message, error) {
	sample, err := rowsJSON(rows, AnalysisRows)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("Column names: ")
	b.WriteString(strings.Join(headers, ", "))
	b.WriteString(fmt.Sprintf("\nData sample (first %d rows):\n", min(len(rows), AnalysisRows)))
	b.WriteString(sample)
	b.WriteString("\n\n")
	b.WriteString(analysisTask)
	return []Message{
		{Role: "system", Content: analysisSystem},
		{Role: "user", Content: b.String()},
	}, nil
}

// Chart is a chart suggested by the model. It either names columns to
// aggregate or carries its own data points.
type Chart struct {
	stats.ChartSpec
	Data []stats.Point `json:"data,omitempty"`
}

// Analysis is a model response split into text lines and charts.
type Analysis struct {
	Lines  []string
	Charts []Chart
}

// SplitAnalysis separates the narrative from the first fenced json block.
// Blank lines are dropped. A missing or malformed block yields no charts.
func SplitAnalysis(text string) Analysis {
	narrative, rest, found := strings.Cut(text, "```json")
	var a Analysis
	for _, line := range strings.Split(narrative, "\n") {
		if strings.TrimSpace(line) != "" {
			a.Lines = append(a.Lines, line)
		}
	}
	if !found {
		return a
	}
	block, _, _ := strings.Cut(rest, "```")
	block = strings.TrimSpace(block)
	var charts []Chart
	if err := json.Unmarshal([]byte(block), &charts); err != nil {
		var one Chart
		if json.Unmarshal([]byte(block), &one) != nil || one.Type == "" {
			return a
		}
		charts = []Chart{one}
	}
	a.Charts = charts
	return a
}

// Points returns the chart's own data, or aggregates rows when the model
// only named columns.
func (c Chart) Points(rows []table.Row) ([]stats.Point, error) {
	if len(c.Data) > 0 {
		return c.Data, nil
	}
	spec := c.ChartSpec
	if spec.Agg == "" {
		spec.Agg = stats.AggCount
	}
	return stats.Aggregate(rows, spec)
}
