package ai

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

func TestSplitAnalysis(t *testing.T) {
	resp := "**Summary**\n\n* two regions\n   \n* one outlier\n```json\n" +
		`[{"type":"bar","title":"By region","xCol":"region"},{"type":"pie","title":"Mix","data":[{"name":"A","value":30}]}]` +
		"\n```\ntrailing text"
	a := SplitAnalysis(resp)
	if len(a.Lines) != 3 || a.Lines[0] != "**Summary**" {
		t.Fatalf("lines = %q", a.Lines)
	}
	if len(a.Charts) != 2 {
		t.Fatalf("charts = %+v", a.Charts)
	}
	if a.Charts[0].Type != stats.ChartBar || a.Charts[0].XCol != "region" {
		t.Fatalf("chart 0 = %+v", a.Charts[0])
	}
	if len(a.Charts[1].Data) != 1 || a.Charts[1].Data[0].Value != 30 {
		t.Fatalf("chart 1 = %+v", a.Charts[1])
	}
}

func TestSplitAnalysisMalformedJSON(t *testing.T) {
	a := SplitAnalysis("text only\n```json\n[{\"type\": \"bar\",,]\n```")
	if len(a.Charts) != 0 {
		t.Fatalf("malformed json should give no charts, got %+v", a.Charts)
	}
	if len(a.Lines) != 1 || a.Lines[0] != "text only" {
		t.Fatalf("lines = %q", a.Lines)
	}
	if got := SplitAnalysis("no block here"); len(got.Charts) != 0 || len(got.Lines) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestChartPointsAggregatesColumns(t *testing.T) {
	rows := []table.Row{
		{"region": table.Text("North")},
		{"region": table.Text("North")},
		{"region": table.Text("South")},
	}
	c := Chart{ChartSpec: stats.ChartSpec{Type: stats.ChartBar, XCol: "region"}}
	pts, err := c.Points(rows)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if len(pts) != 2 || pts[0].Name != "North" || pts[0].Value != 2 {
		t.Fatalf("points = %+v", pts)
	}
}

func TestBuildPromptsLimitRows(t *testing.T) {
	var rows []table.Row
	for i := 0; i < 150; i++ {
		rows = append(rows, table.Row{"id": table.Number(float64(i))})
	}
	msgs, err := BuildAnalysisPrompt([]string{"id"}, rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body := msgs[1].Content
	if !strings.Contains(body, `"id": 49`) || strings.Contains(body, `"id": 50`) {
		t.Fatalf("analysis prompt should include exactly the first 50 rows")
	}
	if !strings.Contains(body, "```json") {
		t.Fatalf("analysis prompt should request a json block")
	}

	history := []ChatMessage{{Sender: "user", Text: "how many?"}, {Sender: "assistant", Text: "150"}}
	msgs, err = BuildChatPrompt([]string{"id"}, rows, history, "largest id?")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body = msgs[1].Content
	if !strings.Contains(body, `"id": 99`) || strings.Contains(body, `"id": 100`) {
		t.Fatalf("chat prompt should include the first 100 rows")
	}
	for _, want := range []string{"User: how many?", "Assistant: 150", "User: largest id?"} {
		if !strings.Contains(body, want) {
			t.Fatalf("chat prompt missing %q", want)
		}
	}
}

func TestChatPromptClipsLongTurns(t *testing.T) {
	long := strings.Repeat("revenue ", 500)
	msgs, err := BuildChatPrompt([]string{"id"}, nil, []ChatMessage{{Sender: "assistant", Text: long}}, "and costs?")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body := msgs[1].Content
	if strings.Contains(body, long) || !strings.Contains(body, " [...]") {
		t.Fatalf("expected the earlier answer to be clipped")
	}
	if !strings.HasSuffix(body, "User: and costs?") {
		t.Fatalf("question should end the prompt")
	}
}
