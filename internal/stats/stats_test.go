package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

func col(name string, vals ...string) []table.Row {
	rows := make([]table.Row, len(vals))
	for i, v := range vals {
		rows[i] = table.Row{name: table.Text(v)}
	}
	return rows
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculateOddLength(t *testing.T) {
	s := Calculate([]float64{7, 1, 3, 3, 9})
	if s == nil {
		t.Fatalf("expected summary")
	}
	if !near(s.Mean, 4.6) || s.Median != 3 || s.Min != 1 || s.Max != 9 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.Modes) != 1 || s.Modes[0] != 3 {
		t.Fatalf("modes = %v", s.Modes)
	}
	// sorted 1 3 3 7 9: Q1 = sorted[1], Q3 = sorted[3]
	if s.Q1 != 3 || s.Q3 != 7 || s.IQR != 4 {
		t.Fatalf("quartiles = %v %v %v", s.Q1, s.Q3, s.IQR)
	}
	if !near(s.StdDev, math.Sqrt(10.8)) {
		t.Fatalf("sample stddev = %v", s.StdDev)
	}
}

func TestCalculateQuartilesMultipleOfFour(t *testing.T) {
	s := Calculate([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	// i = 2 and 6: averages of sorted[1],sorted[2] and sorted[5],sorted[6]
	if s.Q1 != 2.5 || s.Q3 != 6.5 {
		t.Fatalf("quartiles = %v %v", s.Q1, s.Q3)
	}
	if s.Median != 4.5 {
		t.Fatalf("median = %v", s.Median)
	}
	if len(s.Modes) != 0 {
		t.Fatalf("all values tie, want no modes, got %v", s.Modes)
	}
}

func TestCalculateEdgeCases(t *testing.T) {
	if Calculate(nil) != nil {
		t.Fatalf("empty data should yield nil")
	}
	s := Calculate([]float64{5})
	if !math.IsNaN(s.StdDev) {
		t.Fatalf("single value stddev should be NaN, got %v", s.StdDev)
	}
	s = Calculate([]float64{1, 1, 2, 2, 3})
	if len(s.Modes) != 2 || s.Modes[0] != 1 || s.Modes[1] != 2 {
		t.Fatalf("modes = %v", s.Modes)
	}
}

func TestDescribeAndOutliers(t *testing.T) {
	rows := col("v", "10", "11", "12", "13", "14", "", "200")
	info := Describe(rows, "v")
	if info.Type != table.Numeric {
		t.Fatalf("expected numeric")
	}
	if info.Missing != 1 {
		t.Fatalf("missing = %d", info.Missing)
	}
	if len(info.Outliers) != 1 || info.Outliers[0].Get("v").String() != "200" {
		t.Fatalf("outliers = %v", info.Outliers)
	}

	cat := Describe(col("c", "a", "b", "a"), "c")
	if cat.Type != table.Categorical || cat.Stats != nil || cat.Distinct != 2 {
		t.Fatalf("unexpected categorical info: %+v", cat)
	}
}

func TestCorrelations(t *testing.T) {
	rows := []table.Row{
		{"x": table.Text("1"), "y": table.Text("2"), "z": table.Text("5"), "s": table.Text("a")},
		{"x": table.Text("2"), "y": table.Text("4"), "z": table.Text("5"), "s": table.Text("b")},
		{"x": table.Text("3"), "y": table.Text("6"), "z": table.Text("5"), "s": table.Text("c")},
		{"x": table.Text("4"), "y": table.Text("8"), "z": table.Text("5"), "s": table.Text("d")},
		{"x": table.Text("5"), "y": table.Text("10"), "z": table.Text("5"), "s": table.Text("e")},
		{"x": table.Text("oops"), "y": table.Text("1"), "z": table.Text("5"), "s": table.Text("f")},
	}
	m := Correlations(rows, []string{"x", "y", "z", "s"})
	if m == nil {
		t.Fatalf("expected a matrix")
	}
	if strings.Join(m.Columns, ",") != "x,y,z" {
		t.Fatalf("columns = %v", m.Columns)
	}
	if !near(m.Values[0][1], 1) || !near(m.Values[1][0], 1) {
		t.Fatalf("x~y = %v", m.Values[0][1])
	}
	if m.Values[0][2] != 0 {
		t.Fatalf("constant column should correlate as 0, got %v", m.Values[0][2])
	}
	if m.Values[2][2] != 1 {
		t.Fatalf("diagonal should be 1")
	}
	if Correlations(rows, []string{"x", "s"}) != nil {
		t.Fatalf("one numeric column should yield nil")
	}
}

func TestAggregateGrouped(t *testing.T) {
	rows := []table.Row{
		{"r": table.Text("A"), "v": table.Text("10")},
		{"r": table.Text("B"), "v": table.Text("5")},
		{"r": table.Text("A"), "v": table.Text("2.5")},
		{"r": table.Text(""), "v": table.Text("x")},
		{"v": table.Text("1")},
	}
	pts, err := Aggregate(rows, ChartSpec{Type: ChartBar, XCol: "r", YCol: "v", Agg: AggSum})
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{"A", 12.5}, {"B", 5}, {"N/A", 1}}
	if len(pts) != len(want) {
		t.Fatalf("points = %v", pts)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}

	pts, _ = Aggregate(rows, ChartSpec{Type: ChartPie, XCol: "r"})
	if pts[0].Name != "A" || pts[0].Value != 2 || pts[1].Name != "N/A" || pts[1].Value != 2 {
		t.Fatalf("count points = %v", pts)
	}

	pts, _ = Aggregate(rows, ChartSpec{Type: ChartLine, XCol: "r", YCol: "v", Agg: AggAvg})
	if pts[0].Name != "A" || pts[0].Value != 6.25 {
		t.Fatalf("avg points = %v", pts)
	}

	if _, err := Aggregate(rows, ChartSpec{Type: "radar", XCol: "r"}); err == nil {
		t.Fatalf("expected error for unknown chart type")
	}
}

func TestAggregateTopTwenty(t *testing.T) {
	var rows []table.Row
	for i := 0; i < 30; i++ {
		rows = append(rows, table.Row{"k": table.Number(float64(i + 1))})
	}
	pts, _ := Aggregate(rows, ChartSpec{Type: ChartBar, XCol: "k"})
	if len(pts) != MaxChartPoints {
		t.Fatalf("len = %d", len(pts))
	}
}

func TestAggregateTicket(t *testing.T) {
	rows := col("v", "1", "2", "", "2", "x")
	cases := map[Agg]float64{AggCount: 4, AggSum: 5, AggAvg: 5.0 / 3, AggDistinct: 3}
	for agg, want := range cases {
		pts, err := Aggregate(rows, ChartSpec{Type: ChartTicket, Title: "T", YCol: "v", Agg: agg})
		if err != nil {
			t.Fatal(err)
		}
		if len(pts) != 1 || pts[0].Name != "T" || !near(pts[0].Value, round2(want)) {
			t.Fatalf("%s: %v", agg, pts)
		}
	}
	pts, _ := Aggregate(rows, ChartSpec{Type: ChartTicket})
	if pts[0].Value != 5 {
		t.Fatalf("row count ticket = %v", pts[0].Value)
	}
}

func TestReportMarkdown(t *testing.T) {
	ds, err := table.New([]string{"v", "c"}, []table.Row{
		{"v": table.Text("1"), "c": table.Text("a")},
		{"v": table.Text("2"), "c": table.Text("b")},
		{"v": table.Text("3")},
	})
	if err != nil {
		t.Fatal(err)
	}
	rep := Build("data.csv", ds, ds.Rows, Options{Correlations: true, SampleRows: 2})
	md := rep.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "File: data.csv", "Missing values: 1", "[COLUMNS]", "- v: numeric", "- c: categorical", "[SAMPLE ROWS]", "[NOTES]"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if rep.KPI.NumericColumns != 1 {
		t.Fatalf("numeric columns = %d", rep.KPI.NumericColumns)
	}
	if out := RenderBars([]Point{{"a", 2}, {"b", 1}}, 10); !strings.Contains(out, "██████████ 2") {
		t.Fatalf("bars = %q", out)
	}
}
