package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// ChartType names a chart kind.
type ChartType string

const (
	ChartBar           ChartType = "bar"
	ChartBarHorizontal ChartType = "bar-horizontal"
	ChartPie           ChartType = "pie"
	ChartDonut         ChartType = "donut"
	ChartLine          ChartType = "line"
	ChartTicket        ChartType = "ticket"
)

// Agg names a chart aggregation.
type Agg string

const (
	AggCount    Agg = "count"
	AggSum      Agg = "sum"
	AggAvg      Agg = "avg"
	AggDistinct Agg = "distinct"
)

// MaxChartPoints caps the points of grouped charts.
const MaxChartPoints = 20

// ChartSpec describes one chart. It is also the JSON shape a model returns.
type ChartSpec struct {
	Type  ChartType `json:"type"`
	Title string    `json:"title"`
	XCol  string    `json:"xCol"`
	YCol  string    `json:"yCol,omitempty"`
	Agg   Agg       `json:"agg,omitempty"`
}

// Point is one aggregated chart value.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Aggregate computes the points of a chart over rows. Grouped charts return
// at most MaxChartPoints groups ordered by value, largest first. A ticket
// returns one point named after the chart title.
func Aggregate(rows []table.Row, spec ChartSpec) ([]Point, error) {
	switch spec.Type {
	case ChartBar, ChartBarHorizontal, ChartPie, ChartDonut, ChartLine:
		if spec.XCol == "" {
			return nil, nil
		}
		return grouped(rows, spec), nil
	case ChartTicket:
		return []Point{{Name: spec.Title, Value: round2(ticket(rows, spec))}}, nil
	}
	return nil, fmt.Errorf("unknown chart type %q", spec.Type)
}

type bucket struct {
	name   string
	sum    float64
	count  int
	values map[table.Value]struct{}
}

func grouped(rows []table.Row, spec ChartSpec) []Point {
	index := make(map[string]*bucket)
	var order []*bucket
	for _, r := range rows {
		x := r.Get(spec.XCol)
		key := x.String()
		if x.Blank() {
			key = "N/A"
		}
		b, ok := index[key]
		if !ok {
			b = &bucket{name: key, values: make(map[table.Value]struct{})}
			index[key] = b
			order = append(order, b)
		}
		b.count++
		if spec.YCol != "" {
			y := r.Get(spec.YCol)
			b.values[y] = struct{}{}
			if n, ok := table.ParseFloatPrefix(y); ok {
				b.sum += n
			}
		}
	}
	out := make([]Point, len(order))
	for i, b := range order {
		v := float64(b.count)
		if spec.YCol != "" {
			switch spec.Agg {
			case AggSum:
				v = b.sum
			case AggAvg:
				v = b.sum / float64(b.count)
			case AggDistinct:
				v = float64(len(b.values))
			}
		}
		out[i] = Point{Name: b.name, Value: round2(v)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > MaxChartPoints {
		out = out[:MaxChartPoints]
	}
	return out
}

func ticket(rows []table.Row, spec ChartSpec) float64 {
	if spec.YCol == "" {
		return float64(len(rows))
	}
	var valid []table.Value
	var nums []float64
	for _, r := range rows {
		v := r.Get(spec.YCol)
		if v.Blank() {
			continue
		}
		valid = append(valid, v)
		if n, ok := table.ParseFloatPrefix(v); ok {
			nums = append(nums, n)
		}
	}
	switch spec.Agg {
	case AggSum, AggAvg:
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		if spec.Agg == AggAvg {
			if len(nums) == 0 {
				return 0
			}
			return sum / float64(len(nums))
		}
		return sum
	case AggDistinct:
		set := make(map[table.Value]struct{}, len(valid))
		for _, v := range valid {
			set[v] = struct{}{}
		}
		return float64(len(set))
	}
	return float64(len(valid))
}

// RenderBars draws points as a plain-text bar chart.
func RenderBars(points []Point, width int) string {
	if len(points) == 0 {
		return "(no data)\n"
	}
	maxV, nameW := 0.0, 0
	for _, p := range points {
		maxV = math.Max(maxV, math.Abs(p.Value))
		if l := len([]rune(p.Name)); l > nameW {
			nameW = l
		}
	}
	var b strings.Builder
	for _, p := range points {
		n := 0
		if maxV > 0 {
			n = int(math.Round(math.Abs(p.Value) / maxV * float64(width)))
		}
		b.WriteString(fmt.Sprintf("%-*s │%s %s\n", nameW, p.Name, strings.Repeat("█", n), table.FormatNumber(p.Value)))
	}
	return b.String()
}
