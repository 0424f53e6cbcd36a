package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaFlags      aiFlags
	anaOutputPath string
	anaChartWidth int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Ask an AI model for an audit-oriented summary of the current view, with suggested charts",
	Example: `  stratify analyze claims.csv --filter "region=North" --dry-run
  stratify analyze claims.xlsx --provider ollama --model llama3.1:8b -o analysis.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		s, err := anaFlags.open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rows := s.View()
		if len(rows) == 0 {
			return fmt.Errorf("the view is empty; nothing to analyze")
		}
		headers := s.Dataset().Headers
		sent := limitRows(rows, promptRows(c.AISampleRows, ai.AnalysisRows))
		msgs, err := ai.BuildAnalysisPrompt(headers, sent)
		if err != nil {
			return err
		}
		req := anaFlags.request(c, msgs)
		if anaFlags.dryRun {
			printDryRun(out, req)
			return nil
		}
		runtime, err := c.Runtime(anaFlags.provider)
		if err != nil {
			return err
		}
		ctx, cancel := anaFlags.context()
		defer cancel()

		fmt.Fprintf(out, "⚙ Analyzing %d rows with model=%s ...\n", len(sent), req.Model)
		text, err := generate(ctx, out, runtime, req, anaFlags.stream)
		if err != nil {
			return err
		}
		analysis := ai.SplitAnalysis(text)
		report := renderAnalysis(analysis, rows, anaChartWidth)
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(report)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		if anaFlags.stream {
			// the narrative was already streamed
			fmt.Fprint(out, renderCharts(analysis.Charts, rows, anaChartWidth))
			return nil
		}
		fmt.Fprint(out, report)
		return nil
	},
}

func renderAnalysis(a ai.Analysis, rows []table.Row, width int) string {
	var b strings.Builder
	for _, l := range a.Lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(renderCharts(a.Charts, rows, width))
	return b.String()
}

// renderCharts draws every suggested chart as text. A chart that cannot be
// computed is reported and skipped.
func renderCharts(charts []ai.Chart, rows []table.Row, width int) string {
	var b strings.Builder
	for _, ch := range charts {
		points, err := ch.Points(rows)
		b.WriteString(fmt.Sprintf("\n%s (%s)\n", ch.Title, ch.Type))
		if err != nil {
			b.WriteString(fmt.Sprintf("⚠ %v\n", err))
			continue
		}
		if ch.Type == stats.ChartTicket && len(points) == 1 {
			b.WriteString(fmt.Sprintf("  %s\n", table.FormatNumber(points[0].Value)))
			continue
		}
		b.WriteString("```\n")
		b.WriteString(stats.RenderBars(points, width))
		b.WriteString("```\n")
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis (Markdown)")
	analyzeCmd.Flags().IntVar(&anaChartWidth, "chart-width", 40, "width of text charts in characters")
}
