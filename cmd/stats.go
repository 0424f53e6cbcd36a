package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	stFlags       viewFlags
	stColumns     []string
	stCorr        bool
	stSampleRows  int
	stMaxOutliers int
	stOutputPath  string
	stChart       string
	stChartX      string
	stChartY      string
	stChartAgg    string
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Describe the current view: column statistics, outliers, correlations and charts",
	Example: `  stratify stats claims.csv --column amount --correlations
  stratify stats claims.csv --filter "region=North" --chart bar --x category --y amount --agg sum`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := stFlags.open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rows := s.View()
		if stChart != "" {
			spec := stats.ChartSpec{
				Type:  stats.ChartType(stChart),
				Title: chartTitle(stChartAgg, stChartX, stChartY),
				XCol:  stChartX,
				YCol:  stChartY,
				Agg:   stats.Agg(stChartAgg),
			}
			for _, c := range []string{spec.XCol, spec.YCol} {
				if c != "" && !s.Dataset().HasColumn(c) {
					return fmt.Errorf("unknown column %q", c)
				}
			}
			points, err := stats.Aggregate(rows, spec)
			if err != nil {
				return err
			}
			fmt.Fprint(out, stats.RenderBars(points, 40))
			return nil
		}
		rep := stats.Build(filepath.Base(args[0]), s.Dataset(), rows, stats.Options{
			Columns:      stColumns,
			Correlations: stCorr,
			SampleRows:   stSampleRows,
			MaxOutliers:  stMaxOutliers,
		})
		md := rep.Markdown()
		if stOutputPath != "" {
			if err := utils.SafeWriteFile(stOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote statistics to %s\n", stOutputPath)
			return nil
		}
		fmt.Fprintln(out, md)
		return nil
	},
}

func chartTitle(agg, x, y string) string {
	switch {
	case y != "" && x != "":
		return fmt.Sprintf("%s of %s by %s", agg, y, x)
	case y != "":
		return fmt.Sprintf("%s of %s", agg, y)
	case x != "":
		return "rows by " + x
	}
	return "rows"
}

func init() {
	rootCmd.AddCommand(statsCmd)
	stFlags.bind(statsCmd)
	statsCmd.Flags().StringSliceVar(&stColumns, "column", nil, "columns to describe (repeatable, default all)")
	statsCmd.Flags().BoolVar(&stCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	statsCmd.Flags().IntVar(&stSampleRows, "sample-rows", 0, "number of sample rows to include")
	statsCmd.Flags().IntVar(&stMaxOutliers, "max-outliers", 10, "maximum outlier values listed per column (0 = all)")
	statsCmd.Flags().StringVarP(&stOutputPath, "output", "o", "", "optional path to write the statistics (Markdown)")
	statsCmd.Flags().StringVar(&stChart, "chart", "", "render a text chart instead: bar | bar-horizontal | pie | donut | line | ticket")
	statsCmd.Flags().StringVar(&stChartX, "x", "", "chart: column to group by")
	statsCmd.Flags().StringVar(&stChartY, "y", "", "chart: value column for sum/avg/distinct")
	statsCmd.Flags().StringVar(&stChartAgg, "agg", "count", "chart: count | sum | avg | distinct")
}
