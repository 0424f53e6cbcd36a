package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insSource     sourceFlags
	insOutputPath string
	insSampleRows int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a CSV/TSV/XLSX file: schema, inferred types and KPIs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		ds, err := insSource.load(path)
		if err != nil {
			return err
		}
		rep := stats.Build(filepath.Base(path), ds, ds.Rows, stats.Options{SampleRows: insSampleRows})
		md := rep.Markdown() + inferredTypes(ds)
		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

// inferredTypes lists the column kinds the sampling engine will use, which
// can differ from the statistics view for date columns.
func inferredTypes(ds table.Dataset) string {
	types := table.Types(ds)
	recs := make([][]string, 0, len(ds.Headers))
	for _, c := range ds.Headers {
		recs = append(recs, []string{c, string(types[c]), fmt.Sprint(len(table.Distinct(ds.Rows, c)))})
	}
	return "\n[INFERRED TYPES]\n" + stats.MarkdownTable([]string{"Column", "Type", "Distinct"}, recs)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	insSource.bind(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
}
