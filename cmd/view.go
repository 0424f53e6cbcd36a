package cmd

import (
	"fmt"

	"github.com/KaramelBytes/stratify-cli/internal/view"
	"github.com/spf13/cobra"
)

var (
	viewFlagSet   viewFlags
	viewPreview   string
	viewRows      int
	viewExport    string
	viewDupesPath string
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Filter, search and sort a dataset and preview or export the result",
	Example: `  stratify view claims.csv --filter "region in North|South" --sort amount:desc
  stratify view claims.xlsx --sheet 2024 --search overdue --export overdue.xlsx
  stratify view claims.csv --preview random --rows 10 --seed 7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := view.ParsePreviewMode(viewPreview)
		if err != nil {
			return err
		}
		s, err := viewFlagSet.open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ds := s.Dataset()
		rows := s.View()
		if viewExport != "" {
			return exportRows(out, viewExport, ds.Headers, rows)
		}
		if viewDupesPath != "" {
			rep := s.FindDuplicates()
			dupes := rep.DuplicateRows(ds)
			if len(dupes) == 0 {
				fmt.Fprintln(out, "✓ No duplicate rows")
				return nil
			}
			return exportRows(out, viewDupesPath, ds.Headers, dupes)
		}
		n := viewRows
		if n <= 0 {
			n = previewRows()
		}
		shown := view.Preview(rows, n, mode, viewFlagSet.rng())
		printRows(out, ds.Headers, shown)
		fmt.Fprintf(out, "\nShowing %d of %d rows (dataset has %d)\n", len(shown), len(rows), ds.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewFlagSet.bind(viewCmd)
	viewCmd.Flags().StringVar(&viewPreview, "preview", "first", "which rows to preview: first | last | random")
	viewCmd.Flags().IntVar(&viewRows, "rows", 0, "number of rows to preview (default preview_rows from config)")
	viewCmd.Flags().StringVar(&viewExport, "export", "", "export the whole view to .csv, .xlsx or .html instead of previewing")
	viewCmd.Flags().StringVar(&viewDupesPath, "export-duplicates", "", "export every row of the dataset that has a duplicate")
}
