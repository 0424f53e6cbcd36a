package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	clSource     sourceFlags
	clDedupe     bool
	clBlankRows  bool
	clBlankCols  bool
	clDropCols   []string
	clMoveCol    string
	clOutputPath string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Remove duplicates, blank rows/columns or columns and write the cleaned dataset",
	Example: `  stratify clean claims.csv --dedupe --blank-rows --blank-cols -o claims.clean.csv
  stratify clean claims.xlsx --drop-column notes --move-column amount:0 -o claims.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := clSource.load(args[0])
		if err != nil {
			return err
		}
		opts := session.DefaultOptions()
		if c, err := settings(); err == nil {
			opts = c.SessionOptions()
		}
		s := session.New(ds, opts)
		out := cmd.OutOrStdout()

		if !clDedupe && !clBlankRows && !clBlankCols && len(clDropCols) == 0 && clMoveCol == "" {
			// Report only
			rep := s.FindDuplicates()
			blanks := s.BlankSummary()
			fmt.Fprintf(out, "Duplicates: %d groups, %d removable rows\n", len(rep.Groups), rep.Removable)
			fmt.Fprintf(out, "Blank rows: %d\n", blanks.Rows)
			if len(blanks.Columns) > 0 {
				fmt.Fprintf(out, "Blank columns: %s\n", strings.Join(blanks.Columns, ", "))
			} else {
				fmt.Fprintln(out, "Blank columns: none")
			}
			return nil
		}

		if clDedupe {
			n := s.RemoveDuplicates()
			fmt.Fprintf(out, "✓ Removed %d duplicate rows\n", n)
		}
		if clBlankRows || clBlankCols {
			sum := s.CleanBlanks(clBlankRows, clBlankCols)
			if clBlankRows {
				fmt.Fprintf(out, "✓ Removed %d blank rows\n", sum.Rows)
			}
			if clBlankCols {
				fmt.Fprintf(out, "✓ Removed %d blank columns\n", len(sum.Columns))
			}
		}
		for _, c := range clDropCols {
			if err := s.DeleteColumn(c); err != nil {
				return fmt.Errorf("drop column %q: %w", c, err)
			}
			fmt.Fprintf(out, "✓ Dropped column %s\n", c)
		}
		if clMoveCol != "" {
			from, to, err := parseMove(clMoveCol, s.Dataset().Headers)
			if err != nil {
				return err
			}
			if err := s.MoveColumn(from, to); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Moved column %s to position %d\n", clMoveCol[:strings.LastIndex(clMoveCol, ":")], to)
		}

		res := s.Dataset()
		if clOutputPath == "" {
			fmt.Fprintf(out, "⚠ No --output given; %d rows x %d columns not written\n", res.Len(), len(res.Headers))
			return nil
		}
		return exportRows(out, clOutputPath, res.Headers, res.Rows)
	},
}

// parseMove reads "column:position" with a 0-based target position.
func parseMove(spec string, headers []string) (int, int, error) {
	i := strings.LastIndex(spec, ":")
	if i <= 0 {
		return 0, 0, fmt.Errorf("invalid --move-column %q (use column:position)", spec)
	}
	to, err := strconv.Atoi(spec[i+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid position in --move-column %q: %w", spec, err)
	}
	name := spec[:i]
	for from, h := range headers {
		if h == name {
			return from, to, nil
		}
	}
	return 0, 0, fmt.Errorf("unknown column %q", name)
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	clSource.bind(cleanCmd)
	cleanCmd.Flags().BoolVar(&clDedupe, "dedupe", false, "remove duplicate rows, keeping the first occurrence")
	cleanCmd.Flags().BoolVar(&clBlankRows, "blank-rows", false, "remove rows where every cell is blank")
	cleanCmd.Flags().BoolVar(&clBlankCols, "blank-cols", false, "remove columns where every cell is blank")
	cleanCmd.Flags().StringArrayVar(&clDropCols, "drop-column", nil, "column to delete (repeatable)")
	cleanCmd.Flags().StringVar(&clMoveCol, "move-column", "", "move a column: 'name:position' (0-based)")
	cleanCmd.Flags().StringVarP(&clOutputPath, "output", "o", "", "path for the cleaned dataset (.csv, .xlsx or .html)")
}
