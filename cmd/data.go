package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/stratify-cli/internal/export"
	"github.com/KaramelBytes/stratify-cli/internal/parser"
	"github.com/KaramelBytes/stratify-cli/internal/session"
	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
	"github.com/KaramelBytes/stratify-cli/internal/view"
	"github.com/KaramelBytes/stratify-cli/internal/workspace"
	"github.com/spf13/cobra"
)

// sourceFlags select how a file is read.
type sourceFlags struct {
	sheet     string
	delimiter string
	maxRows   int
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
}

func (f *sourceFlags) options() (parser.Options, error) {
	opt := parser.Options{Sheet: f.sheet, MaxRows: f.maxRows}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *sourceFlags) load(path string) (table.Dataset, error) {
	opt, err := f.options()
	if err != nil {
		return table.Dataset{}, err
	}
	return parser.ParseFile(path, opt)
}

// viewFlags shape the working view of a dataset.
type viewFlags struct {
	sourceFlags
	filters []string
	search  string
	sort    string
	seed    int64
}

func (f *viewFlags) bind(cmd *cobra.Command) {
	f.sourceFlags.bind(cmd)
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "column filter, repeatable: 'region in North|South', 'amount>1000', 'amount between 10..20'")
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive text search across all columns")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort by column: 'col' or 'col:desc'")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed for random previews and draws (0 = time based)")
}

func (f *viewFlags) rng() *rand.Rand {
	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// open loads path into a session and applies filters, search and sort.
func (f *viewFlags) open(path string) (*session.Session, error) {
	ds, err := f.load(path)
	if err != nil {
		return nil, err
	}
	opts := session.DefaultOptions()
	if c, err := settings(); err == nil {
		opts = c.SessionOptions()
	}
	opts.Rand = f.rng()
	s := session.New(ds, opts)
	for _, expr := range f.filters {
		col, flt, err := view.ParseFilter(expr, ds)
		if err != nil {
			return nil, err
		}
		if err := s.SetFilter(col, flt); err != nil {
			return nil, err
		}
	}
	if f.search != "" {
		s.SetQuery(f.search)
	}
	if f.sort != "" {
		spec, err := view.ParseSort(f.sort)
		if err != nil {
			return nil, err
		}
		if !ds.HasColumn(spec.Key) {
			return nil, fmt.Errorf("unknown sort column %q", spec.Key)
		}
		s.SetSort(spec)
	}
	return s, nil
}

// previewRows is the configured preview length.
func previewRows() int {
	if c, err := settings(); err == nil && c.PreviewRows > 0 {
		return c.PreviewRows
	}
	return 20
}

func printRows(w io.Writer, headers []string, rows []table.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	fmt.Fprint(w, stats.MarkdownTable(headers, table.Records(headers, rows)))
}

func exportRows(w io.Writer, path string, headers []string, rows []table.Row) error {
	if err := export.Rows(path, headers, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Exported %d rows to %s\n", len(rows), path)
	return nil
}

// workspaceDir resolves where saved configurations live: --workspace, a
// .stratify directory in the working directory or one of its parents, or
// workspace_dir from config.
func workspaceDir() (string, error) {
	if flagWorkspace != "" {
		return flagWorkspace, nil
	}
	if dir, err := utils.FindUp("", ".stratify"); err == nil {
		return filepath.Join(dir, ".stratify"), nil
	}
	c, err := settings()
	if err != nil {
		return "", err
	}
	return c.WorkspaceDir, nil
}

func openWorkspace() (*workspace.Store, error) {
	dir, err := workspaceDir()
	if err != nil {
		return nil, err
	}
	return workspace.Open(dir)
}
