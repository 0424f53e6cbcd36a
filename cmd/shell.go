package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/export"
	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/session"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/view"
	"github.com/KaramelBytes/stratify-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var shFlags viewFlags

var shellCmd = &cobra.Command{
	Use:   "shell <file>",
	Short: "Explore, clean and sample a dataset interactively",
	Long: `Open a line-oriented session over a dataset. Edits can be undone, stratification
levels are edited in place and revalidated, and drawn samples can be trimmed and exported.
Type 'help' for the command list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := shFlags.open(args[0])
		if err != nil {
			return err
		}
		sh := &shell{
			s:      s,
			out:    cmd.OutOrStdout(),
			source: filepath.Base(args[0]),
			store:  openWorkspace,
			rows:   previewRows(),
			prompt: stdinIsTerminal(),
		}
		fmt.Fprintf(sh.out, "✓ Loaded %s: %d rows, %d columns. Type 'help' for commands.\n", sh.source, s.Dataset().Len(), len(s.Dataset().Headers))
		return sh.run(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shFlags.bind(shellCmd)
}

const shellHelp = `View
  show [n] [first|last|random]   preview the view
  filter <expr>                  e.g. region in North|South, amount>1000, amount between 1..5
  unfilter <column>              drop the filter on a column
  search [text]                  set or clear the text search
  sort [column[:desc]]           set or clear the sort
  reset                          clear filters, search, sort and the sample
Edit (undoable)
  delcol <column>   delrow <n>   movecol <column> <position>
  dupes   dedupe   blanks   cleanblanks rows|cols|all
  undo
Sampling
  method random|systematic|stratified   size <n>[%]   interval <k>
  level add | level rm <L> | level col <L> <column>
  rule add <L> <op> <value> | rule rm <L> <R>
  set <L> <stratum|"stratum"|(blank)|R|other> <size>   autofill <L> <pct>
  strata   draw   sample [n]   sdelcol <column>   sundo
Files
  save <name>   load <name>   configs
  export <path>   sexport <path>   exportcfg <path>
  quit`

// shell runs line commands against a session.
type shell struct {
	s      *session.Session
	out    io.Writer
	source string
	store  func() (*workspace.Store, error)
	rows   int
	prompt bool
}

var errQuit = errors.New("quit")

func (sh *shell) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		if sh.prompt {
			fmt.Fprint(sh.out, "stratify> ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := sh.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(sh.out, "✗ %v\n", err)
		}
	}
}

func (sh *shell) exec(line string) error {
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	s := sh.s
	switch strings.ToLower(word) {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)

	case "show":
		return sh.show(args)
	case "filter":
		col, f, err := view.ParseFilter(rest, s.Dataset())
		if err != nil {
			return err
		}
		if err := s.SetFilter(col, f); err != nil {
			return err
		}
		sh.viewStatus()
	case "unfilter":
		s.ClearFilter(rest)
		sh.viewStatus()
	case "search":
		s.SetQuery(rest)
		sh.viewStatus()
	case "sort":
		spec, err := view.ParseSort(rest)
		if err != nil {
			return err
		}
		if spec != nil && !s.Dataset().HasColumn(spec.Key) {
			return fmt.Errorf("unknown column %q", spec.Key)
		}
		s.SetSort(spec)
		sh.viewStatus()
	case "reset":
		s.ResetView()
		sh.viewStatus()

	case "delcol":
		if err := s.DeleteColumn(rest); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Deleted column %s\n", rest)
	case "delrow":
		n, err := sh.index(rest, s.Dataset().Len())
		if err != nil {
			return err
		}
		if err := s.DeleteRow(n); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Deleted row %d\n", n+1)
	case "movecol":
		if len(args) < 2 {
			return fmt.Errorf("usage: movecol <column> <position>")
		}
		from, to, err := parseMove(strings.Join(args[:len(args)-1], " ")+":"+args[len(args)-1], s.Dataset().Headers)
		if err != nil {
			return err
		}
		if err := s.MoveColumn(from, to); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Columns: %s\n", strings.Join(s.Dataset().Headers, ", "))
	case "dupes":
		rep := s.FindDuplicates()
		fmt.Fprintf(sh.out, "%d duplicate groups, %d removable rows\n", len(rep.Groups), rep.Removable)
		for _, g := range rep.Groups {
			fmt.Fprintf(sh.out, "- %d× rows %s\n", g.Count, joinIndexes(g.Indexes))
		}
	case "dedupe":
		fmt.Fprintf(sh.out, "✓ Removed %d duplicate rows\n", s.RemoveDuplicates())
	case "blanks":
		b := s.BlankSummary()
		fmt.Fprintf(sh.out, "Blank rows: %d, blank columns: %s\n", b.Rows, orNone(b.Columns))
	case "cleanblanks":
		rows, cols := rest == "rows" || rest == "all" || rest == "", rest == "cols" || rest == "all" || rest == ""
		if !rows && !cols {
			return fmt.Errorf("usage: cleanblanks rows|cols|all")
		}
		b := s.CleanBlanks(rows, cols)
		fmt.Fprintf(sh.out, "✓ Cleaned blanks (found %d rows, columns: %s)\n", b.Rows, orNone(b.Columns))
	case "undo":
		if !s.Undo() {
			fmt.Fprintln(sh.out, "⚠ Nothing to undo")
			return nil
		}
		fmt.Fprintf(sh.out, "✓ Undone: %d rows, %d columns; view reset\n", s.Dataset().Len(), len(s.Dataset().Headers))

	case "method":
		m, err := sampling.ParseMethod(rest)
		if err != nil {
			return err
		}
		s.Config.Method = m
		fmt.Fprintf(sh.out, "✓ %s\n", s.SamplingConfig().Describe())
	case "size":
		n, pct, err := parseSizeArg(rest)
		if err != nil {
			return err
		}
		s.Config.SampleSize, s.Config.IsPercentage = n, pct
		fmt.Fprintf(sh.out, "✓ %s\n", s.SamplingConfig().Describe())
	case "interval":
		k, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("interval must be a whole number: %q", rest)
		}
		s.Config.SystematicInterval = k
		fmt.Fprintf(sh.out, "✓ %s\n", s.SamplingConfig().Describe())
	case "level":
		return sh.level(args)
	case "rule":
		return sh.rule(args)
	case "set":
		return sh.setSize(rest)
	case "autofill":
		if len(args) != 2 {
			return fmt.Errorf("usage: autofill <L> <pct>")
		}
		id, err := sh.levelID(args[0])
		if err != nil {
			return err
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid percentage %q", args[1])
		}
		if err := s.AutoFill(id, pct); err != nil {
			return err
		}
		printStrata(sh.out, s.Model.Levels)
	case "strata":
		printStrata(sh.out, s.Model.Levels)
	case "draw":
		if s.Config.Method == sampling.MethodStratified && reportStrataErrors(sh.out, s.Model) {
			return sampling.ErrStrataInvalid
		}
		ds, err := s.Draw()
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Drew %d of %d rows\n", ds.Len(), len(s.View()))
	case "sample":
		ds, ok := s.Sample()
		if !ok {
			return session.ErrNoSample
		}
		n := sh.rows
		if rest != "" {
			v, err := strconv.Atoi(rest)
			if err != nil {
				return fmt.Errorf("invalid row count %q", rest)
			}
			n = v
		}
		printRows(sh.out, ds.Headers, view.Preview(s.SampleView(), n, view.PreviewFirst, nil))
		fmt.Fprintf(sh.out, "Sample: %d rows\n", ds.Len())
	case "sdelcol":
		if err := s.SampleDeleteColumn(rest); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Deleted column %s from the sample\n", rest)
	case "sundo":
		if !s.SampleUndo() {
			fmt.Fprintln(sh.out, "⚠ Nothing to undo in the sample")
			return nil
		}
		ds, _ := s.Sample()
		fmt.Fprintf(sh.out, "✓ Sample columns: %s\n", strings.Join(ds.Headers, ", "))

	case "save":
		return sh.save(rest)
	case "load":
		return sh.load(rest)
	case "configs":
		store, err := sh.store()
		if err != nil {
			return err
		}
		for _, n := range store.Names() {
			fmt.Fprintf(sh.out, "- %s: %s\n", n, store.Entries[n].Config.Describe())
		}
	case "export":
		return exportRows(sh.out, rest, s.Dataset().Headers, s.View())
	case "sexport":
		ds, ok := s.Sample()
		if !ok {
			return session.ErrNoSample
		}
		return exportRows(sh.out, rest, ds.Headers, s.SampleView())
	case "exportcfg":
		if err := export.Config(rest, s.SamplingConfig()); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Exported configuration to %s\n", rest)
	default:
		return fmt.Errorf("unknown command %q (type 'help')", word)
	}
	return nil
}

func (sh *shell) show(args []string) error {
	n, mode := sh.rows, view.PreviewFirst
	for _, a := range args {
		if v, err := strconv.Atoi(a); err == nil {
			n = v
			continue
		}
		m, err := view.ParsePreviewMode(a)
		if err != nil {
			return err
		}
		mode = m
	}
	rows := sh.s.View()
	printRows(sh.out, sh.s.Dataset().Headers, view.Preview(rows, n, mode, shFlags.rng()))
	sh.viewStatus()
	return nil
}

func (sh *shell) viewStatus() {
	fmt.Fprintf(sh.out, "View: %d of %d rows\n", len(sh.s.View()), sh.s.Dataset().Len())
}

// index reads a 1-based position and returns it 0-based.
func (sh *shell) index(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("expected a number between 1 and %d, got %q", n, arg)
	}
	return i - 1, nil
}

func (sh *shell) levelID(arg string) (string, error) {
	i, err := sh.index(arg, len(sh.s.Model.Levels))
	if err != nil {
		return "", fmt.Errorf("level: %w", err)
	}
	return sh.s.Model.Levels[i].ID, nil
}

// ruleID maps a 1-based rule number, or "other", to a stratum ID.
func (sh *shell) ruleID(levelID, arg string) (string, error) {
	if strings.EqualFold(arg, "other") || strings.EqualFold(arg, sampling.RemainderID) {
		return sampling.RemainderID, nil
	}
	l, err := sh.s.Model.Level(levelID)
	if err != nil {
		return "", err
	}
	i, err := sh.index(arg, len(l.Numeric))
	if err != nil {
		return "", fmt.Errorf("rule: %w", err)
	}
	return l.Numeric[i].ID, nil
}

func (sh *shell) level(args []string) error {
	s := sh.s
	if len(args) == 0 {
		return fmt.Errorf("usage: level add | level rm <L> | level col <L> <column>")
	}
	switch args[0] {
	case "add":
		l, err := s.AddLevel()
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Added level %d on %s\n", len(s.Model.Levels), l.Column)
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: level rm <L>")
		}
		id, err := sh.levelID(args[1])
		if err != nil {
			return err
		}
		if err := s.RemoveLevel(id); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "✓ Removed level")
	case "col":
		if len(args) < 3 {
			return fmt.Errorf("usage: level col <L> <column>")
		}
		id, err := sh.levelID(args[1])
		if err != nil {
			return err
		}
		if err := s.SetLevelColumn(id, strings.Join(args[2:], " ")); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown level command %q", args[0])
	}
	printStrata(sh.out, s.Model.Levels)
	return nil
}

func (sh *shell) rule(args []string) error {
	s := sh.s
	if len(args) < 2 {
		return fmt.Errorf("usage: rule add <L> <op> <value> | rule rm <L> <R>")
	}
	id, err := sh.levelID(args[1])
	if err != nil {
		return err
	}
	switch args[0] {
	case "add":
		if len(args) != 4 {
			return fmt.Errorf("usage: rule add <L> <op> <value>")
		}
		op, err := sampling.ParseOperator(args[2])
		if err != nil {
			return err
		}
		v, ok := table.ToNumber(table.Text(args[3]))
		if !ok {
			return fmt.Errorf("rule value must be a number, got %q", args[3])
		}
		if _, err := s.AddRule(id, op, v); err != nil {
			return err
		}
	case "rm":
		if len(args) != 3 {
			return fmt.Errorf("usage: rule rm <L> <R>")
		}
		rid, err := sh.ruleID(id, args[2])
		if err != nil {
			return err
		}
		if err := s.RemoveRule(id, rid); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown rule command %q", args[0])
	}
	printStrata(sh.out, s.Model.Levels)
	return nil
}

// blankStratum names the categorical stratum of empty cells.
const blankStratum = "(blank)"

// setSize handles "set <L> <stratum> <size>". The stratum is the raw text
// between level and size, so spaces survive; it may be double-quoted, and
// (blank) addresses empty cells. Numeric strata are addressed by rule number
// or "other".
func (sh *shell) setSize(rest string) error {
	args := strings.Fields(rest)
	if len(args) < 3 {
		return fmt.Errorf("usage: set <L> <stratum> <size>")
	}
	id, err := sh.levelID(args[0])
	if err != nil {
		return err
	}
	l, err := sh.s.Model.Level(id)
	if err != nil {
		return err
	}
	key, err := stratumKey(rest, args[0], args[len(args)-1])
	if err != nil {
		return err
	}
	if l.ColumnType == table.Numeric {
		if key, err = sh.ruleID(id, key); err != nil {
			return err
		}
	}
	size := sampling.SampleSize(args[len(args)-1])
	verr, err := sh.s.SetSampleSize(id, key, size)
	if err != nil {
		return err
	}
	if verr != nil {
		fmt.Fprintf(sh.out, "⚠ %s: %v\n", stratumName(key), verr)
		return nil
	}
	fmt.Fprintf(sh.out, "✓ %s = %s\n", stratumName(key), size)
	return nil
}

// stratumKey cuts the stratum out of "<L> <stratum> <size>".
func stratumKey(rest, level, size string) (string, error) {
	key := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(rest), level), size))
	switch {
	case key == blankStratum:
		return "", nil
	case strings.HasPrefix(key, `"`):
		v, err := strconv.Unquote(key)
		if err != nil {
			return "", fmt.Errorf("invalid quoted stratum %s", key)
		}
		return v, nil
	}
	return key, nil
}

func stratumName(v string) string {
	if v == "" {
		return blankStratum
	}
	return v
}

func (sh *shell) save(name string) error {
	store, err := sh.store()
	if err != nil {
		return err
	}
	if _, err := store.Put(name, sh.source, sh.s.SamplingConfig()); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "✓ Saved configuration '%s'\n", strings.TrimSpace(name))
	return nil
}

func (sh *shell) load(name string) error {
	store, err := sh.store()
	if err != nil {
		return err
	}
	e, err := store.Get(name)
	if err != nil {
		return err
	}
	cfg := sh.s.LoadConfig(e.Config)
	fmt.Fprintf(sh.out, "✓ Loaded '%s': %s\n", e.Name, cfg.Describe())
	if len(cfg.Levels) > 0 {
		printStrata(sh.out, sh.s.Model.Levels)
	}
	return nil
}

// parseSizeArg reads "25" or "25%".
func parseSizeArg(s string) (int, bool, error) {
	pct := strings.HasSuffix(s, "%")
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "%")))
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("size must be a whole number, optionally with %%: %q", s)
	}
	return n, pct, nil
}

func joinIndexes(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v + 1)
	}
	return strings.Join(parts, ", ")
}

func orNone(xs []string) string {
	if len(xs) == 0 {
		return "none"
	}
	return strings.Join(xs, ", ")
}

// stdinIsTerminal is false when input is piped, so scripts can drive the shell.
func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
