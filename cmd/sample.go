package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/stratify-cli/internal/export"
	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/view"
	"github.com/spf13/cobra"
)

var (
	smpFlags      viewFlags
	smpMethod     string
	smpSize       int
	smpPercent    bool
	smpInterval   int
	smpPlanPath   string
	smpSave       string
	smpLoad       string
	smpOutputPath string
	smpExportCfg  string
	smpDryRun     bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample <file>",
	Short: "Draw a random, systematic or stratified sample from the current view",
	Example: `  stratify sample claims.csv --method random --size 25 --seed 42 -o sample.xlsx
  stratify sample claims.csv --method systematic --interval 10
  stratify sample claims.csv --plan plan.yaml --save q3-audit --export-config q3-audit.xlsx
  stratify sample claims_q4.csv --load q3-audit -o q4-sample.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		s, err := smpFlags.open(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		f := cmd.Flags()

		if smpLoad != "" {
			store, err := openWorkspace()
			if err != nil {
				return err
			}
			entry, err := store.Get(smpLoad)
			if err != nil {
				return err
			}
			s.LoadConfig(entry.Config)
			fmt.Fprintf(out, "✓ Loaded configuration '%s' (%s)\n", entry.Name, entry.Config.Describe())
		}
		if smpPlanPath != "" {
			plan, err := sampling.LoadPlan(smpPlanPath)
			if err != nil {
				return err
			}
			if err := s.ApplyPlan(plan); err != nil {
				return fmt.Errorf("apply plan %s: %w", filepath.Base(smpPlanPath), err)
			}
		}
		if f.Changed("method") {
			m, err := sampling.ParseMethod(smpMethod)
			if err != nil {
				return err
			}
			s.Config.Method = m
		}
		if f.Changed("size") {
			s.Config.SampleSize = smpSize
		}
		if f.Changed("percent") {
			s.Config.IsPercentage = smpPercent
		}
		if f.Changed("interval") {
			s.Config.SystematicInterval = smpInterval
		}

		sc := s.SamplingConfig()
		if sc.Method == sampling.MethodStratified {
			if len(sc.Levels) == 0 {
				return fmt.Errorf("stratified sampling needs levels: use --plan or --load")
			}
			printStrata(out, sc.Levels)
		}
		fmt.Fprintf(out, "Method: %s over %d rows\n", sc.Describe(), len(s.View()))

		if smpSave != "" {
			store, err := openWorkspace()
			if err != nil {
				return err
			}
			if _, err := store.Put(smpSave, filepath.Base(path), sc); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Saved configuration '%s' to %s\n", smpSave, store.Path())
		}
		if smpExportCfg != "" {
			if err := export.Config(smpExportCfg, sc); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Exported configuration to %s\n", smpExportCfg)
		}

		if sc.Method == sampling.MethodStratified && reportStrataErrors(out, s.Model) {
			return sampling.ErrStrataInvalid
		}
		if smpDryRun {
			return nil
		}
		sample, err := s.Draw()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Drew %d rows\n", sample.Len())
		if smpOutputPath != "" {
			if sample.Len() == 0 {
				fmt.Fprintln(out, "⚠ Sample is empty; nothing exported")
				return nil
			}
			return exportRows(out, smpOutputPath, sample.Headers, s.SampleView())
		}
		printRows(out, sample.Headers, view.Preview(s.SampleView(), previewRows(), view.PreviewFirst, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	smpFlags.bind(sampleCmd)
	sampleCmd.Flags().StringVarP(&smpMethod, "method", "m", string(sampling.MethodRandom), "random | systematic | stratified")
	sampleCmd.Flags().IntVar(&smpSize, "size", 10, "random: number of rows, or a percentage with --percent")
	sampleCmd.Flags().BoolVar(&smpPercent, "percent", false, "random: read --size as a percentage of the view")
	sampleCmd.Flags().IntVar(&smpInterval, "interval", 5, "systematic: take every k-th row")
	sampleCmd.Flags().StringVar(&smpPlanPath, "plan", "", "YAML sampling plan (method, sizes and stratification levels)")
	sampleCmd.Flags().StringVar(&smpSave, "save", "", "save the configuration under this name in the workspace")
	sampleCmd.Flags().StringVar(&smpLoad, "load", "", "load a saved configuration and rehydrate it against this file")
	sampleCmd.Flags().StringVarP(&smpOutputPath, "output", "o", "", "write the sample to .csv, .xlsx or .html")
	sampleCmd.Flags().StringVar(&smpExportCfg, "export-config", "", "write the configuration to an .xlsx workbook")
	sampleCmd.Flags().BoolVar(&smpDryRun, "dry-run", false, "validate and print the configuration without drawing")
}
