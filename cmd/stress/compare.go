package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stress/internal/benchmark"
	"stress/internal/config"
	"stress/internal/registry"
	"stress/internal/report"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <baseline> [results]",
		Short: "Compare results against a baseline",
		Long: `Lines up every benchmark of a results file with its baseline entry and
prints the relative change. Without a results file the latest results of the
suite are used. Exits with status 1 when a benchmark regressed.`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: a.bindFlags(map[string]string{
			"suite":      config.KeySuite,
			"output-dir": config.KeyOutputDir,
			"threshold":  config.KeyThreshold,
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			baseline, err := benchmark.LoadBaseline(args[0])
			if err != nil {
				return err
			}
			var path string
			if len(args) == 2 {
				path = args[1]
			}
			current, err := loadSuite(opts, path)
			if err != nil {
				return err
			}

			deltas := benchmark.Diff(current.Results, baseline, opts.Threshold)
			printDeltas(cmd, deltas)

			regressions := benchmark.FindRegressions(current.Results, baseline, opts.Threshold)
			if len(regressions) > 0 {
				return fmt.Errorf("%w: %d benchmark(s) slower than baseline", registry.ErrRegressions, len(regressions))
			}
			return nil
		},
	}
	cmd.Flags().String("suite", config.DefaultSuite, "Suite whose latest results are compared")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "Directory holding the suite results")
	cmd.Flags().Float64("threshold", 0.05, "Regression threshold as a fraction (0.05 = 5%)")
	return cmd
}

func printDeltas(cmd *cobra.Command, deltas []benchmark.Delta) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BENCHMARK\tCURRENT\tBASELINE\tDIFF %\tSTATUS")
	for _, d := range deltas {
		if d.Status == benchmark.StatusNew {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t%s\n", d.Name, report.FormatDuration(d.Current), d.Status)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%+.2f%%\t%s\n",
			d.Name, report.FormatDuration(d.Current), report.FormatDuration(d.Baseline), d.Percent(), d.Status)
	}
	w.Flush()
}
