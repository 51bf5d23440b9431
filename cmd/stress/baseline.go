package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"stress/internal/benchmark"
	"stress/internal/config"
)

// defaultBaselinePath is where baseline save writes without --out or a
// configured baseline.
const defaultBaselinePath = ".stress/baseline.json"

var errAborted = errors.New("aborted")

func newBaselineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the regression baseline",
	}
	cmd.AddCommand(newBaselineSaveCmd(a))
	return cmd
}

func newBaselineSaveCmd(a *app) *cobra.Command {
	var out string
	var yes bool
	cmd := &cobra.Command{
		Use:   "save [results]",
		Short: "Promote a results file to the baseline",
		Long: `Copies a results file, by default the latest results of the suite, to
the baseline path that 'stress run' compares against.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: a.bindFlags(map[string]string{
			"suite":      config.KeySuite,
			"output-dir": config.KeyOutputDir,
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			s, err := loadSuite(opts, path)
			if err != nil {
				return err
			}

			dest := out
			if dest == "" {
				dest = opts.Baseline
			}
			if dest == "" {
				dest = defaultBaselinePath
			}

			if _, err := os.Stat(dest); err == nil && !yes {
				overwrite := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Baseline %s exists. Overwrite it?", dest),
					Default: false,
				}
				if err := askOneFunc(prompt, &overwrite); err != nil {
					return err
				}
				if !overwrite {
					return errAborted
				}
			}

			data, err := benchmark.EncodeSuite(s)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0644); err != nil {
				return fmt.Errorf("failed to write baseline: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline saved to %s (%d benchmarks)\n", dest, len(s.Results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Baseline path (default: configured baseline or "+defaultBaselinePath+")")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Overwrite an existing baseline without asking")
	cmd.Flags().String("suite", config.DefaultSuite, "Suite whose latest results are promoted")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "Directory holding the suite results")
	return cmd
}
