package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"stress/internal/config"
	"stress/internal/report"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit, prune int
	cmd := &cobra.Command{
		Use:   "history [benchmark]",
		Short: "Show recorded runs from the history database",
		Long: `Without arguments, lists the recorded runs of the suite. With a benchmark
name, shows how its median moved across the most recent runs.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: a.bindFlags(map[string]string{
			"suite": config.KeySuite,
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			store, err := newStoreFunc(opts.StoreConfig())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()
			out := cmd.OutOrStdout()

			if prune >= 0 {
				n, err := store.Prune(opts.Suite, prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d run(s) of %s\n", n, opts.Suite)
				return nil
			}

			if len(args) == 1 {
				name := args[0]
				if !strings.HasPrefix(name, opts.Suite+"/") {
					name = opts.Suite + "/" + name
				}
				points, err := store.History(opts.Suite, name, limit)
				if err != nil {
					return err
				}
				if len(points) == 0 {
					fmt.Fprintf(out, "No history for %s\n", name)
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "STARTED\tGIT SHA\tMEDIAN")
				for _, p := range points {
					fmt.Fprintf(w, "%s\t%s\t%s\n", p.StartedAt.Format(time.DateTime), shortSHA(p.GitSHA), report.FormatDuration(p.Duration))
				}
				w.Flush()
				if len(points) > 1 {
					newest, oldest := points[0].Duration, points[len(points)-1].Duration
					if oldest > 0 {
						fmt.Fprintf(out, "\nChange over %d runs: %+.2f%%\n", len(points), (float64(newest)/float64(oldest)-1)*100)
					}
				}
				return nil
			}

			runs, err := store.LoadAll(opts.Suite)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				suites, err := store.Suites()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "No recorded runs for %s\n", opts.Suite)
				if len(suites) > 0 {
					fmt.Fprintf(out, "Recorded suites: %s\n", strings.Join(suites, ", "))
				}
				return nil
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "STARTED\tGIT SHA\tBENCHMARKS\tREGRESSIONS\tTOTAL")
			for _, s := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					s.StartedAt.Format(time.DateTime), shortSHA(s.GitSHA), len(s.Results), len(s.Regressions), report.FormatDuration(s.TotalDuration))
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("suite", config.DefaultSuite, "Suite to show")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().IntVar(&prune, "prune", -1, "Delete all but the newest N runs of the suite")
	return cmd
}

func shortSHA(sha string) string {
	if sha == "" {
		return "-"
	}
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
