package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"stress/internal/benchmark"
	"stress/internal/config"
	"stress/internal/git"
	"stress/internal/notify"
	"stress/internal/registry"
	"stress/internal/report"
	"stress/internal/telemetry"
)

func newRunCmd(a *app) *cobra.Command {
	var noHistory bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the registered benchmarks",
		Long: `Runs every registered benchmark in order: warmup runs first, then the
measured runs. Results are printed, written to the output directory and
recorded in the history database. With a baseline, the run fails when a
benchmark got slower than the threshold allows.`,
		Args: cobra.NoArgs,
		PreRunE: a.bindFlags(map[string]string{
			"suite":           config.KeySuite,
			"workload":        config.KeyWorkload,
			"filter":          config.KeyFilter,
			"runs":            config.KeyRuns,
			"warmup":          config.KeyWarmup,
			"include-ignored": config.KeyIncludeIgnored,
			"output-dir":      config.KeyOutputDir,
			"work-dir":        config.KeyWorkDir,
			"baseline":        config.KeyBaseline,
			"threshold":       config.KeyThreshold,
			"git-sha":         config.KeyGitSHA,
			"quiet":           config.KeyQuiet,
			"show-all-runs":   config.KeyShowAllRuns,
			"metrics-addr":    config.KeyMetricsAddr,
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBenchmarks(cmd, noHistory)
		},
	}

	f := cmd.Flags()
	f.String("suite", config.DefaultSuite, "Suite name used for results and history")
	f.StringP("workload", "w", "", "Only run benchmarks matching this glob (e.g. 'write*')")
	f.String("filter", "", "Only run benchmarks whose name contains this text")
	f.IntP("runs", "r", 1, "Measured runs per benchmark")
	f.Int("warmup", 0, "Discarded warmup runs per benchmark")
	f.Bool("include-ignored", false, "Also run benchmarks marked as ignored")
	f.String("output-dir", config.DefaultOutputDir, "Directory for JSON and text results (empty disables)")
	f.String("work-dir", config.DefaultWorkDir, "Directory for workload scratch files (empty uses the system temp dir)")
	f.String("baseline", "", "Results file to compare against")
	f.Float64("threshold", 0.05, "Regression threshold as a fraction (0.05 = 5%)")
	f.String("git-sha", "", "Commit to record (default: detected from git)")
	f.BoolP("quiet", "q", false, "Only print regressions and errors")
	f.Bool("show-all-runs", false, "Print every measured run")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address while running (the server shares the process with the timed code and adds noise)")
	f.BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	return cmd
}

func (a *app) runBenchmarks(cmd *cobra.Command, noHistory bool) error {
	opts, err := a.options()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := slog.Default()

	h := opts.Harness(opts.Suite)
	h.Logger = logger
	if h.GitSHA == "" {
		rev, err := git.Describe(ctx, newGitClient(), ".")
		if err != nil {
			logger.Debug("git revision unavailable", "error", err)
		} else {
			h.GitSHA = rev.Label()
			if rev.Branch != "" {
				h.Metadata.Set("branch", rev.Branch)
			}
		}
	}
	if a.noColor {
		h.ConsoleOptions = append(h.ConsoleOptions, report.WithColorProfile(termenv.Ascii))
	}

	if opts.WorkDir != "" {
		if err := os.MkdirAll(opts.WorkDir, 0755); err != nil {
			return fmt.Errorf("failed to create work directory: %w", err)
		}
	}
	workDir, err := os.MkdirTemp(opts.WorkDir, "run-")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	reg, err := buildRegistry(opts, workDir)
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		promReg := prometheus.NewRegistry()
		prom, err := telemetry.NewPrometheus(promReg)
		if err != nil {
			return err
		}
		h.Reporters = append(h.Reporters, prom)

		logger.Info("Metrics server runs alongside the benchmarks; expect extra noise", "addr", opts.MetricsAddr)
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := startMetricsServer(metricsCtx, opts.MetricsAddr, promReg); err != nil {
				logger.Error("Metrics server failed", "addr", opts.MetricsAddr, "error", err)
			}
		}()
	}
	if m := notify.NewManager(opts.Notify(), logger); m != nil {
		h.Reporters = append(h.Reporters, m)
	}
	h.Reporters = append(h.Reporters, report.NewGitHubActions(cmd.OutOrStdout()))
	if s := report.NewMarkdownSummary(os.Getenv("GITHUB_STEP_SUMMARY")); s != nil {
		h.Reporters = append(h.Reporters, s)
	}

	suite, runErr := registry.Execute(ctx, reg, h, cmd.OutOrStdout())
	if suite != nil && len(suite.Results) > 0 && opts.Store.Enabled && !noHistory {
		if err := saveHistory(opts, suite); err != nil {
			logger.Warn("Failed to record history", "store", opts.Store.Type, "error", err)
		}
	}

	if errors.Is(runErr, registry.ErrRegressions) {
		stderr := cmd.ErrOrStderr()
		fmt.Fprintf(stderr, "\n%d regression(s) detected!\n", len(suite.Regressions))
		for _, r := range suite.Regressions {
			fmt.Fprintf(stderr, "  %s\n", r)
		}
	}
	return runErr
}

func saveHistory(opts config.Options, s *benchmark.Suite) error {
	store, err := newStoreFunc(opts.StoreConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(s)
}
