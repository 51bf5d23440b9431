package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stress/internal/benchmark"
	"stress/internal/config"
	"stress/internal/db"
	"stress/internal/git"
	"stress/internal/registry"
	"stress/internal/telemetry"
	"stress/internal/workloads"
)

var exit = os.Exit

// errUsage marks command line mistakes, which exit with status 2.
var errUsage = errors.New("invalid usage")

// Collaborators replaced in tests.
var (
	newStoreFunc       = func(cfg db.StoreConfig) (db.Store, error) { return db.NewStore(cfg) }
	newGitClient       = func() git.IClient { return git.NewClient() }
	buildRegistry      = defaultRegistry
	startMetricsServer = telemetry.StartMetricsServer
	askOneFunc         = survey.AskOne
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	noColor bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "stress",
		Short: "Run and track expensive single-shot benchmarks",
		Long: `stress times operations that are too expensive to repeat thousands of
times: fsync-heavy writes, database transactions, external commands. Each
benchmark runs a fixed number of times, the median is reported, and the
result can be compared against a baseline to catch regressions in CI.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(a.v, a.cfgFile); err != nil {
				return fmt.Errorf("%w: %w", benchmark.ErrInvalidConfig, err)
			}
			telemetry.InitLogger(a.v.GetBool(config.KeyVerbose), a.v.GetString(config.KeyLogFile))
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./stress.yaml)")
	pf.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	pf.String("log-file", "", "Also append logs to this file")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable coloured output")
	a.bind(config.KeyVerbose, pf.Lookup("verbose"))
	a.bind(config.KeyLogFile, pf.Lookup("log-file"))

	root.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newCompareCmd(a),
		newBaselineCmd(a),
		newHistoryCmd(a),
		newReportCmd(a),
	)
	return root
}

// bind ties a flag to a config key so flags override env and the file.
func (a *app) bind(key string, flag *pflag.Flag) {
	// BindPFlag only fails on a nil flag.
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// bindFlags binds the flags of the command being executed. Binding happens
// at run time because several subcommands share keys such as threshold.
func (a *app) bindFlags(keys map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for name, key := range keys {
			a.bind(key, cmd.Flags().Lookup(name))
		}
		return nil
	}
}

// options resolves and validates the configuration of this invocation.
func (a *app) options() (config.Options, error) {
	return config.Resolve(a.v)
}

// execute runs the command line and maps the outcome to an exit status:
// 0 on success, 1 on failures and regressions, 2 on invalid usage or config.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, registry.ErrRegressions):
		return 1
	case errors.Is(err, errUsage), errors.Is(err, benchmark.ErrInvalidConfig):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run 'stress --help' for usage.")
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// defaultRegistry holds the built-in workloads followed by the command
// benchmarks of the config file. Workloads write their files below dir.
func defaultRegistry(opts config.Options, dir string) (*registry.Registry, error) {
	reg := workloads.Register(registry.New(), dir)
	if err := opts.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
