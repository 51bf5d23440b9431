package config

import (
	"fmt"
	"strings"

	"stress/internal/benchmark"
	"stress/internal/db"
	"stress/internal/notify"
	"stress/internal/registry"

	"github.com/spf13/viper"
)

// Command is a benchmark declared in the config file that times a shell-style
// command line.
type Command struct {
	Name    string `mapstructure:"name"`
	Command string `mapstructure:"command"`
	Ignored bool   `mapstructure:"ignored"`
}

// Store selects the history database.
type Store struct {
	Enabled bool
	Type    string
	DSN     string
}

// Options is the resolved configuration of one invocation.
type Options struct {
	Suite          string
	Runs           int
	Warmup         int
	Workload       string
	Filter         string
	IncludeIgnored bool
	OutputDir      string
	WorkDir        string
	Baseline       string
	Threshold      float64
	GitSHA         string
	Verbose        bool
	Quiet          bool
	ShowAllRuns    bool
	LogFile        string
	Store          Store
	SlackWebhook   string
	SlackToken     string
	SlackChannel   string
	DiscordWebhook string
	MetricsAddr    string
	Benchmarks     []Command
}

// Resolve reads Options out of v after Load.
func Resolve(v *viper.Viper) (Options, error) {
	opts := Options{
		Suite:          v.GetString(KeySuite),
		Runs:           v.GetInt(KeyRuns),
		Warmup:         v.GetInt(KeyWarmup),
		Workload:       v.GetString(KeyWorkload),
		Filter:         v.GetString(KeyFilter),
		IncludeIgnored: v.GetBool(KeyIncludeIgnored),
		OutputDir:      v.GetString(KeyOutputDir),
		WorkDir:        v.GetString(KeyWorkDir),
		Baseline:       v.GetString(KeyBaseline),
		Threshold:      v.GetFloat64(KeyThreshold),
		GitSHA:         v.GetString(KeyGitSHA),
		Verbose:        v.GetBool(KeyVerbose),
		Quiet:          v.GetBool(KeyQuiet),
		ShowAllRuns:    v.GetBool(KeyShowAllRuns),
		LogFile:        v.GetString(KeyLogFile),
		Store: Store{
			Enabled: v.GetBool(KeyStoreEnabled),
			Type:    v.GetString(KeyStoreType),
			DSN:     v.GetString(KeyStoreDSN),
		},
		SlackWebhook:   v.GetString(KeySlackWebhook),
		SlackToken:     v.GetString(KeySlackToken),
		SlackChannel:   v.GetString(KeySlackChannel),
		DiscordWebhook: v.GetString(KeyDiscordWebhook),
		MetricsAddr:    v.GetString(KeyMetricsAddr),
	}
	if err := v.UnmarshalKey(KeyBenchmarks, &opts.Benchmarks); err != nil {
		return opts, fmt.Errorf("%w: benchmarks: %w", benchmark.ErrInvalidConfig, err)
	}
	return opts, opts.Validate()
}

// Validate reports every invalid value at once, wrapped in
// benchmark.ErrInvalidConfig.
func (o Options) Validate() error {
	var errs []string
	if o.Suite == "" {
		errs = append(errs, "suite must not be empty")
	}
	if o.Runs < 1 {
		errs = append(errs, fmt.Sprintf("runs must be at least 1, got: %d", o.Runs))
	}
	if o.Warmup < 0 {
		errs = append(errs, fmt.Sprintf("warmup must not be negative, got: %d", o.Warmup))
	}
	if o.Threshold < 0 {
		errs = append(errs, fmt.Sprintf("threshold must not be negative, got: %g", o.Threshold))
	}
	switch o.Store.Type {
	case "", "sqlite":
	case "postgres":
		if o.Store.Enabled && o.Store.DSN == "" {
			errs = append(errs, "store.dsn is required when store.type is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.type must be sqlite or postgres, got: %q", o.Store.Type))
	}
	seen := make(map[string]bool)
	for i, c := range o.Benchmarks {
		if c.Name == "" || c.Command == "" {
			errs = append(errs, fmt.Sprintf("benchmarks[%d] needs a name and a command", i))
			continue
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Sprintf("benchmarks[%d]: duplicate name %q", i, c.Name))
		}
		seen[c.Name] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", benchmark.ErrInvalidConfig, strings.Join(errs, "\n  "))
	}
	return nil
}

// RunConfig produces the core runner configuration.
func (o Options) RunConfig() benchmark.RunConfig {
	return o.Harness("").RunConfig()
}

// Harness converts the options into registry options for suite.
func (o Options) Harness(suite string) registry.Options {
	return registry.Options{
		Suite:          suite,
		Workload:       o.Workload,
		Filter:         o.Filter,
		Runs:           o.Runs,
		Warmup:         o.Warmup,
		IncludeIgnored: o.IncludeIgnored,
		Verbose:        o.Verbose,
		Quiet:          o.Quiet,
		OutputDir:      o.OutputDir,
		Baseline:       o.Baseline,
		Threshold:      o.Threshold,
		GitSHA:         o.GitSHA,
		ShowAllRuns:    o.ShowAllRuns,
	}
}

// StoreConfig returns the history database settings. Only SQLite has a
// default location.
func (o Options) StoreConfig() db.StoreConfig {
	cfg := db.StoreConfig{Type: o.Store.Type, ConnectionString: o.Store.DSN}
	if cfg.ConnectionString == "" && o.Store.Type != "postgres" {
		cfg.ConnectionString = db.DefaultSQLitePath
	}
	return cfg
}

// Notify returns the regression alert destinations.
func (o Options) Notify() notify.Config {
	return notify.Config{
		SlackWebhook:   o.SlackWebhook,
		SlackToken:     o.SlackToken,
		SlackChannel:   o.SlackChannel,
		DiscordWebhook: o.DiscordWebhook,
	}
}

// Register adds the configured command benchmarks to reg.
func (o Options) Register(reg *registry.Registry) error {
	for _, c := range o.Benchmarks {
		if err := reg.AddCommand(c.Name, c.Command, c.Ignored); err != nil {
			return fmt.Errorf("%w: %w", benchmark.ErrInvalidConfig, err)
		}
	}
	return nil
}
