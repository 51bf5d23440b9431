package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: runs is read from BENCH_RUNS.
const EnvPrefix = "BENCH"

// Viper keys. Nested keys map to env vars with dots replaced by underscores.
const (
	KeySuite          = "suite"
	KeyRuns           = "runs"
	KeyWarmup         = "warmup"
	KeyWorkload       = "workload"
	KeyFilter         = "filter"
	KeyIncludeIgnored = "include_ignored"
	KeyOutputDir      = "output_dir"
	KeyWorkDir        = "work_dir"
	KeyBaseline       = "baseline"
	KeyThreshold      = "threshold"
	KeyGitSHA         = "git_sha"
	KeyVerbose        = "verbose"
	KeyQuiet          = "quiet"
	KeyShowAllRuns    = "show_all_runs"
	KeyLogFile        = "log_file"
	KeyStoreEnabled   = "store.enabled"
	KeyStoreType      = "store.type"
	KeyStoreDSN       = "store.dsn"
	KeySlackWebhook   = "slack_webhook"
	KeySlackToken     = "slack_token"
	KeySlackChannel   = "slack_channel"
	KeyDiscordWebhook = "discord_webhook"
	KeyMetricsAddr    = "metrics_addr"
	KeyBenchmarks     = "benchmarks"
)

// DefaultSuite names results when no suite is configured.
const DefaultSuite = "stress"

// DefaultOutputDir is where results are written when no directory is configured.
const DefaultOutputDir = ".stress/results"

// DefaultWorkDir holds the scratch files of the io workloads. It sits in the
// working directory so disk benchmarks hit the same disk as the project
// rather than a tmpfs /tmp.
const DefaultWorkDir = ".stress/work"

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySuite, DefaultSuite)
	v.SetDefault(KeyRuns, 1)
	v.SetDefault(KeyWarmup, 0)
	v.SetDefault(KeyThreshold, 0.05)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyWorkDir, DefaultWorkDir)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyStoreEnabled, true)
	v.SetDefault(KeyStoreType, "sqlite")
}

// Load reads .env, the config file and BENCH_* environment variables into v.
// Without cfgFile, stress.yaml in the working directory is used if present.
func Load(v *viper.Viper, cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("stress")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Using config file", "path", v.ConfigFileUsed())
	return nil
}
