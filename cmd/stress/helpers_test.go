package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stress/internal/benchmark"
	"stress/internal/config"
	"stress/internal/db"
	"stress/internal/git"
	"stress/internal/registry"
)

// testEnv isolates one command invocation: a fresh working directory, a
// SQLite history in that directory, a fixed git revision and a small
// registry of fast benchmarks.
type testEnv struct {
	dir       string
	storeOpen int
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}
	t.Chdir(env.dir)
	t.Setenv("GITHUB_ACTIONS", "")
	os.Unsetenv("GITHUB_ACTIONS")
	t.Setenv("GITHUB_STEP_SUMMARY", "")

	oldStore, oldGit, oldRegistry, oldMetrics, oldAsk := newStoreFunc, newGitClient, buildRegistry, startMetricsServer, askOneFunc
	t.Cleanup(func() {
		newStoreFunc, newGitClient, buildRegistry, startMetricsServer, askOneFunc = oldStore, oldGit, oldRegistry, oldMetrics, oldAsk
	})

	newStoreFunc = func(cfg db.StoreConfig) (db.Store, error) {
		env.storeOpen++
		return db.NewStore(db.StoreConfig{Type: "sqlite", ConnectionString: filepath.Join(env.dir, "history.db")})
	}
	newGitClient = func() git.IClient {
		m := &git.MockClient{}
		m.On("CurrentCommitSHA", mock.Anything, ".").Return("abc123", nil)
		m.On("CurrentBranch", mock.Anything, ".").Return("main", nil)
		m.On("IsDirty", mock.Anything, ".").Return(false, nil)
		return m
	}
	buildRegistry = func(opts config.Options, dir string) (*registry.Registry, error) {
		reg := registry.New().
			Add("quick", func(b *benchmark.B) { b.Measure(func() {}) }).
			Add("sleepy", func(b *benchmark.B) {
				b.SetBytes(1024)
				b.Measure(func() { time.Sleep(2 * time.Millisecond) })
			}).
			AddIgnored("slow", func(b *benchmark.B) { b.Measure(func() {}) })
		if err := opts.Register(reg); err != nil {
			return nil, err
		}
		return reg, nil
	}
	startMetricsServer = func(context.Context, string, prometheus.Gatherer) error { return nil }
	askOneFunc = func(survey.Prompt, interface{}, ...survey.AskOpt) error {
		t.Fatal("unexpected prompt")
		return nil
	}
	return env
}

func executeCommand(args ...string) (stdout, stderr string, code int) {
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeBaseline(t *testing.T, path string, durations map[string]time.Duration) {
	t.Helper()
	s := &benchmark.Suite{Name: "stress", StartedAt: time.UnixMilli(1), Runs: 1}
	for name, d := range durations {
		s.Results = append(s.Results, benchmark.Result{Name: name, Duration: d})
	}
	data, err := benchmark.EncodeSuite(s)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}
