package benchmark

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSuite(name string, started time.Time, d time.Duration) *Suite {
	return &Suite{
		Name:          name,
		StartedAt:     time.UnixMilli(started.UnixMilli()),
		Runs:          1,
		TotalDuration: d,
		GitSHA:        "abc",
		Results:       []Result{{Name: name + "/op", Duration: d, AllRuns: []time.Duration{d}}},
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "results"))
	require.NoError(t, err)

	runs, err := store.LoadAll("io")
	require.NoError(t, err)
	assert.Empty(t, runs)

	latest, err := store.LoadLatest("io")
	require.NoError(t, err)
	assert.Nil(t, latest)

	now := time.Now()
	second := sampleSuite("io", now, ms(20))
	first := sampleSuite("io", now.Add(-time.Hour), ms(10))
	require.NoError(t, store.Save(second))
	require.NoError(t, store.Save(first))

	latest, err = store.LoadLatest("io")
	require.NoError(t, err)
	assert.Equal(t, first.StartedAt.UnixMilli(), latest.StartedAt.UnixMilli())

	runs, err = store.LoadAll("io")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ms(10), runs[0].Results[0].Duration)
	assert.Equal(t, ms(20), runs[1].Results[0].Duration)
	assert.FileExists(t, store.Path(second))
}

func TestFileStore_SanitizesSuiteName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(sampleSuite("a/b", time.Now(), ms(1))))
	assert.DirExists(t, filepath.Join(dir, "a_b"))
}

func TestFileStore_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.SuiteDir("io"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.SuiteDir("io"), "1.json"), []byte("{"), 0644))

	_, err = store.LoadAll("io")
	assert.Error(t, err)
}

func TestEncodeSuite_Deterministic(t *testing.T) {
	s := sampleSuite("io", time.UnixMilli(1700000000000), ms(3))
	s.Results[0].Tags = Tags{{"z", "1"}, {"a", "2"}}

	first, err := EncodeSuite(s)
	require.NoError(t, err)
	second, err := EncodeSuite(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, byte('\n'), first[len(first)-1])
}
