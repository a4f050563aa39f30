package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Chunker.SizeWords)
	assert.Equal(t, 100, cfg.Chunker.OverlapWords)
	assert.Equal(t, 50, cfg.Chunker.MinChunkLen)
	assert.Equal(t, 0.6, cfg.Quality.Threshold)
	assert.Equal(t, 0.85, cfg.Quality.SimilarityThreshold)
	assert.False(t, cfg.Quality.FuzzyDedup)
	assert.False(t, cfg.Quality.HeuristicGate)
	assert.Equal(t, "datasets", cfg.Dataset.OutputDir)
	assert.Equal(t, 5, cfg.Generation.MaxPairsPerChunk)
	assert.Equal(t, 30, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, 15000, cfg.Scrape.MaxContentLength)
	assert.Equal(t, 3, cfg.Batch.MaxConcurrentRuns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("chunker:\n  size_words: 400\nquality:\n  threshold: 0.75\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Chunker.SizeWords)
	assert.Equal(t, 0.75, cfg.Quality.Threshold)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Chunker.OverlapWords)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATAGEN_SERVER_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{
		Dataset: DatasetConfig{OutputDir: filepath.Join(base, "out")},
		Media:   MediaConfig{TempDir: filepath.Join(base, "tmp")},
	}

	require.NoError(t, cfg.EnsureDirs())
	assert.DirExists(t, filepath.Join(base, "out"))
	assert.DirExists(t, filepath.Join(base, "tmp"))
}

func TestInitLoggerBadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
