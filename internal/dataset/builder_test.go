package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/internal/model"
)

func f64(v float64) *float64 { return &v }

func candidate(instruction string, quality *float64) model.CandidatePair {
	return model.CandidatePair{
		Instruction: instruction,
		Output:      "A sufficiently long answer to the question.",
		Quality:     quality,
		ResourceID:  "res_1",
	}
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return New(
		config.QualityConfig{Threshold: 0.6, SimilarityThreshold: 0.85},
		config.DatasetConfig{OutputDir: t.TempDir()},
	)
}

func TestBuildTiersAndPersists(t *testing.T) {
	b := newTestBuilder(t)

	// Last three: below threshold, unscored (defaults to 0.5), duplicate of
	// the first.
	pairs := []model.CandidatePair{
		candidate("How does the onboarding process reduce churn?", f64(0.9)),
		candidate("Which metrics track implementation progress best?", f64(0.85)),
		candidate("What distinguishes the premium service tier?", f64(0.7)),
		candidate("Why do retention rates improve after training?", f64(0.65)),
		candidate("Which channels drive the most qualified leads?", f64(0.5)),
		candidate("How is customer feedback folded into planning?", nil),
		candidate("How does the onboarding process reduce churn?", f64(0.95)),
	}

	meta := b.Build(context.Background(), pairs, "unit_ds")

	require.True(t, meta.Success, meta.Error)
	assert.Equal(t, 7, meta.Stats.OriginalPairs)
	assert.Equal(t, 4, meta.Stats.FinalPairs)
	assert.Equal(t, 2, meta.Stats.HighPairs)
	assert.Equal(t, 4, meta.Stats.MediumPairs)
	assert.InDelta(t, 4.0/7.0, meta.Stats.RetentionRate, 0.001)

	require.Contains(t, meta.Files, "high")
	require.Contains(t, meta.Files, "medium")
	assert.True(t, strings.HasSuffix(meta.Files["high"], "unit_ds_high.jsonl"))

	data, err := os.ReadFile(meta.Files["high"])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var p model.TrainingPair
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &p))
	assert.True(t, p.Validated)
	assert.True(t, p.ReadyForTraining)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "res_1", p.Source)
}

func TestBuildDedupKeepsFirstOccurrence(t *testing.T) {
	b := newTestBuilder(t)

	pairs := []model.CandidatePair{
		candidate("How does the review workflow catch regressions?", f64(0.7)),
		candidate("  how does the review workflow catch regressions?  ", f64(0.99)),
	}

	meta := b.Build(context.Background(), pairs, "dedup_ds")
	require.True(t, meta.Success)
	assert.Equal(t, 1, meta.Stats.FinalPairs)
	// First occurrence wins even when the duplicate scores higher.
	assert.Equal(t, 0, meta.Stats.HighPairs)
}

func TestBuildFuzzyDedup(t *testing.T) {
	b := New(
		config.QualityConfig{Threshold: 0.6, SimilarityThreshold: 0.85, FuzzyDedup: true},
		config.DatasetConfig{OutputDir: t.TempDir()},
	)

	pairs := []model.CandidatePair{
		candidate("how does the review workflow catch regressions early", f64(0.7)),
		candidate("how does the review workflow catch regressions", f64(0.7)),
	}

	meta := b.Build(context.Background(), pairs, "fuzzy_ds")
	require.True(t, meta.Success)
	assert.Equal(t, 1, meta.Stats.FinalPairs)
}

func TestBuildDropsShortFields(t *testing.T) {
	b := newTestBuilder(t)

	short := candidate("Why?", f64(0.9))
	meta := b.Build(context.Background(), []model.CandidatePair{short}, "short_ds")

	assert.False(t, meta.Success)
	assert.Equal(t, 0, meta.Stats.FinalPairs)
}

func TestBuildEmptyInputFails(t *testing.T) {
	b := newTestBuilder(t)

	meta := b.Build(context.Background(), nil, "empty_ds")

	assert.False(t, meta.Success)
	assert.NotEmpty(t, meta.Error)
	assert.Equal(t, 0.0, meta.Stats.RetentionRate)
	assert.Empty(t, meta.Files)
}

func TestBuildDefaultName(t *testing.T) {
	b := newTestBuilder(t)

	meta := b.Build(context.Background(), []model.CandidatePair{
		candidate("How does the scheduling engine balance load?", f64(0.8)),
	}, "")

	require.True(t, meta.Success)
	assert.True(t, strings.HasPrefix(meta.Name, "training_dataset_"))
}

func TestBuildWritesMetadataFile(t *testing.T) {
	dir := t.TempDir()
	b := New(
		config.QualityConfig{Threshold: 0.6},
		config.DatasetConfig{OutputDir: dir},
	)

	meta := b.Build(context.Background(), []model.CandidatePair{
		candidate("How does the scheduling engine balance load?", f64(0.8)),
	}, "meta_ds")
	require.True(t, meta.Success)

	data, err := os.ReadFile(filepath.Join(dir, "meta_ds_metadata.json"))
	require.NoError(t, err)

	var onDisk model.DatasetMeta
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "meta_ds", onDisk.Name)
	assert.Equal(t, 1, onDisk.Stats.FinalPairs)
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard("a b c", "c b a"))
	assert.Equal(t, 0.0, jaccard("a b", "c d"))
	assert.InDelta(t, 0.5, jaccard("a b c d", "a b"), 0.001)
	assert.Equal(t, 0.0, jaccard("", "a"))
}
