package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusforge/datagen/internal/chunker"
	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/internal/dataset"
	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
)

// stubGenerator returns canned pairs, or an error for every chunk.
type stubGenerator struct {
	fail  bool
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, chunk model.Chunk) ([]model.CandidatePair, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("generation unavailable")
	}
	q := 0.9
	return []model.CandidatePair{{
		Instruction: fmt.Sprintf("What does chunk %d of this content describe?", chunk.Seq),
		Output:      "It describes the subject matter of the passage in detail.",
		Quality:     &q,
		ResourceID:  chunk.ResourceID,
	}}, nil
}

func newTestRunner(t *testing.T, gen *stubGenerator) *Runner {
	t.Helper()
	ing := ingest.New(ingest.NewFileExtractor(nil, nil), nil, nil)
	ch := chunker.New(config.ChunkerConfig{SizeWords: 50, OverlapWords: 10, MinChunkLen: 10})
	b := dataset.New(
		config.QualityConfig{Threshold: 0.6},
		config.DatasetConfig{OutputDir: t.TempDir()},
	)
	return New(ing, ch, gen, b)
}

func longText(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = fmt.Sprintf("token%d", i)
	}
	return strings.Join(parts, " ")
}

func TestRunSuccess(t *testing.T) {
	gen := &stubGenerator{}
	r := newTestRunner(t, gen)

	result := r.Run(context.Background(), ingest.Input{Text: longText(120)}, "run_ds")

	require.True(t, result.Success, result.Error)
	require.NotNil(t, result.Stats)
	assert.Equal(t, gen.calls, result.Stats.ChunksProcessed)
	assert.Greater(t, result.Stats.ChunksProcessed, 1)
	assert.Equal(t, result.Stats.ChunksProcessed, result.Stats.PairsGenerated)
	assert.Greater(t, result.Stats.FinalDatasetSize, 0)
	require.NotNil(t, result.Dataset)
	assert.Equal(t, "run_ds", result.Dataset.Name)
	assert.NotEmpty(t, result.Files)
	require.NotNil(t, result.ResourceMeta)
	assert.Equal(t, result.Stats.ChunksProcessed, result.ResourceMeta.ChunkCount)
}

func TestRunFailsAtResourceProcessing(t *testing.T) {
	r := newTestRunner(t, &stubGenerator{})

	result := r.Run(context.Background(), ingest.Input{Text: "   "}, "")

	assert.False(t, result.Success)
	assert.Equal(t, model.StageResourceProcessing, result.Stage)
	assert.NotEmpty(t, result.Error)
}

func TestRunFailsAtGeneration(t *testing.T) {
	r := newTestRunner(t, &stubGenerator{fail: true})

	result := r.Run(context.Background(), ingest.Input{Text: longText(120)}, "")

	assert.False(t, result.Success)
	assert.Equal(t, model.StageQAGeneration, result.Stage)
}

func TestGeneratorConfigured(t *testing.T) {
	assert.True(t, newTestRunner(t, &stubGenerator{}).GeneratorConfigured())

	ing := ingest.New(ingest.NewFileExtractor(nil, nil), nil, nil)
	ch := chunker.New(config.ChunkerConfig{})
	b := dataset.New(config.QualityConfig{}, config.DatasetConfig{OutputDir: t.TempDir()})
	assert.False(t, New(ing, ch, nil, b).GeneratorConfigured())
}

func TestRunWithoutGenerator(t *testing.T) {
	ing := ingest.New(ingest.NewFileExtractor(nil, nil), nil, nil)
	ch := chunker.New(config.ChunkerConfig{})
	b := dataset.New(config.QualityConfig{}, config.DatasetConfig{OutputDir: t.TempDir()})
	r := New(ing, ch, nil, b)

	result := r.Run(context.Background(), ingest.Input{Text: "Some processable content here."}, "")

	assert.False(t, result.Success)
	assert.Equal(t, model.StageQAGeneration, result.Stage)
}

func TestRunFailsAtDatasetBuilding(t *testing.T) {
	// Pairs whose output is too short are dropped at standardization, leaving
	// an empty dataset.
	gen := &shortOutputGenerator{}
	ing := ingest.New(ingest.NewFileExtractor(nil, nil), nil, nil)
	ch := chunker.New(config.ChunkerConfig{})
	b := dataset.New(config.QualityConfig{Threshold: 0.6}, config.DatasetConfig{OutputDir: t.TempDir()})
	r := New(ing, ch, gen, b)

	result := r.Run(context.Background(), ingest.Input{Text: "Some processable content here."}, "")

	assert.False(t, result.Success)
	assert.Equal(t, model.StageDatasetBuilding, result.Stage)
	require.NotNil(t, result.Dataset)
	assert.False(t, result.Dataset.Success)
}

type shortOutputGenerator struct{}

func (s *shortOutputGenerator) Generate(_ context.Context, chunk model.Chunk) ([]model.CandidatePair, error) {
	q := 0.9
	return []model.CandidatePair{{
		Instruction: "A valid instruction with enough length?",
		Output:      "No.",
		Quality:     &q,
		ResourceID:  chunk.ResourceID,
	}}, nil
}
