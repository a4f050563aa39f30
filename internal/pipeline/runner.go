// Package pipeline orchestrates the end-to-end run: ingest a resource, chunk
// it, generate candidate pairs per chunk, and build the tiered dataset.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/chunker"
	"github.com/corpusforge/datagen/internal/dataset"
	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
	"github.com/corpusforge/datagen/pkg/qagen"
)

// Runner wires the pipeline stages together. One Runner serves many runs;
// it holds no per-run state.
type Runner struct {
	ingestor  *ingest.Ingestor
	chunker   *chunker.Chunker
	generator qagen.Client
	builder   *dataset.Builder
}

// New creates a Runner with all stage dependencies.
func New(ing *ingest.Ingestor, ch *chunker.Chunker, gen qagen.Client, b *dataset.Builder) *Runner {
	return &Runner{ingestor: ing, chunker: ch, generator: gen, builder: b}
}

// GeneratorConfigured reports whether a generation client is wired in. Runs
// without one fail at the generation stage; the health endpoint surfaces the
// distinction so a misconfigured deployment is visible before any request.
func (r *Runner) GeneratorConfigured() bool {
	return r.generator != nil
}

// Run executes the full pipeline for one input. It always returns a result
// envelope: stage failures are reported in it, never as a raw error. A panic
// in any stage degrades to a failure with stage "unknown".
func (r *Runner) Run(ctx context.Context, in ingest.Input, datasetName string) (result *model.RunResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("pipeline: run panicked", zap.Any("panic", rec))
			result = model.Failure(model.StageUnknown, "internal pipeline failure")
		}
	}()

	res := r.ingestor.Ingest(ctx, in)
	if res.Failed() {
		result = model.Failure(model.StageResourceProcessing, res.Metadata.ErrorDetail)
		result.ResourceMeta = &res.Metadata
		return result
	}
	if strings.TrimSpace(res.Content) == "" {
		result = model.Failure(model.StageResourceProcessing, "resource produced no content")
		result.ResourceMeta = &res.Metadata
		return result
	}

	chunks := r.chunker.Chunk(res)
	res.Metadata.ChunkCount = len(chunks)

	pairs := r.generate(ctx, chunks)
	if len(pairs) == 0 {
		result = model.Failure(model.StageQAGeneration, "no candidate pairs generated")
		result.ResourceMeta = &res.Metadata
		return result
	}

	meta := r.builder.Build(ctx, pairs, datasetName)
	if !meta.Success {
		result = model.Failure(model.StageDatasetBuilding, meta.Error)
		result.ResourceMeta = &res.Metadata
		result.Dataset = meta
		return result
	}

	zap.L().Info("pipeline: run complete",
		zap.String("resource_id", res.ID),
		zap.Int("chunks", len(chunks)),
		zap.Int("pairs", len(pairs)),
		zap.Int("final", meta.Stats.FinalPairs),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &model.RunResult{
		Success:      true,
		ResourceMeta: &res.Metadata,
		Stats: &model.ProcessingStats{
			ChunksProcessed:  len(chunks),
			PairsGenerated:   len(pairs),
			FinalDatasetSize: meta.Stats.FinalPairs,
		},
		Dataset: meta,
		Files:   meta.Files,
	}
}

// generate collects candidate pairs chunk by chunk. A chunk whose generation
// fails is skipped; the run continues with whatever the other chunks yield.
func (r *Runner) generate(ctx context.Context, chunks []model.Chunk) []model.CandidatePair {
	if r.generator == nil {
		zap.L().Warn("pipeline: generation client not configured")
		return nil
	}

	var pairs []model.CandidatePair
	failed := 0
	for _, chunk := range chunks {
		if ctx.Err() != nil {
			zap.L().Warn("pipeline: generation cancelled", zap.Int("chunk", chunk.Seq))
			break
		}
		got, err := r.generator.Generate(ctx, chunk)
		if err != nil {
			failed++
			zap.L().Warn("pipeline: chunk generation failed",
				zap.String("resource_id", chunk.ResourceID),
				zap.Int("chunk", chunk.Seq),
				zap.Error(err),
			)
			continue
		}
		pairs = append(pairs, got...)
	}

	zap.L().Info("pipeline: generation done",
		zap.Int("chunks", len(chunks)),
		zap.Int("failed_chunks", failed),
		zap.Int("pairs", len(pairs)),
	)
	return pairs
}
