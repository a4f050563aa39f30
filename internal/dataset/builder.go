// Package dataset filters, deduplicates, standardizes, and tiers candidate
// pairs, then persists the result as newline-delimited JSON.
package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/internal/model"
	"github.com/corpusforge/datagen/internal/scorer"
)

// Builder assembles tiered datasets from candidate pairs. Build never returns
// an error to the caller; failures come back as metadata with Success=false.
type Builder struct {
	quality   config.QualityConfig
	persister *Persister
	heuristic *scorer.Scorer // nil unless the heuristic gate is enabled
}

// New creates a Builder writing under cfg.Dataset.OutputDir.
func New(quality config.QualityConfig, ds config.DatasetConfig) *Builder {
	b := &Builder{
		quality:   quality,
		persister: NewPersister(ds.OutputDir),
	}
	if quality.HeuristicGate {
		b.heuristic = scorer.New()
	}
	return b
}

// Build runs the quality filter, deduplication, standardization, and
// tiering stages, then persists tier files and metadata. Stages
// never short-circuit: an empty intermediate result still flows through so
// each stage logs its counts, but an entirely empty final tier set is a
// reported build failure, not an empty success.
func (b *Builder) Build(ctx context.Context, pairs []model.CandidatePair, name string) *model.DatasetMeta {
	if name == "" {
		name = fmt.Sprintf("training_dataset_%s", time.Now().Format("20060102_150405"))
	}

	log := zap.L().With(zap.String("dataset", name))
	log.Info("dataset: building", zap.Int("input_pairs", len(pairs)))

	filtered := b.filterQuality(pairs)
	deduped := b.deduplicate(filtered)
	standardized := b.standardize(deduped)
	tiers := b.tier(standardized)

	meta := &model.DatasetMeta{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Stats: model.DatasetStats{
			OriginalPairs: len(pairs),
			FinalPairs:    len(tiers.All),
			HighPairs:     len(tiers.High),
			MediumPairs:   len(tiers.Medium),
			RetentionRate: retention(len(tiers.All), len(pairs)),
		},
		Processing: model.ProcessingInfo{
			QualityThreshold: b.threshold(),
			Deduplication:    true,
			Standardization:  true,
		},
	}

	if len(tiers.All) == 0 {
		meta.Success = false
		meta.Error = "no pairs survived filtering and standardization"
		log.Warn("dataset: build produced no pairs")
		return meta
	}

	files, err := b.persister.Persist(ctx, tiers, name)
	if err != nil {
		meta.Success = false
		meta.Error = err.Error()
		log.Error("dataset: persist failed", zap.Error(err))
		return meta
	}
	meta.Files = files
	meta.Success = true

	if err := b.persister.WriteMetadata(ctx, meta); err != nil {
		meta.Success = false
		meta.Error = err.Error()
		log.Error("dataset: metadata write failed", zap.Error(err))
		return meta
	}

	log.Info("dataset: build complete",
		zap.Int("high", len(tiers.High)),
		zap.Int("medium", len(tiers.Medium)),
		zap.Int("all", len(tiers.All)),
		zap.Float64("retention", meta.Stats.RetentionRate),
	)
	return meta
}

func (b *Builder) threshold() float64 {
	if b.quality.Threshold > 0 {
		return b.quality.Threshold
	}
	return model.TierMediumThreshold
}

// filterQuality keeps candidates at or above the quality threshold. A missing
// score defaults to 0.5 and is dropped by the default threshold. When the
// heuristic gate is enabled, the heuristic score must also clear the bar.
func (b *Builder) filterQuality(pairs []model.CandidatePair) []model.CandidatePair {
	threshold := b.threshold()
	kept := make([]model.CandidatePair, 0, len(pairs))
	for _, p := range pairs {
		if p.QualityOrDefault() < threshold {
			continue
		}
		if b.heuristic != nil && b.heuristic.Score(p.Instruction, p.Input) < threshold {
			continue
		}
		kept = append(kept, p)
	}
	zap.L().Info("dataset: quality filter",
		zap.Int("kept", len(kept)),
		zap.Int("dropped", len(pairs)-len(kept)),
	)
	return kept
}

// deduplicate keeps the first occurrence of each normalized instruction, in
// original order. Later duplicates are discarded regardless of score. With
// fuzzy matching enabled, a candidate is also dropped when its instruction's
// word-set Jaccard similarity to a kept instruction reaches the configured
// similarity threshold.
func (b *Builder) deduplicate(pairs []model.CandidatePair) []model.CandidatePair {
	seen := make(map[string]struct{}, len(pairs))
	var keptNorms []string
	kept := make([]model.CandidatePair, 0, len(pairs))

	for _, p := range pairs {
		norm := strings.ToLower(strings.TrimSpace(p.Instruction))
		if _, dup := seen[norm]; dup {
			continue
		}
		if b.quality.FuzzyDedup && b.nearDuplicate(norm, keptNorms) {
			continue
		}
		seen[norm] = struct{}{}
		keptNorms = append(keptNorms, norm)
		kept = append(kept, p)
	}

	zap.L().Info("dataset: deduplication",
		zap.Int("kept", len(kept)),
		zap.Int("dropped", len(pairs)-len(kept)),
	)
	return kept
}

func (b *Builder) nearDuplicate(norm string, kept []string) bool {
	for _, k := range kept {
		if jaccard(norm, k) >= b.quality.SimilarityThreshold {
			return true
		}
	}
	return false
}

// jaccard computes word-set Jaccard similarity of two normalized strings.
func jaccard(a, b string) float64 {
	wa := strings.Fields(a)
	wb := strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(wa))
	for _, w := range wa {
		set[w] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(wb))
	for _, w := range wb {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := set[w]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// standardize maps surviving candidates into training pairs, dropping those
// that violate the minimum-length invariant. Length is measured on trimmed
// text, which is why the check lives here and not in the earlier stages.
func (b *Builder) standardize(pairs []model.CandidatePair) []model.TrainingPair {
	out := make([]model.TrainingPair, 0, len(pairs))
	for _, c := range pairs {
		p, ok := model.Standardize(c, uuid.NewString())
		if !ok {
			continue
		}
		out = append(out, p)
	}
	zap.L().Info("dataset: standardization",
		zap.Int("kept", len(out)),
		zap.Int("dropped", len(pairs)-len(out)),
	)
	return out
}

// tier partitions pairs by score. Membership is superset-inclusive:
// high ⊆ medium ⊆ all.
func (b *Builder) tier(pairs []model.TrainingPair) model.Tiers {
	t := model.Tiers{All: pairs}
	for _, p := range pairs {
		if p.QualityScore >= model.TierHighThreshold {
			t.High = append(t.High, p)
		}
		if p.QualityScore >= model.TierMediumThreshold {
			t.Medium = append(t.Medium, p)
		}
	}
	zap.L().Info("dataset: tiers",
		zap.Int("high", len(t.High)),
		zap.Int("medium", len(t.Medium)),
		zap.Int("all", len(t.All)),
	)
	return t
}

// retention guards the divide-by-zero when the original candidate count was
// already empty.
func retention(final, original int) float64 {
	if original < 1 {
		original = 1
	}
	return float64(final) / float64(original)
}
