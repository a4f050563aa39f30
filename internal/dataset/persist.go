package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/model"
)

// Persister writes tier files and dataset metadata under an output root.
// The high and medium tiers are written; the all tier feeds statistics only.
type Persister struct {
	outputDir string
}

// NewPersister creates a Persister rooted at outputDir.
func NewPersister(outputDir string) *Persister {
	return &Persister{outputDir: outputDir}
}

// Persist writes one JSONL file per non-empty persisted tier, named
// <name>_<tier>.jsonl, and returns the tier → path mapping. Empty tiers are
// skipped, not written as empty files.
func (p *Persister) Persist(ctx context.Context, tiers model.Tiers, name string) (map[string]string, error) {
	files := make(map[string]string)
	for _, t := range []struct {
		tier  string
		pairs []model.TrainingPair
	}{
		{"high", tiers.High},
		{"medium", tiers.Medium},
	} {
		if len(t.pairs) == 0 {
			continue
		}
		path := filepath.Join(p.outputDir, fmt.Sprintf("%s_%s.jsonl", name, t.tier))
		if err := p.writeJSONL(ctx, path, t.pairs); err != nil {
			return nil, eris.Wrapf(err, "dataset: write %s tier", t.tier)
		}
		files[t.tier] = path
		zap.L().Info("dataset: tier written",
			zap.String("tier", t.tier),
			zap.Int("pairs", len(t.pairs)),
			zap.String("path", path),
		)
	}
	return files, nil
}

// WriteMetadata persists the dataset metadata record as <name>_metadata.json.
func (p *Persister) WriteMetadata(_ context.Context, meta *model.DatasetMeta) error {
	path := filepath.Join(p.outputDir, fmt.Sprintf("%s_metadata.json", meta.Name))
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return eris.Wrap(err, "dataset: marshal metadata")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "dataset: write metadata")
	}
	return nil
}

func (p *Persister) writeJSONL(ctx context.Context, path string, pairs []model.TrainingPair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, pair := range pairs {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "write cancelled")
		}
		if err := enc.Encode(pair); err != nil {
			return eris.Wrap(err, "encode pair")
		}
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "flush")
	}
	return nil
}
