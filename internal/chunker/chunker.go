// Package chunker splits resource content into overlapping word windows for
// downstream generation.
package chunker

import (
	"strings"

	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/internal/model"
)

// Chunker produces overlap-aware chunks from a resource. Windows are measured
// in words; a trailing window rendering below MinChunkLen characters is
// discarded rather than emitted near-empty.
type Chunker struct {
	size    int
	overlap int
	minLen  int
}

// New creates a Chunker from config, falling back to defaults for zero values.
func New(cfg config.ChunkerConfig) *Chunker {
	c := &Chunker{size: cfg.SizeWords, overlap: cfg.OverlapWords, minLen: cfg.MinChunkLen}
	if c.size <= 0 {
		c.size = 800
	}
	if c.overlap <= 0 || c.overlap >= c.size {
		c.overlap = 100
	}
	if c.overlap >= c.size {
		// keep the stride positive when the window itself is small
		c.overlap = c.size / 8
	}
	if c.minLen <= 0 {
		c.minLen = 50
	}
	return c
}

// Chunk splits the resource into ordered chunks. Content at or below the
// window size yields a single chunk spanning the whole resource. Numbering is
// sequential from 0 with no gaps; each chunk carries the parent's ID and a
// copy of its metadata augmented with the word-offset range and rendered
// length.
func (c *Chunker) Chunk(res *model.Resource) []model.Chunk {
	words := strings.Fields(res.Content)

	var chunks []model.Chunk
	if len(words) <= c.size {
		chunks = append(chunks, c.build(res, res.Content, 0, 0, len(words)))
	} else {
		stride := c.size - c.overlap
		for start := 0; start < len(words); start += stride {
			end := start + c.size
			if end > len(words) {
				end = len(words)
			}
			text := strings.Join(words[start:end], " ")
			if len(strings.TrimSpace(text)) < c.minLen {
				continue
			}
			chunks = append(chunks, c.build(res, text, len(chunks), start, end))
		}
	}

	zap.L().Info("chunker: content split",
		zap.String("resource_id", res.ID),
		zap.Int("words", len(words)),
		zap.Int("chunks", len(chunks)),
	)
	return chunks
}

func (c *Chunker) build(res *model.Resource, text string, seq, start, end int) model.Chunk {
	meta := res.Metadata
	meta.ContentLength = len(text)
	return model.Chunk{
		ResourceID: res.ID,
		Seq:        seq,
		Content:    text,
		StartWord:  start,
		EndWord:    end,
		Metadata:   meta,
	}
}
