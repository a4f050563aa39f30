package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/internal/model"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestChunkSingleWindow(t *testing.T) {
	c := New(config.ChunkerConfig{SizeWords: 800, OverlapWords: 100, MinChunkLen: 50})
	res := &model.Resource{ID: "r1", Content: words(500)}

	chunks := c.Chunk(res)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Seq)
	assert.Equal(t, 0, chunks[0].StartWord)
	assert.Equal(t, 500, chunks[0].EndWord)
	assert.Equal(t, res.Content, chunks[0].Content)
	assert.Equal(t, "r1", chunks[0].ResourceID)
}

func TestChunkOverlappingWindows(t *testing.T) {
	c := New(config.ChunkerConfig{SizeWords: 800, OverlapWords: 100, MinChunkLen: 50})
	res := &model.Resource{ID: "r1", Content: words(1600)}

	chunks := c.Chunk(res)

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].StartWord)
	assert.Equal(t, 800, chunks[0].EndWord)
	assert.Equal(t, 700, chunks[1].StartWord)
	assert.Equal(t, 1500, chunks[1].EndWord)
	assert.Equal(t, 1400, chunks[2].StartWord)
	assert.Equal(t, 1600, chunks[2].EndWord)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Seq)
	}
}

func TestChunkCoversAllWords(t *testing.T) {
	c := New(config.ChunkerConfig{SizeWords: 100, OverlapWords: 20, MinChunkLen: 10})
	res := &model.Resource{ID: "r1", Content: words(437)}

	chunks := c.Chunk(res)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].StartWord)
	assert.Equal(t, 437, chunks[len(chunks)-1].EndWord)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartWord, chunks[i-1].EndWord,
			"window %d must start at or before the previous window's end", i)
	}
}

func TestChunkDropsShortTrailingWindow(t *testing.T) {
	// 161 words of one rune each with stride 80: the final window starts at
	// word 160 and renders a single character, below the minimum length.
	content := strings.TrimSpace(strings.Repeat("a ", 161))
	c := New(config.ChunkerConfig{SizeWords: 100, OverlapWords: 20, MinChunkLen: 10})

	chunks := c.Chunk(&model.Resource{ID: "r1", Content: content})

	require.Len(t, chunks, 2)
	assert.Equal(t, 161, chunks[1].EndWord)
}

func TestChunkKeepsWindowAtMinLength(t *testing.T) {
	// The trailing window renders exactly MinChunkLen characters and must
	// survive the floor.
	content := words(160) + " abc"
	c := New(config.ChunkerConfig{SizeWords: 100, OverlapWords: 20, MinChunkLen: 3})

	chunks := c.Chunk(&model.Resource{ID: "r1", Content: content})

	require.Len(t, chunks, 3)
	assert.Equal(t, "abc", chunks[2].Content)
	assert.Equal(t, 160, chunks[2].StartWord)
}

func TestChunkMetadataCopied(t *testing.T) {
	c := New(config.ChunkerConfig{})
	res := &model.Resource{
		ID:       "r1",
		Content:  "short content here",
		Metadata: model.ResourceMeta{Title: "t", Status: model.StatusSuccess},
	}

	chunks := c.Chunk(res)

	require.Len(t, chunks, 1)
	assert.Equal(t, "t", chunks[0].Metadata.Title)
	assert.Equal(t, len(chunks[0].Content), chunks[0].Metadata.ContentLength)
}

func TestNewDefaults(t *testing.T) {
	c := New(config.ChunkerConfig{})
	assert.Equal(t, 800, c.size)
	assert.Equal(t, 100, c.overlap)
	assert.Equal(t, 50, c.minLen)
}

func TestNewClampsOverlapForSmallWindows(t *testing.T) {
	// A window smaller than the default overlap must still leave a positive
	// stride.
	c := New(config.ChunkerConfig{SizeWords: 40})
	assert.Equal(t, 5, c.overlap)
	assert.Less(t, c.overlap, c.size)
}
