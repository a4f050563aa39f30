package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusforge/datagen/pkg/youtube"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"https://www.youtube.com/feed/subscriptions", ""},
		{"not a url at all", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VideoID(tt.url), "url: %s", tt.url)
	}
}

func TestYouTubeScraperSupports(t *testing.T) {
	y := NewYouTubeScraper(nil)

	assert.True(t, y.Supports("https://youtu.be/dQw4w9WgXcQ"))
	assert.False(t, y.Supports("https://example.com/article"))
}

// fakeVideoClient serves canned metadata and transcripts.
type fakeVideoClient struct {
	meta       *youtube.Metadata
	metaErr    error
	transcript string
	trErr      error
}

func (f *fakeVideoClient) Metadata(context.Context, string) (*youtube.Metadata, error) {
	return f.meta, f.metaErr
}

func (f *fakeVideoClient) Transcript(context.Context, string) (string, error) {
	return f.transcript, f.trErr
}

func TestYouTubeScraperPrefersTranscript(t *testing.T) {
	y := &YouTubeScraper{client: &fakeVideoClient{
		meta:       &youtube.Metadata{Title: "Talk", AuthorName: "Chan", Description: "ignored", DurationSec: 90},
		transcript: "[Music] the talk covers distributed tracing",
	}}

	page, err := y.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "Talk", page.Title)
	assert.Contains(t, page.Content, "the talk covers distributed tracing")
	assert.NotContains(t, page.Content, "[Music]")
	assert.Equal(t, "90", page.Extra["duration_seconds"])
}

func TestYouTubeScraperFallsBackToCleanedDescription(t *testing.T) {
	y := &YouTubeScraper{client: &fakeVideoClient{
		meta: &youtube.Metadata{
			Title:      "Talk",
			AuthorName: "Chan",
			Description: "A deep dive into connection pooling strategies.\n" +
				"Subscribe for more videos every week!\n" +
				"The second half covers retry budgets and load shedding.",
		},
		trErr: assert.AnError,
	}}

	page, err := y.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Contains(t, page.Content, "connection pooling strategies")
	assert.Contains(t, page.Content, "retry budgets")
	assert.NotContains(t, page.Content, "Subscribe")
	assert.Equal(t, "unavailable", page.Extra["transcript"])
	assert.Equal(t, "description", page.Extra["source"])
}

func TestYouTubeScraperTitleOnlyLastResort(t *testing.T) {
	y := &YouTubeScraper{client: &fakeVideoClient{
		meta:  &youtube.Metadata{Title: "Talk", AuthorName: "Chan"},
		trErr: assert.AnError,
	}}

	page, err := y.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Contains(t, page.Content, "Talk")
	assert.Contains(t, page.Content, "[Transcript unavailable]")
}

func TestYouTubeScraperNothingAvailable(t *testing.T) {
	y := &YouTubeScraper{client: &fakeVideoClient{
		metaErr: assert.AnError,
		trErr:   assert.AnError,
	}}

	_, err := y.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	assert.Error(t, err)
}
