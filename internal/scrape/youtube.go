package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/pkg/youtube"
)

// videoClient is the slice of pkg/youtube the scraper needs.
type videoClient interface {
	Metadata(ctx context.Context, videoID string) (*youtube.Metadata, error)
	Transcript(ctx context.Context, videoID string) (string, error)
}

// YouTubeScraper handles video URLs, preferring the caption transcript over
// anything scrapeable from the watch page.
type YouTubeScraper struct {
	client videoClient
}

// NewYouTubeScraper creates a YouTubeScraper.
func NewYouTubeScraper(client *youtube.Client) *YouTubeScraper {
	return &YouTubeScraper{client: client}
}

func (y *YouTubeScraper) Name() string { return "youtube" }

func (y *YouTubeScraper) Supports(rawURL string) bool {
	return VideoID(rawURL) != ""
}

// VideoID extracts the video identifier from the URL forms YouTube serves:
// watch?v=, youtu.be/, /embed/, /shorts/, and the mobile host. Returns ""
// for anything else.
func VideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/v/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				if i := strings.IndexByte(rest, '/'); i >= 0 {
					rest = rest[:i]
				}
				return rest
			}
		}
	}
	return ""
}

// Scrape fetches the video transcript and metadata. When captions are
// unavailable the cleaned video description stands in as content; the
// title-only placeholder is the last resort when both are empty.
func (y *YouTubeScraper) Scrape(ctx context.Context, rawURL string) (*Page, error) {
	id := VideoID(rawURL)
	if id == "" {
		return nil, eris.Errorf("youtube: not a video url: %s", rawURL)
	}

	var title, author, description string
	var durationSec int
	meta, err := y.client.Metadata(ctx, id)
	if err != nil {
		zap.L().Debug("youtube: metadata fetch failed", zap.String("video_id", id), zap.Error(err))
	} else {
		title = meta.Title
		author = meta.AuthorName
		description = CleanDescription(meta.Description)
		durationSec = meta.DurationSec
	}

	extra := map[string]string{"scraper": y.Name(), "video_id": id}
	if durationSec > 0 {
		extra["duration_seconds"] = strconv.Itoa(durationSec)
	}

	transcript, err := y.client.Transcript(ctx, id)
	if err != nil {
		if description != "" {
			zap.L().Info("youtube: transcript unavailable, using description",
				zap.String("video_id", id), zap.Error(err))
			extra["transcript"] = "unavailable"
			extra["source"] = "description"
			return &Page{
				URL:     rawURL,
				Title:   title,
				Author:  author,
				Content: description,
				Extra:   extra,
			}, nil
		}
		if title == "" {
			return nil, eris.Wrapf(err, "youtube: no transcript or metadata for %s", id)
		}
		zap.L().Info("youtube: transcript unavailable, using metadata only",
			zap.String("video_id", id), zap.Error(err))
		extra["transcript"] = "unavailable"
		return &Page{
			URL:     rawURL,
			Title:   title,
			Author:  author,
			Content: fmt.Sprintf("Video: %s\nChannel: %s\n[Transcript unavailable]", title, author),
			Extra:   extra,
		}, nil
	}

	return &Page{
		URL:     rawURL,
		Title:   title,
		Author:  author,
		Content: CleanTranscript(transcript),
		Extra:   extra,
	}, nil
}
