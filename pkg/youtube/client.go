// Package youtube fetches video transcripts and metadata without an API key,
// using the public timedtext and oEmbed endpoints.
package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Metadata is the video metadata the pipeline records. Title and AuthorName
// come from oEmbed; Description and DurationSec come from the watch page's
// embedded player data, which oEmbed does not expose.
type Metadata struct {
	Title       string `json:"title"`
	AuthorName  string `json:"author_name"`
	Description string `json:"-"`
	DurationSec int    `json:"-"`
}

// Client talks to YouTube's public endpoints.
type Client struct {
	http *http.Client
}

// NewClient creates a Client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// WithHTTPClient swaps the underlying HTTP client, for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Metadata fetches title and author via oEmbed, then enriches the result
// with description and duration from the watch page. A failure is non-fatal
// for callers; the enrichment step in particular degrades silently.
func (c *Client) Metadata(ctx context.Context, videoID string) (*Metadata, error) {
	u := "https://www.youtube.com/oembed?format=json&url=" +
		url.QueryEscape("https://www.youtube.com/watch?v="+videoID)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: fetch oembed")
	}

	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, eris.Wrap(err, "youtube: decode oembed")
	}

	page, err := c.get(ctx, "https://www.youtube.com/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		zap.L().Debug("youtube: watch page fetch failed",
			zap.String("video_id", videoID), zap.Error(err))
	} else {
		meta.Description, meta.DurationSec = parsePlayerMetadata(page)
	}
	return &meta, nil
}

var (
	descriptionRe = regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)*)"`)
	lengthRe      = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
)

// parsePlayerMetadata pulls the description and duration out of the player
// response JSON embedded in the watch page HTML. Both fields are optional.
func parsePlayerMetadata(page []byte) (string, int) {
	var desc string
	if m := descriptionRe.FindSubmatch(page); m != nil {
		// the capture is a JSON string body; decode its escapes
		var s string
		if err := json.Unmarshal([]byte(`"`+string(m[1])+`"`), &s); err == nil {
			desc = s
		}
	}
	secs := 0
	if m := lengthRe.FindSubmatch(page); m != nil {
		secs, _ = strconv.Atoi(string(m[1]))
	}
	return desc, secs
}

// trackList is the timedtext track listing.
type trackList struct {
	Tracks []track `xml:"track"`
}

type track struct {
	LangCode string `xml:"lang_code,attr"`
	Kind     string `xml:"kind,attr"`
	Name     string `xml:"name,attr"`
}

// transcriptDoc is a single timedtext transcript.
type transcriptDoc struct {
	Texts []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript fetches the video's caption text, preferring manual English
// captions, then auto-generated English, then the first available track.
// Returns an error when the video has no caption tracks at all.
func (c *Client) Transcript(ctx context.Context, videoID string) (string, error) {
	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", eris.Errorf("youtube: no caption tracks for video %s", videoID)
	}

	chosen := pickTrack(tracks)
	zap.L().Debug("youtube: caption track selected",
		zap.String("video_id", videoID),
		zap.String("lang", chosen.LangCode),
		zap.String("kind", chosen.Kind),
	)

	return c.fetchTrack(ctx, videoID, chosen)
}

func (c *Client) listTracks(ctx context.Context, videoID string) ([]track, error) {
	u := fmt.Sprintf("https://video.google.com/timedtext?type=list&v=%s", url.QueryEscape(videoID))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: list caption tracks")
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, eris.Wrap(err, "youtube: decode track list")
	}
	return list.Tracks, nil
}

// pickTrack applies the language preference order.
func pickTrack(tracks []track) track {
	for _, t := range tracks {
		if strings.HasPrefix(t.LangCode, "en") && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LangCode, "en") {
			return t
		}
	}
	return tracks[0]
}

func (c *Client) fetchTrack(ctx context.Context, videoID string, t track) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", t.LangCode)
	if t.Kind != "" {
		q.Set("kind", t.Kind)
	}
	if t.Name != "" {
		q.Set("name", t.Name)
	}
	u := "https://video.google.com/timedtext?" + q.Encode()

	body, err := c.get(ctx, u)
	if err != nil {
		return "", eris.Wrap(err, "youtube: fetch transcript")
	}

	var doc transcriptDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", eris.Wrap(err, "youtube: decode transcript")
	}

	var sb strings.Builder
	for _, t := range doc.Texts {
		s := strings.TrimSpace(html.UnescapeString(t.Body))
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}
	if sb.Len() == 0 {
		return "", eris.Errorf("youtube: empty transcript for video %s", videoID)
	}
	return sb.String(), nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
