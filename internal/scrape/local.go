package scrape

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/corpusforge/datagen/internal/config"
)

// contentSelectors are tried in order; the first match with substantial text
// wins. Semantic containers come first, then common CMS class and id names.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".content", ".post-content", ".entry-content", ".article-content",
	".post", ".article", ".blog-post",
	"#content", "#main-content", "#primary-content",
}

// minSelectorText is the minimum text length for a selector match to count
// as the page's main content.
const minSelectorText = 200

// LocalScraper fetches HTML via net/http and extracts the main content with
// a CSS selector chain. Requests to the same host are rate limited.
type LocalScraper struct {
	client     *http.Client
	maxContent int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalScraper creates a LocalScraper from config.
func NewLocalScraper(cfg config.ScrapeConfig) *LocalScraper {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxContent := cfg.MaxContentLength
	if maxContent <= 0 {
		maxContent = 15000
	}
	return &LocalScraper{
		client:     &http.Client{Timeout: timeout},
		maxContent: maxContent,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (l *LocalScraper) Name() string           { return "local_html" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL and reduces it to readable text.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "local_html: parse url")
	}
	if err := l.limiter(u.Host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "local_html: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_html: create request")
	}
	// Browser-like headers: many sites serve stripped or blocked pages to
	// obvious bots.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_html: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_html: status %d for %s", resp.StatusCode, targetURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "local_html: parse html")
	}

	doc.Find("script, style, noscript, iframe, nav, footer, header, aside").Remove()

	content := extractMainContent(doc)
	content = CleanWebContent(content)
	content = TruncateAtSentence(content, l.maxContent)
	if strings.TrimSpace(content) == "" {
		return nil, eris.Errorf("local_html: no readable content at %s", targetURL)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	author := extractAuthor(doc)

	zap.L().Debug("scrape: page extracted",
		zap.String("url", targetURL),
		zap.Int("content_length", len(content)),
	)

	extra := map[string]string{"scraper": l.Name()}
	if p := platformTag(u.Host); p != "" {
		extra["platform"] = p
	}

	return &Page{
		URL:     targetURL,
		Title:   title,
		Author:  author,
		Content: content,
		Extra:   extra,
	}, nil
}

// platformTag labels known video platforms so downstream consumers can tell
// a watch page from an article. Extraction itself stays generic.
func platformTag(host string) string {
	host = strings.ToLower(host)
	for _, p := range []string{"vimeo", "dailymotion", "twitch"} {
		if strings.Contains(host, p) {
			return p
		}
	}
	return ""
}

// extractMainContent walks the selector chain; when nothing substantial
// matches it falls back to paragraphs, then to all text-bearing elements.
func extractMainContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := nodeText(node); len(text) >= minSelectorText {
			return text
		}
	}

	var sb strings.Builder
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		appendBlock(&sb, s.Text())
	})
	if sb.Len() >= minSelectorText {
		return sb.String()
	}

	sb.Reset()
	doc.Find("h1, h2, h3, p, div").Each(func(_ int, s *goquery.Selection) {
		// Only leaf divs: container divs would duplicate their children.
		if goquery.NodeName(s) == "div" && s.Children().Length() > 0 {
			return
		}
		appendBlock(&sb, s.Text())
	})
	return sb.String()
}

func nodeText(node *goquery.Selection) string {
	var sb strings.Builder
	node.Find("h1, h2, h3, h4, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		appendBlock(&sb, s.Text())
	})
	if sb.Len() == 0 {
		appendBlock(&sb, node.Text())
	}
	return sb.String()
}

func appendBlock(sb *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(text)
}

var authorMetaNames = []string{
	`meta[name="author"]`,
	`meta[property="article:author"]`,
	`meta[name="twitter:creator"]`,
}

func extractAuthor(doc *goquery.Document) string {
	for _, sel := range authorMetaNames {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// limiter returns the per-host rate limiter, creating it on first use.
// One request per second with a small burst is polite enough for the
// single-resource and batch paths alike.
func (l *LocalScraper) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Second), 2)
		l.limiters[host] = lim
	}
	return lim
}
