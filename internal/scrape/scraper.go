// Package scrape fetches readable text from the web. A chain of scrapers is
// tried in priority order; specialized scrapers (video transcripts) sit in
// front of the generic HTML scraper.
package scrape

import "context"

// Page is a scraped page reduced to readable text.
type Page struct {
	URL     string
	Title   string
	Author  string
	Content string
	Extra   map[string]string
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
	Supports(url string) bool
}
