package scraper

import (
	"context"
	"errors"
)

// Provider fetches a source (a web page or a local file) and returns its
// readable text.
type Provider interface {
	Scrape(ctx context.Context, source string, options *ScrapeOptions) (*Document, error)
}

var (
	ErrUnsupported = errors.New("unsupported source")
)

type ScrapeOptions struct {
}

// Document is the narratable content of a source. Text holds one block per
// line, headings and paragraphs in reading order.
type Document struct {
	Title string
	Text  string
}
