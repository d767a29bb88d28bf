package otel

import (
	"context"
	"strings"

	"github.com/adrianliechti/narrator/pkg/scraper"

	"go.opentelemetry.io/otel"
)

type Scraper interface {
	Observable
	scraper.Provider
}

type observableScraper struct {
	provider string

	scraper scraper.Provider
}

func NewScraper(provider string, p scraper.Provider) Scraper {
	return &observableScraper{
		scraper: p,

		provider: strings.ToLower(provider),
	}
}

func (p *observableScraper) otelSetup() {
}

func (p *observableScraper) Scrape(ctx context.Context, source string, options *scraper.ScrapeOptions) (*scraper.Document, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "scrape "+p.provider)
	defer span.End()

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		span.SetAttributes(String("url.full", source))
	} else {
		span.SetAttributes(String("file.path", source))
	}

	result, err := p.scraper.Scrape(ctx, source, options)

	if result != nil {
		span.SetAttributes(
			String("narrator.document.title", result.Title),
			Int("narrator.document.chars", len(result.Text)),
		)
	}

	recordError(span, err)

	return result, err
}
