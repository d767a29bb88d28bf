package auto

import (
	"context"
	"errors"
	"strings"

	"github.com/adrianliechti/narrator/pkg/scraper"
)

var _ scraper.Provider = &Client{}

// Client sends http(s) sources to the web scraper and everything else to the file scraper.
type Client struct {
	web  scraper.Provider
	file scraper.Provider
}

func New(web, file scraper.Provider) (*Client, error) {
	if web == nil && file == nil {
		return nil, errors.New("no scraper configured")
	}

	return &Client{
		web:  web,
		file: file,
	}, nil
}

func (c *Client) Scrape(ctx context.Context, source string, options *scraper.ScrapeOptions) (*scraper.Document, error) {
	lower := strings.ToLower(source)

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if c.web == nil {
			return nil, scraper.ErrUnsupported
		}

		return c.web.Scrape(ctx, source, options)
	}

	if c.file == nil {
		return nil, scraper.ErrUnsupported
	}

	return c.file.Scrape(ctx, source, options)
}
