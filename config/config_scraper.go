package config

import (
	"errors"
	"time"

	"github.com/adrianliechti/narrator/pkg/limiter"
	"github.com/adrianliechti/narrator/pkg/otel"
	"github.com/adrianliechti/narrator/pkg/scraper"
	"github.com/adrianliechti/narrator/pkg/scraper/auto"
	"github.com/adrianliechti/narrator/pkg/scraper/file"
	"github.com/adrianliechti/narrator/pkg/scraper/html"
)

type scraperConfig struct {
	UserAgent string   `yaml:"user_agent"`
	Selectors []string `yaml:"selectors"`

	Timeout time.Duration `yaml:"timeout"`

	Limit *int `yaml:"limit"`
}

func (cfg *Config) RegisterScraper(p scraper.Provider) {
	cfg.scraper = p
}

func (cfg *Config) Scraper() (scraper.Provider, error) {
	if cfg.scraper == nil {
		return nil, errors.New("scraper not configured")
	}

	return cfg.scraper, nil
}

func (cfg *Config) registerScraper(f *configFile) error {
	config := f.Scraper

	web, err := htmlScraper(config)

	if err != nil {
		return err
	}

	local, err := file.New()

	if err != nil {
		return err
	}

	var scraper scraper.Provider

	scraper, err = auto.New(
		limiter.NewScraper(createLimiter(config.Limit), web),
		local,
	)

	if err != nil {
		return err
	}

	if _, ok := scraper.(otel.Scraper); !ok {
		scraper = otel.NewScraper("auto", scraper)
	}

	cfg.RegisterScraper(scraper)

	return nil
}

func htmlScraper(cfg scraperConfig) (scraper.Provider, error) {
	options := []html.Option{
		html.WithClient(createClient(cfg.Timeout)),
	}

	if cfg.UserAgent != "" {
		options = append(options, html.WithUserAgent(cfg.UserAgent))
	}

	if len(cfg.Selectors) > 0 {
		options = append(options, html.WithSelectors(cfg.Selectors...))
	}

	return html.New(options...)
}
