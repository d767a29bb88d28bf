package config

import (
	"log/slog"
	"time"

	"github.com/adrianliechti/narrator/pkg/assembler"
	"github.com/adrianliechti/narrator/pkg/dispatcher"
	"github.com/adrianliechti/narrator/pkg/pipeline"
	"github.com/adrianliechti/narrator/pkg/sink"
)

type dispatcherConfig struct {
	Concurrency int `yaml:"concurrency"`
	Retries     int `yaml:"retries"`

	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`

	Timeout time.Duration `yaml:"timeout"`
}

// Pipeline wires the configured components into a narration pipeline.
func (cfg *Config) Pipeline(logger *slog.Logger, options ...pipeline.Option) (*pipeline.Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	synthesizer, err := cfg.Synthesizer()

	if err != nil {
		return nil, err
	}

	codec, err := cfg.Codec()

	if err != nil {
		return nil, err
	}

	segmenter, err := cfg.Segmenter()

	if err != nil {
		return nil, err
	}

	scraper, err := cfg.Scraper()

	if err != nil {
		return nil, err
	}

	synthesize := cfg.synthesize

	d, err := dispatcher.New(synthesizer, codec,
		dispatcher.WithConcurrency(cfg.dispatch.Concurrency),
		dispatcher.WithRetries(cfg.dispatch.Retries),
		dispatcher.WithBackoff(cfg.dispatch.Backoff, cfg.dispatch.MaxBackoff),
		dispatcher.WithTimeout(cfg.dispatch.Timeout),
		dispatcher.WithSynthesizeOptions(&synthesize),
		dispatcher.WithLogger(logger),
	)

	if err != nil {
		return nil, err
	}

	out, err := sink.New(cfg.OutputDir)

	if err != nil {
		return nil, err
	}

	a, err := assembler.New(codec, out,
		assembler.WithSilence(cfg.silence),
		assembler.WithLogger(logger),
	)

	if err != nil {
		return nil, err
	}

	options = append([]pipeline.Option{
		pipeline.WithScraper(scraper),
		pipeline.WithSegmentLength(cfg.segmentLength),
		pipeline.WithLogger(logger),
	}, options...)

	return pipeline.New(segmenter, d, a, options...)
}
