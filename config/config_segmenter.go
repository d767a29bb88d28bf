package config

import (
	"errors"
	"strings"

	"github.com/adrianliechti/narrator/pkg/otel"
	"github.com/adrianliechti/narrator/pkg/segmenter"
	"github.com/adrianliechti/narrator/pkg/segmenter/paragraph"
	"github.com/adrianliechti/narrator/pkg/segmenter/word"
)

type segmenterConfig struct {
	Type string `yaml:"type"`

	MaxChars int `yaml:"max_chars"`
}

func (cfg *Config) RegisterSegmenter(p segmenter.Provider) {
	cfg.segmenter = p
}

func (cfg *Config) Segmenter() (segmenter.Provider, error) {
	if cfg.segmenter == nil {
		return nil, errors.New("segmenter not configured")
	}

	return cfg.segmenter, nil
}

func (cfg *Config) registerSegmenter(f *configFile) error {
	config := f.Segmenter

	segmenter, err := createSegmenter(config)

	if err != nil {
		return err
	}

	if _, ok := segmenter.(otel.Segmenter); !ok {
		segmenter = otel.NewSegmenter(strings.ToLower(config.Type), segmenter)
	}

	cfg.segmentLength = config.MaxChars
	cfg.RegisterSegmenter(segmenter)

	return nil
}

func createSegmenter(cfg segmenterConfig) (segmenter.Provider, error) {
	switch strings.ToLower(cfg.Type) {
	case "word", "words", "":
		return word.New(word.WithLength(cfg.MaxChars))

	case "paragraph", "paragraphs", "line", "lines":
		return paragraph.New()

	default:
		return nil, errors.New("invalid segmenter type: " + cfg.Type)
	}
}
