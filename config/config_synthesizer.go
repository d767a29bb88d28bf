package config

import (
	"errors"
	"strings"

	"github.com/adrianliechti/narrator/pkg/limiter"
	"github.com/adrianliechti/narrator/pkg/otel"
	"github.com/adrianliechti/narrator/pkg/provider"
	"github.com/adrianliechti/narrator/pkg/provider/openai"
)

type synthesizerConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Model string  `yaml:"model"`
	Voice string  `yaml:"voice"`
	Speed float32 `yaml:"speed"`

	Instructions string `yaml:"instructions"`

	Limit *int `yaml:"limit"`
}

func (cfg *Config) RegisterSynthesizer(p provider.Synthesizer) {
	cfg.synthesizer = p
}

func (cfg *Config) Synthesizer() (provider.Synthesizer, error) {
	if cfg.synthesizer == nil {
		return nil, errors.New("synthesizer not configured")
	}

	return cfg.synthesizer, nil
}

func (cfg *Config) registerSynthesizer(f *configFile) error {
	config := f.Synthesizer

	synthesizer, err := createSynthesizer(config)

	if err != nil {
		return err
	}

	if _, ok := synthesizer.(limiter.Synthesizer); !ok {
		synthesizer = limiter.NewSynthesizer(createLimiter(config.Limit), synthesizer)
	}

	if _, ok := synthesizer.(otel.Synthesizer); !ok {
		synthesizer = otel.NewSynthesizer(config.Type, config.Model, synthesizer)
	}

	speed := config.Speed

	cfg.synthesize = provider.SynthesizeOptions{
		Voice: config.Voice,
		Speed: &speed,

		Instructions: config.Instructions,
	}

	cfg.RegisterSynthesizer(synthesizer)

	return nil
}

func createSynthesizer(cfg synthesizerConfig) (provider.Synthesizer, error) {
	switch strings.ToLower(cfg.Type) {
	case "openai", "openai-compatible":
		return openaiSynthesizer(cfg)

	default:
		return nil, errors.New("invalid synthesizer type: " + cfg.Type)
	}
}

func openaiSynthesizer(cfg synthesizerConfig) (provider.Synthesizer, error) {
	if cfg.Token == "" && cfg.URL == "" {
		return nil, errors.New("missing synthesizer token: set OPENAI_API_KEY")
	}

	options := []openai.Option{
		openai.WithClient(createClient(0)),
	}

	if cfg.Token != "" {
		options = append(options, openai.WithToken(cfg.Token))
	}

	return openai.NewSynthesizer(cfg.URL, cfg.Model, options...)
}
