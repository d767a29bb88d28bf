package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/provider"
	"github.com/adrianliechti/narrator/pkg/scraper"
	"github.com/adrianliechti/narrator/pkg/segmenter"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Address string

	OutputDir string

	synthesizer provider.Synthesizer
	synthesize  provider.SynthesizeOptions

	scraper scraper.Provider

	segmenter     segmenter.Provider
	segmentLength int

	codec   audio.Codec
	silence time.Duration

	dispatch dispatcherConfig
}

// Option overrides a setting after the file and the environment are applied.
type Option func(*configFile)

// WithSegmenter selects the segmentation policy (word or paragraph).
// An empty kind keeps the configured one.
func WithSegmenter(kind string) Option {
	return func(f *configFile) {
		if kind != "" {
			f.Segmenter.Type = kind
		}
	}
}

// Parse reads the configuration file at path. An empty path uses the
// defaults. Environment variables override file values, and options
// override both.
func Parse(path string, options ...Option) (*Config, error) {
	file := defaultFile()

	if path != "" {
		if err := parseFile(path, file); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(file); err != nil {
		return nil, err
	}

	for _, option := range options {
		option(file)
	}

	if err := file.validate(); err != nil {
		return nil, err
	}

	c := &Config{
		Address: file.Address,

		OutputDir: file.Output.Dir,

		dispatch: file.Dispatcher,
	}

	if err := c.registerSynthesizer(file); err != nil {
		return nil, err
	}

	if err := c.registerScraper(file); err != nil {
		return nil, err
	}

	if err := c.registerSegmenter(file); err != nil {
		return nil, err
	}

	if err := c.registerCodec(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	Synthesizer synthesizerConfig `yaml:"synthesizer"`
	Scraper     scraperConfig     `yaml:"scraper"`
	Segmenter   segmenterConfig   `yaml:"segmenter"`
	Dispatcher  dispatcherConfig  `yaml:"dispatcher"`
	Audio       audioConfig       `yaml:"audio"`
	Output      outputConfig      `yaml:"output"`
}

type outputConfig struct {
	Dir string `yaml:"dir"`
}

func defaultFile() *configFile {
	return &configFile{
		Address: ":8080",

		Synthesizer: synthesizerConfig{
			Type:  "openai",
			Model: "tts-1",
			Voice: "alloy",
			Speed: 1.1,
		},

		Scraper: scraperConfig{
			Timeout: 60 * time.Second,
		},

		Segmenter: segmenterConfig{
			Type:     "word",
			MaxChars: 4096,
		},

		Dispatcher: dispatcherConfig{
			Concurrency: 4,
			Retries:     3,

			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,

			Timeout: 2 * time.Minute,
		},

		Audio: audioConfig{
			Format: "mp3",
			FFmpeg: "ffmpeg",

			SampleRate: audio.DefaultFormat.SampleRate,
			Channels:   audio.DefaultFormat.Channels,

			SilenceMS: 350,
			Bitrate:   "128k",
		},

		Output: outputConfig{
			Dir: "output",
		},
	}
}

func parseFile(path string, config *configFile) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	data = []byte(os.ExpandEnv(string(data)))

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(config); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

func (f *configFile) validate() error {
	var errs []error

	if f.Segmenter.MaxChars < 1 {
		errs = append(errs, errors.New("segmenter.max_chars must be positive"))
	}

	if f.Dispatcher.Concurrency < 0 {
		errs = append(errs, errors.New("dispatcher.concurrency must not be negative"))
	}

	if f.Dispatcher.Retries < 0 {
		errs = append(errs, errors.New("dispatcher.retries must not be negative"))
	}

	if f.Dispatcher.Timeout < 0 || f.Dispatcher.Backoff < 0 || f.Dispatcher.MaxBackoff < 0 {
		errs = append(errs, errors.New("dispatcher durations must not be negative"))
	}

	if f.Audio.SilenceMS < 0 {
		errs = append(errs, errors.New("audio.silence_ms must not be negative"))
	}

	if f.Audio.SampleRate < 1 || f.Audio.Channels < 1 {
		errs = append(errs, errors.New("audio.sample_rate and audio.channels must be positive"))
	}

	if f.Synthesizer.Speed < 0.25 || f.Synthesizer.Speed > 4 {
		errs = append(errs, errors.New("synthesizer.speed must be between 0.25 and 4"))
	}

	if f.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must not be empty"))
	}

	return errors.Join(errs...)
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}

func createClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
