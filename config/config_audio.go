package config

import (
	"errors"
	"strings"
	"time"

	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/audio/ffmpeg"
	"github.com/adrianliechti/narrator/pkg/audio/wav"
)

type audioConfig struct {
	Format string `yaml:"format"`
	FFmpeg string `yaml:"ffmpeg"`

	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`

	SilenceMS int    `yaml:"silence_ms"`
	Bitrate   string `yaml:"bitrate"`
}

func (cfg *Config) RegisterCodec(c audio.Codec) {
	cfg.codec = c
}

func (cfg *Config) Codec() (audio.Codec, error) {
	if cfg.codec == nil {
		return nil, errors.New("codec not configured")
	}

	return cfg.codec, nil
}

func (cfg *Config) registerCodec(f *configFile) error {
	codec, err := createCodec(f.Audio)

	if err != nil {
		return err
	}

	cfg.silence = time.Duration(f.Audio.SilenceMS) * time.Millisecond
	cfg.RegisterCodec(codec)

	return nil
}

func createCodec(cfg audioConfig) (audio.Codec, error) {
	switch strings.ToLower(cfg.Format) {
	case "mp3", "":
		var options []ffmpeg.Option

		options = append(options, ffmpeg.WithFormat(audio.Format{
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
		}))

		if cfg.Bitrate != "" {
			options = append(options, ffmpeg.WithBitrate(cfg.Bitrate))
		}

		return ffmpeg.New(cfg.FFmpeg, options...)

	case "wav":
		return wav.New(), nil

	default:
		return nil, errors.New("invalid audio format: " + cfg.Format)
	}
}
