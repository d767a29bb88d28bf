package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func applyEnv(f *configFile) error {
	for _, key := range []string{"OPENAI_API_KEY", "NARRATOR_API_KEY"} {
		if val, ok := lookupEnv(key); ok {
			f.Synthesizer.Token = val
		}
	}

	if val, ok := lookupEnv("NARRATOR_SYNTHESIZER_URL"); ok {
		f.Synthesizer.URL = val
	}

	if val, ok := lookupEnv("NARRATOR_MODEL"); ok {
		f.Synthesizer.Model = val
	}

	if val, ok := lookupEnv("NARRATOR_VOICE"); ok {
		f.Synthesizer.Voice = val
	}

	if val, ok := lookupEnv("NARRATOR_SEGMENTER"); ok {
		f.Segmenter.Type = val
	}

	if val, ok := lookupEnv("NARRATOR_FORMAT"); ok {
		f.Audio.Format = val
	}

	if val, ok := lookupEnv("NARRATOR_FFMPEG"); ok {
		f.Audio.FFmpeg = val
	}

	if val, ok := lookupEnv("NARRATOR_OUTPUT_DIR"); ok {
		f.Output.Dir = val
	}

	if val, ok := lookupEnv("NARRATOR_ADDRESS"); ok {
		f.Address = val
	}

	if err := envFloat("NARRATOR_SPEED", &f.Synthesizer.Speed); err != nil {
		return err
	}

	if val, ok := lookupEnv("NARRATOR_RATE_LIMIT"); ok {
		limit, err := strconv.Atoi(val)

		if err != nil {
			return fmt.Errorf("NARRATOR_RATE_LIMIT: %w", err)
		}

		f.Synthesizer.Limit = &limit
	}

	ints := map[string]*int{
		"NARRATOR_MAX_SEGMENT_CHARS": &f.Segmenter.MaxChars,
		"NARRATOR_CONCURRENCY":       &f.Dispatcher.Concurrency,
		"NARRATOR_RETRIES":           &f.Dispatcher.Retries,
		"NARRATOR_SILENCE_MS":        &f.Audio.SilenceMS,
	}

	for key, target := range ints {
		if err := envInt(key, target); err != nil {
			return err
		}
	}

	durations := map[string]*time.Duration{
		"NARRATOR_BACKOFF": &f.Dispatcher.Backoff,
		"NARRATOR_TIMEOUT": &f.Dispatcher.Timeout,
	}

	for key, target := range durations {
		if err := envDuration(key, target); err != nil {
			return err
		}
	}

	return nil
}

func lookupEnv(key string) (string, bool) {
	val, ok := os.LookupEnv(key)

	if !ok {
		return "", false
	}

	val = strings.TrimSpace(val)

	return val, val != ""
}

func envInt(key string, target *int) error {
	val, ok := lookupEnv(key)

	if !ok {
		return nil
	}

	n, err := strconv.Atoi(val)

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*target = n

	return nil
}

func envFloat(key string, target *float32) error {
	val, ok := lookupEnv(key)

	if !ok {
		return nil
	}

	n, err := strconv.ParseFloat(val, 32)

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*target = float32(n)

	return nil
}

func envDuration(key string, target *time.Duration) error {
	val, ok := lookupEnv(key)

	if !ok {
		return nil
	}

	d, err := time.ParseDuration(val)

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*target = d

	return nil
}
