package openai

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/adrianliechti/narrator/pkg/provider"

	"github.com/openai/openai-go/v3"
)

const (
	DefaultModel = "tts-1"
	DefaultVoice = "alloy"
)

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		return &provider.StatusError{
			StatusCode: apierr.StatusCode,
			Message:    apierr.Message,
		}
	}

	return fmt.Errorf("speech request failed: %w", err)
}

func contentType(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "opus":
		return "audio/opus"
	case "aac":
		return "audio/aac"
	case "flac":
		return "audio/flac"
	case "pcm":
		return "audio/pcm"
	}

	return "audio/mpeg"
}

// speed widens a float32 by its shortest decimal form, so 1.1 stays 1.1
// instead of 1.100000023841858.
func speed(v float32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', -1, 32), 64)

	if err != nil {
		return float64(v)
	}

	return f
}
