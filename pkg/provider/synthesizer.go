package provider

import (
	"context"
)

// Synthesizer turns one piece of text into encoded audio. Implementations
// make exactly one remote call per invocation and leave retries to the caller.
type Synthesizer interface {
	Synthesize(ctx context.Context, input string, options *SynthesizeOptions) (*Synthesis, error)
}

type SynthesizeOptions struct {
	Voice string
	Speed *float32

	// Instructions steer tone and delivery on models that support it.
	Instructions string

	// Format is the requested container, e.g. mp3 or wav.
	Format string
}

type Synthesis struct {
	ID    string
	Model string

	Content     []byte
	ContentType string
}
