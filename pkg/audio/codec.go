package audio

import (
	"context"
	"io"
)

type Codec interface {
	// Name is the container the codec reads and writes, as requested from the synthesizer.
	Name() string

	Extension() string
	ContentType() string

	Decode(ctx context.Context, data []byte) (*Clip, error)
	Encode(ctx context.Context, w io.WriteSeeker, clip *Clip) error
}
