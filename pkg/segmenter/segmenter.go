package segmenter

import (
	"context"
	"errors"
)

type Provider interface {
	Segment(ctx context.Context, input string, options *SegmentOptions) ([]Segment, error)
}

var (
	ErrInvalidLength = errors.New("segment length must be positive")
)

type SegmentOptions struct {
	SegmentLength *int
}

// Segment is a contiguous piece of the input text. Index is its
// zero-based position in the sequence the provider produced.
type Segment struct {
	Index int
	Text  string
}
