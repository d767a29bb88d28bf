package word

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/adrianliechti/narrator/pkg/segmenter"
)

var _ segmenter.Provider = &Provider{}

const DefaultLength = 4096

// Provider packs whitespace-delimited words into segments of at most
// SegmentLength runes. A single word longer than the limit becomes its
// own segment.
type Provider struct {
	length int
}

type Option func(*Provider)

func WithLength(length int) Option {
	return func(p *Provider) {
		p.length = length
	}
}

func New(options ...Option) (*Provider, error) {
	p := &Provider{
		length: DefaultLength,
	}

	for _, option := range options {
		option(p)
	}

	if p.length < 1 {
		return nil, segmenter.ErrInvalidLength
	}

	return p, nil
}

func (p *Provider) Segment(ctx context.Context, input string, options *segmenter.SegmentOptions) ([]segmenter.Segment, error) {
	if options == nil {
		options = new(segmenter.SegmentOptions)
	}

	limit := p.length

	if options.SegmentLength != nil {
		limit = *options.SegmentLength
	}

	if limit < 1 {
		return nil, segmenter.ErrInvalidLength
	}

	segments := []segmenter.Segment{}

	var current strings.Builder
	var size int

	flush := func() {
		if size == 0 {
			return
		}

		segments = append(segments, segmenter.Segment{
			Index: len(segments),
			Text:  current.String(),
		})

		current.Reset()
		size = 0
	}

	for _, word := range strings.Fields(input) {
		n := utf8.RuneCountInString(word)

		if size > 0 && size+1+n > limit {
			flush()
		}

		if size > 0 {
			current.WriteByte(' ')
			size++
		}

		current.WriteString(word)
		size += n
	}

	flush()

	return segments, nil
}
