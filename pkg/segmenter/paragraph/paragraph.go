package paragraph

import (
	"context"
	"strings"

	"github.com/adrianliechti/narrator/pkg/segmenter"
)

var _ segmenter.Provider = &Provider{}

// Provider emits every non-blank line as one segment, unchanged.
type Provider struct {
}

type Option func(*Provider)

func New(options ...Option) (*Provider, error) {
	p := &Provider{}

	for _, option := range options {
		option(p)
	}

	return p, nil
}

func (p *Provider) Segment(ctx context.Context, input string, options *segmenter.SegmentOptions) ([]segmenter.Segment, error) {
	input = strings.ReplaceAll(input, "\r\n", "\n")

	segments := []segmenter.Segment{}

	for line := range strings.SplitSeq(input, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		segments = append(segments, segmenter.Segment{
			Index: len(segments),
			Text:  line,
		})
	}

	return segments, nil
}
