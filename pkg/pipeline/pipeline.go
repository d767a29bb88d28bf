package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/adrianliechti/narrator/pkg/assembler"
	"github.com/adrianliechti/narrator/pkg/dispatcher"
	"github.com/adrianliechti/narrator/pkg/otel"
	"github.com/adrianliechti/narrator/pkg/scraper"
	"github.com/adrianliechti/narrator/pkg/segmenter"
	"github.com/adrianliechti/narrator/pkg/sink"
	"github.com/adrianliechti/narrator/pkg/text"
)

type Stage string

const (
	StageFetching     Stage = "fetching"
	StageSegmenting   Stage = "segmenting"
	StageSynthesizing Stage = "synthesizing"
	StageAssembling   Stage = "assembling"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Output describes the artifact of a successful run.
type Output struct {
	Path  string
	Title string

	Segments []assembler.SegmentReport
	Silence  time.Duration

	Duration time.Duration
}

type Pipeline struct {
	scraper    scraper.Provider
	segmenter  segmenter.Provider
	dispatcher *dispatcher.Dispatcher
	assembler  *assembler.Assembler

	segmentLength *int
	normalize     bool

	onStage func(Stage)

	logger *slog.Logger
}

type Option func(*Pipeline)

// WithScraper enables Narrate. Synthesize works without one.
func WithScraper(scraper scraper.Provider) Option {
	return func(p *Pipeline) {
		p.scraper = scraper
	}
}

func WithSegmentLength(length int) Option {
	return func(p *Pipeline) {
		p.segmentLength = &length
	}
}

func WithNormalize(normalize bool) Option {
	return func(p *Pipeline) {
		p.normalize = normalize
	}
}

// WithStageObserver registers fn to be called on every stage transition.
func WithStageObserver(fn func(Stage)) Option {
	return func(p *Pipeline) {
		p.onStage = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func New(segmenter segmenter.Provider, dispatcher *dispatcher.Dispatcher, assembler *assembler.Assembler, options ...Option) (*Pipeline, error) {
	if segmenter == nil || dispatcher == nil || assembler == nil {
		return nil, errors.New("segmenter, dispatcher and assembler are required")
	}

	p := &Pipeline{
		segmenter:  segmenter,
		dispatcher: dispatcher,
		assembler:  assembler,

		normalize: true,

		logger: slog.Default(),
	}

	for _, option := range options {
		option(p)
	}

	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// Narrate fetches source and turns it into an audio file.
func (p *Pipeline) Narrate(ctx context.Context, source string) (*Output, error) {
	p.enter(StageFetching)

	if p.scraper == nil {
		return nil, p.fail(StageFetching, &FetchError{Source: source, Err: errors.New("no scraper configured")})
	}

	doc, err := p.scraper.Scrape(ctx, source, nil)

	if err != nil {
		return nil, p.fail(StageFetching, &FetchError{Source: source, Err: err})
	}

	if doc == nil {
		return nil, p.fail(StageFetching, &FetchError{Source: source, Err: ErrEmptyDocument})
	}

	p.logger.Info("document fetched", "source", source, "title", doc.Title, "chars", len(doc.Text))

	return p.run(ctx, source, doc)
}

// Synthesize turns an already fetched document into an audio file.
func (p *Pipeline) Synthesize(ctx context.Context, doc *scraper.Document) (*Output, error) {
	p.enter(StageFetching)

	if doc == nil {
		return nil, p.fail(StageFetching, &FetchError{Err: ErrEmptyDocument})
	}

	return p.run(ctx, "", doc)
}

func (p *Pipeline) run(ctx context.Context, source string, doc *scraper.Document) (*Output, error) {
	body := doc.Text

	if p.normalize {
		body = text.Normalize(body)
	}

	if strings.TrimSpace(body) == "" {
		return nil, p.fail(StageFetching, &FetchError{Source: source, Err: ErrEmptyDocument})
	}

	p.enter(StageSegmenting)

	segments, err := p.segmenter.Segment(ctx, body, &segmenter.SegmentOptions{
		SegmentLength: p.segmentLength,
	})

	if err != nil {
		return nil, p.fail(StageSegmenting, err)
	}

	if len(segments) == 0 {
		return nil, p.fail(StageSegmenting, ErrNoSegments)
	}

	p.logger.Info("document segmented", "segments", len(segments))

	p.enter(StageSynthesizing)

	results, err := p.dispatcher.Dispatch(ctx, segments)

	if err != nil {
		return nil, p.fail(StageSynthesizing, err)
	}

	p.enter(StageAssembling)

	name := sink.FileName(doc.Title, p.assembler.Extension())

	track, err := p.assembler.Assemble(ctx, name, results)

	if err != nil {
		return nil, p.fail(StageAssembling, err)
	}

	durations := make([]time.Duration, 0, len(track.Segments))

	for _, s := range track.Segments {
		durations = append(durations, s.Duration)
	}

	otel.RecordTrack(ctx, durations, track.Duration)

	p.enter(StageDone)

	return &Output{
		Path:  track.Path,
		Title: doc.Title,

		Segments: track.Segments,
		Silence:  track.Silence,

		Duration: track.Duration,
	}, nil
}

func (p *Pipeline) enter(stage Stage) {
	p.logger.Debug("stage", "stage", stage)

	if p.onStage != nil {
		p.onStage(stage)
	}
}

func (p *Pipeline) fail(stage Stage, err error) error {
	failure := &Failure{
		Stage: stage,
		Err:   err,
	}

	p.logger.Error("narration failed", "stage", stage, "error", err)

	if p.onStage != nil {
		p.onStage(StageFailed)
	}

	return failure
}
