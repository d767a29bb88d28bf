package pipeline

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrianliechti/narrator/pkg/assembler"
	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/audio/wav"
	"github.com/adrianliechti/narrator/pkg/dispatcher"
	"github.com/adrianliechti/narrator/pkg/provider"
	"github.com/adrianliechti/narrator/pkg/scraper"
	"github.com/adrianliechti/narrator/pkg/segmenter/word"
	"github.com/adrianliechti/narrator/pkg/sink"

	"github.com/stretchr/testify/require"
)

// textSynthesizer returns 10ms of audio per input character.
type textSynthesizer struct {
	calls atomic.Int64

	fail func(input string) error
}

func (s *textSynthesizer) Synthesize(ctx context.Context, input string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	s.calls.Add(1)

	if s.fail != nil {
		if err := s.fail(input); err != nil {
			return nil, err
		}
	}

	data, err := wav.Bytes(&audio.Clip{
		Format:  audio.Format{SampleRate: 8000, Channels: 1},
		Samples: make([]int16, len(input)*80),
	})

	if err != nil {
		return nil, err
	}

	return &provider.Synthesis{Content: data, ContentType: "audio/wav"}, nil
}

type staticScraper struct {
	doc *scraper.Document
	err error
}

func (s *staticScraper) Scrape(ctx context.Context, url string, options *scraper.ScrapeOptions) (*scraper.Document, error) {
	return s.doc, s.err
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []Stage
}

func (r *stageRecorder) observe(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stages = append(r.stages, stage)
}

func newTestPipeline(t *testing.T, s provider.Synthesizer, maxChars int, options ...Option) (*Pipeline, string) {
	dir := filepath.Join(t.TempDir(), "output")

	seg, err := word.New(word.WithLength(maxChars))
	require.NoError(t, err)

	d, err := dispatcher.New(s, wav.New(),
		dispatcher.WithConcurrency(2),
		dispatcher.WithRetries(1),
		dispatcher.WithBackoff(time.Millisecond, time.Millisecond),
	)

	require.NoError(t, err)

	out, err := sink.New(dir)
	require.NoError(t, err)

	a, err := assembler.New(wav.New(), out)
	require.NoError(t, err)

	p, err := New(seg, d, a, options...)
	require.NoError(t, err)

	return p, dir
}

func TestSynthesize(t *testing.T) {
	recorder := &stageRecorder{}
	synthesizer := &textSynthesizer{}

	p, dir := newTestPipeline(t, synthesizer, 10, WithStageObserver(recorder.observe))

	output, err := p.Synthesize(context.Background(), &scraper.Document{
		Title: "My Story",
		Text:  "alpha beta gamma",
	})

	require.NoError(t, err)

	require.Equal(t, []Stage{StageFetching, StageSegmenting, StageSynthesizing, StageAssembling, StageDone}, recorder.stages)
	require.EqualValues(t, 2, synthesizer.calls.Load())

	require.Equal(t, filepath.Join(dir, "my_story.wav"), output.Path)
	require.Equal(t, "My Story", output.Title)

	require.Equal(t, []assembler.SegmentReport{
		{Index: 0, Duration: 100 * time.Millisecond},
		{Index: 1, Duration: 50 * time.Millisecond},
	}, output.Segments)

	require.Equal(t, 150*time.Millisecond+assembler.DefaultSilence, output.Duration)
	require.FileExists(t, output.Path)
}

func TestSynthesizeSegmentFailure(t *testing.T) {
	recorder := &stageRecorder{}

	synthesizer := &textSynthesizer{
		fail: func(input string) error {
			if input == "cc" {
				return &provider.StatusError{StatusCode: http.StatusBadRequest}
			}

			return nil
		},
	}

	p, dir := newTestPipeline(t, synthesizer, 2, WithStageObserver(recorder.observe))

	_, err := p.Synthesize(context.Background(), &scraper.Document{
		Title: "Broken",
		Text:  "aa bb cc dd ee",
	})

	require.Error(t, err)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, StageSynthesizing, failure.Stage)

	index, ok := failure.Index()
	require.True(t, ok)
	require.Equal(t, 2, index)

	var batchErr *dispatcher.BatchError
	require.True(t, errors.As(err, &batchErr))

	require.Equal(t, StageFailed, recorder.stages[len(recorder.stages)-1])
	require.NotContains(t, recorder.stages, StageAssembling)

	entries, _ := os.ReadDir(dir)
	require.Empty(t, entries)
}

func TestSynthesizeSegmentRetriesExhausted(t *testing.T) {
	recorder := &stageRecorder{}

	var failures atomic.Int64

	synthesizer := &textSynthesizer{
		fail: func(input string) error {
			if input == "cc" {
				failures.Add(1)
				return &provider.StatusError{StatusCode: http.StatusServiceUnavailable}
			}

			return nil
		},
	}

	p, dir := newTestPipeline(t, synthesizer, 2, WithStageObserver(recorder.observe))

	_, err := p.Synthesize(context.Background(), &scraper.Document{
		Title: "Flaky",
		Text:  "aa bb cc",
	})

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, StageSynthesizing, failure.Stage)

	index, ok := failure.Index()
	require.True(t, ok)
	require.Equal(t, 2, index)

	// newTestPipeline allows one retry
	var synthErr *dispatcher.SynthesisError
	require.True(t, errors.As(err, &synthErr))
	require.Equal(t, 2, synthErr.Attempts)
	require.EqualValues(t, 2, failures.Load())

	var statusErr *provider.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.True(t, statusErr.Temporary())

	require.NotContains(t, recorder.stages, StageAssembling)

	entries, _ := os.ReadDir(dir)
	require.Empty(t, entries)
}

func TestSynthesizeEmptyBody(t *testing.T) {
	synthesizer := &textSynthesizer{}

	p, _ := newTestPipeline(t, synthesizer, 10)

	_, err := p.Synthesize(context.Background(), &scraper.Document{Title: "Nothing", Text: " \n\t "})

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, StageFetching, failure.Stage)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.ErrorIs(t, err, ErrEmptyDocument)

	_, ok := failure.Index()
	require.False(t, ok)

	require.Zero(t, synthesizer.calls.Load())
}

func TestNarrate(t *testing.T) {
	synthesizer := &textSynthesizer{}

	p, dir := newTestPipeline(t, synthesizer, 4096, WithScraper(&staticScraper{
		doc: &scraper.Document{
			Title: "",
			Text:  "First paragraph.\n\n\n   Second    paragraph.",
		},
	}))

	output, err := p.Narrate(context.Background(), "https://example.com/article")
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "output.wav"), output.Path)
	require.Len(t, output.Segments, 1)
	require.Equal(t, time.Duration(len("First paragraph. Second paragraph."))*10*time.Millisecond, output.Duration)
}

func TestNarrateFetchFailure(t *testing.T) {
	p, _ := newTestPipeline(t, &textSynthesizer{}, 10, WithScraper(&staticScraper{
		err: errors.New("connection refused"),
	}))

	_, err := p.Narrate(context.Background(), "https://example.com/article")

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, StageFetching, failure.Stage)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, "https://example.com/article", fetchErr.Source)

	require.True(t, strings.Contains(err.Error(), "connection refused"))
}

func TestNarrateWithoutScraper(t *testing.T) {
	p, _ := newTestPipeline(t, &textSynthesizer{}, 10)

	_, err := p.Narrate(context.Background(), "https://example.com")

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, StageFetching, failure.Stage)
}
