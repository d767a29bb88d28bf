package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/provider"
	"github.com/adrianliechti/narrator/pkg/segmenter"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Result is the decoded audio of one segment.
type Result struct {
	Index int

	Audio    *audio.Clip
	Duration time.Duration

	Attempts int
}

// Dispatcher synthesizes segments concurrently, at most concurrency at a time.
type Dispatcher struct {
	synthesizer provider.Synthesizer
	codec       audio.Codec

	options *provider.SynthesizeOptions

	concurrency int
	retries     int

	backoff    time.Duration
	maxBackoff time.Duration

	timeout time.Duration

	logger *slog.Logger
}

type Option func(*Dispatcher)

// WithConcurrency bounds in-flight synthesis calls. Zero admits all segments at once.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		d.concurrency = n
	}
}

// WithRetries sets how many extra attempts a failing segment gets.
func WithRetries(n int) Option {
	return func(d *Dispatcher) {
		d.retries = n
	}
}

func WithBackoff(initial, max time.Duration) Option {
	return func(d *Dispatcher) {
		d.backoff = initial
		d.maxBackoff = max
	}
}

// WithTimeout bounds every single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

func WithSynthesizeOptions(options *provider.SynthesizeOptions) Option {
	return func(d *Dispatcher) {
		d.options = options
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func New(synthesizer provider.Synthesizer, codec audio.Codec, options ...Option) (*Dispatcher, error) {
	if synthesizer == nil {
		return nil, errors.New("synthesizer is required")
	}

	if codec == nil {
		return nil, errors.New("codec is required")
	}

	d := &Dispatcher{
		synthesizer: synthesizer,
		codec:       codec,

		concurrency: 4,
		retries:     3,

		backoff:    time.Second,
		maxBackoff: 30 * time.Second,

		timeout: 2 * time.Minute,

		logger: slog.Default(),
	}

	for _, option := range options {
		option(d)
	}

	if d.concurrency < 0 {
		return nil, errors.New("concurrency must not be negative")
	}

	if d.retries < 0 {
		return nil, errors.New("retries must not be negative")
	}

	d.logger = d.logger.With("component", "dispatcher")

	return d, nil
}

// Dispatch synthesizes every segment and returns the results sorted by index.
// The first segment that fails after its retries aborts the batch: no new
// calls are started, in-flight calls are cancelled and no results are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, segments []segmenter.Segment) ([]Result, error) {
	if len(segments) == 0 {
		return []Result{}, nil
	}

	limit := d.concurrency

	if limit <= 0 || limit > len(segments) {
		limit = len(segments)
	}

	sem := semaphore.NewWeighted(int64(limit))

	runCtx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	group, groupCtx := errgroup.WithContext(runCtx)

	results := make([]Result, len(segments))

	var completed atomic.Int64

	for i, segment := range segments {
		if err := sem.Acquire(groupCtx, 1); err != nil {
			break
		}

		if groupCtx.Err() != nil {
			sem.Release(1)
			break
		}

		group.Go(func() error {
			defer sem.Release(1)

			result, err := d.process(groupCtx, segment)

			if err != nil {
				// cancel before the slot is released so the loop admits nothing new
				abort(err)
				return err
			}

			results[i] = *result
			completed.Add(1)

			return nil
		})
	}

	err := group.Wait()

	if ctx.Err() != nil {
		err = context.Cause(ctx)
	} else if cause := context.Cause(runCtx); err != nil && cause != nil {
		err = cause
	}

	if err != nil {
		d.logger.Error("synthesis aborted", "error", err, "completed", completed.Load(), "total", len(segments))

		return nil, &BatchError{
			Total:     len(segments),
			Completed: int(completed.Load()),

			Err: err,
		}
	}

	slices.SortFunc(results, func(a, b Result) int {
		return a.Index - b.Index
	})

	return results, nil
}

func (d *Dispatcher) process(ctx context.Context, segment segmenter.Segment) (*Result, error) {
	logger := d.logger.With("segment", segment.Index)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.backoff
	policy.MaxInterval = d.maxBackoff

	attempts := 0

	operation := func() (*audio.Clip, error) {
		attempts++

		logger.Debug("synthesizing segment", "attempt", attempts, "chars", len(segment.Text))

		clip, err := d.attempt(ctx, segment)

		if err == nil {
			return clip, nil
		}

		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}

		if provider.IsPermanent(err) {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("segment synthesis failed, retrying", "attempt", attempts, "wait", wait, "error", err)
	}

	clip, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(d.retries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.Error("segment synthesis failed", "attempts", attempts, "error", err)

		return nil, &SynthesisError{
			Index:    segment.Index,
			Attempts: attempts,

			Err: err,
		}
	}

	logger.Info("segment synthesized", "attempts", attempts, "duration", clip.Duration())

	return &Result{
		Index: segment.Index,

		Audio:    clip,
		Duration: clip.Duration(),

		Attempts: attempts,
	}, nil
}

func (d *Dispatcher) attempt(ctx context.Context, segment segmenter.Segment) (*audio.Clip, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	options := &provider.SynthesizeOptions{}

	if d.options != nil {
		*options = *d.options
	}

	options.Format = d.codec.Name()

	synthesis, err := d.synthesizer.Synthesize(ctx, segment.Text, options)

	if err != nil {
		return nil, err
	}

	if len(synthesis.Content) == 0 {
		return nil, provider.ErrEmptyAudio
	}

	clip, err := d.codec.Decode(ctx, synthesis.Content)

	if err != nil {
		return nil, err
	}

	if clip.Frames() == 0 {
		return nil, provider.ErrEmptyAudio
	}

	return clip, nil
}
