package dispatcher

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/audio/wav"
	"github.com/adrianliechti/narrator/pkg/provider"
	"github.com/adrianliechti/narrator/pkg/segmenter"

	"github.com/stretchr/testify/require"
)

var testFormat = audio.Format{SampleRate: 8000, Channels: 1}

type fakeSynthesizer struct {
	calls atomic.Int64

	fn func(ctx context.Context, index int) ([]byte, error)
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, input string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	s.calls.Add(1)

	index, err := strconv.Atoi(input)

	if err != nil {
		return nil, err
	}

	data, err := s.fn(ctx, index)

	if err != nil {
		return nil, err
	}

	return &provider.Synthesis{
		Content:     data,
		ContentType: "audio/wav",
	}, nil
}

// tone returns a wav file of (index+1)*80 frames, i.e. (index+1)*10ms.
func tone(index int) []byte {
	clip := &audio.Clip{
		Format:  testFormat,
		Samples: make([]int16, (index+1)*80),
	}

	for i := range clip.Samples {
		clip.Samples[i] = int16(index)
	}

	data, _ := wav.Bytes(clip)
	return data
}

func testSegments(n int) []segmenter.Segment {
	var segments []segmenter.Segment

	for i := range n {
		segments = append(segments, segmenter.Segment{
			Index: i,
			Text:  strconv.Itoa(i),
		})
	}

	return segments
}

func newTestDispatcher(t *testing.T, s provider.Synthesizer, options ...Option) *Dispatcher {
	options = append([]Option{
		WithBackoff(time.Millisecond, 5*time.Millisecond),
		WithTimeout(5 * time.Second),
	}, options...)

	d, err := New(s, wav.New(), options...)
	require.NoError(t, err)

	return d
}

func TestDispatchPreservesOrder(t *testing.T) {
	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			time.Sleep(time.Duration(rand.IntN(20)) * time.Millisecond)
			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithConcurrency(8))

	results, err := d.Dispatch(context.Background(), testSegments(25))
	require.NoError(t, err)
	require.Len(t, results, 25)

	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.Equal(t, 1, r.Attempts)
		require.Equal(t, time.Duration(i+1)*10*time.Millisecond, r.Duration)
		require.Equal(t, int16(i), r.Audio.Samples[0])
	}
}

func TestDispatchBoundsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int64

	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			n := inflight.Add(1)
			defer inflight.Add(-1)

			for {
				p := peak.Load()

				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}

			time.Sleep(20 * time.Millisecond)

			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithConcurrency(2))

	results, err := d.Dispatch(context.Background(), testSegments(5))
	require.NoError(t, err)
	require.Len(t, results, 5)

	require.LessOrEqual(t, peak.Load(), int64(2))
	require.EqualValues(t, 5, s.calls.Load())
}

func TestDispatchRetriesTemporaryFailures(t *testing.T) {
	var failures atomic.Int64

	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			if index == 1 && failures.Add(1) <= 2 {
				return nil, &provider.StatusError{StatusCode: http.StatusServiceUnavailable}
			}

			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithRetries(3))

	results, err := d.Dispatch(context.Background(), testSegments(3))
	require.NoError(t, err)

	require.Equal(t, 1, results[0].Attempts)
	require.Equal(t, 3, results[1].Attempts)
	require.Equal(t, 1, results[2].Attempts)
}

func TestDispatchPermanentFailure(t *testing.T) {
	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			if index == 2 {
				return nil, &provider.StatusError{StatusCode: http.StatusBadRequest, Message: "invalid input"}
			}

			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithRetries(3))

	results, err := d.Dispatch(context.Background(), testSegments(5))
	require.Error(t, err)
	require.Nil(t, results)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	require.Equal(t, 5, batchErr.Total)

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	require.Equal(t, 2, synthErr.Index)
	require.Equal(t, 1, synthErr.Attempts)

	var statusErr *provider.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestDispatchExhaustsRetries(t *testing.T) {
	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			return nil, &provider.StatusError{StatusCode: http.StatusInternalServerError}
		},
	}

	d := newTestDispatcher(t, s, WithConcurrency(1), WithRetries(2))

	_, err := d.Dispatch(context.Background(), testSegments(3))
	require.Error(t, err)

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	require.Equal(t, 0, synthErr.Index)
	require.Equal(t, 3, synthErr.Attempts)

	require.EqualValues(t, 3, s.calls.Load())
}

func TestDispatchStopsAfterFailure(t *testing.T) {
	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			if index == 0 {
				return nil, &provider.StatusError{StatusCode: http.StatusUnauthorized}
			}

			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithConcurrency(1))

	_, err := d.Dispatch(context.Background(), testSegments(10))
	require.Error(t, err)

	require.EqualValues(t, 1, s.calls.Load())
}

func TestDispatchUndecodableAudio(t *testing.T) {
	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			return []byte("garbage"), nil
		},
	}

	d := newTestDispatcher(t, s, WithRetries(1))

	_, err := d.Dispatch(context.Background(), testSegments(1))
	require.ErrorIs(t, err, wav.ErrInvalidFile)

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	require.Equal(t, 2, synthErr.Attempts)
}

func TestDispatchSilentPayload(t *testing.T) {
	var calls atomic.Int64

	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			if index == 1 && calls.Add(1) == 1 {
				return wav.Bytes(&audio.Clip{Format: testFormat})
			}

			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithRetries(1))

	results, err := d.Dispatch(context.Background(), testSegments(3))
	require.NoError(t, err)
	require.Equal(t, 2, results[1].Attempts)
	require.Equal(t, 20*time.Millisecond, results[1].Duration)
}

func TestDispatchSilentPayloadExhausted(t *testing.T) {
	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			return wav.Bytes(&audio.Clip{Format: testFormat})
		},
	}

	d := newTestDispatcher(t, s, WithConcurrency(1), WithRetries(1))

	results, err := d.Dispatch(context.Background(), testSegments(3))
	require.ErrorIs(t, err, provider.ErrEmptyAudio)
	require.Nil(t, results)

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	require.Equal(t, 0, synthErr.Index)
	require.Equal(t, 2, synthErr.Attempts)
}

func TestDispatchAttemptTimeout(t *testing.T) {
	var calls atomic.Int64

	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			if calls.Add(1) == 1 {
				<-ctx.Done()
				return nil, ctx.Err()
			}

			return tone(index), nil
		},
	}

	d := newTestDispatcher(t, s, WithTimeout(20*time.Millisecond), WithRetries(1))

	results, err := d.Dispatch(context.Background(), testSegments(1))
	require.NoError(t, err)
	require.Equal(t, 2, results[0].Attempts)
}

func TestDispatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &fakeSynthesizer{
		fn: func(ctx context.Context, index int) ([]byte, error) {
			cancel()

			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	d := newTestDispatcher(t, s, WithConcurrency(2))

	_, err := d.Dispatch(ctx, testSegments(6))
	require.ErrorIs(t, err, context.Canceled)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	require.Equal(t, 0, batchErr.Completed)
}

func TestDispatchEmpty(t *testing.T) {
	d := newTestDispatcher(t, &fakeSynthesizer{})

	results, err := d.Dispatch(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, results)
}
