package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/dispatcher"
	"github.com/adrianliechti/narrator/pkg/sink"
)

const DefaultSilence = 350 * time.Millisecond

var (
	ErrNoAudio = errors.New("no audio to assemble")
)

// AssemblyError reports a failure while joining or exporting audio.
type AssemblyError struct {
	Op  string
	Err error
}

func (e *AssemblyError) Error() string {
	return "assembly " + e.Op + ": " + e.Err.Error()
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

type SegmentReport struct {
	Index    int
	Duration time.Duration
}

type Track struct {
	Path string

	Format audio.Format

	Segments []SegmentReport
	Silence  time.Duration

	Duration time.Duration
}

type Assembler struct {
	codec audio.Codec
	sink  *sink.Sink

	silence time.Duration

	logger *slog.Logger
}

type Option func(*Assembler)

func WithSilence(d time.Duration) Option {
	return func(a *Assembler) {
		a.silence = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

func New(codec audio.Codec, sink *sink.Sink, options ...Option) (*Assembler, error) {
	if codec == nil {
		return nil, errors.New("codec is required")
	}

	if sink == nil {
		return nil, errors.New("sink is required")
	}

	a := &Assembler{
		codec: codec,
		sink:  sink,

		silence: DefaultSilence,

		logger: slog.Default(),
	}

	for _, option := range options {
		option(a)
	}

	if a.silence < 0 {
		return nil, errors.New("silence must not be negative")
	}

	a.logger = a.logger.With("component", "assembler")

	return a, nil
}

func (a *Assembler) Extension() string {
	return a.codec.Extension()
}

// Assemble joins results in the given order with silence between
// consecutive segments and exports the track as name inside the sink.
func (a *Assembler) Assemble(ctx context.Context, name string, results []dispatcher.Result) (*Track, error) {
	clip, track, err := a.Join(results)

	if err != nil {
		return nil, err
	}

	path, err := a.sink.Write(ctx, name, func(w io.WriteSeeker) error {
		return a.codec.Encode(ctx, w, clip)
	})

	if err != nil {
		return nil, &AssemblyError{Op: "export", Err: err}
	}

	track.Path = path

	a.logger.Info("track exported", "path", path, "segments", len(track.Segments), "duration", track.Duration)

	return track, nil
}

// Join concatenates the results into one clip without exporting it.
func (a *Assembler) Join(results []dispatcher.Result) (*audio.Clip, *Track, error) {
	if len(results) == 0 {
		return nil, nil, &AssemblyError{Op: "join", Err: ErrNoAudio}
	}

	first := results[0].Audio

	if first == nil {
		return nil, nil, &AssemblyError{Op: "join", Err: fmt.Errorf("segment %d: %w", results[0].Index, ErrNoAudio)}
	}

	format := first.Format
	silence := audio.Silence(format, a.silence)

	clip := &audio.Clip{
		Format: format,
	}

	track := &Track{
		Format: format,

		Silence: silence.Duration(),
	}

	for i, result := range results {
		if result.Audio == nil {
			return nil, nil, &AssemblyError{Op: "join", Err: fmt.Errorf("segment %d: %w", result.Index, ErrNoAudio)}
		}

		if err := clip.Append(result.Audio); err != nil {
			return nil, nil, &AssemblyError{Op: "join", Err: fmt.Errorf("segment %d: %w", result.Index, err)}
		}

		duration := result.Audio.Duration()

		track.Segments = append(track.Segments, SegmentReport{
			Index:    result.Index,
			Duration: duration,
		})

		a.logger.Info("segment duration", "segment", result.Index, "duration", duration)

		if i < len(results)-1 {
			clip.Append(silence)
		}
	}

	track.Duration = clip.Duration()

	return clip, track, nil
}
