package wav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/adrianliechti/narrator/pkg/audio"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

var _ audio.Codec = (*Codec)(nil)

var (
	ErrInvalidFile = errors.New("invalid wav file")
)

// Codec reads and writes 16-bit PCM RIFF/WAVE files.
type Codec struct {
}

func New() *Codec {
	return &Codec{}
}

func (c *Codec) Name() string {
	return "wav"
}

func (c *Codec) Extension() string {
	return ".wav"
}

func (c *Codec) ContentType() string {
	return "audio/wav"
}

func (c *Codec) Decode(ctx context.Context, data []byte) (*audio.Clip, error) {
	decoder := gowav.NewDecoder(bytes.NewReader(data))

	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}

	if decoder.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported wav bit depth: %d", decoder.BitDepth)
	}

	buffer, err := decoder.FullPCMBuffer()

	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	samples := make([]int16, len(buffer.Data))

	for i, s := range buffer.Data {
		samples[i] = int16(s)
	}

	return &audio.Clip{
		Format: audio.Format{
			SampleRate: int(decoder.SampleRate),
			Channels:   int(decoder.NumChans),
		},

		Samples: samples,
	}, nil
}

func (c *Codec) Encode(ctx context.Context, w io.WriteSeeker, clip *audio.Clip) error {
	if !clip.Format.Valid() {
		return fmt.Errorf("invalid audio format: %+v", clip.Format)
	}

	data := make([]int, len(clip.Samples))

	for i, s := range clip.Samples {
		data[i] = int(s)
	}

	buffer := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: clip.Format.Channels,
			SampleRate:  clip.Format.SampleRate,
		},

		Data:           data,
		SourceBitDepth: 16,
	}

	enc := gowav.NewEncoder(w, clip.Format.SampleRate, 16, clip.Format.Channels, 1)

	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}

	return nil
}

// Bytes encodes clip into an in-memory wav file.
func Bytes(clip *audio.Clip) ([]byte, error) {
	f := &memFile{}

	if err := New().Encode(context.Background(), f, clip); err != nil {
		return nil, err
	}

	return f.buf, nil
}

type memFile struct {
	buf []byte
	pos int
}

func (f *memFile) Write(p []byte) (int, error) {
	end := f.pos + len(p)

	if end > len(f.buf) {
		f.buf = append(f.buf, make([]byte, end-len(f.buf))...)
	}

	copy(f.buf[f.pos:], p)
	f.pos = end

	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(f.pos) + offset
	case io.SeekEnd:
		pos = int64(len(f.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}

	if pos < 0 {
		return 0, errors.New("negative position")
	}

	f.pos = int(pos)

	return pos, nil
}
