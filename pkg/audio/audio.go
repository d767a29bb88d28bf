package audio

import (
	"encoding/binary"
	"errors"
	"time"
)

var (
	ErrFormatMismatch = errors.New("audio format mismatch")
)

var DefaultFormat = Format{
	SampleRate: 24000,
	Channels:   1,
}

type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}

// Clip is decoded 16-bit PCM audio. Samples are interleaved by channel.
type Clip struct {
	Format  Format
	Samples []int16
}

func (c *Clip) Frames() int {
	if c == nil || c.Format.Channels <= 0 {
		return 0
	}

	return len(c.Samples) / c.Format.Channels
}

func (c *Clip) Duration() time.Duration {
	return FramesDuration(c.Frames(), c.Format.SampleRate)
}

// Append adds the samples of other to the end of c.
func (c *Clip) Append(other *Clip) error {
	if other == nil {
		return nil
	}

	if c.Format != other.Format {
		return ErrFormatMismatch
	}

	c.Samples = append(c.Samples, other.Samples...)

	return nil
}

func FramesDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}

	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}

// Silence returns a clip of zero samples lasting d, rounded down to whole frames.
func Silence(format Format, d time.Duration) *Clip {
	frames := int(int64(d) * int64(format.SampleRate) / int64(time.Second))

	if frames < 0 {
		frames = 0
	}

	return &Clip{
		Format:  format,
		Samples: make([]int16, frames*format.Channels),
	}
}

// SamplesToBytes converts samples to little-endian signed 16-bit PCM.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	return buf
}

// BytesToSamples reads little-endian signed 16-bit PCM. A trailing odd byte is dropped.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)

	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return samples
}
