package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/adrianliechti/narrator/pkg/audio"

	"github.com/mattn/go-shellwords"
)

var _ audio.Codec = (*Codec)(nil)

// Codec decodes any container ffmpeg understands into PCM and encodes PCM to mp3.
type Codec struct {
	command []string
	format  audio.Format
	bitrate string
}

type Option func(*Codec)

func WithFormat(format audio.Format) Option {
	return func(c *Codec) {
		c.format = format
	}
}

func WithBitrate(bitrate string) Option {
	return func(c *Codec) {
		c.bitrate = bitrate
	}
}

func New(command string, options ...Option) (*Codec, error) {
	if command == "" {
		command = "ffmpeg"
	}

	parser := shellwords.NewParser()
	args, err := parser.Parse(command)

	if err != nil {
		return nil, fmt.Errorf("parse ffmpeg command: %w", err)
	}

	if len(args) == 0 {
		return nil, errors.New("ffmpeg command is empty")
	}

	c := &Codec{
		command: args,
		format:  audio.DefaultFormat,
		bitrate: "128k",
	}

	for _, option := range options {
		option(c)
	}

	if !c.format.Valid() {
		return nil, fmt.Errorf("invalid audio format: %+v", c.format)
	}

	return c, nil
}

func (c *Codec) Name() string {
	return "mp3"
}

func (c *Codec) Extension() string {
	return ".mp3"
}

func (c *Codec) ContentType() string {
	return "audio/mpeg"
}

func (c *Codec) Decode(ctx context.Context, data []byte) (*audio.Clip, error) {
	if len(data) == 0 {
		return nil, errors.New("no audio data")
	}

	var stdout bytes.Buffer

	args := []string{
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(c.format.SampleRate),
		"-ac", strconv.Itoa(c.format.Channels),
		"pipe:1",
	}

	if err := c.run(ctx, bytes.NewReader(data), &stdout, args); err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}

	return &audio.Clip{
		Format:  c.format,
		Samples: audio.BytesToSamples(stdout.Bytes()),
	}, nil
}

func (c *Codec) Encode(ctx context.Context, w io.WriteSeeker, clip *audio.Clip) error {
	args := []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(clip.Format.SampleRate),
		"-ac", strconv.Itoa(clip.Format.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", c.bitrate,
		"-f", "mp3",
		"pipe:1",
	}

	if err := c.run(ctx, bytes.NewReader(audio.SamplesToBytes(clip.Samples)), w, args); err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}

	return nil
}

func (c *Codec) run(ctx context.Context, stdin io.Reader, stdout io.Writer, args []string) error {
	args = append(append([]string{}, c.command[1:]...), append([]string{"-hide_banner", "-loglevel", "error"}, args...)...)

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.command[0], args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}

		return err
	}

	return nil
}
