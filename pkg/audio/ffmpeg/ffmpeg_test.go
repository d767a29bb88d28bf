package ffmpeg

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrianliechti/narrator/pkg/audio"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(`/usr/bin/env "ffmpeg"`)
	require.NoError(t, err)

	require.Equal(t, []string{"/usr/bin/env", "ffmpeg"}, c.command)
	require.Equal(t, audio.DefaultFormat, c.format)

	_, err = New("ffmpeg", WithFormat(audio.Format{}))
	require.Error(t, err)

	_, err = New(`ffmpeg "unterminated`)
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	format := audio.Format{SampleRate: 24000, Channels: 1}

	c, err := New("ffmpeg", WithFormat(format))
	require.NoError(t, err)

	clip := audio.Silence(format, time.Second)

	f, err := os.Create(filepath.Join(t.TempDir(), "out.mp3"))
	require.NoError(t, err)

	defer f.Close()

	require.NoError(t, c.Encode(context.Background(), f, clip))

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	result, err := c.Decode(context.Background(), data)
	require.NoError(t, err)

	require.Equal(t, format, result.Format)
	require.InDelta(t, time.Second.Seconds(), result.Duration().Seconds(), 0.1)
}

func TestDecodeFailure(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	c, err := New("ffmpeg")
	require.NoError(t, err)

	_, err = c.Decode(context.Background(), bytes.Repeat([]byte{0x42}, 64))
	require.Error(t, err)
}
