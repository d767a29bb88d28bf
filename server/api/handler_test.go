package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adrianliechti/narrator/pkg/assembler"
	"github.com/adrianliechti/narrator/pkg/audio"
	"github.com/adrianliechti/narrator/pkg/audio/wav"
	"github.com/adrianliechti/narrator/pkg/dispatcher"
	"github.com/adrianliechti/narrator/pkg/pipeline"
	"github.com/adrianliechti/narrator/pkg/provider"
	"github.com/adrianliechti/narrator/pkg/scraper/auto"
	"github.com/adrianliechti/narrator/pkg/scraper/file"
	"github.com/adrianliechti/narrator/pkg/segmenter/word"
	"github.com/adrianliechti/narrator/pkg/sink"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type wavSynthesizer struct {
	mu     sync.Mutex
	inputs []string
}

func (s *wavSynthesizer) Synthesize(ctx context.Context, input string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()

	if strings.Contains(input, "forbidden") {
		return nil, &provider.StatusError{StatusCode: http.StatusBadRequest, Message: "content policy"}
	}

	data, err := wav.Bytes(&audio.Clip{
		Format:  audio.Format{SampleRate: 8000, Channels: 1},
		Samples: make([]int16, 8000),
	})

	return &provider.Synthesis{Content: data}, err
}

func newTestServer(t *testing.T) *httptest.Server {
	server, _ := newTestServerWithSynthesizer(t, &wavSynthesizer{})
	return server
}

func newTestServerWithSynthesizer(t *testing.T, synthesizer *wavSynthesizer) (*httptest.Server, string) {
	dir := t.TempDir()

	seg, err := word.New(word.WithLength(20))
	require.NoError(t, err)

	d, err := dispatcher.New(synthesizer, wav.New(), dispatcher.WithBackoff(time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	out, err := sink.New(dir)
	require.NoError(t, err)

	a, err := assembler.New(wav.New(), out)
	require.NoError(t, err)

	files, err := file.New()
	require.NoError(t, err)

	sources, err := auto.New(nil, files)
	require.NoError(t, err)

	p, err := pipeline.New(seg, d, a, pipeline.WithScraper(sources))
	require.NoError(t, err)

	h, err := New(p, dir)
	require.NoError(t, err)

	r := chi.NewRouter()
	h.Attach(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return server, dir
}

func TestNarrateText(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/narrations", "application/json", strings.NewReader(`{"title":"Short Note","text":"one two three four five six seven"}`))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result Narration
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.Equal(t, "short_note.wav", result.File)
	require.Len(t, result.Segments, 2)
	require.InDelta(t, 2.35, result.Duration, 0.0001)

	download, err := http.Get(server.URL + "/files/" + result.File)
	require.NoError(t, err)

	defer download.Body.Close()

	require.Equal(t, http.StatusOK, download.StatusCode)
}

func TestNarrateFailure(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/narrations", "application/json", strings.NewReader(`{"text":"fine words here then forbidden words"}`))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var result ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.Equal(t, "synthesizing", result.Error.Stage)
	require.NotNil(t, result.Error.Index)
	require.Equal(t, 1, *result.Error.Index)
}

func TestNarrateBadRequest(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/narrations", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFileNotFound(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/files/.hidden")
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNarrateRejectsLocalSources(t *testing.T) {
	synthesizer := &wavSynthesizer{}
	server, dir := newTestServerWithSynthesizer(t, synthesizer)

	secret := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(secret, []byte("database password hunter2"), 0600))

	for _, source := range []string{secret, "file://" + secret, "ftp://example.com/a.txt", "http:///nohost"} {
		t.Run(source, func(t *testing.T) {
			body, _ := json.Marshal(NarrateRequest{URL: source})

			resp, err := http.Post(server.URL+"/narrations", "application/json", strings.NewReader(string(body)))
			require.NoError(t, err)

			defer resp.Body.Close()

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	require.Empty(t, synthesizer.inputs)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
