package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/adrianliechti/narrator/pkg/pipeline"
	"github.com/adrianliechti/narrator/pkg/scraper"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleNarrate(w http.ResponseWriter, r *http.Request) {
	var req NarrateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var output *pipeline.Output
	var err error

	switch {
	case req.Text != "":
		output, err = h.pipeline.Synthesize(r.Context(), &scraper.Document{
			Title: req.Title,
			Text:  req.Text,
		})

	case req.URL != "":
		if !isWebURL(req.URL) {
			writeError(w, http.StatusBadRequest, errors.New("url must be an absolute http or https url"))
			return
		}

		output, err = h.pipeline.Narrate(r.Context(), req.URL)

	default:
		writeError(w, http.StatusBadRequest, errors.New("url or text is required"))
		return
	}

	if err != nil {
		writeFailure(w, err)
		return
	}

	result := Narration{
		File:  filepath.Base(output.Path),
		Title: output.Title,

		Duration: output.Duration.Seconds(),

		Segments: []Segment{},
	}

	for _, s := range output.Segments {
		result.Segments = append(result.Segments, Segment{
			Index:    s.Index,
			Duration: s.Duration.Seconds(),
		})
	}

	writeJson(w, result)
}

// isWebURL reports whether source is an absolute http(s) url. Local paths
// are only narrated from the command line.
func isWebURL(source string) bool {
	u, err := url.Parse(source)

	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if name == "" || name != filepath.Base(name) || name[0] == '.' {
		writeError(w, http.StatusNotFound, nil)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.dir, name))
}

func writeFailure(w http.ResponseWriter, err error) {
	var failure *pipeline.Failure

	if !errors.As(err, &failure) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	code := http.StatusInternalServerError

	switch failure.Stage {
	case pipeline.StageFetching:
		code = http.StatusUnprocessableEntity

	case pipeline.StageSynthesizing:
		code = http.StatusBadGateway
	}

	e := Error{
		Message: err.Error(),
		Stage:   string(failure.Stage),
	}

	if index, ok := failure.Index(); ok {
		e.Index = &index
	}

	writeErrorResponse(w, code, e)
}
