package api

import (
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/narrator/pkg/pipeline"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	pipeline *pipeline.Pipeline

	dir string
}

func New(p *pipeline.Pipeline, dir string) (*Handler, error) {
	h := &Handler{
		pipeline: p,

		dir: dir,
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Post("/narrations", h.handleNarrate)
	r.Get("/files/{name}", h.handleFile)
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	writeErrorResponse(w, code, Error{
		Message: text,
	})
}

func writeErrorResponse(w http.ResponseWriter, code int, e Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(ErrorResponse{
		Error: e,
	})
}
