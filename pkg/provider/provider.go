package provider

import (
	"errors"
	"net/http"
	"strconv"
)

type Provider = any

var (
	ErrEmptyAudio = errors.New("synthesizer returned no audio")
)

// StatusError is returned when the remote service answers with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)

	if text == "" {
		text = "status " + strconv.Itoa(e.StatusCode)
	}

	if e.Message == "" {
		return text
	}

	return text + ": " + e.Message
}

// Temporary reports whether repeating the same request can succeed.
func (e *StatusError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return true
	}

	return e.StatusCode >= 500
}

// IsPermanent reports whether err is a status error that a retry cannot fix.
func IsPermanent(err error) bool {
	var statusErr *StatusError

	if errors.As(err, &statusErr) {
		return !statusErr.Temporary()
	}

	return false
}
