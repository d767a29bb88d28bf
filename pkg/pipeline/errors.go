package pipeline

import (
	"errors"
	"fmt"

	"github.com/adrianliechti/narrator/pkg/dispatcher"
)

var (
	ErrEmptyDocument = errors.New("document has no text")
	ErrNoSegments    = errors.New("segmentation produced no segments")
)

// FetchError reports that no usable document could be obtained from a source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return "fetch: " + e.Err.Error()
	}

	return "fetch " + e.Source + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Failure is the terminal error of a run. Stage is where the run stopped.
type Failure struct {
	Stage Stage
	Err   error
}

func (e *Failure) Error() string {
	if index, ok := e.Index(); ok {
		return fmt.Sprintf("%s failed at segment %d: %v", e.Stage, index, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *Failure) Unwrap() error {
	return e.Err
}

// Index returns the segment that caused the failure, if any.
func (e *Failure) Index() (int, bool) {
	var synthErr *dispatcher.SynthesisError

	if errors.As(e.Err, &synthErr) {
		return synthErr.Index, true
	}

	return 0, false
}
