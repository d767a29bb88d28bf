package dispatcher

import (
	"fmt"
)

// SynthesisError reports the segment whose synthesis failed for good.
type SynthesisError struct {
	Index    int
	Attempts int

	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("segment %d failed after %d attempt(s): %v", e.Index, e.Attempts, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// BatchError aborts a whole dispatch. It wraps the first SynthesisError or
// the cancellation cause.
type BatchError struct {
	Total     int
	Completed int

	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("synthesis aborted (%d/%d segments completed): %v", e.Completed, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
