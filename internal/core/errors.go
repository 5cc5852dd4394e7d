package core

import (
	"errors"
	"fmt"
)

// Run-level failure kinds. A *PipelineError always wraps exactly one of these
// together with the underlying cause, so callers can use errors.Is on either.
var (
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrMissingColumns   = errors.New("missing required column")
	ErrOutputUnwritable = errors.New("output unwritable")
	ErrRunCancelled     = errors.New("export cancelled")
)

// PipelineError aborts an export run. Row-level problems are never reported
// this way; they end up in ExportResult.Rejected.
type PipelineError struct {
	Kind  error // one of the Err* kinds above
	Cause error
}

func newPipelineError(kind, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Cause: cause}
}

func (e *PipelineError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("export failed: %v", e.Kind)
	}
	return fmt.Sprintf("export failed: %v: %v", e.Kind, e.Cause)
}

func (e *PipelineError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// AsPipelineError returns the *PipelineError in err's chain, if any.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
