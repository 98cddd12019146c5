package errors

import (
	"fmt"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidState = fmt.Errorf("invalid state")
	ErrInvalidArg   = fmt.Errorf("invalid arg")
	ErrNotSupported = fmt.Errorf("not supported")
	ErrMaxExceeded  = fmt.Errorf("max length exceeded")

	// ErrNoHandler is returned when a job's kind has no registered handler
	ErrNoHandler = fmt.Errorf("no handler registered for job kind")

	// Governed function run failures
	ErrQueueTimeout      = fmt.Errorf("timed out waiting for a free function slot")
	ErrExecuteTimeout    = fmt.Errorf("function exceeded its execution time limit")
	ErrFunctionsDisabled = fmt.Errorf("functions are disabled")
	ErrScript            = fmt.Errorf("script error")
)

// HandlerError is a failure raised while running a job handler.
type HandlerError struct {
	Kind  string
	JobID string
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("job %s (%s): %v", e.JobID, e.Kind, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// NewHandlerError wraps err as a HandlerError for the given job.
func NewHandlerError(kind, jobID string, err error) *HandlerError {
	return &HandlerError{Kind: kind, JobID: jobID, Err: err}
}
