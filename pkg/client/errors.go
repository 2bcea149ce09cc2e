package client

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAttemptDone is returned when running an attempt that already reached
	// a terminal state
	ErrAttemptDone = errors.New("attempt already finished")

	// ErrAbort is returned by a BuildFunc to stop a reconciler loop
	ErrAbort = errors.New("aborted")

	ErrRetriesExhausted = errors.New("retries exhausted")
)

// ExhaustedError reports the last failure after the reconciler gave up
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %s", ErrRetriesExhausted, e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
