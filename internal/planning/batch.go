// Package planning holds the client-side form state for planning subtasks:
// the draft list of a new task, the edit session of an existing one, and the
// notification relay that reports outcomes.
package planning

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrBatchFailed is matched by every BatchError.
var ErrBatchFailed = errors.New("batch operation failed")

// BatchError reports that some calls of a bulk operation failed.
// Calls that succeeded are not undone.
// Fields are ordered to minimize memory padding.
type BatchError struct {
	Errs   []error // Causes of the failed calls, in call order
	Failed int     // Number of failed calls
	Total  int     // Number of calls issued
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d calls failed: %v", e.Failed, e.Total, errors.Join(e.Errs...))
}

// Is reports whether target is ErrBatchFailed.
func (e *BatchError) Is(target error) bool {
	return target == ErrBatchFailed
}

// Unwrap returns the causes so errors.Is and errors.As see through the batch.
func (e *BatchError) Unwrap() []error {
	return e.Errs
}

// RunBatch calls fn for every index in [0, n) concurrently and waits for all of them.
// A failing call does not cancel the others. It returns a *BatchError if any call failed.
func RunBatch(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}

	errs := make([]error, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			errs[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &BatchError{Errs: failed, Failed: len(failed), Total: n}
}
