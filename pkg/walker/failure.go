package walker

import (
	"errors"
	"fmt"
)

// LeafFailure is a replay file that could not be turned into records.
type LeafFailure struct {
	Path string
	Err  error
}

// Error implements error.
func (f LeafFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Unwrap returns the underlying cause.
func (f LeafFailure) Unwrap() error {
	return f.Err
}

// FailureReport collects isolated leaf failures in traversal order.
type FailureReport struct {
	Failures []LeafFailure
}

// Len returns the number of failures.
func (r FailureReport) Len() int {
	return len(r.Failures)
}

// Err joins all failures, or returns nil when there are none.
func (r FailureReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}

	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}

	return errors.Join(errs...)
}

func (r *FailureReport) add(path string, err error) {
	r.Failures = append(r.Failures, LeafFailure{Path: path, Err: err})
}
