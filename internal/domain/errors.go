package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConfirmed aborts a destructive operation whose confirmation token did
// not match. No side effects have occurred when it is returned.
var ErrNotConfirmed = errors.New("destructive operation not confirmed")

// ErrIndexNotFound reports an operation against an index name that does not
// exist at the provider.
var ErrIndexNotFound = errors.New("index not found")

// IndexTimeoutError reports an index that did not become ready (or did not
// settle after deletion) within the polling budget.
type IndexTimeoutError struct {
	Name    string
	Elapsed time.Duration
}

func (e *IndexTimeoutError) Error() string {
	return fmt.Sprintf("index %q not ready after %s", e.Name, e.Elapsed)
}
