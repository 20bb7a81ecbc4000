package recommend

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the recommendation core.  Callers match them
// with errors.Is; the API layer maps them to 404, 400 and 503.
var (
	ErrNotFound         = errors.New("recommend: not found")
	ErrValidation       = errors.New("recommend: invalid request")
	ErrStoreUnavailable = errors.New("recommend: store unavailable")
)

// StoreError wraps a failure returned by the store.  It matches
// ErrStoreUnavailable and unwraps to the store's own error, so callers
// that care about the driver error still see it untouched.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("recommend: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
