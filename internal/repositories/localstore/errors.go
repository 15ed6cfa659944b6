package localstore

import "fmt"

// Error implements repositories.RepositoryError for the local file store.
// Local reads never surface not-found; missing entries are cache misses.
type Error struct {
	op  string
	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the error represents a missing entry.
func (e *Error) IsNotFound() bool { return false }

// IsConflict reports whether the error represents a conflicting update.
func (e *Error) IsConflict() bool { return false }

// IsUnavailable reports whether the error represents a store that cannot be reached.
func (e *Error) IsUnavailable() bool { return e != nil }

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{op: op, err: err}
}
