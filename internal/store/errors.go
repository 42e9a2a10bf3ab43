package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// BackendError reports a failed call against a backing store.
type BackendError struct {
	Op         string
	Collection Collection
	Err        error
}

func (err *BackendError) Error() string {
	if err.Collection == "" {
		return fmt.Sprintf("%s failed: %v", err.Op, err.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", err.Op, err.Collection, err.Err)
}

func (err *BackendError) Unwrap() error {
	return err.Err
}

func IsBackendError(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}
