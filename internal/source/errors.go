package source

import (
	"errors"
	"fmt"
)

// ErrContentUnavailable is wrapped by every ContentUnavailableError.
var ErrContentUnavailable = errors.New("content unavailable")

// ContentUnavailableError reports a document whose text could not be read.
type ContentUnavailableError struct {
	DocumentID string
	Err        error
}

func (e *ContentUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrContentUnavailable, e.DocumentID, e.Err)
}

func (e *ContentUnavailableError) Unwrap() []error {
	return []error{ErrContentUnavailable, e.Err}
}

func unavailable(documentID string, err error) error {
	return &ContentUnavailableError{DocumentID: documentID, Err: err}
}
