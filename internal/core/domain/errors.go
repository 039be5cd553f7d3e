package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyHandle       = errors.New("channel handle cannot be empty")
	ErrInvalidMaxResults = errors.New("max results must be a positive number")
	ErrInvalidVideoURL   = errors.New("invalid youtube video url")
	ErrEmptyQuestion     = errors.New("question cannot be empty")
	ErrNoInspectionPDF   = errors.New("no inspection pdf configured")
)

// NotFoundError reports that a handle resolved to no channel.
type NotFoundError struct {
	Handle string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no channel found for handle %s", e.Handle)
}

// APIError wraps a non-success status returned by the YouTube API.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("youtube api returned status %d (%s)", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("youtube api returned status %d: %v", e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsNotFound returns the NotFoundError in err's chain, if any.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	ok := errors.As(err, &nf)
	return nf, ok
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
