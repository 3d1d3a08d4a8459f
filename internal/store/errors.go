package store

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError carries the storefront's error envelope alongside the HTTP status,
// categorised the way the engine consumes failures.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("store: request failed with status %d", e.Status)
}

// IsNotFound reports whether the failure was a missing resource.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsUnavailable reports whether the failure looks transient on the store side.
func (e *APIError) IsUnavailable() bool {
	return e.Status >= http.StatusInternalServerError
}

// AsAPIError unwraps err into an APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
