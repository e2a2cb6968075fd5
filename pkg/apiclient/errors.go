package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is an RFC 7807 problem returned by the API.
type APIError struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func newAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Title != "" {
		apiErr.Status = status
		return &apiErr
	}
	return &APIError{
		Status: status,
		Title:  http.StatusText(status),
		Detail: strings.TrimSpace(string(body)),
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsValidationError returns true if the request was rejected as invalid.
func (e *APIError) IsValidationError() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusRequestEntityTooLarge
}

// IsUpstreamError returns true if a directory server could not be reached.
func (e *APIError) IsUpstreamError() bool {
	return e.Status == http.StatusBadGateway
}

// IsConflict returns true if the server cannot perform the request in its
// current configuration, e.g. archiving without a report bucket.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}
