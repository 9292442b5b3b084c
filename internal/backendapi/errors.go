package backendapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized marks a 401 from any backend endpoint; the session guard
	// reacts to it by tearing down the operator session.
	ErrUnauthorized = errors.New("backend unauthorized")

	// ErrNotFound marks a 404 on a lookup endpoint. It is a valid terminal
	// outcome for a search, not a transport failure.
	ErrNotFound = errors.New("backend resource not found")

	// ErrArtifactNotReady marks a 404 on a download URL while the export job
	// is still being produced. It drives the poll loop's retry branch.
	ErrArtifactNotReady = errors.New("export artifact not ready")

	// ErrInvalidCredentials marks a rejected login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// APIError is a non-2xx backend response with the decoded detail text, if any.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Detail) != "" {
		return fmt.Sprintf("backend api failed: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend api failed: status %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Detail extracts the backend-provided detail text from an error chain.
// It returns the empty string when the error carries none.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strings.TrimSpace(apiErr.Detail)
	}
	return ""
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)
	return &APIError{StatusCode: status, Detail: strings.TrimSpace(payload.Detail)}
}
