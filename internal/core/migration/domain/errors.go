package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredential is returned when the access token is malformed.
	ErrInvalidCredential = errors.New("invalid access token: personal access tokens start with CFPAT-")

	// ErrContentTypeMissing is returned when the migration content type does not exist.
	ErrContentTypeMissing = errors.New("content type 'migration' is missing; run 'ctf-migrate init' first")

	// ErrAccessDenied is returned when the credential is rejected by the remote service.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when a remote entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a problem with a declared intent found before any request is sent.
type ValidationError struct {
	Intent  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Intent == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Intent, e.Message)
}

// ValidationErrors aggregates validation errors of one plan.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation error(s):\n  %s", len(e), strings.Join(msgs, "\n  "))
}

// RuntimeError reports a failure while gathering the remote state a plan depends on.
type RuntimeError struct {
	Intent string
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Intent, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// RuntimeErrors aggregates runtime errors of one plan.
type RuntimeErrors []*RuntimeError

func (e RuntimeErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d runtime error(s):\n  %s", len(e), strings.Join(msgs, "\n  "))
}

// RequestError is the structured form of a failed remote request.
type RequestError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	URL        string `json:"url"`
}

func (e *RequestError) Error() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("%s %s: %s", e.Status, e.URL, e.Message)
	}
	return string(data)
}

// Is maps HTTP status codes onto the package sentinels.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAccessDenied:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// AsRequestError converts any error into a RequestError for the given url.
func AsRequestError(err error, url string) *RequestError {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return &RequestError{
		Status:  "Error",
		Message: err.Error(),
		URL:     url,
	}
}

// BatchError is raised when one or more requests of a batch failed.
type BatchError struct {
	Intent  string
	Errors  []*RequestError
	LogPath string
}

func (e *BatchError) Error() string {
	msg := fmt.Sprintf("batch %q failed with %d error(s)", e.Intent, len(e.Errors))
	if e.LogPath != "" {
		msg += fmt.Sprintf(", details written to %s", e.LogPath)
	}
	return msg
}
