package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no usable credential was stored. The guard has
	// already redirected the user.
	ErrUnauthenticated = errors.New("api: not authenticated")

	// ErrSessionEnded means the backend rejected the credential. The guard has
	// cleared it and redirected the user.
	ErrSessionEnded = errors.New("api: session ended")

	ErrSuggestionRequired = errors.New("api: a suggestion is required when disapproving an event")
	ErrNotPDF             = errors.New("api: only PDF files can be uploaded")
	ErrMalformedResponse  = errors.New("api: malformed response")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	Err     string
	Details string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.UserMessage())
}

// UserMessage is the server provided message, or a generic fallback.
func (e *APIError) UserMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != "":
		return e.Err
	case e.Details != "":
		return e.Details
	}
	return "Something went wrong. Please try again."
}

// Message picks the text to show a user for err.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
