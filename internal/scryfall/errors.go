package scryfall

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport failures: DNS, refused connections, timeouts.
	ErrNetwork = errors.New("network failure")
	// ErrMalformed is returned when a response cannot be decoded or fails validation.
	ErrMalformed = errors.New("malformed response")
	// ErrEmptyResult is returned by Search when nothing matched.
	ErrEmptyResult = errors.New("no cards matched")
	// ErrNotFound is returned when the API answers 404 for a card lookup.
	ErrNotFound = errors.New("card not found")
)

// APIError is the error object the API returns with non-2xx statuses.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall %d %s: %s", e.Status, e.Code, e.Details)
	}
	return fmt.Sprintf("scryfall %d %s", e.Status, e.Code)
}

// Is lets errors.Is match a 404 API error against ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}
