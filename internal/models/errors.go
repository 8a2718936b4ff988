package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAccessDenied is returned when a record exists but belongs to a
// different user.
var ErrAccessDenied = errors.New("access denied")

// ConfigurationError indicates invalid configuration or parameters that
// cannot be recovered at runtime.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ExtractionError indicates a file's text content could not be extracted.
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmbeddingServiceError indicates the embedding provider failed to produce
// vectors for a request.
type EmbeddingServiceError struct {
	Err error
}

func (e *EmbeddingServiceError) Error() string {
	return fmt.Sprintf("embedding service error: %v", e.Err)
}

func (e *EmbeddingServiceError) Unwrap() error {
	return e.Err
}

// CompletionServiceError indicates the completion provider failed to
// generate a response.
type CompletionServiceError struct {
	Err error
}

func (e *CompletionServiceError) Error() string {
	return fmt.Sprintf("completion service error: %v", e.Err)
}

func (e *CompletionServiceError) Unwrap() error {
	return e.Err
}
