package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing or malformed request fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// UpstreamError wraps a failed model call. Timeout is set when the per-call
// deadline elapsed.
type UpstreamError struct {
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("model call timed out: %v", e.Err)
	}
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StorageError wraps a message log failure, including messages rejected by
// validation before they were written.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("message log: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// EmptyResponseError is returned when the model produced no text. Raw holds
// whatever came back, for the client to inspect.
type EmptyResponseError struct {
	Raw string
}

func (e *EmptyResponseError) Error() string {
	return "model returned an empty response"
}
