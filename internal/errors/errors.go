// Package errors provides the error types used across depscope. Errors
// carry a structural kind for errors.Is matching plus optional context
// (details, suggestion) so the CLI layer can report them usefully.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for use with errors.Is().
var (
	// ErrGraphInconsistency indicates a malformed dependency graph,
	// e.g. an edge referencing a package absent from the node set.
	// It is fatal: no tree is built and no UI is shown.
	ErrGraphInconsistency = errors.New("graph inconsistency")
	// ErrLoad indicates the dependency graph could not be loaded.
	ErrLoad = errors.New("load error")
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrNotFound indicates a resource (package, manifest, lockfile) was not found.
	ErrNotFound = errors.New("not found")
)

// Error is the base error type for depscope errors.
// It wraps an underlying error and provides additional context.
type Error struct {
	// Kind is the category of error (e.g. ErrGraphInconsistency, ErrLoad).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g. offending package id).
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether any error in err's chain matches the target.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with details and suggestion.
func (e *Error) Format() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	if len(e.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		for k, v := range e.Details {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *Error) WithDetails(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause of the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// New creates a new Error with the given kind and message.
func New(kind error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// WithSuggestion creates a new error with a suggestion.
func WithSuggestion(kind error, message, suggestion string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewGraphInconsistency creates a graph-inconsistency error for an edge
// whose target package is missing from the node set.
func NewGraphInconsistency(from, to string) *Error {
	return New(ErrGraphInconsistency,
		"dependency graph references an unknown package").
		WithDetails("from", from).
		WithDetails("to", to)
}
