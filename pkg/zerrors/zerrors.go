// Package zerrors defines the error-kind taxonomy shared across the engine's
// adapters, following the sentinel-error + wrapped-error style of
// pkg/modeler/errors.go and pkg/nlp/errors.go.
package zerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can decide on retry/surface behavior
// without string-matching messages.
type Kind string

const (
	// Config indicates bad environment or startup configuration.
	Config Kind = "config"
	// Validation indicates a malformed request or schema failure.
	Validation Kind = "validation"
	// Transport indicates an adapter connectivity failure.
	Transport Kind = "transport"
	// Backend indicates a storage-side error, including constraint violations.
	Backend Kind = "backend"
	// Extraction indicates a language-model parse or timeout failure.
	Extraction Kind = "extraction"
	// Ontology indicates a triple failed ontology validation.
	Ontology Kind = "ontology"
	// NotFound indicates the requested resource does not exist.
	NotFound Kind = "not_found"
	// Conflict indicates a duplicate unique key or superseding write race.
	Conflict Kind = "conflict"
)

// Error is the engine's uniform error envelope: a kind, a message, an
// optional offending field path, and the wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind around an existing error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithField attaches the offending request/schema field path.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is reports whether err is (or wraps) a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.Kind == kind
	}
	return false
}

// Retryable reports whether the recovery policy of §7 allows at most one
// retry with exponential backoff. Only Transport errors on idempotent
// operations (reads and MERGE-style writes) are retryable; Validation and
// NotFound never retry; Backend constraint violations never retry.
func Retryable(err error) bool {
	return Is(err, Transport)
}
