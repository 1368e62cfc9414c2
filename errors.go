// SPDX-License-Identifier: MIT
//
// errors.go — sentinel errors and the structured *ParseError type for the
// demes parser.
//
// Error policy (explicit and strict):
//   - Only sentinel variables (package-level) are exposed for error kinds.
//   - Callers MUST use errors.Is(err, ErrX) to branch on the kind of failure,
//     and errors.As(err, &pe) to recover the offending entity path.
//   - Sentinels are NEVER stringified into themselves; context is attached
//     via ParseError, never string concatenation.
//   - The core never panics; every failure path returns a *ParseError.
package demes

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per taxonomy kind in spec §7. Callers branch on
// these with errors.Is; the human-readable detail lives on ParseError.Msg.
var (
	// ErrMissingKey indicates a required field was absent from its mapping.
	ErrMissingKey = errors.New("demes: missing required key")

	// ErrTypeMismatch indicates a field's value did not have the expected type.
	ErrTypeMismatch = errors.New("demes: type mismatch")

	// ErrPredicateViolation indicates a field's value failed its range/shape predicate.
	ErrPredicateViolation = errors.New("demes: predicate violation")

	// ErrExtraField indicates a mapping had keys left over after all known fields were read.
	ErrExtraField = errors.New("demes: extra field")

	// ErrDuplicateName indicates two demes were declared with the same name.
	ErrDuplicateName = errors.New("demes: duplicate name")

	// ErrUnknownReference indicates a name reference (ancestor, source, dest, demes)
	// did not resolve to a previously declared deme.
	ErrUnknownReference = errors.New("demes: unknown reference")

	// ErrResolution indicates a failure while imputing omitted values from graph structure.
	ErrResolution = errors.New("demes: resolution error")

	// ErrValidation indicates a cross-entity invariant failed on the fully-resolved graph.
	ErrValidation = errors.New("demes: validation error")
)

// ParseError is the single structured error type returned by every failure
// path in this package. Path locates the offending field using a dotted,
// index-qualified notation (e.g. "demes[1].epochs[0].end_time"); Msg is a
// short, human-readable explanation. Unwrap returns the sentinel so callers
// can branch with errors.Is without parsing Msg.
type ParseError struct {
	Path string // dotted entity path to the offending field or entity
	Msg  string // short explanation
	kind error  // one of the Err* sentinels above
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.kind, e.Msg)
}

// Unwrap lets errors.Is(err, ErrMissingKey) etc. work against a ParseError.
func (e *ParseError) Unwrap() error { return e.kind }

// newParseError builds a *ParseError for the given kind, path and message.
func newParseError(kind error, path, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Path: path,
		Msg:  fmt.Sprintf(format, args...),
		kind: kind,
	}
}
