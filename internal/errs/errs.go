// Package errs defines the error taxonomy shared across tallow's core
// engines. Every fallible operation in the primitives, key-exchange,
// ratchet, transfer, wire, relay, and transport packages returns (or wraps)
// one of these kinds so callers can branch on failure class without string
// matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the taxonomy entries from the design's error handling
// section. It identifies the class of failure, not the specific cause.
type Kind string

const (
	InvalidArgument   Kind = "invalid_argument"
	CryptoFailure     Kind = "crypto_failure"
	HandshakeFailure  Kind = "handshake_failure"
	IntegrityFailure  Kind = "integrity_failure"
	DecodingFailure   Kind = "decoding_failure"
	EncodingFailure   Kind = "encoding_failure"
	TransportFailure  Kind = "transport_failure"
	Timeout           Kind = "timeout"
	ResourceExhausted Kind = "resource_exhausted"
	NotFound          Kind = "not_found"
)

// Error pairs a Kind with a human-readable reason and an optional wrapped
// cause. Construct with New or Wrap; callers compare kinds with Is or
// errors.As against *Error.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, errs.New(errs.IntegrityFailure, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap constructs an *Error carrying cause, preserving it for errors.Unwrap.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// Of reports the Kind of err if it (or something it wraps) is an *Error,
// and false otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// ExitCode maps a Kind to the CLI exit codes of spec.md §6.
func ExitCode(kind Kind) int {
	switch kind {
	case "":
		return 0
	case InvalidArgument:
		return 2
	case HandshakeFailure:
		return 3
	case IntegrityFailure:
		return 4
	case Timeout:
		return 5
	default:
		return 1
	}
}
