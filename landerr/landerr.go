// Package landerr defines the typed failures returned by the land registry
// chaincode. Every failure carries a taxonomy Code and a stable Reason; the
// Fabric client only ever sees the error string, so the Reason leads it.
package landerr

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInvalidState Code = "INVALID_STATE"
	CodeConflict     Code = "CONFLICT"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeGateFailed   Code = "GATE_FAILED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL"
)

// Error is a domain failure. Errors created with Sub chain to a parent so that
// errors.Is matches both the specific reason and its family.
type Error struct {
	Code   Code
	Reason string
	Detail string
	parent *Error
}

// New creates a sentinel error.
func New(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

// Sub creates a more specific sentinel in the same family.
func (e *Error) Sub(reason string) *Error {
	return &Error{Code: e.Code, Reason: reason, parent: e}
}

// Withf returns a copy of e carrying a human-readable detail.
func (e *Error) Withf(format string, args ...any) *Error {
	c := *e
	c.Detail = fmt.Sprintf(format, args...)
	return &c
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail != "" {
		return e.Reason + ": " + e.Detail
	}
	return e.Reason
}

// Is reports whether target names e's reason or one of its ancestors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	for c := e; c != nil; c = c.parent {
		if c.Reason == t.Reason {
			return true
		}
	}
	return false
}

// CodeOf returns the taxonomy code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ReasonOf returns the specific reason of err, or "" for foreign errors.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
