package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure surfaced to the caller.  Every kind except
// KindStore describes a request the caller can correct.
type Kind string

const (
	KindMissingField         Kind = "MissingField"
	KindInvalidType          Kind = "InvalidType"
	KindInvalidValue         Kind = "InvalidValue"
	KindInvalidDate          Kind = "InvalidDate"
	KindInvalidTime          Kind = "InvalidTime"
	KindClosedDay            Kind = "ClosedDay"
	KindPastDate             Kind = "PastDate"
	KindOutOfHours           Kind = "OutOfHours"
	KindInvalidInitialStatus Kind = "InvalidInitialStatus"
	KindUnknownStatus        Kind = "UnknownStatus"
	KindIllegalTransition    Kind = "IllegalTransition"
	KindNotFound             Kind = "NotFound"
	KindInsufficientCapacity Kind = "InsufficientCapacity"
	KindTableOccupied        Kind = "TableOccupied"
	KindAlreadySeated        Kind = "AlreadySeated"
	KindTableNotOccupied     Kind = "TableNotOccupied"
	KindStore                Kind = "StoreError"
)

// Error is a tagged failure carrying a kind and a human-readable message.
// Field names the offending input field for validation failures.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func fieldError(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a persistence failure.  It is passed through unchanged
// and never retried here.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func storeError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// KindOf returns the kind of err, KindStore for store failures and the
// empty kind for nil or unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var se *StoreError
	if errors.As(err, &se) {
		return KindStore
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
