// Package errs provides the unified error type used across all of sqlprobe.
//
// Every subsystem (database session, validation engine, filestore, …) wraps
// its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// driver-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.ErrKindQueryFailed, "batch rejected", sqlErr)
//
//	// In the orchestrator — check error kind:
//	if errs.IsUnreadable(err) {
//	    rep.Unreadable(obj.Schema, obj.Name, err.Error())
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing engine-specific codes.
// The database driver maps its native errors to one of these kinds,
// and the validation engine layers its own kinds on top, giving callers
// a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object in the catalog
	ErrKindConnectionFailed         // cannot reach the engine
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // statement rejected by the engine
	ErrKindInvalidInput             // bad arguments or configuration from the caller
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindUnreadable               // object definition text could not be retrieved
	ErrKindCompileFailed            // definition rejected by the compile-only check
	ErrKindExecFailed               // execution probe raised an engine error
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindUnreadable:
		return "unreadable"
	case ErrKindCompileFailed:
		return "compile_failed"
	case ErrKindExecFailed:
		return "exec_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all sqlprobe subsystems.
// Drivers and the engine produce it; callers inspect it via the Is*
// predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result
// (no rows, object missing from the catalog, …).
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is an engine statement failure.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == ErrKindPermissionDenied
}

// IsUnreadable reports whether err means an object's definition text
// could not be reconstructed (dropped concurrently, encrypted, …).
func IsUnreadable(err error) bool {
	return kindOf(err) == ErrKindUnreadable
}

// IsCompileFailed reports whether err came from the compile-only check.
func IsCompileFailed(err error) bool {
	return kindOf(err) == ErrKindCompileFailed
}

// IsExecFailed reports whether err came from the execution probe.
func IsExecFailed(err error) bool {
	return kindOf(err) == ErrKindExecFailed
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
