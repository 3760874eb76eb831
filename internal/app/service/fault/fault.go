// internal/app/service/fault/fault.go

// Package fault defines the failure taxonomy shared by the service layer.
//
// Every mutating operation fails with exactly one of these categories, and
// always before any state change: authorization and invariant checks run
// first, and multi-step cascades are transactional, so a returned fault
// never leaves partial state behind. Datastore errors pass through
// unwrapped and roll the whole cascade back.
//
// Hidden organizations and events are reported as ErrNotFound rather than
// ErrNotAuthorized so their existence does not leak to outsiders.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized: the actor lacks the required role.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrConflict: the operation violates a uniqueness or state invariant
	// (already a member, already applied, target is the creator).
	ErrConflict = errors.New("conflict")

	// ErrNotFound: the referenced entity does not exist, or visibility
	// rules hide it from the actor.
	ErrNotFound = errors.New("not found")

	// ErrInvalid: malformed input (too few players, mismatched score
	// array length).
	ErrInvalid = errors.New("invalid input")
)

// NotAuthorized wraps ErrNotAuthorized with a reason.
func NotAuthorized(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotAuthorized)...)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// NotFound wraps ErrNotFound with a reason.
func NotFound(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Invalid wraps ErrInvalid with a reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalid)...)
}
