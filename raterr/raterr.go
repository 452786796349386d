// raterr/raterr.go
// Package raterr defines the error taxonomy shared by every rating module.
package raterr

import "errors"

// Sentinel errors. Callers should match with errors.Is, since every
// rating module wraps these with call-specific context.
var (
	// ErrArityMismatch is returned when len(ratings) != len(players), or an
	// interaction's players and outcomes slices disagree in length.
	ErrArityMismatch = errors.New("raterr: arity mismatch")

	// ErrUnknownPlayer is returned when an interaction references an
	// identifier absent from the players list.
	ErrUnknownPlayer = errors.New("raterr: unknown player")

	// ErrMalformedOutcome is returned when an outcome falls outside the
	// domain an algorithm accepts (e.g. Elo without wdl seeing a value
	// other than 0, 0.5 or 1).
	ErrMalformedOutcome = errors.New("raterr: malformed outcome")

	// ErrIncompatibleRate is returned for a rating specialization mismatch,
	// or differing base/spread/k within a single call.
	ErrIncompatibleRate = errors.New("raterr: incompatible rate")

	// ErrNonConvergent is returned when an iterative solver (MM, EP) fails
	// to reach its tolerance within the iteration budget.
	ErrNonConvergent = errors.New("raterr: failed to converge")

	// ErrNumericFailure is returned when a numeric routine (e.g. TrueSkill's
	// truncation weight) produces an out-of-range value.
	ErrNumericFailure = errors.New("raterr: numeric failure")
)
