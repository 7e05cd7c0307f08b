package cil

import "errors"

// The fatal error categories of spec.md §7: conditions that abort linking
// entirely, as distinct from ErrRecoverable below, which is resolved by
// Autopatch rather than by aborting. Wrap one of these with fmt.Errorf's
// %w and errors.Is/errors.As to classify a failure.
var (
	// ErrConflictingType is returned by Join when two translation units
	// disagree on the shape of a type def sharing a name.
	ErrConflictingType = errors.New("cil: conflicting type definition")

	// ErrConflictingMethod is returned by Join when two translation
	// units disagree on the signature of a method sharing a name.
	ErrConflictingMethod = errors.New("cil: conflicting method definition")

	// ErrConflictingStatic is returned by Join when two translation
	// units disagree on the type of a static field sharing a name.
	ErrConflictingStatic = errors.New("cil: conflicting static field definition")

	// ErrUncomputableSize is returned by Assembly.SizeOf for a type with
	// no compile-time-constant layout (slices, string slices, generics).
	ErrUncomputableSize = errors.New("cil: type has no compile-time-constant size")

	// ErrMalformedOp is returned when an op carries a payload that
	// cannot be interpreted: a StackDelta or FlipCond computed over an
	// op kind with no defined behavior for it.
	ErrMalformedOp = errors.New("cil: malformed or unsupported op")

	// ErrUnsupportedItem is returned by lower.AddItem when the frontend
	// hands in an item kind the back-end has no lowering for (spec.md
	// §6/§7 category 1: "an item kind or type the back-end does not
	// handle").
	ErrUnsupportedItem = errors.New("cil: unsupported item kind")
)

// ErrRecoverable marks the one non-fatal category: an unresolved external
// static call site, which Autopatch repairs in place rather than failing
// the whole link (spec.md §7, category 6).
var ErrRecoverable = errors.New("cil: unresolved external call site (recoverable via Autopatch)")
