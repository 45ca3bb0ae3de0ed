// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "errors"

// Errors returned by the IR, resolver, and packet codec. Every status
// listed in the error taxonomy gets one sentinel here, the same way
// the PE parser groups its ErrXxx values next to each other.
var (
	// ErrInvalid is returned when a caller passes a null, out-of-range,
	// or wrong-typed argument.
	ErrInvalid = errors.New("invalid argument")

	// ErrFrozen is returned when a mutator is attempted on a frozen IR node.
	ErrFrozen = errors.New("object is frozen")

	// ErrNotFound is returned when a structural lookup (field name,
	// index, path) misses.
	ErrNotFound = errors.New("not found")

	// ErrPathResolution is returned when the resolver cannot locate a
	// sequence/variant target, or the target violates a position or
	// type rule.
	ErrPathResolution = errors.New("path resolution failed")

	// ErrTypeMismatch is returned when a field assignment's type is not
	// structurally equal to the declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidation is returned when a validation or serialization walk
	// hits an unset field, and by the setters that reject a
	// non-single-precision float in a single-precision slot, a NUL byte
	// in a string, a sequence length over the limit, or a variant tag
	// value that matches no mapping. Out-of-range integer payloads are
	// rejected by SetSigned/SetUnsigned as ErrInvalid.
	ErrValidation = errors.New("validation failed")

	// ErrIO is returned when an underlying file operation fails.
	ErrIO = errors.New("i/o error")

	// ErrResourceExhausted is returned when an allocation or fallocate
	// call fails.
	ErrResourceExhausted = errors.New("resource exhausted")
)
