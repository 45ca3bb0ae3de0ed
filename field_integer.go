// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// IntegerField is an instance of an IntegerType (spec.md §4.5).
type IntegerField struct {
	fieldBase
	typ     *IntegerType
	signed  int64
	unsigned uint64
}

// NewIntegerField creates a zero-valued, unset IntegerField of type t.
func NewIntegerField(t *IntegerType) *IntegerField {
	return &IntegerField{typ: t}
}

// Type implements Field.
func (f *IntegerField) Type() FieldType { return f.typ }

// IsSet implements Field.
func (f *IntegerField) IsSet() bool { return f.payloadSet }

// Validate implements Field.
func (f *IntegerField) Validate() error {
	if !f.payloadSet {
		return fmt.Errorf("%w: integer field has no payload", ErrValidation)
	}
	return nil
}

// Reset implements Field.
func (f *IntegerField) Reset() { f.payloadSet = false }

// Freeze implements Field.
func (f *IntegerField) Freeze() { f.frozen = true }

// Copy implements Field.
func (f *IntegerField) Copy() Field {
	cp := *f
	return &cp
}

// SetSigned assigns a signed payload, range-checked against the
// integer type's bit width: [-2^(n-1), 2^(n-1)-1] (spec.md §4.5). An
// out-of-range v is an invalid argument (ErrInvalid), not a validation
// failure: the field never accepts the payload in the first place.
func (f *IntegerField) SetSigned(v int64) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	lo, hi := f.typ.signedRange()
	if v < lo || v > hi {
		return fmt.Errorf("%w: signed value %d out of range [%d,%d] for a %d-bit integer",
			ErrInvalid, v, lo, hi, f.typ.sizeBits)
	}
	f.signed = v
	f.unsigned = uint64(v)
	f.payloadSet = true
	return nil
}

// SetUnsigned assigns an unsigned payload, range-checked against the
// integer type's bit width: [0, 2^n-1], with 2^64-1 special-cased for
// n=64 (spec.md §4.5). An out-of-range v returns ErrInvalid, the same
// as SetSigned.
func (f *IntegerField) SetUnsigned(v uint64) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	if v > f.typ.unsignedMax() {
		return fmt.Errorf("%w: unsigned value %d exceeds %d-bit range", ErrInvalid, v, f.typ.sizeBits)
	}
	f.unsigned = v
	f.signed = int64(v)
	f.payloadSet = true
	return nil
}

// Signed returns the field's payload interpreted as signed.
func (f *IntegerField) Signed() (int64, error) {
	if !f.payloadSet {
		return 0, ErrInvalid
	}
	return f.signed, nil
}

// Unsigned returns the field's payload interpreted as unsigned.
func (f *IntegerField) Unsigned() (uint64, error) {
	if !f.payloadSet {
		return 0, ErrInvalid
	}
	return f.unsigned, nil
}
