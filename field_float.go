// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// FloatField is an instance of a FloatingPointType (spec.md §4.5).
type FloatField struct {
	fieldBase
	typ   *FloatingPointType
	value float64
}

// NewFloatField creates a zero-valued, unset FloatField of type t.
func NewFloatField(t *FloatingPointType) *FloatField {
	return &FloatField{typ: t}
}

// Type implements Field.
func (f *FloatField) Type() FieldType { return f.typ }

// IsSet implements Field.
func (f *FloatField) IsSet() bool { return f.payloadSet }

// Validate implements Field.
func (f *FloatField) Validate() error {
	if !f.payloadSet {
		return fmt.Errorf("%w: float field has no payload", ErrValidation)
	}
	return nil
}

// Reset implements Field.
func (f *FloatField) Reset() { f.payloadSet = false }

// Freeze implements Field.
func (f *FloatField) Freeze() { f.frozen = true }

// Copy implements Field.
func (f *FloatField) Copy() Field {
	cp := *f
	return &cp
}

// Set assigns v. If the type is single precision, v must round-trip
// through a float32 unchanged, or ErrValidation is returned
// (spec.md §4.5).
func (f *FloatField) Set(v float64) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	if f.typ.IsSinglePrecision() {
		if float64(float32(v)) != v {
			return fmt.Errorf("%w: %v does not round-trip through single precision", ErrValidation, v)
		}
	}
	f.value = v
	f.payloadSet = true
	return nil
}

// Value returns the field's payload.
func (f *FloatField) Value() (float64, error) {
	if !f.payloadSet {
		return 0, ErrInvalid
	}
	return f.value, nil
}
