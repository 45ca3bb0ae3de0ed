// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// FloatingPointType is the FloatingPoint field-type constructor
// (spec.md §3.2): exp_digits + mant_digits <= 64.
type FloatingPointType struct {
	typeBase
	expDigits  uint32
	mantDigits uint32
}

// NewFloatingPointType creates a FloatingPoint type with the given
// exponent and mantissa digit counts.
func NewFloatingPointType(expDigits, mantDigits uint32) (*FloatingPointType, error) {
	if expDigits+mantDigits > 64 {
		return nil, fmt.Errorf("%w: exp_digits+mant_digits must be <= 64, got %d",
			ErrInvalid, expDigits+mantDigits)
	}
	return &FloatingPointType{
		typeBase:   typeBase{alignment: 1, byteOrder: OrderNative},
		expDigits:  expDigits,
		mantDigits: mantDigits,
	}, nil
}

// NewSinglePrecisionFloatingPointType creates the standard IEEE-754
// single precision layout (8 exponent bits, 24 mantissa bits).
func NewSinglePrecisionFloatingPointType() *FloatingPointType {
	t, _ := NewFloatingPointType(8, 24)
	return t
}

// NewDoublePrecisionFloatingPointType creates the standard IEEE-754
// double precision layout (11 exponent bits, 53 mantissa bits).
func NewDoublePrecisionFloatingPointType() *FloatingPointType {
	t, _ := NewFloatingPointType(11, 53)
	return t
}

// Kind implements FieldType.
func (t *FloatingPointType) Kind() FieldTypeKind { return KindFloatingPoint }

// ExpDigits returns the number of exponent bits.
func (t *FloatingPointType) ExpDigits() uint32 { return t.expDigits }

// MantDigits returns the number of mantissa bits.
func (t *FloatingPointType) MantDigits() uint32 { return t.mantDigits }

// SizeBits returns the total bit width (exp_digits + mant_digits).
func (t *FloatingPointType) SizeBits() uint32 { return t.expDigits + t.mantDigits }

// IsSinglePrecision reports whether this is the standard 32-bit layout.
func (t *FloatingPointType) IsSinglePrecision() bool {
	return t.expDigits == 8 && t.mantDigits == 24
}

// Copy implements FieldType.
func (t *FloatingPointType) Copy() FieldType {
	cp := *t
	cp.frozen = false
	return &cp
}

// CompareType implements FieldType.
func (t *FloatingPointType) CompareType(other FieldType) bool {
	o, ok := other.(*FloatingPointType)
	if !ok {
		return false
	}
	return t.expDigits == o.expDigits && t.mantDigits == o.mantDigits &&
		t.byteOrder == o.byteOrder
}

// Freeze implements FieldType.
func (t *FloatingPointType) Freeze() { t.frozen = true }
