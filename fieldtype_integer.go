// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// IntegerType is the Integer field-type constructor: a fixed-width,
// optionally signed integer with a display base, an encoding, and an
// optional mapped clock class (spec.md §3.2).
type IntegerType struct {
	typeBase
	sizeBits    uint32
	signed      bool
	base        IntegerBase
	encoding    Encoding
	mappedClock *ClockClass
}

// NewIntegerType creates an Integer field type of sizeBits bits
// (1..64), unsigned, base 10, no encoding, byte-order Native.
func NewIntegerType(sizeBits uint32) (*IntegerType, error) {
	if sizeBits < 1 || sizeBits > 64 {
		return nil, fmt.Errorf("%w: integer size_bits must be in [1,64], got %d", ErrInvalid, sizeBits)
	}
	return &IntegerType{
		typeBase: typeBase{alignment: 1, byteOrder: OrderNative},
		sizeBits: sizeBits,
		base:     Base10,
	}, nil
}

// Kind implements FieldType.
func (t *IntegerType) Kind() FieldTypeKind { return KindInteger }

// SizeBits returns the integer's width in bits.
func (t *IntegerType) SizeBits() uint32 { return t.sizeBits }

// Signed reports whether the integer is signed.
func (t *IntegerType) Signed() bool { return t.signed }

// SetSigned sets whether the integer is signed.
func (t *IntegerType) SetSigned(signed bool) error {
	if t.frozen {
		return ErrFrozen
	}
	t.signed = signed
	return nil
}

// Base returns the integer's preferred display base.
func (t *IntegerType) Base() IntegerBase { return t.base }

// SetBase sets the integer's preferred display base.
func (t *IntegerType) SetBase(base IntegerBase) error {
	if t.frozen {
		return ErrFrozen
	}
	switch base {
	case Base2, Base8, Base10, Base16:
	default:
		return fmt.Errorf("%w: invalid display base %d", ErrInvalid, base)
	}
	t.base = base
	return nil
}

// EncodingOf returns the integer's text encoding.
func (t *IntegerType) EncodingOf() Encoding { return t.encoding }

// SetEncoding sets the integer's text encoding. Per spec.md §3.2, a
// non-None encoding requires size_bits == 8.
func (t *IntegerType) SetEncoding(enc Encoding) error {
	if t.frozen {
		return ErrFrozen
	}
	if enc != EncodingNone && t.sizeBits != 8 {
		return fmt.Errorf("%w: encoding requires an 8-bit integer, got %d bits", ErrInvalid, t.sizeBits)
	}
	t.encoding = enc
	return nil
}

// MappedClock returns the clock class this integer is mapped to, if any.
func (t *IntegerType) MappedClock() *ClockClass { return t.mappedClock }

// SetMappedClock maps this integer to a clock class.
func (t *IntegerType) SetMappedClock(cc *ClockClass) error {
	if t.frozen {
		return ErrFrozen
	}
	t.mappedClock = cc
	return nil
}

// Copy implements FieldType.
func (t *IntegerType) Copy() FieldType {
	cp := *t
	cp.frozen = false
	return &cp
}

// CompareType implements FieldType.
func (t *IntegerType) CompareType(other FieldType) bool {
	o, ok := other.(*IntegerType)
	if !ok {
		return false
	}
	return t.sizeBits == o.sizeBits && t.signed == o.signed &&
		t.base == o.base && t.encoding == o.encoding &&
		t.byteOrder == o.byteOrder
}

// Freeze implements FieldType. Integer has no child types to cascade to.
func (t *IntegerType) Freeze() { t.frozen = true }

// signedRange returns the inclusive [min, max] range a signed value of
// this width may hold.
func (t *IntegerType) signedRange() (int64, int64) {
	n := t.sizeBits
	if n == 64 {
		return int64(-1) << 63, int64(1)<<63 - 1
	}
	max := int64(1)<<(n-1) - 1
	return -max - 1, max
}

// unsignedMax returns the inclusive maximum an unsigned value of this
// width may hold.
func (t *IntegerType) unsignedMax() uint64 {
	if t.sizeBits == 64 {
		return ^uint64(0)
	}
	return uint64(1)<<t.sizeBits - 1
}
