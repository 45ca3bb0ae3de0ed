// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// ByteOrder is the byte order a field type's payload is encoded in.
// Native is resolved against the owning Trace's native byte order at
// serialization time (spec.md §4.3).
type ByteOrder int

// The four byte orders a field type may declare.
const (
	OrderNative ByteOrder = iota
	OrderLittleEndian
	OrderBigEndian
	OrderNetwork
)

// Encoding is the text encoding of an Integer (used for 8-bit
// "character" integers) or a String field type.
type Encoding int

// The three encodings a field type may declare.
const (
	EncodingNone Encoding = iota
	EncodingUTF8
	EncodingASCII
)

// IntegerBase is the preferred display base of an Integer field type.
type IntegerBase int

// The four accepted display bases.
const (
	Base2  IntegerBase = 2
	Base8  IntegerBase = 8
	Base10 IntegerBase = 10
	Base16 IntegerBase = 16
)

// FieldTypeKind tags the eight CTF field-type constructors
// (spec.md §3.2).
type FieldTypeKind int

// The field-type kinds.
const (
	KindInteger FieldTypeKind = iota
	KindFloatingPoint
	KindEnumeration
	KindString
	KindStructure
	KindVariant
	KindArray
	KindSequence
)

// FieldType is the common contract every one of the eight CTF type
// constructors implements (spec.md §4.3).
type FieldType interface {
	// Kind reports which of the eight constructors built this type.
	Kind() FieldTypeKind

	// IsFrozen reports whether the type (or an ancestor frozen before
	// it) rejects mutators.
	IsFrozen() bool

	// Freeze makes the type, and transitively every child type,
	// immutable.
	Freeze()

	// Alignment returns the type's bit alignment.
	Alignment() uint32

	// SetAlignment sets the type's bit alignment. Fails with ErrFrozen
	// if the type is frozen.
	SetAlignment(bits uint32) error

	// ByteOrder returns the type's declared byte order.
	ByteOrder() ByteOrder

	// SetByteOrder sets the type's declared byte order. Fails with
	// ErrFrozen if the type is frozen.
	SetByteOrder(bo ByteOrder) error

	// Copy performs a deep copy; the copy starts out unfrozen even if
	// the source was frozen (used by the validation pass, spec.md
	// §4.8 step 1).
	Copy() FieldType

	// CompareType is recursive structural equality (spec.md §4.3). For
	// Variants only the tag name is compared; the cached tag-type
	// reference is ignored.
	CompareType(other FieldType) bool
}

// typeBase is the common embedded state of every FieldType
// implementation: the frozen bit, alignment, and byte order.
type typeBase struct {
	frozen    bool
	alignment uint32
	byteOrder ByteOrder
}

func (b *typeBase) IsFrozen() bool { return b.frozen }

func (b *typeBase) Alignment() uint32 { return b.alignment }

func (b *typeBase) SetAlignment(bits uint32) error {
	if b.frozen {
		return ErrFrozen
	}
	if bits == 0 {
		return fmt.Errorf("%w: alignment must be non-zero", ErrInvalid)
	}
	b.alignment = bits
	return nil
}

func (b *typeBase) ByteOrder() ByteOrder { return b.byteOrder }

func (b *typeBase) SetByteOrder(bo ByteOrder) error {
	if b.frozen {
		return ErrFrozen
	}
	b.byteOrder = bo
	return nil
}

// resolveByteOrder replaces OrderNative with the trace's native byte
// order (spec.md §4.3).
func resolveByteOrder(bo ByteOrder, native ByteOrder) (ByteOrder, error) {
	if bo != OrderNative {
		return bo, nil
	}
	if native == OrderNative {
		return 0, fmt.Errorf("%w: trace native byte order is unspecified", ErrValidation)
	}
	return native, nil
}

// CompoundFieldType is implemented by the field types that hold named
// or indexed children: Structure and Variant.
type CompoundFieldType interface {
	FieldType

	// FieldCount returns the number of direct children.
	FieldCount() int

	// FieldTypeAtIndex returns the child type at position i.
	FieldTypeAtIndex(i int) (FieldType, error)

	// FieldTypeByName returns the child type named name.
	FieldTypeByName(name string) (FieldType, error)

	// NameAtIndex returns the name of the child at position i.
	NameAtIndex(i int) (string, error)
}
