// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// Field is the common contract every field-value node implements. The
// Field tree mirrors the FieldType tree one-for-one (spec.md §3.3).
type Field interface {
	// Type returns the FieldType this field is an instance of.
	Type() FieldType

	// IsSet reports whether every leaf of this field's subtree has a
	// payload (payload_set), with a Variant requiring only its
	// currently-selected option (spec.md §3.3, §4.5).
	IsSet() bool

	// Validate walks the subtree and returns ErrValidation if any leaf
	// is unset (spec.md §4.5).
	Validate() error

	// Reset clears payload_set on every leaf without shrinking buffers.
	Reset()

	// IsFrozen reports whether this field was appended to a Stream.
	IsFrozen() bool

	// Freeze marks this field, and transitively its children, frozen.
	Freeze()

	// Copy performs a deep copy of the field and its subtree.
	Copy() Field
}

// fieldBase is the embedded state every Field implementation shares:
// whether a payload has been assigned, and whether the field has been
// frozen by being appended to a Stream.
type fieldBase struct {
	payloadSet bool
	frozen     bool
}

func (b *fieldBase) IsFrozen() bool { return b.frozen }

func (b *fieldBase) checkMutable() error {
	if b.frozen {
		return ErrFrozen
	}
	return nil
}

// NewField constructs a zero-valued Field for any FieldType, the way a
// Structure/Array/Sequence lazily materializes its children on first access.
func NewField(ft FieldType) (Field, error) {
	switch t := ft.(type) {
	case *IntegerType:
		return NewIntegerField(t), nil
	case *FloatingPointType:
		return NewFloatField(t), nil
	case *EnumerationType:
		return NewEnumerationField(t), nil
	case *StringType:
		return NewStringField(t), nil
	case *StructureType:
		return NewStructureField(t), nil
	case *ArrayType:
		return NewArrayField(t), nil
	case *SequenceType:
		return NewSequenceField(t), nil
	case *VariantType:
		return NewVariantField(t), nil
	default:
		return nil, ErrInvalid
	}
}
