// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// ArrayType is the Array field-type constructor: a fixed-length
// repetition of a strongly-referenced element type (spec.md §3.2).
type ArrayType struct {
	typeBase
	element FieldType
	length  uint32
}

// NewArrayType creates an Array type of the given fixed length over element.
func NewArrayType(element FieldType, length uint32) (*ArrayType, error) {
	if element == nil {
		return nil, fmt.Errorf("%w: nil array element type", ErrInvalid)
	}
	return &ArrayType{
		typeBase: typeBase{alignment: element.Alignment(), byteOrder: OrderNative},
		element:  element,
		length:   length,
	}, nil
}

// Kind implements FieldType.
func (t *ArrayType) Kind() FieldTypeKind { return KindArray }

// ElementType returns the array's element type.
func (t *ArrayType) ElementType() FieldType { return t.element }

// Length returns the array's fixed length.
func (t *ArrayType) Length() uint32 { return t.length }

// Copy implements FieldType.
func (t *ArrayType) Copy() FieldType {
	cp := *t
	cp.frozen = false
	cp.element = t.element.Copy()
	return &cp
}

// CompareType implements FieldType.
func (t *ArrayType) CompareType(other FieldType) bool {
	o, ok := other.(*ArrayType)
	return ok && t.length == o.length && t.element.CompareType(o.element)
}

// Freeze implements FieldType, cascading to the element type.
func (t *ArrayType) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	t.element.Freeze()
}
