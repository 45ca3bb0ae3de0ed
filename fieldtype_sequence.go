// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// SequenceType is the Sequence field-type constructor: a
// variable-length repetition of an element type whose length is given
// by a named Integer field elsewhere in the document (spec.md §3.2).
// Like Variant, the length is carried as an unresolved path string
// until the resolver converts it to a Field-path.
type SequenceType struct {
	typeBase
	element      FieldType
	lengthPath   string
	resolvedPath *FieldPath
}

// NewSequenceType creates a Sequence type over element, keyed by the
// (not yet resolved) length path string.
func NewSequenceType(element FieldType, lengthPath string) (*SequenceType, error) {
	if element == nil {
		return nil, fmt.Errorf("%w: nil sequence element type", ErrInvalid)
	}
	return &SequenceType{
		typeBase:   typeBase{alignment: element.Alignment(), byteOrder: OrderNative},
		element:    element,
		lengthPath: lengthPath,
	}, nil
}

// Kind implements FieldType.
func (t *SequenceType) Kind() FieldTypeKind { return KindSequence }

// ElementType returns the sequence's element type.
func (t *SequenceType) ElementType() FieldType { return t.element }

// LengthPath returns the unresolved length path string.
func (t *SequenceType) LengthPath() string { return t.lengthPath }

// ResolvedLengthPath returns the resolved Field-path, or nil if
// resolution hasn't run yet.
func (t *SequenceType) ResolvedLengthPath() *FieldPath { return t.resolvedPath }

// setResolved is called by the resolver once the length path has been
// converted to an absolute Field-path pointing at an unsigned Integer.
func (t *SequenceType) setResolved(path *FieldPath) { t.resolvedPath = path }

// Copy implements FieldType.
func (t *SequenceType) Copy() FieldType {
	cp := *t
	cp.frozen = false
	cp.element = t.element.Copy()
	return &cp
}

// CompareType implements FieldType.
func (t *SequenceType) CompareType(other FieldType) bool {
	o, ok := other.(*SequenceType)
	return ok && t.lengthPath == o.lengthPath && t.element.CompareType(o.element)
}

// Freeze implements FieldType, cascading to the element type.
func (t *SequenceType) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	t.element.Freeze()
}
