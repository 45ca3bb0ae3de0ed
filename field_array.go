// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// ArrayField is an instance of an ArrayType: a fixed-length list of
// elements, materialized lazily on first access of each index
// (spec.md §4.5).
type ArrayField struct {
	fieldBase
	typ      *ArrayType
	elements []Field
}

// NewArrayField creates an ArrayField of the type's fixed length with
// no elements materialized yet.
func NewArrayField(t *ArrayType) *ArrayField {
	return &ArrayField{typ: t, elements: make([]Field, t.Length())}
}

// Type implements Field.
func (f *ArrayField) Type() FieldType { return f.typ }

// IsSet implements Field.
func (f *ArrayField) IsSet() bool {
	for _, e := range f.elements {
		if e == nil || !e.IsSet() {
			return false
		}
	}
	return true
}

// Validate implements Field.
func (f *ArrayField) Validate() error {
	for _, e := range f.elements {
		if e == nil {
			return ErrValidation
		}
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Reset implements Field.
func (f *ArrayField) Reset() {
	for _, e := range f.elements {
		if e != nil {
			e.Reset()
		}
	}
}

// Freeze implements Field, cascading to every materialized element.
func (f *ArrayField) Freeze() {
	f.frozen = true
	for _, e := range f.elements {
		if e != nil {
			e.Freeze()
		}
	}
}

// Copy implements Field.
func (f *ArrayField) Copy() Field {
	cp := &ArrayField{typ: f.typ, elements: make([]Field, len(f.elements))}
	for i, e := range f.elements {
		if e != nil {
			cp.elements[i] = e.Copy()
		}
	}
	return cp
}

// Len returns the array's fixed length.
func (f *ArrayField) Len() int { return len(f.elements) }

// GetElement returns the element field at i, materializing it on first access.
func (f *ArrayField) GetElement(i int) (Field, error) {
	if i < 0 || i >= len(f.elements) {
		return nil, ErrNotFound
	}
	if f.elements[i] == nil {
		child, err := NewField(f.typ.ElementType())
		if err != nil {
			return nil, err
		}
		f.elements[i] = child
	}
	return f.elements[i], nil
}
