// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// maxSequenceLength is the largest length SetLength accepts: 2^31
// (spec.md §4.5).
const maxSequenceLength = 1 << 31

// SequenceField is an instance of a SequenceType: a variable-length
// list of elements whose size must be fixed with SetLength before any
// element is addressed (spec.md §4.5).
type SequenceField struct {
	fieldBase
	typ        *SequenceType
	elements   []Field
	lengthSet  bool
}

// NewSequenceField creates a SequenceField with no length set yet.
func NewSequenceField(t *SequenceType) *SequenceField {
	return &SequenceField{typ: t}
}

// Type implements Field.
func (f *SequenceField) Type() FieldType { return f.typ }

// IsSet implements Field. An unsized sequence is never set; an
// explicitly zero-length sequence is set as soon as its length is fixed.
func (f *SequenceField) IsSet() bool {
	if !f.lengthSet {
		return false
	}
	for _, e := range f.elements {
		if e == nil || !e.IsSet() {
			return false
		}
	}
	return true
}

// Validate implements Field.
func (f *SequenceField) Validate() error {
	if !f.lengthSet {
		return fmt.Errorf("%w: sequence length has not been set", ErrValidation)
	}
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

// Reset implements Field. The length, and any materialized elements,
// survive a Reset; only their payload_set state is cleared.
func (f *SequenceField) Reset() {
	for _, e := range f.elements {
		if e != nil {
			e.Reset()
		}
	}
}

// Freeze implements Field, cascading to every materialized element.
func (f *SequenceField) Freeze() {
	f.frozen = true
	for _, e := range f.elements {
		if e != nil {
			e.Freeze()
		}
	}
}

// Copy implements Field.
func (f *SequenceField) Copy() Field {
	cp := &SequenceField{typ: f.typ, lengthSet: f.lengthSet, elements: make([]Field, len(f.elements))}
	for i, e := range f.elements {
		if e != nil {
			cp.elements[i] = e.Copy()
		}
	}
	return cp
}

// Len returns the sequence's current length, or 0 if SetLength has
// never been called.
func (f *SequenceField) Len() int { return len(f.elements) }

// SetLength fixes the sequence's length, growing or shrinking the
// backing element slice. Growing adds unmaterialized elements;
// shrinking drops the excess. Must be called before any element is
// addressed with GetElement.
func (f *SequenceField) SetLength(n uint32) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	if n > maxSequenceLength {
		return fmt.Errorf("%w: sequence length %d exceeds maximum of %d", ErrValidation, n, maxSequenceLength)
	}
	cur := len(f.elements)
	switch {
	case int(n) > cur:
		f.elements = append(f.elements, make([]Field, int(n)-cur)...)
	case int(n) < cur:
		f.elements = f.elements[:n]
	}
	f.lengthSet = true
	return nil
}

// GetElement returns the element field at i, materializing it on
// first access. Returns ErrInvalid if the length has not been set yet.
func (f *SequenceField) GetElement(i int) (Field, error) {
	if !f.lengthSet {
		return nil, ErrInvalid
	}
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
