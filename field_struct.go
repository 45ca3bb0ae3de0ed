// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// StructureField is an instance of a StructureType. Member fields are
// materialized lazily, on first access, the way a Structure's type
// tree is walked member by member (spec.md §4.5).
type StructureField struct {
	fieldBase
	typ      *StructureType
	children []Field
}

// NewStructureField creates a StructureField with no materialized
// children; children come into existence on first GetField/GetFieldAtIndex.
func NewStructureField(t *StructureType) *StructureField {
	return &StructureField{typ: t, children: make([]Field, t.FieldCount())}
}

// Type implements Field.
func (f *StructureField) Type() FieldType { return f.typ }

// IsSet implements Field. A StructureField is set only once every
// member has been materialized and is itself set.
func (f *StructureField) IsSet() bool {
	for _, c := range f.children {
		if c == nil || !c.IsSet() {
			return false
		}
	}
	return true
}

// Validate implements Field.
func (f *StructureField) Validate() error {
	for i, c := range f.children {
		if c == nil {
			name, _ := f.typ.NameAtIndex(i)
			return unsetMemberError(name)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Reset implements Field.
func (f *StructureField) Reset() {
	for _, c := range f.children {
		if c != nil {
			c.Reset()
		}
	}
}

// Freeze implements Field, cascading to every materialized child.
func (f *StructureField) Freeze() {
	f.frozen = true
	for _, c := range f.children {
		if c != nil {
			c.Freeze()
		}
	}
}

// Copy implements Field.
func (f *StructureField) Copy() Field {
	cp := &StructureField{typ: f.typ, children: make([]Field, len(f.children))}
	for i, c := range f.children {
		if c != nil {
			cp.children[i] = c.Copy()
		}
	}
	return cp
}

// GetFieldAtIndex returns the member field at i, materializing it on
// first access.
func (f *StructureField) GetFieldAtIndex(i int) (Field, error) {
	if i < 0 || i >= len(f.children) {
		return nil, ErrNotFound
	}
	if f.children[i] == nil {
		ft, err := f.typ.FieldTypeAtIndex(i)
		if err != nil {
			return nil, err
		}
		child, err := NewField(ft)
		if err != nil {
			return nil, err
		}
		f.children[i] = child
	}
	return f.children[i], nil
}

// GetField returns the member field named name, materializing it on
// first access.
func (f *StructureField) GetField(name string) (Field, error) {
	i, err := f.typ.IndexOf(name)
	if err != nil {
		return nil, err
	}
	return f.GetFieldAtIndex(i)
}

// SetFieldByName replaces the member field named name with field,
// after checking the types match.
func (f *StructureField) SetFieldByName(name string, field Field) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	i, err := f.typ.IndexOf(name)
	if err != nil {
		return err
	}
	ft, err := f.typ.FieldTypeAtIndex(i)
	if err != nil {
		return err
	}
	if !ft.CompareType(field.Type()) {
		return ErrTypeMismatch
	}
	f.children[i] = field
	return nil
}

func unsetMemberError(name string) error {
	return &unsetFieldError{name: name}
}

type unsetFieldError struct{ name string }

func (e *unsetFieldError) Error() string {
	return "structure member " + e.name + " has no payload"
}

func (e *unsetFieldError) Unwrap() error { return ErrValidation }
