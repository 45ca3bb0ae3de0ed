// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// EnumerationField is an instance of an EnumerationType, wrapping an
// IntegerField (spec.md §4.5).
type EnumerationField struct {
	fieldBase
	typ     *EnumerationType
	integer *IntegerField
}

// NewEnumerationField creates a zero-valued, unset EnumerationField of type t.
func NewEnumerationField(t *EnumerationType) *EnumerationField {
	return &EnumerationField{typ: t, integer: NewIntegerField(t.UnderlyingInteger())}
}

// Type implements Field.
func (f *EnumerationField) Type() FieldType { return f.typ }

// IsSet implements Field.
func (f *EnumerationField) IsSet() bool { return f.integer.IsSet() }

// Validate implements Field.
func (f *EnumerationField) Validate() error { return f.integer.Validate() }

// Reset implements Field.
func (f *EnumerationField) Reset() { f.integer.Reset() }

// Freeze implements Field.
func (f *EnumerationField) Freeze() {
	f.frozen = true
	f.integer.Freeze()
}

// Copy implements Field.
func (f *EnumerationField) Copy() Field {
	return &EnumerationField{typ: f.typ, integer: f.integer.Copy().(*IntegerField)}
}

// Integer exposes the wrapped Integer field (spec.md §4.5).
func (f *EnumerationField) Integer() *IntegerField { return f.integer }

// Mappings returns the mappings, in declaration order, whose range
// covers the field's current value.
func (f *EnumerationField) Mappings() ([]EnumerationMapping, error) {
	var v int64
	if f.typ.UnderlyingInteger().Signed() {
		sv, err := f.integer.Signed()
		if err != nil {
			return nil, err
		}
		v = sv
	} else {
		uv, err := f.integer.Unsigned()
		if err != nil {
			return nil, err
		}
		v = int64(uv)
	}
	return f.typ.MappingsForValue(v), nil
}
