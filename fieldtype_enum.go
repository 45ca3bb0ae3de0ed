// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// EnumerationMapping associates a label with an inclusive range of
// underlying-integer values. Ranges may overlap; duplicate labels are
// allowed (spec.md §3.2).
type EnumerationMapping struct {
	Label string
	Lo    int64
	Hi    int64
}

// EnumerationType is the Enumeration field-type constructor: an
// ordered list of (label, range) mappings over a strongly-referenced
// underlying Integer (spec.md §3.2).
type EnumerationType struct {
	typeBase
	underlying *IntegerType
	mappings   []EnumerationMapping
}

// NewEnumerationType creates an Enumeration type over underlying,
// initially with no mappings.
func NewEnumerationType(underlying *IntegerType) (*EnumerationType, error) {
	if underlying == nil {
		return nil, fmt.Errorf("%w: nil underlying integer type", ErrInvalid)
	}
	return &EnumerationType{
		typeBase:   typeBase{alignment: underlying.Alignment(), byteOrder: underlying.byteOrder},
		underlying: underlying,
	}, nil
}

// Kind implements FieldType.
func (t *EnumerationType) Kind() FieldTypeKind { return KindEnumeration }

// UnderlyingInteger returns the wrapped Integer type.
func (t *EnumerationType) UnderlyingInteger() *IntegerType { return t.underlying }

// AddMapping appends a (label, [lo,hi]) mapping.
func (t *EnumerationType) AddMapping(label string, lo, hi int64) error {
	if t.frozen {
		return ErrFrozen
	}
	if lo > hi {
		return fmt.Errorf("%w: range lo=%d > hi=%d", ErrInvalid, lo, hi)
	}
	t.mappings = append(t.mappings, EnumerationMapping{Label: label, Lo: lo, Hi: hi})
	return nil
}

// Mappings returns the ordered mapping list.
func (t *EnumerationType) Mappings() []EnumerationMapping { return t.mappings }

// MappingsForValue returns, in declaration order, every mapping whose
// range covers v. Lookup is linear (spec.md §4.5).
func (t *EnumerationType) MappingsForValue(v int64) []EnumerationMapping {
	var out []EnumerationMapping
	for _, m := range t.mappings {
		if v >= m.Lo && v <= m.Hi {
			out = append(out, m)
		}
	}
	return out
}

// FirstMappingForValue returns the first mapping (in declaration
// order) whose range covers v, used by Variant tag selection
// (spec.md §4.5).
func (t *EnumerationType) FirstMappingForValue(v int64) (EnumerationMapping, bool) {
	for _, m := range t.mappings {
		if v >= m.Lo && v <= m.Hi {
			return m, true
		}
	}
	return EnumerationMapping{}, false
}

// Copy implements FieldType.
func (t *EnumerationType) Copy() FieldType {
	cp := &EnumerationType{
		typeBase:   t.typeBase,
		underlying: t.underlying.Copy().(*IntegerType),
		mappings:   append([]EnumerationMapping(nil), t.mappings...),
	}
	cp.frozen = false
	return cp
}

// CompareType implements FieldType. Per spec.md §4.3 the tag type's
// cached reference is ignored elsewhere (on Variant); here the full
// enumeration (mappings included) is compared structurally.
func (t *EnumerationType) CompareType(other FieldType) bool {
	o, ok := other.(*EnumerationType)
	if !ok {
		return false
	}
	if !t.underlying.CompareType(o.underlying) {
		return false
	}
	if len(t.mappings) != len(o.mappings) {
		return false
	}
	for i := range t.mappings {
		if t.mappings[i] != o.mappings[i] {
			return false
		}
	}
	return true
}

// Freeze implements FieldType, cascading to the underlying Integer.
func (t *EnumerationType) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	t.underlying.Freeze()
}
