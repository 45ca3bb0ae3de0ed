// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// VariantField is an instance of a VariantType: a tagged union whose
// active option is selected by assigning a tag value that falls
// within one of the tag enumeration's mappings (spec.md §4.5).
type VariantField struct {
	fieldBase
	typ      *VariantType
	selected int
	hasTag   bool
	options  []Field
}

// NewVariantField creates a VariantField with no tag assigned and no
// option selected.
func NewVariantField(t *VariantType) *VariantField {
	return &VariantField{typ: t, options: make([]Field, t.FieldCount()), selected: -1}
}

// Type implements Field.
func (f *VariantField) Type() FieldType { return f.typ }

// IsSet implements Field: set once a tag has selected an option and
// that option's subtree is itself set.
func (f *VariantField) IsSet() bool {
	if !f.hasTag {
		return false
	}
	sel := f.options[f.selected]
	return sel != nil && sel.IsSet()
}

// Validate implements Field.
func (f *VariantField) Validate() error {
	if !f.hasTag {
		return fmt.Errorf("%w: variant tag has not been set", ErrValidation)
	}
	sel := f.options[f.selected]
	if sel == nil {
		return ErrValidation
	}
	return sel.Validate()
}

// Reset implements Field. The tag selection survives a Reset; only
// the selected option's payload_set state is cleared.
func (f *VariantField) Reset() {
	if f.hasTag && f.options[f.selected] != nil {
		f.options[f.selected].Reset()
	}
}

// Freeze implements Field, cascading to the selected option only.
func (f *VariantField) Freeze() {
	f.frozen = true
	if f.hasTag && f.options[f.selected] != nil {
		f.options[f.selected].Freeze()
	}
}

// Copy implements Field.
func (f *VariantField) Copy() Field {
	cp := &VariantField{typ: f.typ, selected: f.selected, hasTag: f.hasTag, options: make([]Field, len(f.options))}
	for i, o := range f.options {
		if o != nil {
			cp.options[i] = o.Copy()
		}
	}
	return cp
}

// setTag resolves v against the tag enumeration's mappings, selecting
// (and lazily materializing) the first option whose label matches the
// first covering mapping.
func (f *VariantField) setTag(v int64) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	tagType := f.typ.CachedTagType()
	if tagType == nil {
		return fmt.Errorf("%w: variant tag path has not been resolved", ErrInvalid)
	}
	mapping, ok := tagType.FirstMappingForValue(v)
	if !ok {
		return fmt.Errorf("%w: tag value %d matches no enumeration mapping", ErrValidation, v)
	}
	i, err := f.typ.OptionIndexForLabel(mapping.Label)
	if err != nil {
		return err
	}
	if f.options[i] == nil {
		ft, err := f.typ.FieldTypeAtIndex(i)
		if err != nil {
			return err
		}
		child, err := NewField(ft)
		if err != nil {
			return err
		}
		f.options[i] = child
	}
	f.selected = i
	f.hasTag = true
	return nil
}

// SetTagSigned selects the active option from a signed tag value.
func (f *VariantField) SetTagSigned(v int64) error { return f.setTag(v) }

// SetTagUnsigned selects the active option from an unsigned tag value.
func (f *VariantField) SetTagUnsigned(v uint64) error { return f.setTag(int64(v)) }

// SelectedLabel returns the label of the currently selected option.
func (f *VariantField) SelectedLabel() (string, error) {
	if !f.hasTag {
		return "", ErrInvalid
	}
	return f.typ.NameAtIndex(f.selected)
}

// SelectedField returns the currently selected option field. Returns
// ErrInvalid if no tag has been assigned yet.
func (f *VariantField) SelectedField() (Field, error) {
	if !f.hasTag {
		return nil, ErrInvalid
	}
	return f.options[f.selected], nil
}
