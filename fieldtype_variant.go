// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// variantOption is one ordered, labeled child of a VariantType.
type variantOption struct {
	label string
	typ   FieldType
}

// VariantType is the Variant field-type constructor: a tagged union
// keyed by an Enumeration (spec.md §3.2). The tag is carried as an
// unresolved path string until the resolver (§4.4) converts it to a
// Field-path; the cached tag-type reference speeds lookup but is
// ignored by CompareType (§4.3).
type VariantType struct {
	typeBase
	tagPath       string
	resolvedPath  *FieldPath
	cachedTagType *EnumerationType
	options       []variantOption
	byLabel       map[string]int
}

// NewVariantType creates a Variant type keyed by the (not yet
// resolved) tag path string.
func NewVariantType(tagPath string) *VariantType {
	return &VariantType{
		typeBase: typeBase{alignment: 1, byteOrder: OrderNative},
		tagPath:  tagPath,
		byLabel:  make(map[string]int),
	}
}

// Kind implements FieldType.
func (t *VariantType) Kind() FieldTypeKind { return KindVariant }

// TagPath returns the unresolved tag path string.
func (t *VariantType) TagPath() string { return t.tagPath }

// ResolvedTagPath returns the resolved Field-path, or nil if
// resolution hasn't run yet.
func (t *VariantType) ResolvedTagPath() *FieldPath { return t.resolvedPath }

// CachedTagType returns the Enumeration the tag path resolved to, if any.
func (t *VariantType) CachedTagType() *EnumerationType { return t.cachedTagType }

// setResolved is called by the resolver once the tag path has been
// converted to an absolute Field-path pointing at an Enumeration.
func (t *VariantType) setResolved(path *FieldPath, tagType *EnumerationType) {
	t.resolvedPath = path
	t.cachedTagType = tagType
}

// AddOption appends a (label, type) option. Every label must
// eventually correspond to a mapping in the tag enumeration; that is
// checked by the resolver at resolution time (spec.md §3.2), not here.
func (t *VariantType) AddOption(label string, ft FieldType) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, exists := t.byLabel[label]; exists {
		return fmt.Errorf("%w: duplicate variant option %q", ErrInvalid, label)
	}
	t.byLabel[label] = len(t.options)
	t.options = append(t.options, variantOption{label: label, typ: ft})
	return nil
}

// FieldCount implements CompoundFieldType.
func (t *VariantType) FieldCount() int { return len(t.options) }

// FieldTypeAtIndex implements CompoundFieldType.
func (t *VariantType) FieldTypeAtIndex(i int) (FieldType, error) {
	if i < 0 || i >= len(t.options) {
		return nil, ErrNotFound
	}
	return t.options[i].typ, nil
}

// FieldTypeByName implements CompoundFieldType, treating the label as the name.
func (t *VariantType) FieldTypeByName(label string) (FieldType, error) {
	i, ok := t.byLabel[label]
	if !ok {
		return nil, ErrNotFound
	}
	return t.options[i].typ, nil
}

// NameAtIndex implements CompoundFieldType.
func (t *VariantType) NameAtIndex(i int) (string, error) {
	if i < 0 || i >= len(t.options) {
		return "", ErrNotFound
	}
	return t.options[i].label, nil
}

// OptionIndexForLabel returns the index of the option for label, or ErrNotFound.
func (t *VariantType) OptionIndexForLabel(label string) (int, error) {
	i, ok := t.byLabel[label]
	if !ok {
		return 0, ErrNotFound
	}
	return i, nil
}

// Copy implements FieldType. The copy keeps the unresolved tag path
// string but drops the resolved path and cached tag type, since those
// are re-derived by the validation pass (spec.md §4.8).
func (t *VariantType) Copy() FieldType {
	cp := &VariantType{
		typeBase: t.typeBase,
		tagPath:  t.tagPath,
		byLabel:  make(map[string]int, len(t.byLabel)),
	}
	cp.frozen = false
	for i, o := range t.options {
		cp.options = append(cp.options, variantOption{label: o.label, typ: o.typ.Copy()})
		cp.byLabel[o.label] = i
	}
	return cp
}

// CompareType implements FieldType. Per spec.md §4.3, only the tag
// *name* is compared; the cached tag-type reference is ignored
// because the tag type may be replaced by a validated clone during
// trace attachment.
func (t *VariantType) CompareType(other FieldType) bool {
	o, ok := other.(*VariantType)
	if !ok || t.tagPath != o.tagPath || len(t.options) != len(o.options) {
		return false
	}
	for i := range t.options {
		if t.options[i].label != o.options[i].label {
			return false
		}
		if !t.options[i].typ.CompareType(o.options[i].typ) {
			return false
		}
	}
	return true
}

// Freeze implements FieldType, cascading to every option.
func (t *VariantType) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	for _, o := range t.options {
		o.typ.Freeze()
	}
}
