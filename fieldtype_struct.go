// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// structureMember is one ordered, named child of a StructureType.
type structureMember struct {
	name string
	typ  FieldType
}

// StructureType is the Structure field-type constructor: an ordered,
// named list of member types (spec.md §3.2). Member names must be
// unique; alignment must be at least the maximum of its members'
// alignments.
type StructureType struct {
	typeBase
	members []structureMember
	byName  map[string]int
}

// NewStructureType creates an empty Structure type, 8-bit aligned by default.
func NewStructureType() *StructureType {
	return &StructureType{
		typeBase: typeBase{alignment: 8, byteOrder: OrderNative},
		byName:   make(map[string]int),
	}
}

// Kind implements FieldType.
func (t *StructureType) Kind() FieldTypeKind { return KindStructure }

// AddField appends a named member. Fails with ErrInvalid if the name
// is already used.
func (t *StructureType) AddField(name string, ft FieldType) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, exists := t.byName[name]; exists {
		return fmt.Errorf("%w: duplicate structure member %q", ErrInvalid, name)
	}
	if ft.Alignment() > t.alignment {
		t.alignment = ft.Alignment()
	}
	t.byName[name] = len(t.members)
	t.members = append(t.members, structureMember{name: name, typ: ft})
	return nil
}

// FieldCount implements CompoundFieldType.
func (t *StructureType) FieldCount() int { return len(t.members) }

// FieldTypeAtIndex implements CompoundFieldType.
func (t *StructureType) FieldTypeAtIndex(i int) (FieldType, error) {
	if i < 0 || i >= len(t.members) {
		return nil, ErrNotFound
	}
	return t.members[i].typ, nil
}

// FieldTypeByName implements CompoundFieldType.
func (t *StructureType) FieldTypeByName(name string) (FieldType, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return t.members[i].typ, nil
}

// NameAtIndex implements CompoundFieldType.
func (t *StructureType) NameAtIndex(i int) (string, error) {
	if i < 0 || i >= len(t.members) {
		return "", ErrNotFound
	}
	return t.members[i].name, nil
}

// IndexOf returns the index of the member named name, or ErrNotFound.
func (t *StructureType) IndexOf(name string) (int, error) {
	i, ok := t.byName[name]
	if !ok {
		return 0, ErrNotFound
	}
	return i, nil
}

// Copy implements FieldType.
func (t *StructureType) Copy() FieldType {
	cp := &StructureType{
		typeBase: t.typeBase,
		byName:   make(map[string]int, len(t.byName)),
	}
	cp.frozen = false
	for i, m := range t.members {
		cp.members = append(cp.members, structureMember{name: m.name, typ: m.typ.Copy()})
		cp.byName[m.name] = i
	}
	return cp
}

// CompareType implements FieldType.
func (t *StructureType) CompareType(other FieldType) bool {
	o, ok := other.(*StructureType)
	if !ok || len(t.members) != len(o.members) {
		return false
	}
	for i := range t.members {
		if t.members[i].name != o.members[i].name {
			return false
		}
		if !t.members[i].typ.CompareType(o.members[i].typ) {
			return false
		}
	}
	return true
}

// Freeze implements FieldType, cascading to every member.
func (t *StructureType) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	for _, m := range t.members {
		m.typ.Freeze()
	}
}
