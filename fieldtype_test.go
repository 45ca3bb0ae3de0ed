// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "testing"

func TestNewIntegerTypeRejectsOutOfRangeWidth(t *testing.T) {
	if _, err := NewIntegerType(0); err == nil {
		t.Error("NewIntegerType(0) should fail")
	}
	if _, err := NewIntegerType(65); err == nil {
		t.Error("NewIntegerType(65) should fail")
	}
	if _, err := NewIntegerType(64); err != nil {
		t.Errorf("NewIntegerType(64) failed: %v", err)
	}
}

func TestIntegerTypeEncodingRequiresEightBits(t *testing.T) {
	it, err := NewIntegerType(16)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	if err := it.SetEncoding(EncodingUTF8); err == nil {
		t.Error("SetEncoding(UTF8) on a 16-bit integer should fail")
	}

	it8, err := NewIntegerType(8)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	if err := it8.SetEncoding(EncodingUTF8); err != nil {
		t.Errorf("SetEncoding(UTF8) on an 8-bit integer failed: %v", err)
	}
}

func TestIntegerTypeFreezeBlocksMutation(t *testing.T) {
	it, err := NewIntegerType(32)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	it.Freeze()

	if err := it.SetSigned(true); err != ErrFrozen {
		t.Errorf("SetSigned() on a frozen integer type = %v, want ErrFrozen", err)
	}
	if err := it.SetBase(Base16); err != ErrFrozen {
		t.Errorf("SetBase() on a frozen integer type = %v, want ErrFrozen", err)
	}
}

func TestIntegerTypeCopyIsIndependentAndUnfrozen(t *testing.T) {
	it, err := NewIntegerType(32)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	it.Freeze()

	cp := it.Copy().(*IntegerType)
	if cp.IsFrozen() {
		t.Fatal("Copy() of a frozen type should return an unfrozen clone")
	}
	if err := cp.SetSigned(true); err != nil {
		t.Fatalf("SetSigned() on the clone failed: %v", err)
	}
	if it.Signed() {
		t.Error("mutating the clone should not affect the original")
	}
}

func TestIntegerTypeCompareType(t *testing.T) {
	a, _ := NewIntegerType(32)
	b, _ := NewIntegerType(32)
	c, _ := NewIntegerType(16)

	if !a.CompareType(b) {
		t.Error("two freshly constructed 32-bit integer types should compare equal")
	}
	if a.CompareType(c) {
		t.Error("integer types of different widths should not compare equal")
	}
}

func TestStructureTypeAddFieldRejectsDuplicateNames(t *testing.T) {
	st := NewStructureType()
	a, _ := NewIntegerType(8)
	if err := st.AddField("x", a); err != nil {
		t.Fatalf("AddField(x) failed: %v", err)
	}
	b, _ := NewIntegerType(16)
	if err := st.AddField("x", b); err == nil {
		t.Error("AddField with a duplicate name should fail")
	}
	if st.FieldCount() != 1 {
		t.Errorf("FieldCount() = %d, want 1 after rejected duplicate", st.FieldCount())
	}
}

func TestStructureTypeAlignmentWidensToWidestMember(t *testing.T) {
	st := NewStructureType()
	narrow, _ := NewIntegerType(8)
	if err := st.AddField("a", narrow); err != nil {
		t.Fatalf("AddField(a) failed: %v", err)
	}
	if st.Alignment() != 8 {
		t.Fatalf("Alignment() = %d, want 8 (default)", st.Alignment())
	}

	wide, _ := NewIntegerType(32)
	if err := wide.SetAlignment(32); err != nil {
		t.Fatalf("SetAlignment failed: %v", err)
	}
	if err := st.AddField("b", wide); err != nil {
		t.Fatalf("AddField(b) failed: %v", err)
	}
	if st.Alignment() != 32 {
		t.Errorf("Alignment() = %d, want 32 after adding a 32-bit-aligned member", st.Alignment())
	}
}

func TestStructureTypeIndexAndNameLookup(t *testing.T) {
	st := NewStructureType()
	a, _ := NewIntegerType(8)
	b, _ := NewIntegerType(16)
	st.AddField("a", a)
	st.AddField("b", b)

	i, err := st.IndexOf("b")
	if err != nil || i != 1 {
		t.Fatalf("IndexOf(b) = (%d, %v), want (1, nil)", i, err)
	}
	name, err := st.NameAtIndex(0)
	if err != nil || name != "a" {
		t.Fatalf("NameAtIndex(0) = (%q, %v), want (\"a\", nil)", name, err)
	}
	if _, err := st.IndexOf("missing"); err != ErrNotFound {
		t.Errorf("IndexOf(missing) = %v, want ErrNotFound", err)
	}
}

func TestStructureTypeCopyDeepClonesMembers(t *testing.T) {
	st := NewStructureType()
	it, _ := NewIntegerType(8)
	st.AddField("a", it)
	st.Freeze()

	cp := st.Copy().(*StructureType)
	if cp.IsFrozen() {
		t.Fatal("Copy() should return an unfrozen structure")
	}
	memberType, err := cp.FieldTypeByName("a")
	if err != nil {
		t.Fatalf("FieldTypeByName(a) failed: %v", err)
	}
	if memberType.IsFrozen() {
		t.Error("Copy() should deep-clone members as unfrozen too")
	}
	if memberType == it {
		t.Error("Copy() must not alias the original member's FieldType")
	}
}

func TestStructureTypeFreezeCascadesToMembers(t *testing.T) {
	st := NewStructureType()
	it, _ := NewIntegerType(8)
	st.AddField("a", it)
	st.Freeze()

	if !it.IsFrozen() {
		t.Error("Freeze() on a structure type should cascade to its members")
	}
	if err := st.AddField("b", it); err != ErrFrozen {
		t.Errorf("AddField() on a frozen structure = %v, want ErrFrozen", err)
	}
}
