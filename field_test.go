// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"errors"
	"testing"
)

func TestIntegerFieldSetUnsignedRangeChecked(t *testing.T) {
	it, err := NewIntegerType(8)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	f := NewIntegerField(it)

	if err := f.SetUnsigned(255); err != nil {
		t.Errorf("SetUnsigned(255) on an 8-bit field failed: %v", err)
	}
	if err := f.SetUnsigned(256); err == nil {
		t.Error("SetUnsigned(256) on an 8-bit field should fail")
	} else if !errors.Is(err, ErrInvalid) {
		t.Errorf("SetUnsigned(256) error = %v, want ErrInvalid", err)
	}
}

func TestIntegerFieldSetSignedRangeChecked(t *testing.T) {
	it, err := NewIntegerType(8)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	f := NewIntegerField(it)

	if err := f.SetSigned(-128); err != nil {
		t.Errorf("SetSigned(-128) failed: %v", err)
	}
	if err := f.SetSigned(-129); err == nil {
		t.Error("SetSigned(-129) on an 8-bit field should fail")
	}
	if err := f.SetSigned(127); err != nil {
		t.Errorf("SetSigned(127) failed: %v", err)
	}
	if err := f.SetSigned(128); err == nil {
		t.Error("SetSigned(128) on an 8-bit field should fail")
	} else if !errors.Is(err, ErrInvalid) {
		t.Errorf("SetSigned(128) error = %v, want ErrInvalid", err)
	}
}

// TestIntegerFieldSetSignedOutOfRangeIsInvalidArgument pins down that an
// out-of-range setter argument is reported as ErrInvalid rather than
// ErrValidation: the field never holds the bad payload, so this is a
// caller-argument error, not a validation failure discovered later.
func TestIntegerFieldSetSignedOutOfRangeIsInvalidArgument(t *testing.T) {
	it, err := NewIntegerType(8)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	f := NewIntegerField(it)

	err = f.SetSigned(128)
	if err == nil {
		t.Fatal("SetSigned(128) on an 8-bit field should fail")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("SetSigned(128) error = %v, want ErrInvalid", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Error("SetSigned(128) error should not be ErrValidation")
	}
}

func TestIntegerFieldUnsetAccessorsFail(t *testing.T) {
	it, _ := NewIntegerType(8)
	f := NewIntegerField(it)

	if f.IsSet() {
		t.Error("a freshly constructed field should not be set")
	}
	if _, err := f.Unsigned(); err != ErrInvalid {
		t.Errorf("Unsigned() on an unset field = %v, want ErrInvalid", err)
	}
	if err := f.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() on an unset field = %v, want ErrValidation", err)
	}
}

func TestIntegerFieldResetClearsPayload(t *testing.T) {
	it, _ := NewIntegerType(16)
	f := NewIntegerField(it)
	if err := f.SetUnsigned(42); err != nil {
		t.Fatalf("SetUnsigned failed: %v", err)
	}
	f.Reset()
	if f.IsSet() {
		t.Error("Reset() should clear the set bit")
	}
}

func TestIntegerFieldFreezeBlocksMutation(t *testing.T) {
	it, _ := NewIntegerType(16)
	f := NewIntegerField(it)
	f.Freeze()

	if err := f.SetUnsigned(1); err != ErrFrozen {
		t.Errorf("SetUnsigned() on a frozen field = %v, want ErrFrozen", err)
	}
}

func TestIntegerFieldCopyIsIndependent(t *testing.T) {
	it, _ := NewIntegerType(16)
	f := NewIntegerField(it)
	f.SetUnsigned(7)

	cp := f.Copy().(*IntegerField)
	cp.SetUnsigned(9)

	got, _ := f.Unsigned()
	if got != 7 {
		t.Errorf("original field mutated via its copy: got %d, want 7", got)
	}
}

func TestStructureFieldValidateReportsUnsetMember(t *testing.T) {
	st := NewStructureType()
	it, _ := NewIntegerType(8)
	st.AddField("a", it)

	sf := NewStructureField(st)
	err := sf.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() on a structure with no materialized members = %v, want ErrValidation", err)
	}

	field, err := sf.GetField("a")
	if err != nil {
		t.Fatalf("GetField(a) failed: %v", err)
	}
	if err := sf.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() with a materialized-but-unset member = %v, want ErrValidation", err)
	}

	if err := field.(*IntegerField).SetUnsigned(1); err != nil {
		t.Fatalf("SetUnsigned failed: %v", err)
	}
	if err := sf.Validate(); err != nil {
		t.Errorf("Validate() after setting the only member = %v, want nil", err)
	}
}

func TestStructureFieldGetFieldMaterializesOnce(t *testing.T) {
	st := NewStructureType()
	it, _ := NewIntegerType(8)
	st.AddField("a", it)

	sf := NewStructureField(st)
	first, err := sf.GetField("a")
	if err != nil {
		t.Fatalf("GetField(a) failed: %v", err)
	}
	first.(*IntegerField).SetUnsigned(5)

	second, err := sf.GetField("a")
	if err != nil {
		t.Fatalf("second GetField(a) failed: %v", err)
	}
	if second != first {
		t.Error("GetField should return the same materialized instance on repeated calls")
	}
}

func TestStructureFieldIsSetRequiresEveryMember(t *testing.T) {
	st := NewStructureType()
	a, _ := NewIntegerType(8)
	b, _ := NewIntegerType(8)
	st.AddField("a", a)
	st.AddField("b", b)

	sf := NewStructureField(st)
	if sf.IsSet() {
		t.Error("a structure with no materialized members should not be set")
	}

	fa, _ := sf.GetField("a")
	fa.(*IntegerField).SetUnsigned(1)
	if sf.IsSet() {
		t.Error("a structure with one set and one unmaterialized member should not be set")
	}

	fb, _ := sf.GetField("b")
	fb.(*IntegerField).SetUnsigned(2)
	if !sf.IsSet() {
		t.Error("a structure with every member set should be set")
	}
}

func TestStructureFieldResetCascades(t *testing.T) {
	st := NewStructureType()
	a, _ := NewIntegerType(8)
	st.AddField("a", a)

	sf := NewStructureField(st)
	fa, _ := sf.GetField("a")
	fa.(*IntegerField).SetUnsigned(1)

	sf.Reset()
	if fa.IsSet() {
		t.Error("Reset() on a structure should cascade to its materialized members")
	}
}

func TestStructureFieldSetFieldByNameTypeChecksAndRejectsMismatch(t *testing.T) {
	st := NewStructureType()
	a, _ := NewIntegerType(8)
	st.AddField("a", a)

	sf := NewStructureField(st)

	wrongType, _ := NewIntegerType(16)
	wrongField := NewIntegerField(wrongType)
	wrongField.SetUnsigned(1)
	if err := sf.SetFieldByName("a", wrongField); err != ErrTypeMismatch {
		t.Errorf("SetFieldByName with a mismatched type = %v, want ErrTypeMismatch", err)
	}

	rightField := NewIntegerField(a)
	rightField.SetUnsigned(3)
	if err := sf.SetFieldByName("a", rightField); err != nil {
		t.Errorf("SetFieldByName with a matching type failed: %v", err)
	}
	got, err := sf.GetField("a")
	if err != nil {
		t.Fatalf("GetField(a) failed: %v", err)
	}
	if v, _ := got.(*IntegerField).Unsigned(); v != 3 {
		t.Errorf("GetField(a).Unsigned() = %d, want 3", v)
	}
}
