// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// StringType is the String field-type constructor: a NUL-terminated
// byte sequence with a declared encoding (spec.md §3.2).
type StringType struct {
	typeBase
	encoding Encoding
}

// NewStringType creates a String type, UTF-8 encoded by default.
func NewStringType() *StringType {
	return &StringType{
		typeBase: typeBase{alignment: 8, byteOrder: OrderNative},
		encoding: EncodingUTF8,
	}
}

// Kind implements FieldType.
func (t *StringType) Kind() FieldTypeKind { return KindString }

// EncodingOf returns the string's declared encoding.
func (t *StringType) EncodingOf() Encoding { return t.encoding }

// SetEncoding sets the string's declared encoding.
func (t *StringType) SetEncoding(enc Encoding) error {
	if t.frozen {
		return ErrFrozen
	}
	t.encoding = enc
	return nil
}

// Copy implements FieldType.
func (t *StringType) Copy() FieldType {
	cp := *t
	cp.frozen = false
	return &cp
}

// CompareType implements FieldType.
func (t *StringType) CompareType(other FieldType) bool {
	o, ok := other.(*StringType)
	return ok && t.encoding == o.encoding
}

// Freeze implements FieldType.
func (t *StringType) Freeze() { t.frozen = true }
