// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"strings"
)

// StringField is an instance of a StringType: a growable byte buffer
// whose payload must never itself contain a NUL byte; the terminating
// NUL is added when the string is serialized (spec.md §4.5).
type StringField struct {
	fieldBase
	typ   *StringType
	value strings.Builder
}

// NewStringField creates a zero-valued, unset StringField of type t.
func NewStringField(t *StringType) *StringField {
	return &StringField{typ: t}
}

// Type implements Field.
func (f *StringField) Type() FieldType { return f.typ }

// IsSet implements Field.
func (f *StringField) IsSet() bool { return f.payloadSet }

// Validate implements Field.
func (f *StringField) Validate() error {
	if !f.payloadSet {
		return fmt.Errorf("%w: string field has no payload", ErrValidation)
	}
	return nil
}

// Reset implements Field.
func (f *StringField) Reset() {
	f.payloadSet = false
	f.value.Reset()
}

// Freeze implements Field.
func (f *StringField) Freeze() { f.frozen = true }

// Copy implements Field.
func (f *StringField) Copy() Field {
	cp := &StringField{typ: f.typ, fieldBase: f.fieldBase}
	cp.value.WriteString(f.value.String())
	return cp
}

// Set replaces the field's payload with s.
func (f *StringField) Set(s string) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: string payload must not contain a NUL byte", ErrValidation)
	}
	f.value.Reset()
	f.value.WriteString(s)
	f.payloadSet = true
	return nil
}

// Append grows the field's payload by s.
func (f *StringField) Append(s string) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: string payload must not contain a NUL byte", ErrValidation)
	}
	f.value.WriteString(s)
	f.payloadSet = true
	return nil
}

// AppendWithLength grows the field's payload by the first n bytes of s.
func (f *StringField) AppendWithLength(s string, n int) error {
	if n < 0 || n > len(s) {
		return fmt.Errorf("%w: length %d out of range for string of length %d", ErrInvalid, n, len(s))
	}
	return f.Append(s[:n])
}

// Value returns the field's current payload.
func (f *StringField) Value() (string, error) {
	if !f.payloadSet {
		return "", ErrInvalid
	}
	return f.value.String(), nil
}
