// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// ValueKind tags the dynamic type held by a Value.
type ValueKind int

// The seven value kinds of the generic value tree (spec.md §4.1).
const (
	ValueNull ValueKind = iota
	ValueBool
	ValueI64
	ValueF64
	ValueString
	ValueArray
	ValueMap
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueI64:
		return "i64"
	case ValueF64:
		return "f64"
	case ValueString:
		return "string"
	case ValueArray:
		return "array"
	case ValueMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a recursive tagged value used for the Trace environment and
// for anything the TSDL parser hands the IR as a loosely-typed literal.
type Value struct {
	kind    ValueKind
	b       bool
	i       int64
	f       float64
	s       string
	arr     []*Value
	m       map[string]*Value
	mKeys   []string // insertion order, for stable MapForeach
	frozen  bool
}

// nullValue is the process-wide frozen Null singleton (spec.md §4.1).
var nullValue = &Value{kind: ValueNull, frozen: true}

// NewNullValue returns the shared, already-frozen Null value.
func NewNullValue() *Value { return nullValue }

// NewBoolValue creates a new boolean value.
func NewBoolValue(v bool) *Value { return &Value{kind: ValueBool, b: v} }

// NewIntValue creates a new signed 64-bit integer value.
func NewIntValue(v int64) *Value { return &Value{kind: ValueI64, i: v} }

// NewFloatValue creates a new double-precision float value.
func NewFloatValue(v float64) *Value { return &Value{kind: ValueF64, f: v} }

// NewStringValue creates a new string value.
func NewStringValue(v string) *Value { return &Value{kind: ValueString, s: v} }

// NewArrayValue creates a new, empty array value.
func NewArrayValue() *Value { return &Value{kind: ValueArray} }

// NewMapValue creates a new, empty map value.
func NewMapValue() *Value {
	return &Value{kind: ValueMap, m: make(map[string]*Value)}
}

// Kind returns the value's dynamic tag.
func (v *Value) Kind() ValueKind { return v.kind }

// IsFrozen reports whether v has been frozen.
func (v *Value) IsFrozen() bool { return v.frozen }

// Bool returns the wrapped bool and ErrTypeMismatch if v is not a ValueBool.
func (v *Value) Bool() (bool, error) {
	if v.kind != ValueBool {
		return false, ErrTypeMismatch
	}
	return v.b, nil
}

// Int returns the wrapped int64 and ErrTypeMismatch if v is not a ValueI64.
func (v *Value) Int() (int64, error) {
	if v.kind != ValueI64 {
		return 0, ErrTypeMismatch
	}
	return v.i, nil
}

// Float returns the wrapped float64 and ErrTypeMismatch if v is not a ValueF64.
func (v *Value) Float() (float64, error) {
	if v.kind != ValueF64 {
		return 0, ErrTypeMismatch
	}
	return v.f, nil
}

// String returns the wrapped string and ErrTypeMismatch if v is not a ValueString.
func (v *Value) String() (string, error) {
	if v.kind != ValueString {
		return "", ErrTypeMismatch
	}
	return v.s, nil
}

// SetBool overwrites v in place with a new bool payload.
func (v *Value) SetBool(b bool) error { return v.set(ValueBool, func() { v.b = b }) }

// SetInt overwrites v in place with a new int64 payload.
func (v *Value) SetInt(i int64) error { return v.set(ValueI64, func() { v.i = i }) }

// SetFloat overwrites v in place with a new float64 payload.
func (v *Value) SetFloat(f float64) error { return v.set(ValueF64, func() { v.f = f }) }

// SetString overwrites v in place with a new string payload.
func (v *Value) SetString(s string) error { return v.set(ValueString, func() { v.s = s }) }

func (v *Value) set(kind ValueKind, apply func()) error {
	if v.frozen {
		return ErrFrozen
	}
	v.kind = kind
	apply()
	return nil
}

// ArrayAppend appends elem to an array value.
func (v *Value) ArrayAppend(elem *Value) error {
	if v.kind != ValueArray {
		return ErrTypeMismatch
	}
	if v.frozen {
		return ErrFrozen
	}
	v.arr = append(v.arr, elem)
	return nil
}

// ArrayLen returns the number of elements in an array value.
func (v *Value) ArrayLen() (int, error) {
	if v.kind != ValueArray {
		return 0, ErrTypeMismatch
	}
	return len(v.arr), nil
}

// ArrayGet returns the element at index i of an array value.
func (v *Value) ArrayGet(i int) (*Value, error) {
	if v.kind != ValueArray {
		return nil, ErrTypeMismatch
	}
	if i < 0 || i >= len(v.arr) {
		return nil, ErrNotFound
	}
	return v.arr[i], nil
}

// MapInsert inserts or replaces key in a map value.
func (v *Value) MapInsert(key string, val *Value) error {
	if v.kind != ValueMap {
		return ErrTypeMismatch
	}
	if v.frozen {
		return ErrFrozen
	}
	if _, exists := v.m[key]; !exists {
		v.mKeys = append(v.mKeys, key)
	}
	v.m[key] = val
	return nil
}

// MapGet looks up key in a map value.
func (v *Value) MapGet(key string) (*Value, error) {
	if v.kind != ValueMap {
		return nil, ErrTypeMismatch
	}
	val, ok := v.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return val, nil
}

// MapForeach calls cb for every (key, value) pair of a map value, in
// insertion order, stopping early if cb returns an error.
func (v *Value) MapForeach(cb func(key string, val *Value) error) error {
	if v.kind != ValueMap {
		return ErrTypeMismatch
	}
	for _, k := range v.mKeys {
		if err := cb(k, v.m[k]); err != nil {
			return err
		}
	}
	return nil
}

// ByPath walks a dotted path ("a.b.c") through nested maps, returning
// the value found at the end. Reinstated from the original's
// dotted-path value lookups used throughout the resolver and the
// metadata environment printer (see SPEC_FULL.md).
func (v *Value) ByPath(path string) (*Value, error) {
	cur := v
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i == start {
				return nil, fmt.Errorf("%w: empty path token in %q", ErrInvalid, path)
			}
			token := path[start:i]
			next, err := cur.MapGet(token)
			if err != nil {
				return nil, err
			}
			cur = next
			start = i + 1
		}
	}
	return cur, nil
}

// Freeze makes v and, transitively, every descendant immutable.
func (v *Value) Freeze() {
	if v.frozen {
		return
	}
	v.frozen = true
	switch v.kind {
	case ValueArray:
		for _, e := range v.arr {
			e.Freeze()
		}
	case ValueMap:
		for _, k := range v.mKeys {
			v.m[k].Freeze()
		}
	}
}

// Copy performs a deep copy of v. Copying Null returns the shared Null
// singleton (spec.md §4.1).
func (v *Value) Copy() *Value {
	if v.kind == ValueNull {
		return nullValue
	}
	cp := &Value{kind: v.kind, b: v.b, i: v.i, f: v.f, s: v.s}
	switch v.kind {
	case ValueArray:
		cp.arr = make([]*Value, len(v.arr))
		for i, e := range v.arr {
			cp.arr[i] = e.Copy()
		}
	case ValueMap:
		cp.m = make(map[string]*Value, len(v.m))
		cp.mKeys = append([]string(nil), v.mKeys...)
		for k, e := range v.m {
			cp.m[k] = e.Copy()
		}
	}
	return cp
}

// Compare is structural equality: identical tags at every node; maps
// compare as multisets of (key, value), arrays compare pointwise
// (spec.md §4.1).
func Compare(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ValueNull:
		return true
	case ValueBool:
		return a.b == b.b
	case ValueI64:
		return a.i == b.i
	case ValueF64:
		return a.f == b.f
	case ValueString:
		return a.s == b.s
	case ValueArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Compare(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case ValueMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Compare(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
