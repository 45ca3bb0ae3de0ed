// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// FieldPath is an absolute location inside one of the six CTF scopes:
// a root scope plus a sequence of child indexes. An index of -1
// denotes "the element type" of an Array or Sequence frame, which
// carries no name (spec.md §4.4).
type FieldPath struct {
	Root    Scope
	Indexes []int32
}

func (p *FieldPath) String() string {
	return fmt.Sprintf("%s%v", p.Root, p.Indexes)
}

// fieldTypeAtPath walks root following path.Indexes and returns the
// type found, or ErrPathResolution if the path no longer resolves
// (e.g. an ancestor type changed shape after the path was recorded).
// This backs property 3 in spec.md §8: field_path_to_field_type must
// be able to re-derive the same type a successful resolution produced.
func fieldTypeAtPath(root FieldType, indexes []int32) (FieldType, error) {
	cur := root
	for _, idx := range indexes {
		switch c := cur.(type) {
		case CompoundFieldType:
			if idx < 0 {
				return nil, fmt.Errorf("%w: negative index into named compound type", ErrPathResolution)
			}
			next, err := c.FieldTypeAtIndex(int(idx))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPathResolution, err)
			}
			cur = next
		case *ArrayType:
			if idx != -1 {
				return nil, fmt.Errorf("%w: array frame must use index -1", ErrPathResolution)
			}
			cur = c.ElementType()
		case *SequenceType:
			if idx != -1 {
				return nil, fmt.Errorf("%w: sequence frame must use index -1", ErrPathResolution)
			}
			cur = c.ElementType()
		default:
			return nil, fmt.Errorf("%w: cannot descend into a scalar type", ErrPathResolution)
		}
	}
	return cur, nil
}
