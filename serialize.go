// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// scopeFieldSet holds the root Field of each of the six dynamic scopes
// that have already been serialized/deserialized for the packet or
// event currently in flight, so a Sequence/Variant's resolved
// Field-path (spec.md §4.4) can be followed back to its target's
// runtime value.
type scopeFieldSet struct {
	scopes [6]Field
}

// fieldAtPath walks a resolved Field-path's indexes through the
// already-materialized field tree rooted at scopes.scopes[path.Root],
// returning the target leaf field. Only Structure members are
// addressable this way: every Sequence-length and Variant-tag target
// named in practice is a sibling or ancestor Integer/Enumeration field
// inside a Structure (spec.md §4.4 step 5).
func (s *scopeFieldSet) fieldAtPath(path *FieldPath) (Field, error) {
	if path == nil {
		return nil, fmt.Errorf("%w: field path has not been resolved", ErrPathResolution)
	}
	if int(path.Root) < 0 || int(path.Root) >= len(s.scopes) {
		return nil, fmt.Errorf("%w: field path root %v is not addressable", ErrPathResolution, path.Root)
	}
	cur := s.scopes[path.Root]
	if cur == nil {
		return nil, fmt.Errorf("%w: scope %v has not been populated yet", ErrPathResolution, path.Root)
	}
	for _, idx := range path.Indexes {
		structF, ok := cur.(*StructureField)
		if !ok {
			return nil, fmt.Errorf("%w: field path descends into a non-structure field", ErrPathResolution)
		}
		child, err := structF.GetFieldAtIndex(int(idx))
		if err != nil {
			return nil, err
		}
		cur = child
	}
	return cur, nil
}

// serializeField walks f's subtree in document order and writes it to
// p, aligning before every leaf and descending composite types after
// aligning to their own declared alignment (spec.md §4.6 step 5).
func serializeField(p *StreamPosition, f Field, native ByteOrder, scopes *scopeFieldSet) error {
	p.Align(f.Type().Alignment())

	switch ft := f.Type().(type) {
	case *IntegerType:
		intF, ok := f.(*IntegerField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for integer", ErrInvalid)
		}
		order, err := resolveByteOrder(ft.ByteOrder(), native)
		if err != nil {
			return err
		}
		if ft.Signed() {
			v, err := intF.Signed()
			if err != nil {
				return err
			}
			return p.WriteSigned(ft.SizeBits(), order, v)
		}
		v, err := intF.Unsigned()
		if err != nil {
			return err
		}
		return p.WriteUnsigned(ft.SizeBits(), order, v)

	case *FloatingPointType:
		floatF, ok := f.(*FloatField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for floating point", ErrInvalid)
		}
		order, err := resolveByteOrder(ft.ByteOrder(), native)
		if err != nil {
			return err
		}
		v, err := floatF.Value()
		if err != nil {
			return err
		}
		return p.WriteFloat(ft.ExpDigits(), ft.MantDigits(), order, v)

	case *EnumerationType:
		enumF, ok := f.(*EnumerationField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for enumeration", ErrInvalid)
		}
		return serializeField(p, enumF.Integer(), native, scopes)

	case *StringType:
		strF, ok := f.(*StringField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for string", ErrInvalid)
		}
		v, err := strF.Value()
		if err != nil {
			return err
		}
		return p.WriteString(v)

	case *StructureType:
		structF, ok := f.(*StructureField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for structure", ErrInvalid)
		}
		for i := 0; i < ft.FieldCount(); i++ {
			child, err := structF.GetFieldAtIndex(i)
			if err != nil {
				return err
			}
			if err := serializeField(p, child, native, scopes); err != nil {
				return err
			}
		}
		return nil

	case *ArrayType:
		arrF, ok := f.(*ArrayField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for array", ErrInvalid)
		}
		for i := 0; i < arrF.Len(); i++ {
			child, err := arrF.GetElement(i)
			if err != nil {
				return err
			}
			if err := serializeField(p, child, native, scopes); err != nil {
				return err
			}
		}
		return nil

	case *SequenceType:
		seqF, ok := f.(*SequenceField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for sequence", ErrInvalid)
		}
		for i := 0; i < seqF.Len(); i++ {
			child, err := seqF.GetElement(i)
			if err != nil {
				return err
			}
			if err := serializeField(p, child, native, scopes); err != nil {
				return err
			}
		}
		return nil

	case *VariantType:
		varF, ok := f.(*VariantField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for variant", ErrInvalid)
		}
		sel, err := varF.SelectedField()
		if err != nil {
			return err
		}
		return serializeField(p, sel, native, scopes)

	default:
		return fmt.Errorf("%w: unknown field-type kind", ErrInvalid)
	}
}

// deserializeField is the symmetric reader: it materializes f's leaves
// from p in the same document order serializeField wrote them,
// resolving Sequence lengths and Variant tags against scopes.
func deserializeField(p *StreamPosition, f Field, native ByteOrder, scopes *scopeFieldSet) error {
	p.Align(f.Type().Alignment())

	switch ft := f.Type().(type) {
	case *IntegerType:
		intF, ok := f.(*IntegerField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for integer", ErrInvalid)
		}
		order, err := resolveByteOrder(ft.ByteOrder(), native)
		if err != nil {
			return err
		}
		if ft.Signed() {
			v, err := p.ReadSigned(ft.SizeBits(), order)
			if err != nil {
				return err
			}
			return intF.SetSigned(v)
		}
		v, err := p.ReadUnsigned(ft.SizeBits(), order)
		if err != nil {
			return err
		}
		return intF.SetUnsigned(v)

	case *FloatingPointType:
		floatF, ok := f.(*FloatField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for floating point", ErrInvalid)
		}
		order, err := resolveByteOrder(ft.ByteOrder(), native)
		if err != nil {
			return err
		}
		v, err := p.ReadFloat(ft.ExpDigits(), ft.MantDigits(), order)
		if err != nil {
			return err
		}
		return floatF.Set(v)

	case *EnumerationType:
		enumF, ok := f.(*EnumerationField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for enumeration", ErrInvalid)
		}
		return deserializeField(p, enumF.Integer(), native, scopes)

	case *StringType:
		strF, ok := f.(*StringField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for string", ErrInvalid)
		}
		v, err := p.ReadString()
		if err != nil {
			return err
		}
		return strF.Set(v)

	case *StructureType:
		structF, ok := f.(*StructureField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for structure", ErrInvalid)
		}
		for i := 0; i < ft.FieldCount(); i++ {
			child, err := structF.GetFieldAtIndex(i)
			if err != nil {
				return err
			}
			if err := deserializeField(p, child, native, scopes); err != nil {
				return err
			}
		}
		return nil

	case *ArrayType:
		arrF, ok := f.(*ArrayField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for array", ErrInvalid)
		}
		for i := 0; i < arrF.Len(); i++ {
			child, err := arrF.GetElement(i)
			if err != nil {
				return err
			}
			if err := deserializeField(p, child, native, scopes); err != nil {
				return err
			}
		}
		return nil

	case *SequenceType:
		seqF, ok := f.(*SequenceField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for sequence", ErrInvalid)
		}
		target, err := scopes.fieldAtPath(ft.ResolvedLengthPath())
		if err != nil {
			return err
		}
		lenField, ok := target.(*IntegerField)
		if !ok {
			return fmt.Errorf("%w: sequence length target is not an integer field", ErrPathResolution)
		}
		length, err := lenField.Unsigned()
		if err != nil {
			return err
		}
		if err := seqF.SetLength(uint32(length)); err != nil {
			return err
		}
		for i := 0; i < seqF.Len(); i++ {
			child, err := seqF.GetElement(i)
			if err != nil {
				return err
			}
			if err := deserializeField(p, child, native, scopes); err != nil {
				return err
			}
		}
		return nil

	case *VariantType:
		varF, ok := f.(*VariantField)
		if !ok {
			return fmt.Errorf("%w: field/type mismatch for variant", ErrInvalid)
		}
		target, err := scopes.fieldAtPath(ft.ResolvedTagPath())
		if err != nil {
			return err
		}
		tagField, ok := target.(*EnumerationField)
		if !ok {
			return fmt.Errorf("%w: variant tag target is not an enumeration field", ErrPathResolution)
		}
		tagUnderlying := ft.CachedTagType().UnderlyingInteger()
		var tag int64
		if tagUnderlying.Signed() {
			tag, err = tagField.Integer().Signed()
		} else {
			var u uint64
			u, err = tagField.Integer().Unsigned()
			tag = int64(u)
		}
		if err != nil {
			return err
		}
		if err := varF.SetTagSigned(tag); err != nil {
			return err
		}
		sel, err := varF.SelectedField()
		if err != nil {
			return err
		}
		return deserializeField(p, sel, native, scopes)

	default:
		return fmt.Errorf("%w: unknown field-type kind", ErrInvalid)
	}
}
