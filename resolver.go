// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"strings"
)

// Resolver converts the path strings carried by Sequence and Variant
// field types into absolute Field-paths, validating ordering and type
// constraints along the way (spec.md §4.4).
type Resolver struct {
	// SiblingScopeFallback permits the scope-index fallback (spec.md
	// §4.4 step 4) for Sequence sources as well as Variant sources.
	// The original source permits it for both; this is the Open
	// Question from spec.md §9 made an explicit flag (default true).
	SiblingScopeFallback bool
}

// NewResolver returns a Resolver with the default (permissive) fallback policy.
func NewResolver() *Resolver {
	return &Resolver{SiblingScopeFallback: true}
}

// resolveStackFrame is one level of the ancestor chain leading from a
// scope's root type down to the Sequence/Variant type currently being
// resolved.
type resolveStackFrame struct {
	parentType FieldType
	// childIndex is the index of the branch, among parentType's
	// children, that the resolution is currently descending through.
	// -1 for Array/Sequence frames (they carry no name).
	childIndex int
}

// resolveContext carries the state threaded through one call to
// ResolveScope: the six already-resolved scope root types (for
// fallback) and a preorder "document position" counter (the stack of
// ancestor frames is passed to walk and resolve as an argument) used to validate target-precedes-source ordering
// (spec.md §4.4 step 5; a preorder index is document order, so
// comparing preorder numbers is equivalent to the lowest-common-
// ancestor comparison the spec describes).
type resolveContext struct {
	scopes   [6]FieldType // indexed by Scope value, TracePacketHeader..EventPayload
	order    map[FieldType]int
	nextOrd  int
	resolver *Resolver
}

// ResolveScope runs the resolver over root, the root type of scope.
// scopes holds the root types of every scope at or before scope that
// has already been frozen/attached (used for the fallback search of
// spec.md §4.4 step 4); entries for scopes not yet attached may be nil.
func (r *Resolver) ResolveScope(scope Scope, root FieldType, scopes [6]FieldType) error {
	ctx := &resolveContext{scopes: scopes, order: make(map[FieldType]int), resolver: r}
	ctx.scopes[scope] = root
	return ctx.walk(scope, root, nil)
}

// walk performs the preorder traversal, assigning document-order
// numbers and resolving every Sequence/Variant it encounters.
func (ctx *resolveContext) walk(scope Scope, t FieldType, stack []resolveStackFrame) error {
	ctx.order[t] = ctx.nextOrd
	ctx.nextOrd++

	switch c := t.(type) {
	case *SequenceType:
		if c.ResolvedLengthPath() == nil {
			path, target, err := ctx.resolve(scope, c.LengthPath(), stack, false)
			if err != nil {
				return fmt.Errorf("[resolving] sequence length path %q: %w", c.LengthPath(), err)
			}
			intType, ok := target.(*IntegerType)
			if !ok || intType.Signed() {
				return fmt.Errorf("[resolving] sequence length path %q: %w: target must be an unsigned integer",
					c.LengthPath(), ErrPathResolution)
			}
			c.setResolved(path)
		}
		return ctx.walk(scope, c.ElementType(), append(stack, resolveStackFrame{parentType: t, childIndex: -1}))

	case *ArrayType:
		return ctx.walk(scope, c.ElementType(), append(stack, resolveStackFrame{parentType: t, childIndex: -1}))

	case *VariantType:
		if c.ResolvedTagPath() == nil {
			path, target, err := ctx.resolve(scope, c.TagPath(), stack, true)
			if err != nil {
				return fmt.Errorf("[resolving] variant tag path %q: %w", c.TagPath(), err)
			}
			enumType, ok := target.(*EnumerationType)
			if !ok {
				return fmt.Errorf("[resolving] variant tag path %q: %w: target is not an enumeration",
					c.TagPath(), ErrPathResolution)
			}
			c.setResolved(path, enumType)
			if err := validateVariantLabels(c, enumType); err != nil {
				return err
			}
		}
		for i := 0; i < c.FieldCount(); i++ {
			child, _ := c.FieldTypeAtIndex(i)
			if err := ctx.walk(scope, child, append(stack, resolveStackFrame{parentType: t, childIndex: i})); err != nil {
				return err
			}
		}
		return nil

	case *StructureType:
		for i := 0; i < c.FieldCount(); i++ {
			child, _ := c.FieldTypeAtIndex(i)
			if err := ctx.walk(scope, child, append(stack, resolveStackFrame{parentType: t, childIndex: i})); err != nil {
				return err
			}
		}
		return nil

	default:
		// Integer, FloatingPoint, Enumeration, String: no children to recurse into.
		return nil
	}
}

// validateVariantLabels checks that every option label of v
// corresponds to a mapping of enumType (spec.md §3.2).
func validateVariantLabels(v *VariantType, enumType *EnumerationType) error {
	known := make(map[string]bool, len(enumType.Mappings()))
	for _, m := range enumType.Mappings() {
		known[m.Label] = true
	}
	for i := 0; i < v.FieldCount(); i++ {
		label, _ := v.NameAtIndex(i)
		if !known[label] {
			return fmt.Errorf("[resolving] variant option %q: %w: no matching tag enumeration mapping",
				label, ErrPathResolution)
		}
	}
	return nil
}

// resolve implements spec.md §4.4 steps 1-5 for a single path string S
// attached to a source node (sequence or variant) currently being
// visited in scope `scope` at stack position `stack`. isVariant lets
// a Variant source use the previous-scope fallback even when
// SiblingScopeFallback is false. The target-kind constraint
// (Enumeration for a Variant, unsigned Integer for a Sequence) is
// checked by the caller; resolve only enforces
// ordering/existence/non-root.
func (ctx *resolveContext) resolve(scope Scope, s string, stack []resolveStackFrame, isVariant bool) (*FieldPath, FieldType, error) {
	tokens, absRoot, err := tokenize(s)
	if err != nil {
		return nil, nil, err
	}

	if absRoot != nil {
		root := *absRoot
		if root == Env {
			return nil, nil, fmt.Errorf("%w: env. paths are not supported for sequence/variant resolution", ErrPathResolution)
		}
		rootType := ctx.scopes[root]
		if rootType == nil {
			return nil, nil, fmt.Errorf("%w: scope %s has no root type", ErrPathResolution, root)
		}
		target, indexes, err := followPathFromRoot(rootType, tokens)
		if err != nil {
			return nil, nil, err
		}
		path := &FieldPath{Root: root, Indexes: indexes}
		if root == scope {
			if err := ctx.validateTarget(root, rootType, indexes, target); err != nil {
				return nil, nil, err
			}
		} else {
			// root is not the scope currently being walked, so ctx.order
			// (built fresh per ResolveScope call) was never populated for
			// it. scopes entries for a scope not yet attached are left
			// nil, and the nil check above already rejected those, so
			// root here always names a scope resolved in an earlier call
			// — which, like the sibling-scope fallback below, always
			// precedes the source in document order. Only the
			// not-itself-a-root check applies.
			if len(indexes) == 0 {
				return nil, nil, fmt.Errorf("%w: target may not itself be a scope root", ErrPathResolution)
			}
		}
		return path, target, nil
	}

	// Relative resolution: walk the stack innermost-first.
	for i := len(stack) - 1; i >= 0; i-- {
		frame := stack[i]
		switch p := frame.parentType.(type) {
		case *StructureType, *VariantType:
			var compound CompoundFieldType
			if st, ok := p.(*StructureType); ok {
				compound = st
			} else {
				compound = p.(*VariantType)
			}
			if len(tokens) == 0 {
				continue
			}
			name := tokens[0]
			idx, ok := indexOf(compound, name)
			if !ok || idx > frame.childIndex {
				continue
			}
			firstTarget, _ := compound.FieldTypeAtIndex(idx)
			restTarget, restIdx, err := followPathFromRoot(firstTarget, tokens[1:])
			if err != nil {
				continue
			}
			prefix := prefixIndexes(stack, i)
			indexes := append(prefix, int32(idx))
			indexes = append(indexes, restIdx...)
			path := &FieldPath{Root: scope, Indexes: indexes}
			if err := ctx.validateTarget(scope, ctx.scopes[scope], indexes, restTarget); err != nil {
				continue
			}
			return path, restTarget, nil
		default:
			continue
		}
	}

	// Fallback to a previous scope (spec.md §4.4 step 4).
	if isVariant || ctx.resolver.SiblingScopeFallback {
		for root := scope - 1; root >= TracePacketHeader; root-- {
			rootType := ctx.scopes[root]
			if rootType == nil {
				continue
			}
			target, indexes, err := followPathFromRoot(rootType, tokens)
			if err != nil {
				continue
			}
			path := &FieldPath{Root: root, Indexes: indexes}
			// A fallback target lives in a strictly earlier scope, so
			// it always precedes the source; only the "not itself a
			// root" / existence checks from validateTarget apply.
			if len(indexes) == 0 {
				continue
			}
			return path, target, nil
		}
	}

	return nil, nil, fmt.Errorf("[resolving] path %q: %w", s, ErrPathResolution)
}

// prefixIndexes returns the indexes recorded by stack[0:upTo], the
// path from the scope root down to stack[upTo]'s parentType.
func prefixIndexes(stack []resolveStackFrame, upTo int) []int32 {
	out := make([]int32, 0, upTo)
	for i := 0; i < upTo; i++ {
		out = append(out, int32(stack[i].childIndex))
	}
	return out
}

// validateTarget enforces spec.md §4.4 step 5's ordering and
// non-root constraints for a same-scope resolution.
func (ctx *resolveContext) validateTarget(root Scope, rootType FieldType, indexes []int32, target FieldType) error {
	if len(indexes) == 0 {
		return fmt.Errorf("%w: target may not itself be a scope root", ErrPathResolution)
	}
	srcOrd, srcOK := ctx.order[target]
	_ = srcOrd
	if !srcOK {
		// Target not yet visited by the preorder walk: it lives later
		// in document order than the source, which violates the
		// precedes-in-document-order rule.
		return fmt.Errorf("%w: target does not precede the source in document order", ErrPathResolution)
	}
	return nil
}

// indexOf looks up name's index within compound, returning ok=false if absent.
func indexOf(compound CompoundFieldType, name string) (int, bool) {
	for i := 0; i < compound.FieldCount(); i++ {
		n, err := compound.NameAtIndex(i)
		if err == nil && n == name {
			return i, true
		}
	}
	return 0, false
}

// followPathFromRoot walks root following the dotted tokens,
// transparently descending through Array/Sequence element frames
// (which consume no token) and returns the type found together with
// the Field-path indexes accumulated along the way.
func followPathFromRoot(root FieldType, tokens []string) (FieldType, []int32, error) {
	cur := root
	var indexes []int32
	i := 0
	for i < len(tokens) {
		switch c := cur.(type) {
		case CompoundFieldType:
			idx, ok := indexOf(c, tokens[i])
			if !ok {
				return nil, nil, fmt.Errorf("%w: no field named %q", ErrPathResolution, tokens[i])
			}
			next, _ := c.FieldTypeAtIndex(idx)
			indexes = append(indexes, int32(idx))
			cur = next
			i++
		case *ArrayType:
			indexes = append(indexes, -1)
			cur = c.ElementType()
		case *SequenceType:
			indexes = append(indexes, -1)
			cur = c.ElementType()
		default:
			return nil, nil, fmt.Errorf("%w: cannot descend into a scalar type at %q", ErrPathResolution, tokens[i])
		}
	}
	return cur, indexes, nil
}

// tokenize splits a path string on '.', rejecting empty tokens, and
// detects one of the seven absolute scope prefixes (spec.md §4.4 step
// 1-2). absRoot is nil for a relative path.
func tokenize(s string) (tokens []string, absRoot *Scope, err error) {
	for _, prefix := range absolutePathPrefixes {
		if strings.HasPrefix(s, prefix.prefix) {
			rest := strings.TrimPrefix(s, prefix.prefix)
			toks, err := splitTokens(rest)
			if err != nil {
				return nil, nil, err
			}
			root := prefix.scope
			return toks, &root, nil
		}
	}
	toks, err := splitTokens(s)
	if err != nil {
		return nil, nil, err
	}
	return toks, nil, nil
}

func splitTokens(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalid)
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty path token in %q", ErrInvalid, s)
		}
	}
	return parts, nil
}
