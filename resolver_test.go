// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "testing"

// sequenceLengthScope builds a Structure of (len:u16, data: sequence of
// u8 keyed by lengthPath) for exercising the resolver against a single
// scope, the way payload.go's test fixtures in the original source
// build a minimal schema per resolution scenario.
func sequenceLengthScope(t *testing.T, lengthPath string) *StructureType {
	t.Helper()
	st := NewStructureType()
	lenType, err := NewIntegerType(16)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	if err := st.AddField("len", lenType); err != nil {
		t.Fatalf("AddField(len) failed: %v", err)
	}
	elem, err := NewIntegerType(8)
	if err != nil {
		t.Fatalf("NewIntegerType failed: %v", err)
	}
	seq, err := NewSequenceType(elem, lengthPath)
	if err != nil {
		t.Fatalf("NewSequenceType failed: %v", err)
	}
	if err := st.AddField("data", seq); err != nil {
		t.Fatalf("AddField(data) failed: %v", err)
	}
	return st
}

func TestResolverResolvesSiblingSequenceLength(t *testing.T) {
	st := sequenceLengthScope(t, "len")
	r := NewResolver()

	var scopes [6]FieldType
	if err := r.ResolveScope(EventPayload, st, scopes); err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}

	seqType, err := st.FieldTypeByName("data")
	if err != nil {
		t.Fatalf("FieldTypeByName(data) failed: %v", err)
	}
	seq := seqType.(*SequenceType)
	path := seq.ResolvedLengthPath()
	if path == nil {
		t.Fatal("sequence length path was not resolved")
	}
	if path.Root != EventPayload {
		t.Errorf("resolved path root = %v, want EventPayload", path.Root)
	}
	if len(path.Indexes) != 1 || path.Indexes[0] != 0 {
		t.Errorf("resolved path indexes = %v, want [0] (the len field)", path.Indexes)
	}
}

func TestResolverRejectsMissingLengthTarget(t *testing.T) {
	st := sequenceLengthScope(t, "nonexistent")
	r := NewResolver()

	var scopes [6]FieldType
	if err := r.ResolveScope(EventPayload, st, scopes); err == nil {
		t.Error("ResolveScope with an unresolvable length path should fail")
	}
}

func TestResolverRejectsLengthTargetWithWrongType(t *testing.T) {
	st := NewStructureType()
	// A string field cannot serve as a sequence length.
	strType := NewStringType()
	if err := st.AddField("len", strType); err != nil {
		t.Fatalf("AddField(len) failed: %v", err)
	}
	elem, _ := NewIntegerType(8)
	seq, err := NewSequenceType(elem, "len")
	if err != nil {
		t.Fatalf("NewSequenceType failed: %v", err)
	}
	if err := st.AddField("data", seq); err != nil {
		t.Fatalf("AddField(data) failed: %v", err)
	}

	r := NewResolver()
	var scopes [6]FieldType
	if err := r.ResolveScope(EventPayload, st, scopes); err == nil {
		t.Error("ResolveScope with a non-integer length target should fail")
	}
}

func TestResolverRejectsLengthTargetThatFollowsSource(t *testing.T) {
	st := NewStructureType()
	elem, _ := NewIntegerType(8)
	seq, err := NewSequenceType(elem, "len")
	if err != nil {
		t.Fatalf("NewSequenceType failed: %v", err)
	}
	if err := st.AddField("data", seq); err != nil {
		t.Fatalf("AddField(data) failed: %v", err)
	}
	lenType, _ := NewIntegerType(16)
	if err := st.AddField("len", lenType); err != nil {
		t.Fatalf("AddField(len) failed: %v", err)
	}

	r := NewResolver()
	var scopes [6]FieldType
	if err := r.ResolveScope(EventPayload, st, scopes); err == nil {
		t.Error("ResolveScope with a length target declared after the sequence should fail")
	}
}

func TestResolverFallsBackToEarlierScope(t *testing.T) {
	headerType := NewStructureType()
	lenType, _ := NewIntegerType(16)
	if err := headerType.AddField("len", lenType); err != nil {
		t.Fatalf("AddField(len) failed: %v", err)
	}

	payloadType := NewStructureType()
	elem, _ := NewIntegerType(8)
	seq, err := NewSequenceType(elem, "len")
	if err != nil {
		t.Fatalf("NewSequenceType failed: %v", err)
	}
	if err := payloadType.AddField("data", seq); err != nil {
		t.Fatalf("AddField(data) failed: %v", err)
	}

	r := NewResolver()
	var scopes [6]FieldType
	if err := r.ResolveScope(StreamEventHeader, headerType, scopes); err != nil {
		t.Fatalf("ResolveScope(StreamEventHeader) failed: %v", err)
	}
	scopes[StreamEventHeader] = headerType

	if err := r.ResolveScope(EventPayload, payloadType, scopes); err != nil {
		t.Fatalf("ResolveScope(EventPayload) failed: %v", err)
	}

	seqType, _ := payloadType.FieldTypeByName("data")
	path := seqType.(*SequenceType).ResolvedLengthPath()
	if path == nil {
		t.Fatal("sequence length path was not resolved via the sibling-scope fallback")
	}
	if path.Root != StreamEventHeader {
		t.Errorf("resolved path root = %v, want StreamEventHeader", path.Root)
	}
}

// TestResolverResolvesAbsolutePathToEarlierScope exercises a length path
// carrying one of the absolute scope prefixes from scope.go rather than
// falling back implicitly: the source sits in event.fields and names
// stream.packet.context explicitly. ctx.order is rebuilt fresh by every
// ResolveScope call, so an absolute target resolved in a prior call is
// absent from the current call's order map; that must not be mistaken
// for a target lying later in document order.
func TestResolverResolvesAbsolutePathToEarlierScope(t *testing.T) {
	packetContextType := NewStructureType()
	lenType, _ := NewIntegerType(16)
	if err := packetContextType.AddField("len", lenType); err != nil {
		t.Fatalf("AddField(len) failed: %v", err)
	}

	payloadType := NewStructureType()
	elem, _ := NewIntegerType(8)
	seq, err := NewSequenceType(elem, "stream.packet.context.len")
	if err != nil {
		t.Fatalf("NewSequenceType failed: %v", err)
	}
	if err := payloadType.AddField("data", seq); err != nil {
		t.Fatalf("AddField(data) failed: %v", err)
	}

	r := NewResolver()
	var scopes [6]FieldType
	if err := r.ResolveScope(StreamPacketContext, packetContextType, scopes); err != nil {
		t.Fatalf("ResolveScope(StreamPacketContext) failed: %v", err)
	}
	scopes[StreamPacketContext] = packetContextType

	if err := r.ResolveScope(EventPayload, payloadType, scopes); err != nil {
		t.Fatalf("ResolveScope(EventPayload) failed: %v", err)
	}

	seqType, _ := payloadType.FieldTypeByName("data")
	path := seqType.(*SequenceType).ResolvedLengthPath()
	if path == nil {
		t.Fatal("sequence length path was not resolved via the absolute scope prefix")
	}
	if path.Root != StreamPacketContext {
		t.Errorf("resolved path root = %v, want StreamPacketContext", path.Root)
	}
	if len(path.Indexes) != 1 || path.Indexes[0] != 0 {
		t.Errorf("resolved path indexes = %v, want [0] (the len field)", path.Indexes)
	}
}
