// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// cloneIfUnfrozen returns a working copy of ft to mutate during
// resolution, so that failure never leaves the original touched
// (spec.md §4.8 step 1). An already-frozen type is reused as-is: it
// was already validated and frozen by an earlier pass.
func cloneIfUnfrozen(ft FieldType) FieldType {
	if ft == nil || ft.IsFrozen() {
		return ft
	}
	return ft.Copy()
}

// validateStreamClassScopes runs the resolver over the four scopes
// shared by every event of sc — TracePacketHeader, StreamPacketContext,
// StreamEventHeader, StreamEventContext — cloning any not-yet-frozen
// type first and only committing the clones once every scope resolves
// (spec.md §4.8). Called once, when sc is attached to trace.
func validateStreamClassScopes(trace *Trace, sc *StreamClass) error {
	packetHeader := cloneIfUnfrozen(trace.packetHeaderType)
	packetContext := cloneIfUnfrozen(sc.packetContextType)
	eventHeader := cloneIfUnfrozen(sc.eventHeaderType)
	eventContext := cloneIfUnfrozen(sc.eventContextType)

	var scopes [6]FieldType
	resolver := trace.resolver

	if packetHeader != nil {
		if err := resolver.ResolveScope(TracePacketHeader, packetHeader, scopes); err != nil {
			return err
		}
		scopes[TracePacketHeader] = packetHeader
	}
	if packetContext != nil {
		if err := resolver.ResolveScope(StreamPacketContext, packetContext, scopes); err != nil {
			return err
		}
		scopes[StreamPacketContext] = packetContext
	}
	if eventHeader != nil {
		if err := resolver.ResolveScope(StreamEventHeader, eventHeader, scopes); err != nil {
			return err
		}
		scopes[StreamEventHeader] = eventHeader
	}
	if eventContext != nil {
		if err := resolver.ResolveScope(StreamEventContext, eventContext, scopes); err != nil {
			return err
		}
		scopes[StreamEventContext] = eventContext
	}

	autoMapTimestamp(scopes[:StreamEventContext+1], sc.Clock())

	if packetHeader != nil {
		trace.packetHeaderType = packetHeader
		trace.packetHeaderType.Freeze()
	}
	if packetContext != nil {
		sc.packetContextType = packetContext
		sc.packetContextType.Freeze()
	}
	if eventHeader != nil {
		sc.eventHeaderType = eventHeader
		sc.eventHeaderType.Freeze()
	}
	if eventContext != nil {
		sc.eventContextType = eventContext
		sc.eventContextType.Freeze()
	}
	return nil
}

// validateEventClassScopes runs the resolver over ec's own EventContext
// and EventPayload scopes, using sc's already-frozen shared scopes for
// fallback (spec.md §4.4 step 4, §4.8). Called once per event class,
// either when the owning stream class is attached with event classes
// already present, or when an event class is added afterward
// (restricted to that class's own subtree).
func validateEventClassScopes(trace *Trace, sc *StreamClass, ec *EventClass) error {
	eventContext := cloneIfUnfrozen(ec.ContextType())
	eventPayload := cloneIfUnfrozen(ec.PayloadType())

	scopes := [6]FieldType{
		trace.packetHeaderType,
		sc.packetContextType,
		sc.eventHeaderType,
		sc.eventContextType,
	}
	resolver := trace.resolver

	if eventContext != nil {
		if err := resolver.ResolveScope(EventContext, eventContext, scopes); err != nil {
			return err
		}
		scopes[EventContext] = eventContext
	}
	if eventPayload != nil {
		if err := resolver.ResolveScope(EventPayload, eventPayload, scopes); err != nil {
			return err
		}
		scopes[EventPayload] = eventPayload
	}

	autoMapTimestamp(scopes[:], sc.Clock())

	if eventContext != nil {
		ec.contextType = eventContext
		ec.contextType.Freeze()
	}
	if eventPayload != nil {
		ec.payloadType = eventPayload
		ec.payloadType.Freeze()
	}
	return nil
}

// autoMapTimestamp walks every scope type looking for unmapped
// Integer fields named "timestamp" or one of the equivalents
// isTimestampName accepts, mapping them to clock when the stream has
// one (spec.md §4.8 step 3).
func autoMapTimestamp(scopes []FieldType, clock *ClockClass) {
	if clock == nil {
		return
	}
	for _, ft := range scopes {
		if ft != nil {
			walkTimestampFields(ft, clock)
		}
	}
}

func walkTimestampFields(ft FieldType, clock *ClockClass) {
	switch t := ft.(type) {
	case *EnumerationType:
		walkTimestampFields(t.UnderlyingInteger(), clock)
	case *ArrayType:
		walkTimestampFields(t.ElementType(), clock)
	case *SequenceType:
		walkTimestampFields(t.ElementType(), clock)
	case *StructureType:
		for i := 0; i < t.FieldCount(); i++ {
			name, _ := t.NameAtIndex(i)
			child, _ := t.FieldTypeAtIndex(i)
			if isTimestampName(name) {
				if it, ok := child.(*IntegerType); ok && it.MappedClock() == nil {
					_ = it.SetMappedClock(clock)
					continue
				}
			}
			walkTimestampFields(child, clock)
		}
	case *VariantType:
		for i := 0; i < t.FieldCount(); i++ {
			child, _ := t.FieldTypeAtIndex(i)
			walkTimestampFields(child, clock)
		}
	}
}

func isTimestampName(name string) bool {
	switch name {
	case "timestamp", "timestamp_begin", "timestamp_end", "ts":
		return true
	default:
		return false
	}
}
