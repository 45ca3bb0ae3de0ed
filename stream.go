// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"

	"github.com/saferwall/ctf/log"
)

// packetMagic is the 32-bit magic number every CTF packet starts with
// (spec.md §6).
const packetMagic = 0xC1FC1FC1

// Stream is one open output (or input) of a StreamClass: a rolling
// packet buffer, queued events, and header/context fields
// (spec.md §3.4).
type Stream struct {
	trace *Trace
	class *StreamClass
	id    uint64

	packetHeader  Field
	packetContext Field

	queued []*Event

	pos                *StreamPosition
	flushedPacketCount uint64
	lastTsEnd          uint64
	discardedCount     uint64

	clocks *clockValues
	logger *log.Helper
}

func newStream(trace *Trace, sc *StreamClass, id uint64, pos *StreamPosition) *Stream {
	s := &Stream{trace: trace, class: sc, id: id, pos: pos, clocks: newClockValues(), logger: trace.logger}
	if trace.PacketHeaderType() != nil {
		if f, err := NewField(trace.PacketHeaderType()); err == nil {
			s.packetHeader = f
		}
	}
	if sc.PacketContextType() != nil {
		if f, err := NewField(sc.PacketContextType()); err == nil {
			s.packetContext = f
		}
	}
	return s
}

// Class returns the stream's class.
func (s *Stream) Class() *StreamClass { return s.class }

// ID returns the stream's numeric id.
func (s *Stream) ID() uint64 { return s.id }

// FlushedPacketCount returns how many packets have been committed so far.
func (s *Stream) FlushedPacketCount() uint64 { return s.flushedPacketCount }

// NewQueuedEvent creates and queues a new Event of class ec, sharing
// this stream's header/stream-event-context types.
func (s *Stream) NewQueuedEvent(ec *EventClass) (*Event, error) {
	if !ec.IsFrozen() {
		return nil, fmt.Errorf("%w: event class %q has not been validated", ErrInvalid, ec.Name())
	}
	ev, err := NewEvent(ec, s.class.EventHeaderType(), s.class.EventContextType())
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// AppendEvent validates ev, freezes its fields, and queues it for the
// next Flush.
func (s *Stream) AppendEvent(ev *Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	ev.Freeze()
	s.recordClockValues(ev)
	s.queued = append(s.queued, ev)
	return nil
}

// AppendDiscardedEvents records that n events were produced by the
// source but dropped before reaching this stream (spec.md §3.4's
// discarded_count, reinstated per SUPPLEMENTED FEATURES from the
// original stream.c).
func (s *Stream) AppendDiscardedEvents(n uint64) { s.discardedCount += n }

// DiscardedEventCount returns the packet context's events_discarded
// field if one exists and has been populated, falling back to the
// in-memory counter otherwise.
func (s *Stream) DiscardedEventCount() (uint64, error) {
	if structF, ok := s.packetContext.(*StructureField); ok {
		if f, err := structF.GetField("events_discarded"); err == nil {
			if intF, ok := f.(*IntegerField); ok && intF.IsSet() {
				return intF.Unsigned()
			}
		}
	}
	return s.discardedCount, nil
}

// recordClockValues folds the header's mapped-clock integer fields (if
// any) into the stream's accumulated clock_values map and attaches the
// resulting ClockValue to ev (spec.md §4.7).
func (s *Stream) recordClockValues(ev *Event) {
	header := ev.Header()
	structF, ok := header.(*StructureField)
	if !ok {
		return
	}
	st, ok := structF.Type().(*StructureType)
	if !ok {
		return
	}
	for i := 0; i < st.FieldCount(); i++ {
		ft, err := st.FieldTypeAtIndex(i)
		if err != nil {
			continue
		}
		intType, ok := ft.(*IntegerType)
		if !ok || intType.MappedClock() == nil {
			continue
		}
		child, err := structF.GetFieldAtIndex(i)
		if err != nil {
			continue
		}
		intF, ok := child.(*IntegerField)
		if !ok || !intF.IsSet() {
			continue
		}
		raw, err := intF.Unsigned()
		if err != nil {
			continue
		}
		class := intType.MappedClock()
		accumulated := s.clocks.update(class, intType.SizeBits(), raw)
		ev.SetClockValue(NewClockValue(class, accumulated))
	}
}

// Flush commits every queued event as one CTF packet, following
// spec.md §4.6's seven-step pipeline.
func (s *Stream) Flush() error {
	// Step 1: packet-seek to the next packet.
	if err := s.pos.NextPacket(); err != nil {
		return err
	}

	if err := s.populatePacketHeader(); err != nil {
		s.pos.ResetToPacketStart()
		return err
	}
	if s.packetHeader != nil {
		if err := s.packetHeader.Validate(); err != nil {
			s.pos.ResetToPacketStart()
			return err
		}
	}

	native := s.trace.NativeByteOrder()
	scopes := &scopeFieldSet{}
	scopes.scopes[TracePacketHeader] = s.packetHeader

	// Step 2: serialize the packet header.
	if s.packetHeader != nil {
		if err := serializeField(s.pos, s.packetHeader, native, scopes); err != nil {
			s.pos.ResetToPacketStart()
			return err
		}
	}

	// Step 3: opportunistically populate well-known packet-context fields.
	s.populatePacketContext()

	// Step 4: snapshot, then serialize the packet context with placeholders.
	ctxMark := s.pos.Mark()
	scopes.scopes[StreamPacketContext] = s.packetContext
	if s.packetContext != nil {
		if err := s.packetContext.Validate(); err != nil {
			s.pos.ResetToPacketStart()
			return err
		}
		if err := serializeField(s.pos, s.packetContext, native, scopes); err != nil {
			s.pos.ResetToPacketStart()
			return err
		}
	}

	// Step 5: serialize every queued event.
	for _, ev := range s.queued {
		scopes.scopes[StreamEventHeader] = ev.Header()
		scopes.scopes[StreamEventContext] = ev.StreamEventContext()
		scopes.scopes[EventContext] = ev.Context()
		scopes.scopes[EventPayload] = ev.Payload()

		for _, f := range []Field{ev.Header(), ev.StreamEventContext(), ev.Context(), ev.Payload()} {
			if f == nil {
				continue
			}
			if err := serializeField(s.pos, f, native, scopes); err != nil {
				s.pos.ResetToPacketStart()
				return err
			}
		}
	}

	// Step 6: compute the final content size, rewrite placeholders.
	contentBits := s.pos.BitsWritten()
	packetSizeBits := contentBits
	if rem := packetSizeBits % 8; rem != 0 {
		packetSizeBits += 8 - rem
	}
	if err := s.pos.PadToBits(packetSizeBits); err != nil {
		s.pos.ResetToPacketStart()
		return err
	}
	endMark := s.pos.Mark()

	s.rewritePlaceholders(contentBits, packetSizeBits)
	if s.packetContext != nil {
		s.pos.SeekMark(ctxMark)
		scopes.scopes[StreamPacketContext] = s.packetContext
		if err := serializeField(s.pos, s.packetContext, native, scopes); err != nil {
			s.pos.ResetToPacketStart()
			return err
		}
	}
	s.pos.SeekMark(endMark)

	s.resetAutoPopulatedFields()

	// Step 7: bump the flushed count, clear the queue.
	s.flushedPacketCount++
	s.lastTsEnd = s.lastQueuedTimestamp()
	s.queued = nil
	return nil
}

// populatePacketHeader best-effort fills magic/uuid/stream_id when the
// trace's packet header type declares same-named fields (spec.md
// SUPPLEMENTED FEATURES, mirroring stream.c's set_packet_header_*).
func (s *Stream) populatePacketHeader() error {
	structF, ok := s.packetHeader.(*StructureField)
	if !ok {
		return nil
	}
	if f, err := structF.GetField("magic"); err == nil {
		if intF, ok := f.(*IntegerField); ok {
			_ = intF.SetUnsigned(packetMagic)
		}
	}
	if f, err := structF.GetField("uuid"); err == nil {
		if arrF, ok := f.(*ArrayField); ok {
			if id, has := s.trace.UUID(); has {
				for i := 0; i < arrF.Len() && i < 16; i++ {
					el, err := arrF.GetElement(i)
					if err != nil {
						continue
					}
					if intF, ok := el.(*IntegerField); ok {
						_ = intF.SetUnsigned(uint64(id[i]))
					}
				}
			}
		}
	}
	if f, err := structF.GetField("stream_id"); err == nil {
		if intF, ok := f.(*IntegerField); ok {
			_ = intF.SetUnsigned(s.id)
		}
	}
	return nil
}

// populatePacketContext best-effort fills timestamp_begin/
// timestamp_end/events_discarded when present and unset, and seeds
// content_size/packet_size placeholders to be rewritten in step 6
// (spec.md §4.6 step 3).
func (s *Stream) populatePacketContext() {
	structF, ok := s.packetContext.(*StructureField)
	if !ok {
		return
	}
	if len(s.queued) > 0 {
		if ts, ok := s.timestampOf(s.queued[0]); ok {
			if f, err := structF.GetField("timestamp_begin"); err == nil {
				if intF, ok := f.(*IntegerField); ok && !intF.IsSet() {
					_ = intF.SetUnsigned(ts)
				}
			}
		}
		if ts, ok := s.timestampOf(s.queued[len(s.queued)-1]); ok {
			if f, err := structF.GetField("timestamp_end"); err == nil {
				if intF, ok := f.(*IntegerField); ok && !intF.IsSet() {
					_ = intF.SetUnsigned(ts)
				}
			}
		}
	}
	if f, err := structF.GetField("events_discarded"); err == nil {
		if intF, ok := f.(*IntegerField); ok && !intF.IsSet() {
			_ = intF.SetUnsigned(s.discardedCount)
		}
	}
	for _, name := range []string{"content_size", "packet_size"} {
		if f, err := structF.GetField(name); err == nil {
			if intF, ok := f.(*IntegerField); ok && !intF.IsSet() {
				_ = intF.SetUnsigned(intF.typ.unsignedMax())
			}
		}
	}
}

// rewritePlaceholders overwrites content_size/packet_size with their
// real values now that the packet is fully serialized (spec.md §4.6
// step 6).
func (s *Stream) rewritePlaceholders(contentBits, packetSizeBits uint64) {
	structF, ok := s.packetContext.(*StructureField)
	if !ok {
		return
	}
	if f, err := structF.GetField("content_size"); err == nil {
		if intF, ok := f.(*IntegerField); ok {
			_ = intF.SetUnsigned(contentBits)
		}
	}
	if f, err := structF.GetField("packet_size"); err == nil {
		if intF, ok := f.(*IntegerField); ok {
			_ = intF.SetUnsigned(packetSizeBits)
		}
	}
}

// resetAutoPopulatedFields clears the packet header/context so the
// next packet starts fresh (spec.md §4.6 step 6).
func (s *Stream) resetAutoPopulatedFields() {
	if s.packetHeader != nil {
		s.packetHeader.Reset()
	}
	if s.packetContext != nil {
		s.packetContext.Reset()
	}
}

func (s *Stream) timestampOf(ev *Event) (uint64, bool) {
	structF, ok := ev.Header().(*StructureField)
	if !ok {
		return 0, false
	}
	f, err := structF.GetField("timestamp")
	if err != nil {
		return 0, false
	}
	intF, ok := f.(*IntegerField)
	if !ok || !intF.IsSet() {
		return 0, false
	}
	v, err := intF.Unsigned()
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s *Stream) lastQueuedTimestamp() uint64 {
	if len(s.queued) == 0 {
		return s.lastTsEnd
	}
	if ts, ok := s.timestampOf(s.queued[len(s.queued)-1]); ok {
		return ts
	}
	return s.lastTsEnd
}

// Close finalizes the stream's backing file, truncating it to the end
// of the last successfully flushed packet (spec.md §6).
func (s *Stream) Close() error {
	finalBytes := int64(s.pos.offset) / 8
	return s.pos.Close(finalBytes)
}
