// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"os"
	"testing"
)

// buildTestTrace wires a minimal but complete Trace: packet header
// (magic, stream_id), one StreamClass with a monotonic clock, a packet
// context (timestamp_begin/end, content_size, packet_size,
// events_discarded), an event header (id, timestamp — auto-mapped to
// the stream's clock), and one event class with a u32 payload.
func buildTestTrace(t *testing.T) (*Trace, *StreamClass, *EventClass) {
	t.Helper()

	trace := NewTrace(nil)
	if err := trace.SetNativeByteOrder(OrderBigEndian); err != nil {
		t.Fatalf("SetNativeByteOrder failed: %v", err)
	}

	header := NewStructureType()
	magic, err := NewIntegerType(32)
	if err != nil {
		t.Fatalf("NewIntegerType(32) failed: %v", err)
	}
	if err := header.AddField("magic", magic); err != nil {
		t.Fatalf("AddField(magic) failed: %v", err)
	}
	streamID, err := NewIntegerType(64)
	if err != nil {
		t.Fatalf("NewIntegerType(64) failed: %v", err)
	}
	if err := header.AddField("stream_id", streamID); err != nil {
		t.Fatalf("AddField(stream_id) failed: %v", err)
	}
	if err := trace.SetPacketHeaderType(header); err != nil {
		t.Fatalf("SetPacketHeaderType failed: %v", err)
	}

	sc := NewStreamClass("test_stream")

	clock, err := NewClockClass("monotonic", 1_000_000_000)
	if err != nil {
		t.Fatalf("NewClockClass failed: %v", err)
	}
	if err := sc.SetClock(clock); err != nil {
		t.Fatalf("SetClock failed: %v", err)
	}

	context := NewStructureType()
	for _, name := range []string{"timestamp_begin", "timestamp_end", "content_size", "packet_size", "events_discarded"} {
		it, err := NewIntegerType(64)
		if err != nil {
			t.Fatalf("NewIntegerType(64) failed: %v", err)
		}
		if err := context.AddField(name, it); err != nil {
			t.Fatalf("AddField(%s) failed: %v", name, err)
		}
	}
	if err := sc.SetPacketContextType(context); err != nil {
		t.Fatalf("SetPacketContextType failed: %v", err)
	}

	eventHeader := NewStructureType()
	id, err := NewIntegerType(16)
	if err != nil {
		t.Fatalf("NewIntegerType(16) failed: %v", err)
	}
	if err := eventHeader.AddField("id", id); err != nil {
		t.Fatalf("AddField(id) failed: %v", err)
	}
	ts, err := NewIntegerType(32)
	if err != nil {
		t.Fatalf("NewIntegerType(32) failed: %v", err)
	}
	if err := eventHeader.AddField("timestamp", ts); err != nil {
		t.Fatalf("AddField(timestamp) failed: %v", err)
	}
	if err := sc.SetEventHeaderType(eventHeader); err != nil {
		t.Fatalf("SetEventHeaderType failed: %v", err)
	}

	ec := NewEventClass("test_event")
	payload := NewStructureType()
	value, err := NewIntegerType(32)
	if err != nil {
		t.Fatalf("NewIntegerType(32) failed: %v", err)
	}
	if err := payload.AddField("value", value); err != nil {
		t.Fatalf("AddField(value) failed: %v", err)
	}
	if err := ec.SetPayloadType(payload); err != nil {
		t.Fatalf("SetPayloadType failed: %v", err)
	}
	if err := sc.AddEventClass(ec); err != nil {
		t.Fatalf("AddEventClass failed: %v", err)
	}

	if err := trace.AddStreamClass(sc); err != nil {
		t.Fatalf("AddStreamClass failed: %v", err)
	}
	return trace, sc, ec
}

func setHeaderAndPayload(t *testing.T, ev *Event, id uint64, ts uint64, value uint64) {
	t.Helper()

	headerF, ok := ev.Header().(*StructureField)
	if !ok {
		t.Fatalf("event header is not a structure field")
	}
	idF, err := headerF.GetField("id")
	if err != nil {
		t.Fatalf("GetField(id) failed: %v", err)
	}
	if err := idF.(*IntegerField).SetUnsigned(id); err != nil {
		t.Fatalf("SetUnsigned(id) failed: %v", err)
	}
	tsF, err := headerF.GetField("timestamp")
	if err != nil {
		t.Fatalf("GetField(timestamp) failed: %v", err)
	}
	if err := tsF.(*IntegerField).SetUnsigned(ts); err != nil {
		t.Fatalf("SetUnsigned(timestamp) failed: %v", err)
	}

	payloadF, ok := ev.Payload().(*StructureField)
	if !ok {
		t.Fatalf("event payload is not a structure field")
	}
	valueF, err := payloadF.GetField("value")
	if err != nil {
		t.Fatalf("GetField(value) failed: %v", err)
	}
	if err := valueF.(*IntegerField).SetUnsigned(value); err != nil {
		t.Fatalf("SetUnsigned(value) failed: %v", err)
	}
}

func TestStreamFlushSinglePacket(t *testing.T) {
	trace, sc, ec := buildTestTrace(t)

	dir := t.TempDir()
	stream, err := trace.CreateStream(sc, dir, 0)
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	ev, err := stream.NewQueuedEvent(ec)
	if err != nil {
		t.Fatalf("NewQueuedEvent failed: %v", err)
	}
	setHeaderAndPayload(t, ev, 1, 1000, 0xCAFE)

	if err := stream.AppendEvent(ev); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}

	if err := stream.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := stream.FlushedPacketCount(); got != 1 {
		t.Errorf("FlushedPacketCount() = %d, want 1", got)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

// TestStreamCloseRetainsFlushedPacketData reads the backing file back
// after Close, rather than stopping at FlushedPacketCount: Close must
// truncate to the end of the last flushed packet, not its start, or a
// single-packet stream is left as an empty file.
func TestStreamCloseRetainsFlushedPacketData(t *testing.T) {
	trace, sc, ec := buildTestTrace(t)

	dir := t.TempDir()
	stream, err := trace.CreateStream(sc, dir, 0)
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}
	path := streamFilePath(dir, sc, 0)

	ev, err := stream.NewQueuedEvent(ec)
	if err != nil {
		t.Fatalf("NewQueuedEvent failed: %v", err)
	}
	setHeaderAndPayload(t, ev, 1, 1000, 0xCAFE)
	if err := stream.AppendEvent(ev); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := stream.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if fi.Size() == 0 {
		t.Fatal("stream file is empty after Close; the last flushed packet was truncated away")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	rpos, err := newReaderPosition(f, nil)
	if err != nil {
		t.Fatalf("newReaderPosition failed: %v", err)
	}
	magic, err := rpos.ReadUnsigned(32, OrderBigEndian)
	if err != nil {
		t.Fatalf("ReadUnsigned(magic) failed: %v", err)
	}
	if magic != packetMagic {
		t.Errorf("packet magic = %#x, want %#x", magic, packetMagic)
	}
}

func TestStreamFlushTwoPacketsIndependent(t *testing.T) {
	trace, sc, ec := buildTestTrace(t)

	dir := t.TempDir()
	stream, err := trace.CreateStream(sc, dir, 0)
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	ev1, err := stream.NewQueuedEvent(ec)
	if err != nil {
		t.Fatalf("NewQueuedEvent failed: %v", err)
	}
	setHeaderAndPayload(t, ev1, 1, 1000, 0xAAAA)
	if err := stream.AppendEvent(ev1); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := stream.Flush(); err != nil {
		t.Fatalf("first Flush failed: %v", err)
	}

	ev2, err := stream.NewQueuedEvent(ec)
	if err != nil {
		t.Fatalf("NewQueuedEvent failed: %v", err)
	}
	setHeaderAndPayload(t, ev2, 2, 2000, 0xBBBB)
	if err := stream.AppendEvent(ev2); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := stream.Flush(); err != nil {
		t.Fatalf("second Flush failed: %v", err)
	}

	if got := stream.FlushedPacketCount(); got != 2 {
		t.Errorf("FlushedPacketCount() = %d, want 2", got)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStreamAppendDiscardedEvents(t *testing.T) {
	trace, sc, ec := buildTestTrace(t)

	dir := t.TempDir()
	stream, err := trace.CreateStream(sc, dir, 0)
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}
	stream.AppendDiscardedEvents(3)

	ev, err := stream.NewQueuedEvent(ec)
	if err != nil {
		t.Fatalf("NewQueuedEvent failed: %v", err)
	}
	setHeaderAndPayload(t, ev, 1, 1000, 1)
	if err := stream.AppendEvent(ev); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := stream.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got, err := stream.DiscardedEventCount()
	if err != nil {
		t.Fatalf("DiscardedEventCount failed: %v", err)
	}
	if got != 3 {
		t.Errorf("DiscardedEventCount() = %d, want 3", got)
	}
}

func TestNewQueuedEventRejectsUnfrozenEventClass(t *testing.T) {
	trace, sc, _ := buildTestTrace(t)

	dir := t.TempDir()
	stream, err := trace.CreateStream(sc, dir, 0)
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	unfrozen := NewEventClass("orphan_event")
	payload := NewStructureType()
	value, err := NewIntegerType(8)
	if err != nil {
		t.Fatalf("NewIntegerType(8) failed: %v", err)
	}
	if err := payload.AddField("value", value); err != nil {
		t.Fatalf("AddField(value) failed: %v", err)
	}
	if err := unfrozen.SetPayloadType(payload); err != nil {
		t.Fatalf("SetPayloadType failed: %v", err)
	}

	if _, err := stream.NewQueuedEvent(unfrozen); err == nil {
		t.Error("NewQueuedEvent with an unvalidated event class should fail")
	}
}
