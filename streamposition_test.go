// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestWriterPosition(t *testing.T) (*StreamPosition, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o660)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	pos, err := newWriterPosition(f, os.Getpagesize(), nil)
	if err != nil {
		t.Fatalf("newWriterPosition failed: %v", err)
	}
	return pos, f
}

func TestStreamPositionIntegerRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		bits  uint32
		order ByteOrder
		val   uint64
	}{
		{"8-bit", 8, OrderBigEndian, 0xAB},
		{"16-bit big endian", 16, OrderBigEndian, 0xBEEF},
		{"16-bit little endian", 16, OrderLittleEndian, 0xBEEF},
		{"32-bit little endian", 32, OrderLittleEndian, 0xDEADBEEF},
		{"27-bit unaligned", 27, OrderBigEndian, 0x7FFFFF0},
		{"64-bit", 64, OrderBigEndian, 0xFFFFFFFFFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, f := newTestWriterPosition(t)
			defer f.Close()

			if err := pos.WriteUnsigned(tt.bits, tt.order, tt.val); err != nil {
				t.Fatalf("WriteUnsigned failed: %v", err)
			}
			pos.offset = pos.packetStart
			got, err := pos.ReadUnsigned(tt.bits, tt.order)
			if err != nil {
				t.Fatalf("ReadUnsigned failed: %v", err)
			}
			if got != tt.val {
				t.Errorf("round trip = 0x%x, want 0x%x", got, tt.val)
			}
		})
	}
}

func TestStreamPositionSignedRoundTrip(t *testing.T) {
	pos, f := newTestWriterPosition(t)
	defer f.Close()

	want := int64(-42)
	if err := pos.WriteSigned(16, OrderBigEndian, want); err != nil {
		t.Fatalf("WriteSigned failed: %v", err)
	}
	pos.offset = pos.packetStart
	got, err := pos.ReadSigned(16, OrderBigEndian)
	if err != nil {
		t.Fatalf("ReadSigned failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadSigned() = %d, want %d", got, want)
	}
}

func TestStreamPositionStringRoundTrip(t *testing.T) {
	pos, f := newTestWriterPosition(t)
	defer f.Close()

	want := "hello, ctf"
	if err := pos.WriteString(want); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	pos.offset = pos.packetStart
	got, err := pos.ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadString() = %q, want %q", got, want)
	}
}

func TestStreamPositionAlignAndPad(t *testing.T) {
	pos, f := newTestWriterPosition(t)
	defer f.Close()

	if err := pos.WriteUnsigned(3, OrderBigEndian, 0x5); err != nil {
		t.Fatalf("WriteUnsigned failed: %v", err)
	}
	pos.Align(8)
	if pos.BitsWritten()%8 != 0 {
		t.Fatalf("Align(8) left cursor at %d bits, not byte aligned", pos.BitsWritten())
	}

	if err := pos.PadToBits(64); err != nil {
		t.Fatalf("PadToBits failed: %v", err)
	}
	if pos.BitsWritten() != 64 {
		t.Errorf("BitsWritten() = %d, want 64", pos.BitsWritten())
	}
}

func TestStreamPositionGrowsAcrossPageBoundary(t *testing.T) {
	pos, f := newTestWriterPosition(t)
	defer f.Close()

	pageBits := uint64(pos.pageSize) * 8
	written := uint64(0)
	for written+64 <= pageBits+128 {
		if err := pos.WriteUnsigned(64, OrderBigEndian, written); err != nil {
			t.Fatalf("WriteUnsigned at bit %d failed: %v", written, err)
		}
		written += 64
	}
	if int64(pos.fileSize) <= int64(pos.pageSize) {
		t.Errorf("fileSize = %d, expected growth past one page (%d)", pos.fileSize, pos.pageSize)
	}

	pos.offset = pos.packetStart
	for off := uint64(0); off < written; off += 64 {
		got, err := pos.ReadUnsigned(64, OrderBigEndian)
		if err != nil {
			t.Fatalf("ReadUnsigned at bit %d failed: %v", off, err)
		}
		if got != off {
			t.Errorf("ReadUnsigned at bit %d = %d, want %d", off, got, off)
		}
	}
}

func TestStreamPositionMarkAndSeek(t *testing.T) {
	pos, f := newTestWriterPosition(t)
	defer f.Close()

	if err := pos.WriteUnsigned(32, OrderBigEndian, 0x11111111); err != nil {
		t.Fatalf("WriteUnsigned failed: %v", err)
	}
	mark := pos.Mark()
	if err := pos.WriteUnsigned(32, OrderBigEndian, 0x22222222); err != nil {
		t.Fatalf("WriteUnsigned failed: %v", err)
	}
	end := pos.SeekMark(mark)

	if err := pos.WriteUnsigned(32, OrderBigEndian, 0x33333333); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	pos.SeekMark(end)

	pos.offset = pos.packetStart
	first, _ := pos.ReadUnsigned(32, OrderBigEndian)
	second, _ := pos.ReadUnsigned(32, OrderBigEndian)
	if first != 0x11111111 || second != 0x33333333 {
		t.Errorf("got (0x%x, 0x%x), want (0x11111111, 0x33333333)", first, second)
	}
}

func TestStreamPositionResetToPacketStart(t *testing.T) {
	pos, f := newTestWriterPosition(t)
	defer f.Close()

	if err := pos.WriteUnsigned(32, OrderBigEndian, 1); err != nil {
		t.Fatalf("WriteUnsigned failed: %v", err)
	}
	pos.ResetToPacketStart()
	if pos.BitsWritten() != 0 {
		t.Errorf("BitsWritten() = %d after reset, want 0", pos.BitsWritten())
	}
}
