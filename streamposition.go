// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"math"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"

	"github.com/saferwall/ctf/log"
)

// StreamPosition is a bit-precise cursor over a memory-mapped packet
// buffer (spec.md §4.6). Writers grow the mapping page by page with
// fallocate as fields overflow the current allocation; readers map
// the file once and walk it sequentially.
type StreamPosition struct {
	f        *os.File
	mm       mmap.MMap
	write    bool
	pageSize int
	fileSize int64 // bytes currently allocated in the file

	packetStart uint64 // bit offset where the current packet begins
	offset      uint64 // bit offset of the read/write cursor

	logger *log.Helper
}

// streamPositionMark is an opaque rewind point within a StreamPosition,
// used to come back and overwrite placeholder fields once a packet's
// final size is known (spec.md §4.6 step 6).
type streamPositionMark struct{ offset uint64 }

// newWriterPosition opens f for page-granular growable writing.
func newWriterPosition(f *os.File, pageSize int, logger *log.Helper) (*StreamPosition, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat: %v", ErrIO, err)
	}
	p := &StreamPosition{f: f, write: true, pageSize: pageSize, fileSize: fi.Size(), logger: logger}
	if p.fileSize > 0 {
		data, err := mmap.Map(f, mmap.RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: mmap: %v", ErrIO, err)
		}
		p.mm = data
	}
	return p, nil
}

// newReaderPosition opens f read-only, mapping its entire current
// content in one pass (mirrors the teacher's read-only mmap.Map call
// over the whole file).
func newReaderPosition(f *os.File, logger *log.Helper) (*StreamPosition, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat: %v", ErrIO, err)
	}
	p := &StreamPosition{f: f, write: false, fileSize: fi.Size(), logger: logger}
	if p.fileSize > 0 {
		data, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: mmap: %v", ErrIO, err)
		}
		p.mm = data
	}
	return p, nil
}

// grow extends the backing file by one page via fallocate and remaps
// it, retrying on EINTR (spec.md §4.6 step 2).
func (p *StreamPosition) grow() error {
	if p.mm != nil {
		if err := p.mm.Unmap(); err != nil {
			return fmt.Errorf("%w: munmap: %v", ErrIO, err)
		}
		p.mm = nil
	}
	for {
		err := unix.Fallocate(int(p.f.Fd()), 0, p.fileSize, int64(p.pageSize))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: fallocate: %v", ErrResourceExhausted, err)
		}
		break
	}
	p.fileSize += int64(p.pageSize)
	data, err := mmap.Map(p.f, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: mmap: %v", ErrIO, err)
	}
	p.mm = data
	if p.logger != nil {
		p.logger.Debugf("grew packet buffer to %d bytes", p.fileSize)
	}
	return nil
}

// ensureCapacity grows the mapping until the next bitsNeeded bits fit
// past the current offset (spec.md §4.6 step 2).
func (p *StreamPosition) ensureCapacity(bitsNeeded uint64) error {
	if !p.write {
		return fmt.Errorf("%w: position is not open for writing", ErrInvalid)
	}
	for p.offset+bitsNeeded > uint64(p.fileSize)*8 {
		if err := p.grow(); err != nil {
			return err
		}
	}
	return nil
}

// Align rounds the cursor up to the next multiple of alignmentBits,
// relative to the start of the current packet (spec.md §4.6 step 1).
func (p *StreamPosition) Align(alignmentBits uint32) {
	if alignmentBits <= 1 {
		return
	}
	a := uint64(alignmentBits)
	rel := p.offset - p.packetStart
	if rem := rel % a; rem != 0 {
		p.offset += a - rem
	}
}

// Offset returns the cursor's absolute bit position in the file.
func (p *StreamPosition) Offset() uint64 { return p.offset }

// PacketStart returns the bit position where the current packet begins.
func (p *StreamPosition) PacketStart() uint64 { return p.packetStart }

// BitsWritten returns how many bits have been produced since the
// current packet started.
func (p *StreamPosition) BitsWritten() uint64 { return p.offset - p.packetStart }

// NextPacket advances the packet boundary to the current cursor,
// which must already sit on a byte boundary (spec.md §6).
func (p *StreamPosition) NextPacket() error {
	if p.offset%8 != 0 {
		return fmt.Errorf("%w: packet must start on a byte boundary", ErrValidation)
	}
	p.packetStart = p.offset
	return nil
}

// PadToBits advances the cursor to exactly totalBits past the current
// packet start, zero-filling the padding on write.
func (p *StreamPosition) PadToBits(totalBits uint64) error {
	target := p.packetStart + totalBits
	if target < p.offset {
		return fmt.Errorf("%w: packet size %d smaller than bits already written", ErrValidation, totalBits)
	}
	if p.write {
		if err := p.ensureCapacity(target - p.offset); err != nil {
			return err
		}
	}
	p.offset = target
	return nil
}

// Mark captures the current cursor for a later rewind (spec.md §4.6
// step 6's rewind snapshot).
func (p *StreamPosition) Mark() streamPositionMark { return streamPositionMark{p.offset} }

// SeekMark rewinds to m, returning a mark for the cursor's previous
// position so the caller can restore it afterwards.
func (p *StreamPosition) SeekMark(m streamPositionMark) streamPositionMark {
	prev := streamPositionMark{p.offset}
	p.offset = m.offset
	return prev
}

// ResetToPacketStart discards any bits written past the current
// packet's start; used when a flush fails partway through
// (spec.md §7: "the codec always leaves the file size-consistent").
func (p *StreamPosition) ResetToPacketStart() { p.offset = p.packetStart }

// WriteUnsigned bit-packs the low nbits of v at the cursor in order,
// growing the mapping if necessary, and advances the cursor.
func (p *StreamPosition) WriteUnsigned(nbits uint32, order ByteOrder, v uint64) error {
	if !p.write {
		return fmt.Errorf("%w: position is not open for writing", ErrInvalid)
	}
	if nbits == 0 || nbits > 64 {
		return fmt.Errorf("%w: integer width %d out of range", ErrInvalid, nbits)
	}
	if err := p.ensureCapacity(uint64(nbits)); err != nil {
		return err
	}
	packInteger(p.mm, p.offset, nbits, order, v)
	p.offset += uint64(nbits)
	return nil
}

// WriteSigned writes the low nbits of the two's-complement
// representation of v.
func (p *StreamPosition) WriteSigned(nbits uint32, order ByteOrder, v int64) error {
	return p.WriteUnsigned(nbits, order, uint64(v))
}

// WriteFloat packs v as an IEEE-754 value occupying expDigits+mantDigits
// bits (32 for single precision, 64 for double).
func (p *StreamPosition) WriteFloat(expDigits, mantDigits uint32, order ByteOrder, v float64) error {
	total := expDigits + mantDigits
	switch total {
	case 32:
		return p.WriteUnsigned(32, order, uint64(math.Float32bits(float32(v))))
	case 64:
		return p.WriteUnsigned(64, order, math.Float64bits(v))
	default:
		return fmt.Errorf("%w: unsupported floating-point width %d", ErrInvalid, total)
	}
}

// WriteString serializes s as a sequence of 8-bit integer fields
// terminated by 0x00 (spec.md §4.6 step 4).
func (p *StreamPosition) WriteString(s string) error {
	for i := 0; i < len(s); i++ {
		if err := p.WriteUnsigned(8, OrderBigEndian, uint64(s[i])); err != nil {
			return err
		}
	}
	return p.WriteUnsigned(8, OrderBigEndian, 0)
}

func (p *StreamPosition) checkReadable(nbits uint64) error {
	if p.write {
		return fmt.Errorf("%w: position is not open for reading", ErrInvalid)
	}
	if p.offset+nbits > uint64(p.fileSize)*8 {
		return fmt.Errorf("%w: read past end of mapped region", ErrIO)
	}
	return nil
}

// ReadUnsigned reads nbits back and advances the cursor.
func (p *StreamPosition) ReadUnsigned(nbits uint32, order ByteOrder) (uint64, error) {
	if nbits == 0 || nbits > 64 {
		return 0, fmt.Errorf("%w: integer width %d out of range", ErrInvalid, nbits)
	}
	if err := p.checkReadable(uint64(nbits)); err != nil {
		return 0, err
	}
	v := unpackInteger(p.mm, p.offset, nbits, order)
	p.offset += uint64(nbits)
	return v, nil
}

// ReadSigned reads nbits back and sign-extends the result.
func (p *StreamPosition) ReadSigned(nbits uint32, order ByteOrder) (int64, error) {
	v, err := p.ReadUnsigned(nbits, order)
	if err != nil {
		return 0, err
	}
	if nbits < 64 && v&(1<<(nbits-1)) != 0 {
		v |= ^uint64(0) << nbits
	}
	return int64(v), nil
}

// ReadFloat reads an expDigits+mantDigits-bit IEEE-754 value back.
func (p *StreamPosition) ReadFloat(expDigits, mantDigits uint32, order ByteOrder) (float64, error) {
	total := expDigits + mantDigits
	switch total {
	case 32:
		bits, err := p.ReadUnsigned(32, order)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(uint32(bits))), nil
	case 64:
		bits, err := p.ReadUnsigned(64, order)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(bits), nil
	default:
		return 0, fmt.Errorf("%w: unsupported floating-point width %d", ErrInvalid, total)
	}
}

// ReadString reads back a NUL-terminated byte sequence written by WriteString.
func (p *StreamPosition) ReadString() (string, error) {
	var buf []byte
	for {
		b, err := p.ReadUnsigned(8, OrderBigEndian)
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, byte(b))
	}
	return string(buf), nil
}

// PacketSeekBits moves the reader to an absolute bit offset, the
// start of a new packet (spec.md §4.6, reader contract). The whole
// file stays mapped; nothing is remapped.
func (p *StreamPosition) PacketSeekBits(bitOffset uint64) error {
	if p.write {
		return fmt.Errorf("%w: position is not open for reading", ErrInvalid)
	}
	if bitOffset%8 != 0 {
		return fmt.Errorf("%w: packet must start on a byte boundary", ErrValidation)
	}
	p.packetStart = bitOffset
	p.offset = bitOffset
	return nil
}

// Close unmaps the region and, for a writer, truncates the file to
// finalBytes — the last successful packet's end byte (spec.md §6).
func (p *StreamPosition) Close(finalBytes int64) error {
	if p.mm != nil {
		if err := p.mm.Unmap(); err != nil {
			return fmt.Errorf("%w: munmap: %v", ErrIO, err)
		}
		p.mm = nil
	}
	if p.write && finalBytes >= 0 {
		if err := p.f.Truncate(finalBytes); err != nil {
			return fmt.Errorf("%w: truncate: %v", ErrIO, err)
		}
	}
	return p.f.Close()
}
