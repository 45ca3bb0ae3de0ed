// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"os"

	"github.com/saferwall/ctf/log"
)

// Fuzz feeds data as a stream file and walks every packet it can
// decode against the canonical default schema, following go-fuzz's
// func(data []byte) int convention (spec.md §7: "malformed packet
// data must never crash the decoder").
func Fuzz(data []byte) int {
	f, err := os.CreateTemp("", "ctf-fuzz-*")
	if err != nil {
		return 0
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return 0
	}
	if _, err := f.Seek(0, os.SEEK_SET); err != nil {
		f.Close()
		return 0
	}

	header, context, err := DefaultPacketSchema()
	if err != nil {
		f.Close()
		return 0
	}

	logger := log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout), log.FilterLevel(log.LevelError)))
	pos, err := newReaderPosition(f, logger)
	if err != nil {
		f.Close()
		return 0
	}
	defer pos.Close(int64(len(data)))

	decoded := 0
	for {
		if err := pos.NextPacket(); err != nil {
			break
		}
		headerField, err := NewField(header)
		if err != nil {
			break
		}
		contextField, err := NewField(context)
		if err != nil {
			break
		}
		scopes := &scopeFieldSet{}
		scopes.scopes[TracePacketHeader] = headerField
		if err := deserializeField(pos, headerField, OrderBigEndian, scopes); err != nil {
			break
		}
		scopes.scopes[StreamPacketContext] = contextField
		if err := deserializeField(pos, contextField, OrderBigEndian, scopes); err != nil {
			break
		}

		structCtx, ok := contextField.(*StructureField)
		if !ok {
			break
		}
		sizeField, err := structCtx.GetField("packet_size")
		if err != nil {
			break
		}
		sizeBits, err := sizeField.(*IntegerField).Unsigned()
		if err != nil || sizeBits == 0 {
			break
		}
		if err := pos.PadToBits(sizeBits); err != nil {
			break
		}
		decoded++
		if decoded > 1<<16 {
			break
		}
	}
	if decoded > 0 {
		return 1
	}
	return 0
}
