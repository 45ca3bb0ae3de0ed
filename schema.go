// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

// DefaultPacketSchema builds the canonical packet header/context pair
// most CTF traces in the wild declare when no TSDL metadata is loaded
// alongside a stream: a magic/uuid/stream_id header and a
// timestamp/size/discarded-count context (spec.md §6). ctfdump falls
// back to this layout when asked to dump a bare stream file.
func DefaultPacketSchema() (header *StructureType, context *StructureType, err error) {
	header = NewStructureType()
	magic, err := NewIntegerType(32)
	if err != nil {
		return nil, nil, err
	}
	if err := header.AddField("magic", magic); err != nil {
		return nil, nil, err
	}
	u8, err := NewIntegerType(8)
	if err != nil {
		return nil, nil, err
	}
	uuidArr, err := NewArrayType(u8, 16)
	if err != nil {
		return nil, nil, err
	}
	if err := header.AddField("uuid", uuidArr); err != nil {
		return nil, nil, err
	}
	streamID, err := NewIntegerType(64)
	if err != nil {
		return nil, nil, err
	}
	if err := header.AddField("stream_id", streamID); err != nil {
		return nil, nil, err
	}

	context = NewStructureType()
	for _, name := range []string{"timestamp_begin", "timestamp_end", "content_size", "packet_size", "events_discarded"} {
		it, err := NewIntegerType(64)
		if err != nil {
			return nil, nil, err
		}
		if err := context.AddField(name, it); err != nil {
			return nil, nil, err
		}
	}
	return header, context, nil
}
