// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"os"

	"github.com/saferwall/ctf/log"
)

// NewReaderPosition opens f read-only for packet-by-packet inspection,
// exported for ctfdump and other out-of-package readers.
func NewReaderPosition(f *os.File, logger *log.Helper) (*StreamPosition, error) {
	return newReaderPosition(f, logger)
}

// ReadPacket deserializes one packet's header and context fields at
// the cursor's current packet boundary, using big-endian as the
// trace's native byte order the way the TSDL default metadata
// preamble declares it (spec.md §6).
func (p *StreamPosition) ReadPacket(header, context Field) error {
	scopes := &scopeFieldSet{}
	scopes.scopes[TracePacketHeader] = header
	if err := deserializeField(p, header, OrderBigEndian, scopes); err != nil {
		return err
	}
	scopes.scopes[StreamPacketContext] = context
	return deserializeField(p, context, OrderBigEndian, scopes)
}

// PacketSizeBits reads the packet_size member off a packet context
// built from DefaultPacketSchema.
func PacketSizeBits(context Field) (uint64, error) {
	structF, ok := context.(*StructureField)
	if !ok {
		return 0, fmt.Errorf("%w: packet context is not a structure", ErrInvalid)
	}
	f, err := structF.GetField("packet_size")
	if err != nil {
		return 0, err
	}
	intF, ok := f.(*IntegerField)
	if !ok {
		return 0, fmt.Errorf("%w: packet_size is not an integer field", ErrInvalid)
	}
	return intF.Unsigned()
}

// FlattenIntegerFields walks a Structure field's direct integer and
// array-of-integer members in declaration order, returning their dotted
// names and unsigned values — enough to print a flat dump of the
// canonical packet header/context without a general pretty-printer.
func FlattenIntegerFields(f Field) ([]string, []uint64) {
	structF, ok := f.(*StructureField)
	if !ok {
		return nil, nil
	}
	st, ok := structF.Type().(*StructureType)
	if !ok {
		return nil, nil
	}

	var names []string
	var values []uint64
	for i := 0; i < st.FieldCount(); i++ {
		name, err := st.NameAtIndex(i)
		if err != nil {
			continue
		}
		child, err := structF.GetFieldAtIndex(i)
		if err != nil {
			continue
		}
		switch cf := child.(type) {
		case *IntegerField:
			if v, err := cf.Unsigned(); err == nil {
				names = append(names, name)
				values = append(values, v)
			}
		case *ArrayField:
			for j := 0; j < cf.Len(); j++ {
				el, err := cf.GetElement(j)
				if err != nil {
					continue
				}
				if intEl, ok := el.(*IntegerField); ok {
					if v, err := intEl.Unsigned(); err == nil {
						names = append(names, fmt.Sprintf("%s[%d]", name, j))
						values = append(values, v)
					}
				}
			}
		}
	}
	return names, values
}
