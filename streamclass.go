// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// StreamClass describes one kind of Stream a Trace may contain:
// (id, name, packet_context_type, event_header_type, event_context_type,
// event classes, optional writer clock) (spec.md §3.4).
type StreamClass struct {
	frozen bool
	trace  *Trace // set once attached; nil for an orphan stream class

	id       uint64
	hasID    bool
	name     string

	packetContextType FieldType
	eventHeaderType   FieldType
	eventContextType  FieldType

	eventClasses   []*EventClass
	byEventName    map[string]int
	nextEventID    uint64

	clock *ClockClass
}

// NewStreamClass creates a named StreamClass with no scope types assigned.
func NewStreamClass(name string) *StreamClass {
	return &StreamClass{name: name, byEventName: make(map[string]int)}
}

func (sc *StreamClass) checkMutable() error {
	if sc.frozen {
		return ErrFrozen
	}
	return nil
}

// Name returns the stream class's name.
func (sc *StreamClass) Name() string { return sc.name }

// SetID assigns the stream class's numeric id, unique within its trace.
func (sc *StreamClass) SetID(id uint64) error {
	if err := sc.checkMutable(); err != nil {
		return err
	}
	sc.id = id
	sc.hasID = true
	return nil
}

// ID returns the stream class's id and whether one has been assigned.
func (sc *StreamClass) ID() (uint64, bool) { return sc.id, sc.hasID }

// SetPacketContextType sets the StreamPacketContext scope type.
func (sc *StreamClass) SetPacketContextType(ft FieldType) error {
	if err := sc.checkMutable(); err != nil {
		return err
	}
	sc.packetContextType = ft
	return nil
}

// PacketContextType returns the StreamPacketContext scope type, or nil.
func (sc *StreamClass) PacketContextType() FieldType { return sc.packetContextType }

// SetEventHeaderType sets the StreamEventHeader scope type.
func (sc *StreamClass) SetEventHeaderType(ft FieldType) error {
	if err := sc.checkMutable(); err != nil {
		return err
	}
	sc.eventHeaderType = ft
	return nil
}

// EventHeaderType returns the StreamEventHeader scope type, or nil.
func (sc *StreamClass) EventHeaderType() FieldType { return sc.eventHeaderType }

// SetEventContextType sets the StreamEventContext scope type.
func (sc *StreamClass) SetEventContextType(ft FieldType) error {
	if err := sc.checkMutable(); err != nil {
		return err
	}
	sc.eventContextType = ft
	return nil
}

// EventContextType returns the StreamEventContext scope type, or nil.
func (sc *StreamClass) EventContextType() FieldType { return sc.eventContextType }

// SetClock attaches the writer clock this stream class's events are
// timestamped against. Per spec.md §4.7, the ClockClass becomes
// immutable once attached.
func (sc *StreamClass) SetClock(cc *ClockClass) error {
	if err := sc.checkMutable(); err != nil {
		return err
	}
	sc.clock = cc
	cc.Freeze()
	return nil
}

// Clock returns the stream class's writer clock, if any.
func (sc *StreamClass) Clock() *ClockClass { return sc.clock }

// EventClasses returns the ordered list of event classes currently attached.
func (sc *StreamClass) EventClasses() []*EventClass { return sc.eventClasses }

// EventClassByName returns the event class named name, if attached.
func (sc *StreamClass) EventClassByName(name string) (*EventClass, error) {
	i, ok := sc.byEventName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return sc.eventClasses[i], nil
}

// AddEventClass appends ec to the stream class, assigning an
// auto-incrementing id if it has none yet. If this stream class is
// already attached to a Trace, the newly attached event class is
// validated and frozen immediately, restricted to its own subtree
// (spec.md §4.4 "When triggered", §4.8).
func (sc *StreamClass) AddEventClass(ec *EventClass) error {
	if _, exists := sc.byEventName[ec.name]; exists {
		return fmt.Errorf("%w: duplicate event class name %q", ErrInvalid, ec.name)
	}
	if _, hasID := ec.ID(); !hasID {
		if err := ec.SetID(sc.nextEventID); err != nil {
			return err
		}
	}
	sc.nextEventID++
	sc.byEventName[ec.name] = len(sc.eventClasses)
	sc.eventClasses = append(sc.eventClasses, ec)

	if sc.trace != nil {
		if err := validateEventClassScopes(sc.trace, sc, ec); err != nil {
			sc.eventClasses = sc.eventClasses[:len(sc.eventClasses)-1]
			delete(sc.byEventName, ec.name)
			return err
		}
		ec.Freeze()
	}
	return nil
}

// Freeze marks the stream class, its scope types, and every event
// class immutable.
func (sc *StreamClass) Freeze() {
	if sc.frozen {
		return
	}
	sc.frozen = true
	for _, ft := range []FieldType{sc.packetContextType, sc.eventHeaderType, sc.eventContextType} {
		if ft != nil {
			ft.Freeze()
		}
	}
	for _, ec := range sc.eventClasses {
		ec.Freeze()
	}
}

// IsFrozen reports whether the stream class has been attached and frozen.
func (sc *StreamClass) IsFrozen() bool { return sc.frozen }
