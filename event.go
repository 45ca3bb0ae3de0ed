// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// Event is one instance of an EventClass queued onto a Stream: header,
// stream-event-context, context, and payload fields, plus the clock
// values recorded at creation time (spec.md §3.4).
type Event struct {
	class *EventClass

	header             Field
	streamEventContext Field
	context            Field
	payload            Field

	clockValues map[*ClockClass]*ClockValue
}

// NewEvent creates an Event of class ec. headerType and
// streamEventContextType are the owning StreamClass's shared types
// (may be nil); ec's own ContextType/PayloadType back the remaining
// two fields.
func NewEvent(ec *EventClass, headerType, streamEventContextType FieldType) (*Event, error) {
	ev := &Event{class: ec, clockValues: make(map[*ClockClass]*ClockValue)}

	if headerType != nil {
		f, err := NewField(headerType)
		if err != nil {
			return nil, err
		}
		ev.header = f
	}
	if streamEventContextType != nil {
		f, err := NewField(streamEventContextType)
		if err != nil {
			return nil, err
		}
		ev.streamEventContext = f
	}
	if ec.ContextType() != nil {
		f, err := NewField(ec.ContextType())
		if err != nil {
			return nil, err
		}
		ev.context = f
	}
	if ec.PayloadType() == nil {
		return nil, fmt.Errorf("%w: event class %q has no payload type", ErrInvalid, ec.Name())
	}
	payloadField, err := NewField(ec.PayloadType())
	if err != nil {
		return nil, err
	}
	ev.payload = payloadField

	return ev, nil
}

// Class returns the event's class.
func (e *Event) Class() *EventClass { return e.class }

// Header returns the StreamEventHeader field, or nil if the stream
// class declares none.
func (e *Event) Header() Field { return e.header }

// StreamEventContext returns the StreamEventContext field, or nil.
func (e *Event) StreamEventContext() Field { return e.streamEventContext }

// Context returns the EventContext field, or nil.
func (e *Event) Context() Field { return e.context }

// Payload returns the EventPayload field.
func (e *Event) Payload() Field { return e.payload }

// SetClockValue records cv against its class for this event
// (spec.md §3.4's per-event clock_values map).
func (e *Event) SetClockValue(cv *ClockValue) { e.clockValues[cv.Class()] = cv }

// ClockValue returns the recorded clock value for class, if any.
func (e *Event) ClockValue(class *ClockClass) (*ClockValue, bool) {
	cv, ok := e.clockValues[class]
	return cv, ok
}

// Validate checks every populated field subtree is fully set
// (spec.md §4.5).
func (e *Event) Validate() error {
	for _, f := range []Field{e.header, e.streamEventContext, e.context, e.payload} {
		if f == nil {
			continue
		}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Freeze marks every populated field subtree frozen, done once the
// event is appended to a Stream (spec.md §3.3).
func (e *Event) Freeze() {
	for _, f := range []Field{e.header, e.streamEventContext, e.context, e.payload} {
		if f != nil {
			f.Freeze()
		}
	}
}
