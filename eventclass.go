// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "fmt"

// EventClass describes one kind of event a StreamClass may emit:
// (id, name, log_level, emf_uri, context_type, payload_type)
// (spec.md §3.4).
type EventClass struct {
	frozen bool

	id          uint64
	hasID       bool
	name        string
	logLevel    int32
	hasLogLevel bool
	emfURI      string

	contextType FieldType
	payloadType FieldType
}

// NewEventClass creates a named EventClass with no id, context, or
// payload type assigned yet.
func NewEventClass(name string) *EventClass {
	return &EventClass{name: name}
}

func (ec *EventClass) checkMutable() error {
	if ec.frozen {
		return ErrFrozen
	}
	return nil
}

// Name returns the event class's name.
func (ec *EventClass) Name() string { return ec.name }

// SetID assigns the event class's numeric id, unique within its
// owning StreamClass.
func (ec *EventClass) SetID(id uint64) error {
	if err := ec.checkMutable(); err != nil {
		return err
	}
	ec.id = id
	ec.hasID = true
	return nil
}

// ID returns the event class's id and whether one has been assigned.
func (ec *EventClass) ID() (uint64, bool) { return ec.id, ec.hasID }

// SetLogLevel sets the event class's log level.
func (ec *EventClass) SetLogLevel(level int32) error {
	if err := ec.checkMutable(); err != nil {
		return err
	}
	ec.logLevel = level
	ec.hasLogLevel = true
	return nil
}

// LogLevel returns the event class's log level and whether one has
// been assigned.
func (ec *EventClass) LogLevel() (int32, bool) { return ec.logLevel, ec.hasLogLevel }

// SetEMFURI sets the event class's Eclipse Modeling Framework URI.
func (ec *EventClass) SetEMFURI(uri string) error {
	if err := ec.checkMutable(); err != nil {
		return err
	}
	ec.emfURI = uri
	return nil
}

// EMFURI returns the event class's EMF URI.
func (ec *EventClass) EMFURI() string { return ec.emfURI }

// SetContextType sets the event-specific EventContext scope type.
func (ec *EventClass) SetContextType(ft FieldType) error {
	if err := ec.checkMutable(); err != nil {
		return err
	}
	ec.contextType = ft
	return nil
}

// ContextType returns the EventContext scope type, or nil.
func (ec *EventClass) ContextType() FieldType { return ec.contextType }

// SetPayloadType sets the event's EventPayload scope type.
func (ec *EventClass) SetPayloadType(ft FieldType) error {
	if err := ec.checkMutable(); err != nil {
		return err
	}
	if ft == nil {
		return fmt.Errorf("%w: nil event payload type", ErrInvalid)
	}
	ec.payloadType = ft
	return nil
}

// PayloadType returns the EventPayload scope type.
func (ec *EventClass) PayloadType() FieldType { return ec.payloadType }

// Freeze marks the event class, and its context/payload types,
// immutable. Called by the validation pass once resolution succeeds
// (spec.md §4.8 step 4).
func (ec *EventClass) Freeze() {
	if ec.frozen {
		return
	}
	ec.frozen = true
	if ec.contextType != nil {
		ec.contextType.Freeze()
	}
	if ec.payloadType != nil {
		ec.payloadType.Freeze()
	}
}

// IsFrozen reports whether the event class has been validated and frozen.
func (ec *EventClass) IsFrozen() bool { return ec.frozen }
