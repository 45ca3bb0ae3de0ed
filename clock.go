// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"math/big"
)

// ClockClass describes one hardware or software clock a Trace's
// streams may reference (spec.md §4.7). A ClockClass becomes immutable
// as soon as StreamClass.SetClock attaches it to a stream class, which
// is before that stream class is added to a Trace; it cannot be
// changed between the two steps.
type ClockClass struct {
	frozen bool

	name          string
	frequencyHz   uint64
	precision     uint64
	offsetSeconds int64
	offsetCycles  uint64
	isAbsolute    bool
	description   string
	uuid          [16]byte
	hasUUID       bool
}

// NewClockClass creates a ClockClass named name at frequencyHz cycles
// per second. frequencyHz must be nonzero.
func NewClockClass(name string, frequencyHz uint64) (*ClockClass, error) {
	if frequencyHz == 0 {
		return nil, fmt.Errorf("%w: clock class frequency must be nonzero", ErrInvalid)
	}
	return &ClockClass{name: name, frequencyHz: frequencyHz}, nil
}

func (c *ClockClass) checkMutable() error {
	if c.frozen {
		return ErrFrozen
	}
	return nil
}

// Name returns the clock class's name.
func (c *ClockClass) Name() string { return c.name }

// FrequencyHz returns the clock's frequency in Hz.
func (c *ClockClass) FrequencyHz() uint64 { return c.frequencyHz }

// SetPrecision sets the clock's precision, in cycles.
func (c *ClockClass) SetPrecision(precision uint64) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.precision = precision
	return nil
}

// Precision returns the clock's precision, in cycles.
func (c *ClockClass) Precision() uint64 { return c.precision }

// SetOffset sets the clock's offset from the epoch as a whole-second
// part and a cycle-count part.
func (c *ClockClass) SetOffset(seconds int64, cycles uint64) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.offsetSeconds = seconds
	c.offsetCycles = cycles
	return nil
}

// OffsetSeconds returns the whole-second part of the clock's epoch offset.
func (c *ClockClass) OffsetSeconds() int64 { return c.offsetSeconds }

// OffsetCycles returns the cycle-count part of the clock's epoch offset.
func (c *ClockClass) OffsetCycles() uint64 { return c.offsetCycles }

// SetIsAbsolute marks whether the clock is a global (wall-clock-like)
// reference, as opposed to one local to its originating system.
func (c *ClockClass) SetIsAbsolute(abs bool) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.isAbsolute = abs
	return nil
}

// IsAbsolute reports whether the clock is a global reference.
func (c *ClockClass) IsAbsolute() bool { return c.isAbsolute }

// SetDescription sets a free-form human-readable description.
func (c *ClockClass) SetDescription(desc string) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.description = desc
	return nil
}

// Description returns the clock's free-form description.
func (c *ClockClass) Description() string { return c.description }

// SetUUID sets the clock's identifying UUID.
func (c *ClockClass) SetUUID(uuid [16]byte) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.uuid = uuid
	c.hasUUID = true
	return nil
}

// UUID returns the clock's UUID, if one was set.
func (c *ClockClass) UUID() ([16]byte, bool) { return c.uuid, c.hasUUID }

// Freeze marks the clock class immutable. Called by StreamClass.SetClock
// when the clock is attached to a stream class.
func (c *ClockClass) Freeze() { c.frozen = true }

// IsFrozen reports whether the clock class has been frozen.
func (c *ClockClass) IsFrozen() bool { return c.frozen }

var bigE9 = big.NewInt(1_000_000_000)

// ClockValue pairs a ClockClass with a raw cycle count and memoizes
// the corresponding nanoseconds-from-epoch using big-integer
// intermediate arithmetic so frequencies above 1 GHz never overflow a
// 64-bit accumulator (spec.md §4.7).
type ClockValue struct {
	class *ClockClass
	cycles uint64

	nsFromEpoch    int64
	nsFromEpochSet bool
}

// NewClockValue pairs class with cycles.
func NewClockValue(class *ClockClass, cycles uint64) *ClockValue {
	return &ClockValue{class: class, cycles: cycles}
}

// Class returns the clock class this value is expressed against.
func (v *ClockValue) Class() *ClockClass { return v.class }

// Cycles returns the raw cycle count.
func (v *ClockValue) Cycles() uint64 { return v.cycles }

// NanosecondsFromEpoch computes (and memoizes)
// offset_s*1e9 + (offset_cycles+value)*1e9/frequency, using big.Int
// intermediates to avoid overflow (spec.md §4.7).
func (v *ClockValue) NanosecondsFromEpoch() int64 {
	if v.nsFromEpochSet {
		return v.nsFromEpoch
	}
	total := new(big.Int).SetUint64(v.class.offsetCycles)
	total.Add(total, new(big.Int).SetUint64(v.cycles))
	total.Mul(total, bigE9)
	total.Div(total, new(big.Int).SetUint64(v.class.frequencyHz))

	offsetNs := new(big.Int).Mul(big.NewInt(v.class.offsetSeconds), bigE9)
	total.Add(total, offsetNs)

	v.nsFromEpoch = total.Int64()
	v.nsFromEpochSet = true
	return v.nsFromEpoch
}

// clockValues tracks, per Stream, the accumulated wide cycle count for
// every ClockClass an appended Event referenced, applying the CTF
// cycle-wrap rule of spec.md §4.7.
type clockValues struct {
	accumulated map[*ClockClass]uint64
}

func newClockValues() *clockValues {
	return &clockValues{accumulated: make(map[*ClockClass]uint64)}
}

// update folds a new N-bit raw value into the accumulator for class,
// detecting exactly one wrap per full N-bit cycle: when the new low
// bits are less than the previously observed low bits, the next
// 1<<bits quantum is added before the low bits are replaced. N=64
// simply replaces the accumulator.
func (cv *clockValues) update(class *ClockClass, bits uint32, v uint64) uint64 {
	if bits >= 64 {
		cv.accumulated[class] = v
		return v
	}
	mask := (uint64(1) << bits) - 1
	current, ok := cv.accumulated[class]
	if !ok {
		cv.accumulated[class] = v
		return v
	}
	if v < (current & mask) {
		current += uint64(1) << bits
	}
	current = (current &^ mask) | v
	cv.accumulated[class] = current
	return current
}

// valueFor returns the last accumulated value recorded for class, if any.
func (cv *clockValues) valueFor(class *ClockClass) (uint64, bool) {
	v, ok := cv.accumulated[class]
	return v, ok
}
