// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/saferwall/ctf/log"
)

// Options configures a Trace the way teacher's pe.Options configures
// a File: documented zero-value defaults, resolved once in NewTrace.
type Options struct {
	// PageSize is the growth granularity for a Stream's packet buffer,
	// in bytes. Defaults to the OS page size (spec.md §4.6 step 2).
	PageSize int

	// ResolverSiblingScopeFallback permits the resolver's scope-index
	// fallback for Sequence sources as well as Variant sources
	// (spec.md §9's Open Question). Defaults to true when NewTrace is
	// given nil options; a caller-supplied Options is used as is, so
	// there the zero value false disables the fallback.
	ResolverSiblingScopeFallback bool

	// MaxSequenceLength is recorded with the trace's options and
	// defaults to 1<<31. SequenceField.SetLength does not consult it:
	// it always applies the package limit maxSequenceLength (1<<31).
	MaxSequenceLength uint32

	// Logger overrides the default stdout logger.
	Logger log.Logger
}

func (o *Options) withDefaults() *Options {
	cp := Options{ResolverSiblingScopeFallback: true}
	if o != nil {
		cp = *o
	}
	if cp.PageSize == 0 {
		cp.PageSize = os.Getpagesize()
	}
	if cp.MaxSequenceLength == 0 {
		cp.MaxSequenceLength = maxSequenceLength
	}
	return &cp
}

// Trace is the top-level IR container: environment, UUID, native byte
// order, packet-header type, clock classes, and stream classes
// (spec.md §3.4).
type Trace struct {
	env             *Value
	uuid            [16]byte
	hasUUID         bool
	nativeByteOrder ByteOrder
	packetHeaderType FieldType

	clockClasses []*ClockClass
	streamClasses []*StreamClass
	byStreamClassName map[string]int
	streams []*Stream

	resolver *Resolver
	opts     *Options
	logger   *log.Helper
}

// NewTrace creates an empty Trace with a fresh environment map and the
// resolver's sibling-scope-fallback policy taken from opts
// (spec.md §9).
func NewTrace(opts *Options) *Trace {
	o := opts.withDefaults()

	var logger log.Logger
	if o.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
	} else {
		logger = o.Logger
	}

	t := &Trace{
		env:               NewMapValue(),
		nativeByteOrder:   OrderNative,
		byStreamClassName: make(map[string]int),
		resolver:          &Resolver{SiblingScopeFallback: o.ResolverSiblingScopeFallback},
		opts:              o,
		logger:            log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError))),
	}
	return t
}

// Env returns the trace's environment Value map.
func (t *Trace) Env() *Value { return t.env }

// SetUUID assigns the trace's UUID explicitly.
func (t *Trace) SetUUID(id [16]byte) {
	t.uuid = id
	t.hasUUID = true
}

// GenerateUUID assigns a fresh random UUID, for a TSDL input that
// omitted one (spec.md §3.4, §6).
func (t *Trace) GenerateUUID() [16]byte {
	id := uuid.New()
	var buf [16]byte
	copy(buf[:], id[:])
	t.SetUUID(buf)
	return buf
}

// UUID returns the trace's UUID and whether one has been assigned.
func (t *Trace) UUID() ([16]byte, bool) { return t.uuid, t.hasUUID }

// SetNativeByteOrder sets the byte order that replaces every type's
// Native annotation at serialization time (spec.md §4.3).
func (t *Trace) SetNativeByteOrder(bo ByteOrder) error {
	if bo == OrderNative {
		return fmt.Errorf("%w: native byte order cannot itself be Native", ErrInvalid)
	}
	t.nativeByteOrder = bo
	return nil
}

// NativeByteOrder returns the trace's native byte order, or
// OrderNative if unset.
func (t *Trace) NativeByteOrder() ByteOrder { return t.nativeByteOrder }

// SetPacketHeaderType sets the TracePacketHeader scope type shared by
// every stream of this trace. Must be set before the first
// StreamClass is attached.
func (t *Trace) SetPacketHeaderType(ft FieldType) error {
	if len(t.streamClasses) > 0 {
		return fmt.Errorf("%w: packet header type must be set before attaching a stream class", ErrInvalid)
	}
	t.packetHeaderType = ft
	return nil
}

// PacketHeaderType returns the TracePacketHeader scope type, or nil.
func (t *Trace) PacketHeaderType() FieldType { return t.packetHeaderType }

// AddClockClass registers a clock class with the trace.
func (t *Trace) AddClockClass(cc *ClockClass) error {
	if cc == nil {
		return fmt.Errorf("%w: nil clock class", ErrInvalid)
	}
	t.clockClasses = append(t.clockClasses, cc)
	return nil
}

// ClockClasses returns the trace's registered clock classes.
func (t *Trace) ClockClasses() []*ClockClass { return t.clockClasses }

// AddStreamClass attaches sc to the trace, running the validation/
// freeze glue pass of spec.md §4.8: clones every not-yet-frozen scope
// type, resolves Sequence/Variant paths, auto-maps timestamp fields,
// and on success commits the clones and freezes them. On failure the
// trace is left untouched.
func (t *Trace) AddStreamClass(sc *StreamClass) error {
	if _, exists := t.byStreamClassName[sc.name]; exists {
		return fmt.Errorf("%w: duplicate stream class name %q", ErrInvalid, sc.name)
	}
	if !sc.hasID {
		if err := sc.SetID(uint64(len(t.streamClasses))); err != nil {
			return err
		}
	}

	sc.trace = t
	prevHeaderType := t.packetHeaderType
	if err := validateStreamClassScopes(t, sc); err != nil {
		sc.trace = nil
		return err
	}
	for _, ec := range sc.eventClasses {
		if err := validateEventClassScopes(t, sc, ec); err != nil {
			sc.trace = nil
			t.packetHeaderType = prevHeaderType
			return err
		}
	}

	sc.Freeze()
	t.byStreamClassName[sc.name] = len(t.streamClasses)
	t.streamClasses = append(t.streamClasses, sc)
	t.logger.Debugf("attached stream class %q (id=%d)", sc.name, sc.id)
	return nil
}

// StreamClasses returns the trace's attached stream classes.
func (t *Trace) StreamClasses() []*StreamClass { return t.streamClasses }

// StreamClassByName returns the stream class named name, if attached.
func (t *Trace) StreamClassByName(name string) (*StreamClass, error) {
	i, ok := t.byStreamClassName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return t.streamClasses[i], nil
}

// CreateStream opens a writer Stream of class sc, backed by a file
// named per spec.md §6's on-disk layout convention, under dir.
func (t *Trace) CreateStream(sc *StreamClass, dir string, id uint64) (*Stream, error) {
	if !sc.IsFrozen() {
		return nil, fmt.Errorf("%w: stream class must be attached to the trace before opening a stream", ErrInvalid)
	}
	path := streamFilePath(dir, sc, id)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o660)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	pos, err := newWriterPosition(f, t.opts.PageSize, t.logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	stream := newStream(t, sc, id, pos)
	t.streams = append(t.streams, stream)
	return stream, nil
}

// streamFilePath implements the on-disk naming convention of spec.md §6:
// "<stream-class-name>_<stream-id>", or "stream_<class-id>_<stream-id>"
// when the class is unnamed.
func streamFilePath(dir string, sc *StreamClass, id uint64) string {
	name := sc.name
	if name == "" {
		return fmt.Sprintf("%s/stream_%d_%d", dir, sc.id, id)
	}
	return fmt.Sprintf("%s/%s_%d", dir, name, id)
}
