// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is the process-wide logging sink the IR and codec write
// to. The component graph runtime that owns real plugin logging is
// out of scope for this core (see spec.md §1); this package only
// carries the minimal Logger/Helper contract the core's constructors
// already assume.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level is a logging severity, ordered from least to most severe.
type Level int

// Logging levels, from most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the sink every log call is eventually written through.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes formatted lines to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes "level key=value ..." lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "%s %s\n", level, fmt.Sprint(keyvals...))
	return err
}

// filter wraps a Logger, dropping records below a minimum level.
type filter struct {
	Logger
	level Level
}

// FilterOption configures a filtering Logger built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a record must reach to pass
// through the filter.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.level = level }
}

// NewFilter wraps logger with level filtering.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filter{Logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.Logger.Log(level, keyvals...)
}

// Helper wraps a Logger with printf-style convenience methods, the
// way Trace, Stream and StreamPosition store a *Helper rather than a
// bare Logger.
type Helper struct {
	logger Logger
}

// NewHelper returns a Helper writing through logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs a formatted message at LevelDebug.
func (h *Helper) Debugf(format string, a ...interface{}) {
	h.log(LevelDebug, format, a...)
}

// Infof logs a formatted message at LevelInfo.
func (h *Helper) Infof(format string, a ...interface{}) {
	h.log(LevelInfo, format, a...)
}

// Warnf logs a formatted message at LevelWarn.
func (h *Helper) Warnf(format string, a ...interface{}) {
	h.log(LevelWarn, format, a...)
}

// Errorf logs a formatted message at LevelError.
func (h *Helper) Errorf(format string, a ...interface{}) {
	h.log(LevelError, format, a...)
}

func (h *Helper) log(level Level, format string, a ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, fmt.Sprintf(format, a...))
}
