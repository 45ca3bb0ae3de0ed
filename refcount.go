// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ctf

import "sync/atomic"

// objectBase is the reference-counting base every IR node embeds
// (spec.md §4.2). It tracks a strong count plus a "has parent" flag;
// destructors run once the strong count reaches zero and no parent
// holds the object. The strong count is atomic so read-only consumers
// on other threads may hold references safely (spec.md §5); mutating
// the object from another thread remains undefined.
type objectBase struct {
	strong   int64
	hasOwner int32
	onDestroy func()
}

// newObjectBase returns an objectBase with a strong count of one and
// the given destructor, registered at construction (spec.md §4.2).
func newObjectBase(onDestroy func()) objectBase {
	return objectBase{strong: 1, onDestroy: onDestroy}
}

// get increments the strong count.
func (o *objectBase) get() {
	atomic.AddInt64(&o.strong, 1)
}

// put decrements the strong count; if it reaches zero and the object
// has no owning parent, the destructor runs.
func (o *objectBase) put() {
	n := atomic.AddInt64(&o.strong, -1)
	if n == 0 && atomic.LoadInt32(&o.hasOwner) == 0 && o.onDestroy != nil {
		o.onDestroy()
	}
}

// setOwned marks the object as owned by a parent, incrementing the
// parent's strong count is the caller's responsibility (the parent
// link itself lives on the concrete node, not here).
func (o *objectBase) setOwned() {
	atomic.StoreInt32(&o.hasOwner, 1)
}

// clearOwned marks the object as no longer owned by a parent. If the
// strong count is already zero, the destructor runs immediately.
func (o *objectBase) clearOwned() {
	atomic.StoreInt32(&o.hasOwner, 0)
	if atomic.LoadInt64(&o.strong) == 0 && o.onDestroy != nil {
		o.onDestroy()
	}
}

// refCount returns the current strong count, for tests and diagnostics.
func (o *objectBase) refCount() int64 {
	return atomic.LoadInt64(&o.strong)
}
