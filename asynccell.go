// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync/atomic"

// asyncState is the four-state cell from spec.md §4.2 coordinating
// registration of an async callback with delivery of its result. Transitions
// are monotonic: Initial -> Registered* -> Complete, or Initial -> Complete
// directly when the callback fires before the registrar returns.
type asyncState uint8

const (
	asyncInitial asyncState = iota
	asyncRegisteredNoFinalizer
	asyncRegisteredWithFinalizer
	asyncComplete
)

// asyncResult is the value or error delivered by an Async callback.
type asyncResult struct {
	value Erased
	err   error
}

// asyncCell is the per-suspension handshake state pushed onto the fiber's
// object stack when it dispatches an Async node. done guards at-most-once
// callback delivery; state records registration progress. Both are
// cross-goroutine shared mutables and are therefore atomics, per spec.md
// §5's shared-resource list.
type asyncCell struct {
	done   atomic.Bool
	state  atomic.Uint32 // holds asyncState
	result asyncResult
}

func (c *asyncCell) loadState() asyncState { return asyncState(c.state.Load()) }

func (c *asyncCell) casState(old, new asyncState) bool {
	return c.state.CompareAndSwap(uint32(old), uint32(new))
}

// markDelivered reports whether this call is the first (and only) delivery.
func (c *asyncCell) markDelivered() bool { return !c.done.Swap(true) }

func newAsyncCell() *asyncCell { return acquireAsyncCell() }

// pendingSuspension records which asyncCell a fiber is currently parked on,
// and whether that particular suspension registered a cancel finalizer
// (interruptible) when it was created. interrupt, in fiber.go, uses this to
// decide whether an external cancellation request may steal the suspended
// fiber's runloop directly instead of waiting for the gate check at the top
// of loop to notice canceling on the fiber's own goroutine.
type pendingSuspension struct {
	cell          *asyncCell
	interruptible bool
}
