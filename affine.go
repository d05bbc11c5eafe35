// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync/atomic"

// This file implements the delivery side of spec.md §4.2's async handshake:
// the callback a registrar receives, and what happens when it fires. The
// at-most-once enforcement below is the same affine, resume-once discipline
// a continuation-based effect runtime needs at every suspension boundary —
// done.Swap(true) is the same one-shot CAS idiom used for resume-once
// continuations elsewhere in this family of runtimes, just inlined directly
// against the cell rather than through a wrapper type, since the registrar
// callback has no separate TryResume/Discard surface to expose.

// newResume builds the result-callback passed to an Async node's registrar.
// Calling it more than once is a no-op past the first call (spec.md §4.2
// "Async one-shot", invariant 3 in §8).
func (f *Fiber) newResume(cell *asyncCell) func(Erased, error) {
	// fired keeps a late repeat call away from cell, which asyncContinue
	// may already have returned to the pool.
	var fired atomic.Bool
	return func(v Erased, err error) {
		if fired.Swap(true) || !cell.markDelivered() {
			return
		}
		cell.result = asyncResult{value: v, err: err}
		old := asyncState(uint32(cell.state.Swap(uint32(asyncComplete))))
		switch old {
		case asyncInitial:
			// Registrar hasn't finished; it will observe Complete on its own
			// CAS attempt and drive the continuation itself.
		case asyncRegisteredNoFinalizer, asyncRegisteredWithFinalizer:
			f.deliverAsync(cell, old)
		case asyncComplete:
			// Unreachable: markDelivered already enforced at-most-once.
		}
	}
}

// deliverAsync runs on the callback's thread once the fiber has (or is
// about to have) suspended. It steals ownership of the runloop via the
// suspended CAS and hands the result to async_continue.
func (f *Fiber) deliverAsync(cell *asyncCell, registered asyncState) {
	for {
		if f.suspended.CompareAndSwap(true, false) {
			if f.outcome.Load() == nil {
				if registered == asyncRegisteredWithFinalizer {
					f.finalizers.pop()
				}
				f.asyncContinue(cell)
			}
			return
		}
		if f.outcome.Load() != nil {
			// Fiber already canceled; the canceller owns finalizer teardown.
			return
		}
		// The registrar side hasn't flipped suspended to true yet; spin
		// briefly until it does (spec.md §4.2, delivery side, case
		// Registered*: "the fiber is (or is about to be) suspended").
	}
}

// asyncContinue resets cell.state to Initial (releasing references so the
// cell can be pooled again) and submits a resumption task to the fiber's
// current executor, which dispatches the result through succeeded or
// failed.
func (f *Fiber) asyncContinue(cell *asyncCell) {
	res := cell.result
	f.pending.Store(nil)
	releaseAsyncCell(cell)
	ctx := f.currentCtx
	ctx.Execute(func() {
		var next *Node
		if res.err != nil {
			next = f.failed(res.err)
		} else {
			next = f.succeeded(res.value)
		}
		if next != nil {
			f.loop(next)
		}
	})
}
