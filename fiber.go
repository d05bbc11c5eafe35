// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync/atomic"

// fiberFuel bounds how many dispatch steps a fiber runs inline before
// ceding the underlying goroutine back to its executor. Without this an
// unbroken chain of Map/FlatMap nodes would starve every other fiber
// sharing a bounded executor.
const fiberFuel = 512

var nextFiberID atomic.Int64

// Fiber is a single cooperatively-scheduled strand of evaluation over the
// effect algebra in node.go. Its continuation state — the byte stack of
// frame kinds, the parallel object/bool stacks holding frame operands, the
// executor stack, and the finalizer stack — is private and mutated only by
// the goroutine currently running the fiber's loop; ownership of that
// right to mutate crosses goroutines exactly at the points documented in
// affine.go and loop.go (the suspended handshake).
type Fiber struct {
	id int64

	conts      byteStack
	objs       objectStack
	bools      boolStack
	execs      execStack
	finalizers finalizerStack
	maskStack  []int64

	currentCtx Executor
	timer      Timer

	maskDepth    int32
	nextMaskID   int64
	initMaskBase int64

	canceling atomic.Bool
	suspended atomic.Bool
	outcome   atomic.Pointer[Outcome]
	pending   atomic.Pointer[pendingSuspension]

	joiners callbackRegistry

	fuel int
}

func newFiberInternal(executor Executor, timer Timer, initMaskBase int64) *Fiber {
	return &Fiber{
		id:           nextFiberID.Add(1),
		currentCtx:   executor,
		timer:        timer,
		nextMaskID:   initMaskBase,
		initMaskBase: initMaskBase,
		fuel:         fiberFuel,
	}
}

// NewFiber constructs a root fiber evaluating effect and starts it
// immediately on executor. timer backs Sleep, RealTime, and Monotonic.
func NewFiber(effect *Node, executor Executor, timer Timer) *Fiber {
	f := newFiberInternal(executor, timer, 0)
	f.start(effect)
	return f
}

// start pushes the terminal continuation marker and submits the first
// evaluation step to the fiber's executor.
func (f *Fiber) start(effect *Node) {
	f.conts.push(contRunTerminus)
	ctx := f.currentCtx
	ctx.Execute(func() { f.loop(effect) })
}

// spawnChild starts effect as a new fiber sharing this fiber's current
// executor and timer. Its mask-id partition is offset by 255 from this
// fiber's own base so a modest run of Uncancelable nestings in the parent
// never collides with ids the child allocates, without a shared counter
// (spec.md §4.3's mask-id allocation rule).
func (f *Fiber) spawnChild(effect *Node) *Fiber {
	child := newFiberInternal(f.currentCtx, f.timer, f.initMaskBase+255)
	child.start(effect)
	return child
}

func (f *Fiber) freshMaskID() int64 {
	id := f.nextMaskID
	f.nextMaskID++
	return id
}

func (f *Fiber) masked() bool { return f.maskDepth > 0 }

// ID returns the fiber's process-unique, monotonically assigned identity.
func (f *Fiber) ID() int64 { return f.id }

// Outcome returns the fiber's published terminal state, if it has reached
// one yet.
func (f *Fiber) Outcome() (Outcome, bool) {
	if o := f.outcome.Load(); o != nil {
		return *o, true
	}
	return Outcome{}, false
}

// publish CASes the fiber's terminal Outcome from unset, notifying every
// registered joiner on the winning call. beginTermination calls this before
// it has necessarily finished draining finalizers, so repeat calls with the
// already-published outcome (once per finalizer popped off the stack) must
// be — and are — no-ops.
func (f *Fiber) publish(o Outcome) {
	if !f.outcome.CompareAndSwap(nil, &o) {
		return
	}
	f.joiners.publish(o)
}

// Join produces an effect that suspends until the fiber reaches a terminal
// Outcome, then resolves to it. Joining a fiber that has already terminated
// resolves immediately without suspension.
func (f *Fiber) Join() *Node {
	return Async(func(resume func(Erased, error)) *Node {
		if o := f.outcome.Load(); o != nil {
			resume(*o, nil)
			return Pure(nil)
		}
		f.joiners.registerListener(func(o Outcome) { resume(o, nil) })
		return Pure(nil)
	})
}

// Cancel produces an effect that requests this fiber's cancellation and
// suspends until the fiber has published its terminal Outcome. On
// cancellation that publication precedes the finalizer drain, so the
// target's finalizers may still be running when Cancel resolves.
func (f *Fiber) Cancel() *Node {
	return Async(func(resume func(Erased, error)) *Node {
		f.interrupt()
		if o := f.outcome.Load(); o != nil {
			resume(Unit, nil)
			return Pure(nil)
		}
		f.joiners.registerListener(func(Outcome) { resume(Unit, nil) })
		return Pure(nil)
	})
}

// interrupt marks the fiber canceling and, if it is currently parked on an
// interruptible suspension (an Async that registered a cancel finalizer),
// steals the runloop directly rather than waiting for f to next reach an
// unmasked gate check on its own. Without this, a fiber blocked in Sleep or
// a user Async would never notice cancellation until its own callback fired
// — which may be never, or arbitrarily far in the future.
//
// A suspension that registered with no finalizer (because it was masked, or
// offered no cancel effect, at the moment it suspended) is left alone:
// stealing it here would terminate the fiber without ever giving its mask
// the chance it was owed. canceling is still set so the gate check picks it
// up once the fiber resumes and its mask eventually lifts.
func (f *Fiber) interrupt() {
	f.canceling.Store(true)

	ps := f.pending.Load()
	if ps == nil || !ps.interruptible {
		return
	}
	if !ps.cell.markDelivered() {
		// The real callback already won the race; ordinary delivery
		// proceeds and the gate check catches cancellation afterward.
		return
	}
	if !f.suspended.CompareAndSwap(true, false) {
		return
	}
	f.pending.Store(nil)

	pending := f.tripCancellation()
	if pending != nil {
		ctx := f.currentCtx
		ctx.Execute(func() { f.loop(pending) })
	}
}
