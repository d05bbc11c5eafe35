// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"fmt"
	"time"
)

// loop is the trampoline: it evaluates node and everything it leads to,
// one tagged step at a time, until the fiber suspends (returns nil to its
// caller because some other goroutine now owns resumption) or terminates.
// It never recurses per step — FlatMap chains of any depth run in constant
// Go stack space, the re-architecture spec.md §9's design note calls for.
func (f *Fiber) loop(node *Node) {
	for {
		if node == nil {
			return
		}

		if f.canceling.Load() && !f.masked() {
			node = f.tripCancellation()
			continue
		}

		f.fuel--
		if f.fuel <= 0 {
			f.fuel = fiberFuel
			pending := node
			ctx := f.currentCtx
			ctx.Execute(func() { f.loop(pending) })
			return
		}

		switch node.Tag {
		case TagPure:
			node = f.succeeded(node.value)
		case TagDelay:
			v, err := node.thunk()
			if err != nil {
				node = f.failed(err)
			} else {
				node = f.succeeded(v)
			}
		case TagError:
			node = f.failed(node.err)
		case TagAsync:
			cell := newAsyncCell()
			f.objs.push(cell)
			f.conts.push(contAsync)
			resume := f.newResume(cell)
			next, err := f.invokeRegistrar(node.registrar, resume)
			if err != nil {
				node = f.failed(err)
			} else {
				node = next
			}
		case TagReadExecutor:
			node = f.succeeded(f.currentCtx)
		case TagEvalOn:
			f.execs.push(f.currentCtx)
			f.currentCtx = node.executor
			f.conts.push(contEvalOn)
			pending := node.inner
			ctx := node.executor
			ctx.Execute(func() { f.loop(pending) })
			return
		case TagMap:
			f.conts.push(contMap)
			f.objs.push(node.mapFn)
			node = node.inner
		case TagFlatMap:
			f.conts.push(contFlatMap)
			f.objs.push(node.flatMapFn)
			node = node.inner
		case TagHandleErrorWith:
			f.conts.push(contHandleErrorWith)
			f.objs.push(node.handleFn)
			node = node.inner
		case TagOnCase:
			registeredCtx := f.currentCtx
			userFn := node.onCaseFn
			f.finalizers.push(func(o Outcome) *Node {
				effect := userFn(o)
				if f.currentCtx != registeredCtx {
					return EvalOn(effect, registeredCtx)
				}
				return effect
			})
			f.conts.push(contOnCase)
			node = node.inner
		case TagUncancelable:
			id := f.freshMaskID()
			f.maskDepth++
			f.maskStack = append(f.maskStack, id)
			f.conts.push(contUncancelable)
			node = node.uncancelableFn(newUncancelablePoll(id))
		case TagCanceled:
			f.canceling.Store(true)
			if f.masked() {
				node = f.succeeded(Unit)
			} else {
				node = f.tripCancellation()
			}
		case TagStart:
			child := f.spawnChild(node.inner)
			node = f.succeeded(Erased(child))
		case TagRacePair:
			node = f.racePairAsync(node.inner, node.second)
		case TagSleep:
			node = f.sleepAsync(node.duration)
		case TagRealTime:
			node = f.succeeded(f.timer.NowMillis())
		case TagMonotonic:
			node = f.succeeded(f.timer.MonotonicNanos())
		case TagCede:
			ctx := f.currentCtx
			ctx.Execute(func() {
				next := f.succeeded(Unit)
				if next != nil {
					f.loop(next)
				}
			})
			return
		case TagUnmask:
			if n := len(f.maskStack); n > 0 && f.maskStack[n-1] == node.maskID {
				f.maskDepth--
				f.maskStack = f.maskStack[:n-1]
				f.objs.push(node.maskID)
				f.conts.push(contUnmask)
				node = node.inner
			} else {
				// Stale poll: a nested Uncancelable has shadowed the scope
				// this Poll came from. Transparent no-op.
				node = node.inner
			}
		default:
			panic(fmt.Sprintf("fiber: unknown node tag %d", node.Tag))
		}
	}
}

// tripCancellation discards the fiber's pending continuation — cancellation
// preempts whatever Map/FlatMap/HandleErrorWith chain was waiting — and
// begins the finalizer drain toward a canceled Outcome.
func (f *Fiber) tripCancellation() *Node {
	f.conts.reset()
	f.objs.reset()
	f.bools.reset()
	f.execs.reset()
	return f.beginTermination(CanceledOutcome())
}

// invokeRegistrar calls registrar, recovering a panic into an error so a
// misbehaving registration (spec.md §7) fails the Async node rather than
// crashing the fiber's goroutine.
func (f *Fiber) invokeRegistrar(registrar func(func(Erased, error)) *Node, resume func(Erased, error)) (next *Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("fiber: registrar panic: %v", r)
			}
		}
	}()
	return registrar(resume), nil
}

// sleepAsync expresses Sleep in terms of Async so suspension, cancellation,
// and the timer's cancel handle all go through the same machinery a
// user-supplied registrar would.
func (f *Fiber) sleepAsync(d time.Duration) *Node {
	return Async(func(resume func(Erased, error)) *Node {
		handle := f.timer.Sleep(d, func() { resume(Unit, nil) })
		cancelEffect := Delay(func() (Erased, error) { handle.Run(); return Unit, nil })
		return Pure(Erased(cancelEffect))
	})
}

// succeeded and failed apply the fiber's pending continuation to a result,
// looping until a new Node is ready to evaluate or the fiber suspends
// (nil). Both are thin entry points into unwind, which is where the two
// modes — forwarding a value, propagating a failure — actually diverge per
// continuation kind.
func (f *Fiber) succeeded(value Erased) *Node { return f.unwind(value, nil) }

func (f *Fiber) failed(err error) *Node { return f.unwind(nil, err) }

// unwind pops continuation frames one at a time, applying each to the
// current (value, err) pair. MapK and FlatMapK apply only when not
// failing; HandleErrorWithK applies only when failing; every other
// continuation kind is symmetric and always runs. Reaching an empty
// continuation stack (or the RunTerminusK sentinel start pushes) means the
// fiber's own program has finished, success or failure, and it's time to
// publish the outcome and then drain any remaining finalizers.
func (f *Fiber) unwind(value Erased, err error) *Node {
	for {
		failing := err != nil

		tag, ok := f.conts.pop()
		if !ok || tag == contRunTerminus {
			if failing {
				return f.beginTermination(ErroredOutcome(err))
			}
			return f.beginTermination(CompletedOutcome(value))
		}

		switch tag {
		case contCancellationLoop:
			outcome := f.objs.pop().(Outcome)
			f.maskDepth--
			return f.beginTermination(outcome)

		case contAsync:
			cell := f.objs.pop().(*asyncCell)
			if failing {
				if cell.markDelivered() {
					continue // still ours to propagate; keep unwinding with err
				}
				cell.result = asyncResult{err: err}
				f.asyncContinue(cell)
				return nil
			}
			cancelEffect, _ := value.(*Node)
			registered := asyncRegisteredNoFinalizer
			if cancelEffect != nil && !f.masked() && !f.canceling.Load() {
				f.finalizers.push(func(o Outcome) *Node {
					if o.IsCanceled() {
						return cancelEffect
					}
					return Pure(Unit)
				})
				registered = asyncRegisteredWithFinalizer
			}
			if !cell.casState(asyncInitial, registered) {
				if registered == asyncRegisteredWithFinalizer {
					f.finalizers.pop()
				}
				f.asyncContinue(cell)
				return nil
			}
			f.pending.Store(&pendingSuspension{cell: cell, interruptible: registered == asyncRegisteredWithFinalizer})
			f.suspended.Store(true)
			return nil

		case contEvalOn:
			oldCtx, _ := f.execs.pop()
			f.currentCtx = oldCtx
			if f.canceling.Load() && !f.masked() {
				// Falls through to the gate check instead of migrating:
				// the cancellation is about to preempt whatever this
				// continuation would have done on oldCtx anyway.
				continue
			}
			pendingValue, pendingErr := value, err
			ctx := oldCtx
			ctx.Execute(func() {
				var next *Node
				if pendingErr != nil {
					next = f.failed(pendingErr)
				} else {
					next = f.succeeded(pendingValue)
				}
				if next != nil {
					f.loop(next)
				}
			})
			return nil

		case contMap:
			fn := f.objs.pop().(func(Erased) Erased)
			if failing {
				continue
			}
			value = fn(value)
			continue

		case contFlatMap:
			fn := f.objs.pop().(func(Erased) *Node)
			if failing {
				continue
			}
			return fn(value)

		case contHandleErrorWith:
			fn := f.objs.pop().(func(error) *Node)
			if !failing {
				continue
			}
			return fn(err)

		case contOnCase:
			fin, _ := f.finalizers.pop()
			var outcome Outcome
			if failing {
				outcome = ErroredOutcome(err)
				f.objs.push(err)
			} else {
				outcome = CompletedOutcome(value)
				f.objs.push(value)
			}
			f.bools.push(!failing)
			f.conts.push(contOnCaseForwarder)
			f.maskDepth++
			return fin(outcome)

		case contOnCaseForwarder:
			f.maskDepth--
			wasSuccess := f.bools.pop()
			orig := f.objs.pop()
			if wasSuccess {
				return f.unwind(orig, nil)
			}
			return f.unwind(nil, orig.(error))

		case contUncancelable:
			f.maskDepth--
			f.maskStack = f.maskStack[:len(f.maskStack)-1]
			// Masking just lifted back to the unmasked gate. A
			// cancellation requested while masked (and never reopened by
			// a matching Poll) becomes observable exactly here, rather
			// than slipping through to a natural completion that would
			// never otherwise recheck canceling before unwind's own
			// terminal case publishes an outcome.
			if f.maskDepth == 0 && f.canceling.Load() {
				return f.tripCancellation()
			}
			continue

		case contUnmask:
			id := f.objs.pop().(int64)
			f.maskDepth++
			f.maskStack = append(f.maskStack, id)
			continue
		}
	}
}
