// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"errors"
	"testing"
	"time"
)

func TestCanceledEffectTerminatesUnmaskedFiber(t *testing.T) {
	o := RunSync(Then(CanceledEffect(), Pure(1)))
	if !o.IsCanceled() {
		t.Fatalf("got %+v", o)
	}
}

func TestUncancelableSuppressesSelfCancellation(t *testing.T) {
	prog := Uncancelable(func(_ Poll) *Node {
		return Then(CanceledEffect(), Pure(7))
	})
	o := RunSync(prog)
	if v, ok := o.Value(); !ok || v != 7 {
		t.Fatalf("Uncancelable should have swallowed the cancellation request, got %+v", o)
	}
}

func TestPollReopensCancellationInsideUncancelable(t *testing.T) {
	prog := Uncancelable(func(poll Poll) *Node {
		return poll(Then(CanceledEffect(), Pure(7)))
	})
	o := RunSync(prog)
	if !o.IsCanceled() {
		t.Fatalf("Poll should have reopened the cancellation window, got %+v", o)
	}
}

func TestNestedUncancelableShadowsOuterPoll(t *testing.T) {
	var innerRan bool
	prog := Uncancelable(func(outerPoll Poll) *Node {
		return FlatMap(CanceledEffect(), func(Erased) *Node {
			return Uncancelable(func(_ Poll) *Node {
				// outerPoll here belongs to a mask level the nested
				// Uncancelable has already shadowed; applying it must be
				// a transparent no-op rather than reopening the outer
				// window, so this Delay must still run to completion.
				return outerPoll(Delay(func() (Erased, error) {
					innerRan = true
					return Unit, nil
				}))
			})
		})
	})
	o := RunSync(prog)
	if !innerRan {
		t.Fatal("shadowed poll incorrectly blocked the masked body from running")
	}
	// The cancellation requested while doubly masked is still honored once
	// both Uncancelable scopes finish unwinding back to the unmasked gate.
	if !o.IsCanceled() {
		t.Fatalf("got %+v", o)
	}
}

func TestOnCaseFinalizerObservesCancellation(t *testing.T) {
	var observed Outcome
	var sawCancel bool
	finalized := make(chan struct{})
	prog := OnCase(Then(CanceledEffect(), Pure(1)), func(o Outcome) *Node {
		observed = o
		sawCancel = o.IsCanceled()
		close(finalized)
		return Pure(Unit)
	})
	o := RunSync(prog)
	if !o.IsCanceled() {
		t.Fatalf("got %+v", o)
	}
	// A canceled outcome is published before finalizers run, so wait for
	// the finalizer itself rather than for RunSync alone.
	select {
	case <-finalized:
	case <-time.After(time.Second):
		t.Fatal("finalizer never ran")
	}
	if !sawCancel {
		t.Fatalf("finalizer should have observed a canceled outcome, got %+v", observed)
	}
}

func TestOnCaseFinalizerFailureDoesNotOverrideOutcome(t *testing.T) {
	prog := OnCase(Pure(42), func(Outcome) *Node {
		return Err(errors.New("finalizer boom"))
	})
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok || v != 42 {
		t.Fatalf("a finalizer's own failure must not override the original outcome, got %+v", o)
	}
}

func TestExternalCancelInterruptsSleepingFiber(t *testing.T) {
	started := make(chan struct{})
	child := NewFiber(Uncancelable(func(poll Poll) *Node {
		return poll(FlatMap(Delay(func() (Erased, error) {
			close(started)
			return Unit, nil
		}), func(Erased) *Node {
			return Sleep(time.Hour)
		}))
	}), GoroutineExecutor{}, SystemTimer{})

	<-started
	// Give the Sleep call a moment to actually register with the timer
	// before asking for cancellation.
	time.Sleep(5 * time.Millisecond)

	o := RunSync(child.Cancel())
	if !o.IsCompleted() {
		t.Fatalf("Cancel() itself should complete once the target has terminated, got %+v", o)
	}

	childOutcome, ok := child.Outcome()
	if !ok || !childOutcome.IsCanceled() {
		t.Fatalf("expected the sleeping fiber to be canceled, got %+v (published=%v)", childOutcome, ok)
	}
}

func TestExternalCancelOfMaskedFiberWaitsForUnmask(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	child := NewFiber(Uncancelable(func(_ Poll) *Node {
		return FlatMap(Delay(func() (Erased, error) {
			close(started)
			return Unit, nil
		}), func(Erased) *Node {
			return Async(func(resume func(Erased, error)) *Node {
				go func() {
					<-proceed
					resume(Unit, nil)
				}()
				return Pure(nil)
			})
		})
	}), GoroutineExecutor{}, SystemTimer{})

	<-started
	time.Sleep(5 * time.Millisecond)

	cancelDone := make(chan Outcome, 1)
	go func() {
		cancelDone <- RunSync(child.Cancel())
	}()

	// The target is masked with no cancel finalizer registered for this
	// suspension, so cancellation must not take effect yet.
	select {
	case <-cancelDone:
		t.Fatal("Cancel() resolved before the masked region released control")
	case <-time.After(20 * time.Millisecond):
	}

	close(proceed)
	<-cancelDone

	childOutcome, ok := child.Outcome()
	if !ok {
		t.Fatal("expected child to have terminated")
	}
	if !childOutcome.IsCanceled() {
		t.Fatalf("cancellation requested while masked should still apply once the mask lifts, got %+v", childOutcome)
	}
}
