// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"errors"
	"testing"
	"time"
)

func TestRacePairFasterSideWins(t *testing.T) {
	prog := RacePair(
		Then(Sleep(30*time.Millisecond), Pure("slow")),
		Then(Sleep(2*time.Millisecond), Pure("fast")),
	)
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	result := v.(RaceResult)
	if result.Left {
		t.Fatalf("expected the right branch to win, got %+v", result)
	}
	rv, ok := result.Outcome.Value()
	if !ok || rv != "fast" {
		t.Fatalf("winner outcome = %+v", result.Outcome)
	}
	if result.Loser == nil {
		t.Fatal("expected a handle to the losing fiber")
	}
}

func TestRacePairLeftWinnerReportsLeftTrue(t *testing.T) {
	prog := RacePair(
		Then(Sleep(2*time.Millisecond), Pure("left")),
		Then(Sleep(30*time.Millisecond), Pure("right")),
	)
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	result := v.(RaceResult)
	if !result.Left {
		t.Fatalf("expected the left branch to win, got %+v", result)
	}
	lv, ok := result.Outcome.Value()
	if !ok || lv != "left" {
		t.Fatalf("winner outcome = %+v", result.Outcome)
	}
}

func TestRacePairLoserKeepsRunningUntilJoined(t *testing.T) {
	prog := RacePair(
		Then(Sleep(2*time.Millisecond), Pure("fast")),
		Then(Sleep(25*time.Millisecond), Pure("slow")),
	)
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	result := v.(RaceResult)

	loserOutcome := RunSync(result.Loser.Join())
	lv, ok := loserOutcome.Value()
	if !ok {
		t.Fatalf("got %+v", loserOutcome)
	}
	childOutcome := lv.(Outcome)
	if cv, ok := childOutcome.Value(); !ok || cv != "slow" {
		t.Fatalf("loser should still run to completion unless canceled, got %+v", childOutcome)
	}
}

func TestRacePairWithholdsAFirstErrorForASlowerSuccess(t *testing.T) {
	boom := errors.New("boom")
	prog := RacePair(
		Then(Sleep(2*time.Millisecond), Err(boom)),
		Then(Sleep(30*time.Millisecond), Pure("slow")),
	)
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	result := v.(RaceResult)
	if result.Left {
		t.Fatalf("expected the right (successful) side to win, got %+v", result)
	}
	rv, ok := result.Outcome.Value()
	if !ok || rv != "slow" {
		t.Fatalf("a lone first error must not win the race while the other side is still running, got %+v", result.Outcome)
	}
}

func TestRacePairDeliversTheSecondErrorWhenBothSidesError(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	prog := RacePair(
		Then(Sleep(2*time.Millisecond), Err(first)),
		Then(Sleep(20*time.Millisecond), Err(second)),
	)
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	result := v.(RaceResult)
	if result.Left {
		t.Fatalf("expected the left side's error to be dropped in favor of the second (right) side, got %+v", result)
	}
	err, ok := result.Outcome.Err()
	if !ok || !errors.Is(err, second) {
		t.Fatalf("expected the second error to be delivered, got %+v", result.Outcome)
	}
}

func TestRacePairCancelAfterAStoredErrorDeliversThatError(t *testing.T) {
	boom := errors.New("boom")
	prog := RacePair(
		Then(Sleep(2*time.Millisecond), Err(boom)),
		Then(Sleep(20*time.Millisecond), CanceledEffect()),
	)
	o := RunSync(prog)
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	result := v.(RaceResult)
	if !result.Left {
		t.Fatalf("expected the left side's stored error to be delivered once the right side cancels, got %+v", result)
	}
	err, ok := result.Outcome.Err()
	if !ok || !errors.Is(err, boom) {
		t.Fatalf("a cancellation arriving after a stored error must deliver that error, got %+v", result.Outcome)
	}
}

func TestRacePairBothSidesCancelingCancelsTheParent(t *testing.T) {
	delayedCancel := Then(Sleep(2*time.Millisecond), CanceledEffect())
	prog := RacePair(delayedCancel, delayedCancel)
	o := RunSync(prog)
	if !o.IsCanceled() {
		t.Fatalf("racing two cancellations should cancel the parent, got %+v", o)
	}
}

func TestRacePairCancellationCancelsBothChildren(t *testing.T) {
	started := make(chan struct{}, 2)
	childCanceled := make(chan struct{}, 2)
	effect := func() *Node {
		return OnCase(FlatMap(Delay(func() (Erased, error) {
			started <- struct{}{}
			return Unit, nil
		}), func(Erased) *Node {
			return Sleep(time.Hour)
		}), func(o Outcome) *Node {
			if o.IsCanceled() {
				childCanceled <- struct{}{}
			}
			return Pure(Unit)
		})
	}

	child := NewFiber(Uncancelable(func(poll Poll) *Node {
		return poll(RacePair(effect(), effect()))
	}), GoroutineExecutor{}, SystemTimer{})

	<-started
	<-started
	time.Sleep(5 * time.Millisecond)

	RunSync(child.Cancel())

	o, ok := child.Outcome()
	if !ok || !o.IsCanceled() {
		t.Fatalf("expected the racing fiber to be canceled, got %+v (published=%v)", o, ok)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-childCanceled:
		case <-time.After(time.Second):
			t.Fatalf("expected both racing children to be canceled, saw %d", i)
		}
	}
}
