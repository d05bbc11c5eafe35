// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"sync"
	"testing"
	"time"
)

// TestManyJoinersAllObserveTheSameOutcome exercises callbackRegistry under
// concurrent registration: some listeners register before the fiber
// publishes, some race it, and some register only after it has already
// published. Every one of them must observe the identical Outcome exactly
// once.
func TestManyJoinersAllObserveTheSameOutcome(t *testing.T) {
	const joinerCount = 64

	release := make(chan struct{})
	fib := NewFiber(Then(Async(func(resume func(Erased, error)) *Node {
		go func() {
			<-release
			resume(Unit, nil)
		}()
		return Pure(nil)
	}), Pure(123)), GoroutineExecutor{}, SystemTimer{})

	var wg sync.WaitGroup
	results := make([]Outcome, joinerCount)

	for i := 0; i < joinerCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if idx%2 == 0 {
				// give the fiber a head start so some joins race publish
				time.Sleep(time.Duration(idx%3) * time.Millisecond)
			}
			results[idx] = RunSync(fib.Join())
		}(i)
	}

	time.Sleep(5 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, o := range results {
		v, ok := o.Value()
		inner, isOutcome := v.(Outcome)
		if !ok || !isOutcome {
			t.Fatalf("joiner %d: Join() must resolve to the fiber's Outcome, got %+v", i, o)
		}
		iv, ok := inner.Value()
		if !ok || iv != 123 {
			t.Fatalf("joiner %d: got %+v", i, inner)
		}
	}
}

func TestJoinAfterOutcomeAlreadyPublishedResolvesImmediately(t *testing.T) {
	fib := NewFiber(Pure(7), GoroutineExecutor{}, SystemTimer{})

	deadline := time.After(time.Second)
	for {
		if _, ok := fib.Outcome(); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("fiber never reached a terminal outcome")
		case <-time.After(time.Millisecond):
		}
	}

	o := RunSync(fib.Join())
	v, ok := o.Value()
	if !ok {
		t.Fatalf("got %+v", o)
	}
	inner := v.(Outcome)
	if iv, ok := inner.Value(); !ok || iv != 7 {
		t.Fatalf("got %+v", inner)
	}
}
