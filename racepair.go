// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync/atomic"

// RaceResult is RacePair's resolved value: which side won, its Outcome, and
// a handle to the fiber that lost the race. The loser is not canceled
// automatically — that decision belongs to whoever evaluates the race,
// exactly as spec.md §4.4 leaves it, mirroring the asymmetry between a
// racePair-style primitive and a race that cancels the loser itself.
type RaceResult struct {
	Left    bool
	Outcome Outcome
	Loser   *Fiber
}

// racePairErr is the boxed value behind racePairState.firstError: which
// side produced it, alongside the error itself, so a later canceler that
// finds an error already stored can still deliver it as that side's
// RaceResult rather than its own.
type racePairErr struct {
	err  error
	left bool
}

// racePairState is the per-race coordination cell, pooled the way the
// teacher pools its per-suspension genericMarker. delivered guards the
// single resume call every race ends in; firstError and firstCanceled are
// spec.md §4.4's two shared atomics mediating which side's error or
// cancellation, if either, gets to decide the race's outcome.
type racePairState struct {
	delivered     atomic.Bool
	firstError    atomic.Pointer[racePairErr]
	firstCanceled atomic.Bool
}

// racePairAsync spawns ioa and iob as sibling fibers and suspends until the
// race resolves per spec.md §4.4: the first side to complete *successfully*
// wins immediately; an erroring side only wins once the other side has
// already canceled (a first error is stored and withheld, a second error is
// delivered); a first cancellation is stored and, if an error is already
// on file, delivers it, otherwise waits; a second cancellation — both sides
// canceled — cancels the parent instead of delivering a RaceResult at all.
// Cancel-effect for the Async handshake cancels both children, which is the
// only way the interpreter's async registration protocol lets RacePair
// react to its own enclosing cancellation.
func (f *Fiber) racePairAsync(ioa, iob *Node) *Node {
	return Async(func(resume func(Erased, error)) *Node {
		st := acquireRacePairState()
		childA := f.spawnChild(ioa)
		childB := f.spawnChild(iob)

		deliver := func(left bool, o Outcome) {
			if !st.delivered.CompareAndSwap(false, true) {
				return
			}
			if left {
				resume(RaceResult{Left: true, Outcome: o, Loser: childB}, nil)
			} else {
				resume(RaceResult{Left: false, Outcome: o, Loser: childA}, nil)
			}
		}

		onOutcome := func(left bool, o Outcome) {
			switch {
			case o.IsCompleted():
				deliver(left, o)

			case o.IsErrored():
				err, _ := o.Err()
				if st.firstError.CompareAndSwap(nil, &racePairErr{err: err, left: left}) {
					// First error: withheld unless the other side has
					// already canceled.
					if st.firstCanceled.Load() {
						deliver(left, o)
					}
				} else {
					// Second error: both sides errored, this one decides.
					deliver(left, o)
				}

			default: // canceled
				if st.firstCanceled.CompareAndSwap(false, true) {
					// First cancellation: deliver a previously stored
					// error, if any; otherwise wait for the other side.
					if stored := st.firstError.Load(); stored != nil {
						deliver(stored.left, ErroredOutcome(stored.err))
					}
				} else {
					// Second cancellation: both sides canceled. Neither
					// ever produced a usable result, so the race itself
					// cancels its parent rather than delivering one.
					f.interrupt()
				}
			}
		}
		// st goes back to the pool only after both listeners have run, so
		// the later one still sees delivered set.
		var settled atomic.Int32
		settle := func(left bool, o Outcome) {
			onOutcome(left, o)
			if settled.Add(1) == 2 {
				releaseRacePairState(st)
			}
		}
		childA.joiners.registerListener(func(o Outcome) { settle(true, o) })
		childB.joiners.registerListener(func(o Outcome) { settle(false, o) })

		cancelBoth := Delay(func() (Erased, error) {
			childA.interrupt()
			childB.interrupt()
			return Unit, nil
		})
		return Pure(Erased(cancelBoth))
	})
}
