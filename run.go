// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// RunSync starts effect on a GoroutineExecutor backed by the system clock
// and blocks the calling goroutine until it reaches a terminal Outcome.
// It is a convenience for programs and tests that have no executor of
// their own to offer; production code driving many fibers should
// construct fibers directly against a shared Executor (see fiberpool).
func RunSync(effect *Node) Outcome {
	return RunSyncWith(effect, GoroutineExecutor{}, SystemTimer{})
}

// RunSyncWith is RunSync parameterized over the executor and timer.
func RunSyncWith(effect *Node, executor Executor, timer Timer) Outcome {
	done := make(chan Outcome, 1)
	f := NewFiber(effect, executor, timer)
	f.joiners.registerListener(func(o Outcome) { done <- o })
	return <-done
}
