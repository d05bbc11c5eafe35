// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Executor is the capability the core delegates all thread migration to.
// It accepts a submission from any goroutine and must invoke it eventually,
// establishing a happens-before edge between submission and execution. A
// rejected submission (pool shut down) must be swallowed silently by the
// core — the fiber simply stops making progress (spec.md §6).
type Executor interface {
	Execute(action func())
}

// GoroutineExecutor is the minimal Executor: every submission runs in its
// own goroutine. It mirrors the one-goroutine-per-submit idiom the pack's
// own worker-pool dispatch loop uses internally, and kont's own "just call
// the function" simplicity. Suitable for tests and small programs; use
// fiberpool.New for a bounded, pooled Executor backed by
// github.com/ygrebnov/workers.
type GoroutineExecutor struct{}

// Execute implements Executor.
func (GoroutineExecutor) Execute(action func()) {
	go action()
}
