// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiberpool adapts github.com/ygrebnov/workers into a bounded
// fiber.Executor, for programs that want a fixed worker budget instead of
// fiber.GoroutineExecutor's one-goroutine-per-submission default.
package fiberpool

import (
	"context"

	"github.com/ygrebnov/workers"
)

// Pool is a fiber.Executor backed by a github.com/ygrebnov/workers pool.
// Submissions that panic are recovered by the underlying worker (see its
// worker.execute) and surfaced on the pool's errors channel instead of
// crashing the pool.
type Pool struct {
	w      workers.Workers[struct{}]
	cancel context.CancelFunc
	errors chan error
	done   chan struct{}
}

// New starts a Pool with maxWorkers concurrent workers. maxWorkers == 0
// requests a dynamically sized pool, matching the underlying library's own
// zero-value convention.
func New(maxWorkers uint) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	w := workers.New[struct{}](ctx, &workers.Config{
		MaxWorkers:       maxWorkers,
		StartImmediately: true,
		TasksBufferSize:  256,
	})

	p := &Pool{w: w, cancel: cancel, errors: w.GetErrors(), done: make(chan struct{})}
	go p.drainErrors()
	return p
}

// drainErrors discards panics recovered from submitted actions. fiber's
// core never produces a useful recipient for an Executor-level panic — the
// Node that caused it already unwound through the interpreter's own
// recovery in loop.go's invokeRegistrar for Async, and Delay thunks are
// expected not to panic — so there is nothing more specific to do with
// these than drop them as they arrive. Draining stops when Close is called.
func (p *Pool) drainErrors() {
	for {
		select {
		case <-p.errors:
		case <-p.done:
			return
		}
	}
}

// Execute implements fiber.Executor.
func (p *Pool) Execute(action func()) {
	_ = p.w.AddTask(func(context.Context) error {
		action()
		return nil
	})
}

// Close stops accepting new work and releases the underlying pool.
func (p *Pool) Close() {
	close(p.done)
	p.cancel()
}
