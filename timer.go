// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "time"

// CancelHandle cancels a pending timer delivery. Run is idempotent and safe
// to call from any goroutine; the timer's thunk is invoked at most once
// whether or not a cancellation races with natural firing.
type CancelHandle interface {
	Run()
}

// Timer is the capability injected into a root fiber for wall-clock and
// monotonic readings and for scheduling delayed callbacks. No pack example
// repo ships a timer-wheel abstraction worth adopting in its place, so the
// default implementation (SystemTimer, below) is built directly on
// time.AfterFunc — the idiomatic stdlib primitive every example repo in the
// pack that needs deadlines eventually reaches for.
type Timer interface {
	// NowMillis returns the current wall-clock time in milliseconds.
	NowMillis() int64
	// MonotonicNanos returns a monotonic clock reading in nanoseconds.
	MonotonicNanos() int64
	// Sleep schedules thunk to run after duration and returns a handle that
	// cancels the pending delivery.
	Sleep(duration time.Duration, thunk func()) CancelHandle
}

// SystemTimer is the default Timer, backed by the wall clock and
// time.AfterFunc.
type SystemTimer struct{}

// NowMillis implements Timer.
func (SystemTimer) NowMillis() int64 { return time.Now().UnixMilli() }

// monotonicBase anchors MonotonicNanos; time.Since measures against it on
// the monotonic clock.
var monotonicBase = time.Now()

// MonotonicNanos implements Timer.
func (SystemTimer) MonotonicNanos() int64 { return int64(time.Since(monotonicBase)) }

// Sleep implements Timer.
func (SystemTimer) Sleep(duration time.Duration, thunk func()) CancelHandle {
	t := time.AfterFunc(duration, thunk)
	return timerCancelHandle{t}
}

type timerCancelHandle struct{ t *time.Timer }

// Run implements CancelHandle.
func (h timerCancelHandle) Run() { h.t.Stop() }
