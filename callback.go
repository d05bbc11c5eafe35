// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync/atomic"

// joinState is the immutable snapshot swapped atomically under
// callbackRegistry.state. Either outcome is nil and listeners holds every
// joiner registered so far, or outcome is set and listeners is the empty
// nil slice left over from the publish that consumed them. Replacing the
// whole snapshot, rather than mutating a shared slice, is what avoids the
// race where a listener registered concurrently with publish is either
// delivered to twice or never at all.
type joinState struct {
	outcome   *Outcome
	listeners []func(Outcome)
}

// callbackRegistry is the join/outcome publication registry behind
// Fiber.Join and Fiber.Cancel. Its zero value is ready to use.
type callbackRegistry struct {
	state atomic.Pointer[joinState]
}

// registerListener adds cb to be invoked with the fiber's terminal
// Outcome. If the outcome has already been published, cb runs immediately
// and synchronously instead.
func (r *callbackRegistry) registerListener(cb func(Outcome)) {
	for {
		old := r.state.Load()
		var listeners []func(Outcome)
		if old != nil {
			if old.outcome != nil {
				cb(*old.outcome)
				return
			}
			listeners = old.listeners
		}
		next := &joinState{listeners: append(append([]func(Outcome){}, listeners...), cb)}
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// publish installs o as the registry's terminal outcome and delivers it to
// every listener registered up to that point. A second call is a no-op:
// Outcome publication happens at most once per fiber.
func (r *callbackRegistry) publish(o Outcome) {
	for {
		old := r.state.Load()
		if old != nil && old.outcome != nil {
			return
		}
		next := &joinState{outcome: &o}
		if r.state.CompareAndSwap(old, next) {
			if old != nil {
				for _, l := range old.listeners {
					l(o)
				}
			}
			return
		}
	}
}
