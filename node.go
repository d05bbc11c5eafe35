// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "time"

// Erased represents a type-erased value flowing through the interpreter.
// The interpreter is monomorphic over Node; concrete types are recovered
// via type assertions at the boundary where a user closure is invoked.
type Erased = any

// Tag identifies the variant carried by a Node. The dispatcher in loop.go
// switches on Tag directly rather than on Go's dynamic type, keeping the
// hot path a single branch-predictable jump table instead of a chain of
// interface type assertions.
type Tag uint8

const (
	TagPure Tag = iota
	TagDelay
	TagError
	TagAsync
	TagReadExecutor
	TagEvalOn
	TagMap
	TagFlatMap
	TagHandleErrorWith
	TagOnCase
	TagUncancelable
	TagCanceled
	TagStart
	TagRacePair
	TagSleep
	TagRealTime
	TagMonotonic
	TagCede
	TagUnmask
)

// Poll is the capability an Uncancelable body receives to reveal a
// cancellation point within an otherwise masked region. Applying Poll to an
// effect wraps it in Unmask tagged with the fresh mask id the enclosing
// Uncancelable was assigned, so nested polls cannot cross-unmask an outer
// Uncancelable.
type Poll func(*Node) *Node

// Node is an immutable value describing one step of a program: a tagged
// variant over the effect algebra in spec.md §3. Only the fields relevant
// to Tag are populated; the rest are left zero. Node is never mutated after
// construction — the interpreter only ever reads a Node's fields and
// constructs new ones.
type Node struct {
	Tag Tag

	value Erased        // Pure
	thunk func() (Erased, error) // Delay
	err   error          // Error

	registrar func(resume func(Erased, error)) *Node // Async

	inner *Node // EvalOn / Map / FlatMap / HandleErrorWith / OnCase / Unmask body

	executor Executor // EvalOn / ReadExecutor's carrier is the fiber itself

	mapFn    func(Erased) Erased      // Map
	flatMapFn func(Erased) *Node      // FlatMap
	handleFn func(error) *Node        // HandleErrorWith
	onCaseFn func(Outcome) *Node      // OnCase, result is effect-unit
	uncancelableFn func(Poll) *Node   // Uncancelable

	second *Node // RacePair's second branch ("iob"); inner holds "ioa"

	duration time.Duration // Sleep

	maskID int64 // Unmask
}

// Pure lifts a plain value into the effect algebra. Evaluating it invokes
// the current continuation with value, success.
func Pure(value Erased) *Node {
	return &Node{Tag: TagPure, value: value}
}

// Delay wraps a side-effecting thunk. thunk is invoked synchronously by the
// interpreter; a non-nil error becomes a failure, otherwise the returned
// value is passed to the current continuation.
func Delay(thunk func() (Erased, error)) *Node {
	return &Node{Tag: TagDelay, thunk: thunk}
}

// Err lifts a throwable directly, without evaluating a thunk.
func Err(err error) *Node {
	return &Node{Tag: TagError, err: err}
}

// Async suspends the fiber until registrar invokes the resume callback it
// receives, or resolves synchronously if registrar calls it before
// returning. The effect produced by registrar is evaluated next by the
// interpreter; it may yield a cancel effect (non-nil *Node) to be pushed as
// a finalizer, or nil for "no cancel effect".
func Async(registrar func(resume func(Erased, error)) *Node) *Node {
	return &Node{Tag: TagAsync, registrar: registrar}
}

// ReadExecutor resolves to the fiber's current executor.
func ReadExecutor() *Node {
	return &Node{Tag: TagReadExecutor}
}

// EvalOn submits inner for evaluation on executor, shifting the fiber's
// current executor for the remainder of inner's evaluation.
func EvalOn(inner *Node, executor Executor) *Node {
	return &Node{Tag: TagEvalOn, inner: inner, executor: executor}
}

// Map applies fn to inner's successful result.
func Map(inner *Node, fn func(Erased) Erased) *Node {
	return &Node{Tag: TagMap, inner: inner, mapFn: fn}
}

// FlatMap sequences inner into fn, which produces the next effect.
func FlatMap(inner *Node, fn func(Erased) *Node) *Node {
	return &Node{Tag: TagFlatMap, inner: inner, flatMapFn: fn}
}

// HandleErrorWith recovers from inner's failure by running fn(err).
func HandleErrorWith(inner *Node, fn func(error) *Node) *Node {
	return &Node{Tag: TagHandleErrorWith, inner: inner, handleFn: fn}
}

// OnCase registers a finalizer that observes inner's terminal Outcome,
// guaranteed to run on every exit path (success, error, or cancellation).
func OnCase(inner *Node, fn func(Outcome) *Node) *Node {
	return &Node{Tag: TagOnCase, inner: inner, onCaseFn: fn}
}

// Uncancelable raises the fiber's mask count for the duration of body,
// suppressing self-cancellation. body receives a Poll that reopens a
// cancellation window for effects it wraps.
func Uncancelable(body func(Poll) *Node) *Node {
	return &Node{Tag: TagUncancelable, uncancelableFn: body}
}

// CanceledEffect marks the fiber as canceled. Inside a masked region this
// merely records the request and continues with unit; the cancellation
// becomes observable at the next Unmask or at an unmasked loop gate.
func CanceledEffect() *Node {
	return &Node{Tag: TagCanceled}
}

// Start spawns inner as a child fiber on the current executor and resolves
// to the child *Fiber.
func Start(inner *Node) *Node {
	return &Node{Tag: TagStart, inner: inner}
}

// RacePair races ioa against iob, resolving to whichever completes first
// together with a handle to the loser.
func RacePair(ioa, iob *Node) *Node {
	return &Node{Tag: TagRacePair, inner: ioa, second: iob}
}

// Sleep suspends for duration, then resolves to unit.
func Sleep(duration time.Duration) *Node {
	return &Node{Tag: TagSleep, duration: duration}
}

// RealTime resolves to the timer's wall-clock reading, in milliseconds.
func RealTime() *Node {
	return &Node{Tag: TagRealTime}
}

// Monotonic resolves to the timer's monotonic reading, in nanoseconds.
func Monotonic() *Node {
	return &Node{Tag: TagMonotonic}
}

// Cede voluntarily yields the worker, rescheduling the continuation on the
// current executor.
func Cede() *Node {
	return &Node{Tag: TagCede}
}

// Unmask wraps inner so that, if id is the mask id of the innermost active
// Uncancelable, cancellation becomes observable while inner runs. A Poll
// from any other Uncancelable (id doesn't match the top of the fiber's
// stack of active mask ids) makes this a transparent no-op, preventing
// nested polls from cross-unmasking an outer scope.
func Unmask(inner *Node, id int64) *Node {
	return &Node{Tag: TagUnmask, inner: inner, maskID: id}
}

// unit is the canonical value used for effects with no meaningful result.
type unit = struct{}

// Unit is the canonical zero-information value.
var Unit Erased = unit{}
