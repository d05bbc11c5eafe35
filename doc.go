// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiber is a cooperative fiber scheduling runtime: the core loop
// beneath an effect system, without the syntax sugar a calling library
// would wrap around it.
//
// # Design Philosophy
//
// fiber provides:
//   - A closed, tagged effect algebra (node.go) instead of an open handler
//     interface — the interpreter dispatches on a fixed enumeration, not a
//     chain of type assertions
//   - A side-stack continuation representation (stack.go) instead of a
//     linked chain of polymorphic frame objects, so evaluating a long
//     Map/FlatMap chain allocates once per step rather than once per frame
//   - Structured, cooperative cancellation with masking (mask.go,
//     finalizer.go) rather than goroutine-level interruption
//   - Executor and Timer as injected capabilities (executor.go, timer.go),
//     so the same program runs on a bare goroutine-per-fiber scheduler or
//     a bounded worker pool without changing its effect descriptions
//
// # Core Algebra
//
// A [Node] is an immutable description of one step of a program. Values
// are constructed with [Pure], [Delay], [Err], [Async], [ReadExecutor],
// [EvalOn], [Map], [FlatMap], [HandleErrorWith], [OnCase], [Uncancelable],
// [CanceledEffect], [Start], [RacePair], [Sleep], [RealTime], [Monotonic],
// [Cede], and [Unmask]. [Node] values are never mutated — FlatMap and
// friends always build a new one.
//
// Sequencing helpers built atop the primitives live in combinators.go:
// [Then], [Void], [As], [Attempt].
//
// # Fibers
//
// [Fiber] is the unit of concurrent execution. [NewFiber] starts a root
// fiber; [Node.Tag] TagStart spawns a child sharing the parent's executor.
// [Fiber.Join] and [Fiber.Cancel] are themselves effects — suspending,
// composable operations rather than blocking calls — so joining or
// canceling a fiber is just another [Node] to sequence into a program.
// [Fiber.Outcome] offers a non-blocking peek at a fiber that may already
// be done.
//
// [RunSync] and [RunSyncWith] bridge out of the effect algebra entirely,
// blocking the calling (non-fiber) goroutine until a root fiber
// terminates; intended for programs and tests with no fiber of their own
// to sequence a [Fiber.Join] from.
//
// # Cancellation and Masking
//
// Cancellation is cooperative: requesting it (externally via
// [Fiber.Cancel], or from within via [CanceledEffect]) only takes effect
// at the next point the fiber is unmasked. [Uncancelable] raises the mask
// level for the duration of its body, handing that body a [Poll] that
// reopens a cancellation window for whatever effect it wraps — nesting a
// fresh [Uncancelable] inside shadows any [Poll] captured by an enclosing
// one, so an inner scope can never reach back out and unmask its parent.
//
// [OnCase] registers a finalizer observing an effect's terminal [Outcome],
// guaranteed to run whether that effect succeeds, fails, or the fiber is
// canceled while it's in flight.
//
// # Racing
//
// [RacePair] runs two effects as sibling fibers and resolves to a
// [RaceResult] naming the side that decides the race, handing back the
// other as a [Fiber] that may still be running. The first side to complete
// successfully decides it; an error decides it only once the other side
// has errored or been canceled; if both sides are canceled, the racing
// fiber itself is canceled. Canceling the race cancels both children;
// canceling only the loser is left to the caller.
//
// # Outcome
//
// [Outcome] is the terminal state of a fiber: exactly one of completed
// (carrying a value), errored (carrying an error), or canceled. Once a
// fiber publishes its [Outcome], every past and future joiner observes the
// identical value. [MatchOutcome] folds an [Outcome] into a single
// result.
package fiber
