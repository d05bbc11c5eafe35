// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// contTag identifies a continuation frame. Continuations are serialized as
// a single byte on the fiber's continuation stack rather than allocated as
// polymorphic frame objects — this is spec.md §3's "Continuation kind"
// component, and the direct descendant of an earlier Frame-interface chain
// with per-frame type-switch dispatch, re-architected per the design note:
// replace per-frame polymorphic dispatch with a closed enumeration of frame
// kinds, storing frame state in side stacks (object, boolean) instead of
// per-frame allocations.
type contTag byte

const (
	contRunTerminus contTag = iota
	contCancellationLoop
	contAsync
	contEvalOn
	contMap
	contFlatMap
	contHandleErrorWith
	contOnCase
	contOnCaseForwarder
	contUncancelable
	contUnmask
)

func (t contTag) String() string {
	switch t {
	case contRunTerminus:
		return "RunTerminusK"
	case contCancellationLoop:
		return "CancellationLoopK"
	case contAsync:
		return "AsyncK"
	case contEvalOn:
		return "EvalOnK"
	case contMap:
		return "MapK"
	case contFlatMap:
		return "FlatMapK"
	case contHandleErrorWith:
		return "HandleErrorWithK"
	case contOnCase:
		return "OnCaseK"
	case contOnCaseForwarder:
		return "OnCaseForwarderK"
	case contUncancelable:
		return "UncancelableK"
	case contUnmask:
		return "UnmaskK"
	default:
		return "UnknownK"
	}
}
