// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// beginTermination publishes outcome to every joiner immediately — matching
// the documented protocol for both the self-cancellation gate and an
// external canceller's steal, where notification happens before finalizers
// have necessarily run — then drains the fiber's finalizer stack LIFO, each
// one running with masking raised so a finalizer cannot itself be
// interrupted by the very cancellation it is reacting to.
//
// publish is safe to call again on every subsequent finalizer popped off the
// stack (contCancellationLoop re-enters here per finalizer): it is a CAS
// that only takes effect once.
//
// A finalizer's own success or failure is discarded — see contCancellationLoop
// in the continuation switch — only the originally intended outcome is ever
// published. This keeps the contract simple: finalizers observe the
// outcome, they do not get to change it.
func (f *Fiber) beginTermination(outcome Outcome) *Node {
	f.publish(outcome)

	fin, ok := f.finalizers.pop()
	if !ok {
		return nil
	}
	f.objs.push(outcome)
	f.conts.push(contCancellationLoop)
	f.maskDepth++
	return fin(outcome)
}
