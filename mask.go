// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// This file holds the masking arithmetic shared by loop.go's TagUncancelable
// and TagUnmask dispatch: allocating fresh mask ids (Fiber.freshMaskID, in
// fiber.go), and the stack of currently active mask ids a Poll call is
// checked against.
//
// A Poll captured by one Uncancelable body must become a no-op once a
// nested Uncancelable has shadowed it — otherwise an inner scope could
// accidentally reopen an outer scope's masked region. Comparing the
// Unmask node's id against the top of maskStack, rather than simply
// tracking a depth counter, is what gives Poll this nesting-safe behavior
// (spec.md §4.3).

// newUncancelablePoll builds the Poll handed to an Uncancelable body. Applying
// it wraps an effect in Unmask tagged with id, the fresh mask id this
// specific Uncancelable was assigned on entry.
func newUncancelablePoll(id int64) Poll {
	return func(inner *Node) *Node { return Unmask(inner, id) }
}
