// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Node-level sequencing combinators built atop FlatMap/Map, kept as
// optimizations and readability aids the way the teacher keeps Then
// alongside Bind: each of these is expressible in terms of the primitive
// constructors in node.go, but spelling them out inline at every call site
// would bury the intent.

// Then sequences a before b, discarding a's result.
func Then(a, b *Node) *Node {
	return FlatMap(a, func(Erased) *Node { return b })
}

// Void discards a's result, resolving to Unit on success.
func Void(a *Node) *Node {
	return Map(a, func(Erased) Erased { return Unit })
}

// As discards a's result, resolving to value on success.
func As(a *Node, value Erased) *Node {
	return Map(a, func(Erased) Erased { return value })
}

// Attempt reifies a's success or failure into an Outcome value rather than
// propagating a failure to the enclosing continuation. Attempt never
// itself fails with the error a produced; it can still fail if a is
// canceled, since cancellation is not representable as an Outcome value
// flowing through Map/HandleErrorWith.
func Attempt(a *Node) *Node {
	return HandleErrorWith(
		Map(a, func(v Erased) Erased { return CompletedOutcome(v) }),
		func(err error) *Node { return Pure(Erased(ErroredOutcome(err))) },
	)
}
