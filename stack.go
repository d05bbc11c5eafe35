// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// byteStack is the fiber's continuation-tag stack: spec.md §3's "byte stack
// of continuation tags". Exclusively owned by its fiber; never touched from
// another goroutine.
type byteStack struct {
	data []contTag
}

func (s *byteStack) push(t contTag) { s.data = append(s.data, t) }

func (s *byteStack) pop() (contTag, bool) {
	n := len(s.data)
	if n == 0 {
		return 0, false
	}
	t := s.data[n-1]
	s.data = s.data[:n-1]
	return t, true
}

func (s *byteStack) len() int { return len(s.data) }

func (s *byteStack) reset() { s.data = s.data[:0] }

// objectStack is the fiber's "object stack": captured closures, refs, and
// async cells pushed alongside a contTag so the matching continuation can
// recover its operands.
type objectStack struct {
	data []Erased
}

func (s *objectStack) push(v Erased) { s.data = append(s.data, v) }

func (s *objectStack) pop() Erased {
	n := len(s.data)
	v := s.data[n-1]
	s.data[n-1] = nil // drop the reference promptly
	s.data = s.data[:n-1]
	return v
}

func (s *objectStack) len() int { return len(s.data) }

func (s *objectStack) reset() {
	for i := range s.data {
		s.data[i] = nil
	}
	s.data = s.data[:0]
}

// boolStack is the fiber's packed boolean stack, used to carry the
// success/failure discriminant across an OnCase re-entry while the pending
// result sits on objectStack. Bits are packed 64 to a word.
type boolStack struct {
	words []uint64
	n     int
}

func (s *boolStack) push(b bool) {
	idx := s.n / 64
	bit := uint(s.n % 64)
	if idx == len(s.words) {
		s.words = append(s.words, 0)
	}
	if b {
		s.words[idx] |= 1 << bit
	} else {
		s.words[idx] &^= 1 << bit
	}
	s.n++
}

func (s *boolStack) pop() bool {
	s.n--
	idx := s.n / 64
	bit := uint(s.n % 64)
	return s.words[idx]&(1<<bit) != 0
}

func (s *boolStack) len() int { return s.n }

func (s *boolStack) reset() {
	s.words = s.words[:0]
	s.n = 0
}

// execStack is the fiber's stack of executors, with a fast-path head
// (currentCtx on Fiber) mirroring spec.md §3's "ctxs + current_ctx: stack of
// executors with fast-path to head".
type execStack struct {
	data []Executor
}

func (s *execStack) push(e Executor) { s.data = append(s.data, e) }

func (s *execStack) pop() (Executor, bool) {
	n := len(s.data)
	if n == 0 {
		return nil, false
	}
	e := s.data[n-1]
	s.data[n-1] = nil
	s.data = s.data[:n-1]
	return e, true
}

func (s *execStack) reset() {
	for i := range s.data {
		s.data[i] = nil
	}
	s.data = s.data[:0]
}

// finalizer is an effect observing a fiber's terminal Outcome, producing an
// effect-unit that the cancellation/completion path runs with masks raised.
type finalizer func(Outcome) *Node

// finalizerStack is the fiber's LIFO stack of registered finalizers.
type finalizerStack struct {
	data []finalizer
}

func (s *finalizerStack) push(f finalizer) { s.data = append(s.data, f) }

func (s *finalizerStack) pop() (finalizer, bool) {
	n := len(s.data)
	if n == 0 {
		return nil, false
	}
	f := s.data[n-1]
	s.data[n-1] = nil
	s.data = s.data[:n-1]
	return f, true
}

func (s *finalizerStack) empty() bool { return len(s.data) == 0 }
