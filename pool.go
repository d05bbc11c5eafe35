// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync"

// asyncCell pooling. Every Async, Sleep, Join, Cancel, and RacePair
// suspension allocates one of these; pooling them avoids putting that
// allocation on the hot path of a program that suspends frequently. Cells
// are affine in the same sense the teacher's pooled frames are: a cell
// must not be touched again after its result has been delivered and
// consumed, so release zeroes every field before returning it.
var asyncCellPool = sync.Pool{New: func() any { return new(asyncCell) }}

func acquireAsyncCell() *asyncCell {
	return asyncCellPool.Get().(*asyncCell)
}

func releaseAsyncCell(c *asyncCell) {
	c.done.Store(false)
	c.state.Store(uint32(asyncInitial))
	c.result = asyncResult{}
	asyncCellPool.Put(c)
}
