// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync"

var racePairStatePool = sync.Pool{New: func() any { return new(racePairState) }}

func acquireRacePairState() *racePairState {
	return racePairStatePool.Get().(*racePairState)
}

func releaseRacePairState(s *racePairState) {
	s.delivered.Store(false)
	s.firstError.Store(nil)
	s.firstCanceled.Store(false)
	racePairStatePool.Put(s)
}
