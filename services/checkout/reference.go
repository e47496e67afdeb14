package checkout

import (
	"strconv"
	"sync/atomic"
	"time"
)

// referenceSource issues client reference ids: epoch milliseconds as text,
// strictly increasing within the process.
type referenceSource struct {
	last atomic.Int64
}

func (s *referenceSource) next(now time.Time) string {
	ms := now.UnixMilli()

	for {
		prev := s.last.Load()

		id := ms
		if id <= prev {
			id = prev + 1
		}

		if s.last.CompareAndSwap(prev, id) {
			return strconv.FormatInt(id, 10)
		}
	}
}
