package rgbatlas

import (
	"sync/atomic"
	"testing"
)

func TestParallelForCoversRange(t *testing.T) {
	for _, total := range []int{0, 1, 7, 100} {
		for _, workers := range []int{-1, 0, 1, 3, 200} {
			hits := make([]atomic.Int32, total)
			parallelFor(total, workers, func(start, end int) {
				for i := start; i < end; i++ {
					hits[i].Add(1)
				}
			})
			for i := range hits {
				if n := hits[i].Load(); n != 1 {
					t.Fatalf("total=%d workers=%d: index %d visited %d times", total, workers, i, n)
				}
			}
		}
	}
}
