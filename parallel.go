package rgbatlas

import (
	"runtime"
	"sync"
)

// parallelFor splits [0, total) into contiguous chunks and runs fn for each chunk
// on at most workers goroutines. Non-positive workers means GOMAXPROCS.
func parallelFor(total, workers int, fn func(start, end int)) {
	if total <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}
	if workers <= 1 {
		fn(0, total)
		return
	}

	step := (total + workers - 1) / workers
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * step
		end := start + step
		if end > total {
			end = total
		}
		if start >= end {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
