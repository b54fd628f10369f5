package kernel

import (
	"runtime"
	"sync"
)

// parallelFor runs fn over [0, n) split into contiguous chunks of at least
// minChunk, one goroutine per chunk, and waits for all of them.
func parallelFor(n, minChunk, workers int, fn func(start, end int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
