package field

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum number of rows to split across workers.
const parallelThreshold = 8

// parallelRows calls fn over disjoint [start,end) ranges covering [0,n),
// one range per worker. It returns once every range is processed.
func parallelRows(n int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || numWorkers == 1 {
		fn(0, n)
		return
	}
	numWorkers = min(numWorkers, n)
	chunk := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(start, end)
		}()
	}
	wg.Wait()
}
