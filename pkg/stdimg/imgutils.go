// Package stdimg holds the filters edgebench implements without cgo: noise
// injection, Gaussian blur, joint bilateral and rolling guidance.
package stdimg

import (
	"runtime"
	"sync"
)

// parallelRows calls fn for every row in [0,h) from a pool of
// GOMAXPROCS workers and waits for all of them.
func parallelRows(h int, fn func(y int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}
	if workers < 1 {
		workers = 1
	}
	rows := make(chan int, h)
	for y := 0; y < h; y++ {
		rows <- y
	}
	close(rows)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}
	wg.Wait()
}
