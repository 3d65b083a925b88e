// Package parallel provides data-parallel loops for the element-wise kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// ForChunks calls f(start, end) over disjoint ranges covering [0, n) and
// returns once every call has finished.
// Falls back to a single f(0, n) call if parallelism is disabled or n is too small.
func ForChunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}
