package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_Sequential(t *testing.T) {
	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, Sequential())

	assert.Equal(t, int64(100), counter)
}

func TestForChunks_CoversRangeOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 7}
	n := 100

	seen := make([]int32, n)
	var mu sync.Mutex
	var calls int
	ForChunks(n, func(start, end int) {
		mu.Lock()
		calls++
		mu.Unlock()
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	}, cfg)

	require.Greater(t, calls, 1, "expected the range to be split")
	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d visited %d times", i, v)
	}
}

func TestForChunks_SmallFallsBackToOneCall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = 8

	var calls int32
	ForChunks(cfg.MinChunkSize, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, cfg.MinChunkSize, end)
	}, cfg)

	assert.Equal(t, int32(1), calls)
}

func TestForChunks_Empty(t *testing.T) {
	called := false
	ForChunks(0, func(_, _ int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func BenchmarkForChunks(b *testing.B) {
	cfg := DefaultConfig()
	data := make([]float32, 1<<20)

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ForChunks(len(data), func(s, e int) {
				for j := s; j < e; j++ {
					data[j] = float32(j)
				}
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ForChunks(len(data), func(s, e int) {
				for j := s; j < e; j++ {
					data[j] = float32(j)
				}
			}, Sequential())
		}
	})
}
