package perf

import (
	"runtime"
	"sync"
	"time"
)

// targetChunkDuration is the per-chunk processing time the chunker steers
// toward. Chunks near this size amortize dispatch overhead while keeping
// cancellation latency bounded by roughly one chunk.
const targetChunkDuration = 5 * time.Millisecond

// Chunker picks chunk sizes and worker counts for data-parallel loops from
// the input size and a running average of recorded per-item durations.
// Safe for concurrent use.
type Chunker struct {
	mu         sync.Mutex
	totalItems int64
	totalTime  time.Duration
}

func NewChunker() *Chunker {
	return &Chunker{}
}

// Record feeds back the measured duration of processing n items.
func (c *Chunker) Record(n int, d time.Duration) {
	if n <= 0 || d <= 0 {
		return
	}
	c.mu.Lock()
	c.totalItems += int64(n)
	c.totalTime += d
	c.mu.Unlock()
}

// ChunkSize returns how many of total items each chunk should process. With
// no recorded history it falls back to dividing the input evenly over the
// workers, four chunks each for balance.
func (c *Chunker) ChunkSize(total, workers int) int {
	if total <= 0 {
		return 1
	}
	if workers < 1 {
		workers = 1
	}

	c.mu.Lock()
	items, elapsed := c.totalItems, c.totalTime
	c.mu.Unlock()

	var size int
	if items > 0 && elapsed > 0 {
		perItem := elapsed / time.Duration(items)
		if perItem <= 0 {
			perItem = time.Nanosecond
		}
		size = int(targetChunkDuration / perItem)
	} else {
		size = total / (workers * 4)
	}

	if size < 1 {
		size = 1
	}
	if size > total {
		size = total
	}
	return size
}

// Workers returns how many workers to use for total items, bounded by
// maxWorkers (0 means GOMAXPROCS). Tiny inputs stay single-threaded to avoid
// paying dispatch overhead for nothing.
func (c *Chunker) Workers(total, maxWorkers int) int {
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}
	if total < 1024 {
		return 1
	}
	if maxWorkers > total {
		maxWorkers = total
	}
	return maxWorkers
}
