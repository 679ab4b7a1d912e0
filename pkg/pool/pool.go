// Package pool provides reusable buffers for the pipeline's hot allocation
// patterns. Buffers follow an acquire/release contract: a released buffer
// must not be used again until re-acquired, and pools are rebuilt per
// vectorization call so state never bleeds between calls.
package pool

import (
	"sync"
	"sync/atomic"
)

// BufferPool recycles float64 scratch buffers. Safe for concurrent use.
type BufferPool struct {
	pool   sync.Pool
	hits   atomic.Int64
	misses atomic.Int64
}

func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

// Acquire returns a zeroed buffer of length n. The buffer may have extra
// capacity from a previous use.
func (p *BufferPool) Acquire(n int) []float64 {
	if v := p.pool.Get(); v != nil {
		buf := v.([]float64)
		if cap(buf) >= n {
			p.hits.Add(1)
			buf = buf[:n]
			for i := range buf {
				buf[i] = 0
			}
			return buf
		}
	}
	p.misses.Add(1)
	return make([]float64, n)
}

// Release returns a buffer to the pool.
func (p *BufferPool) Release(buf []float64) {
	if cap(buf) == 0 {
		return
	}
	p.pool.Put(buf[:cap(buf)])
}

// Stats returns the hit and miss counts since the pool was created.
func (p *BufferPool) Stats() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// IntPool recycles int scratch buffers (label maps, index lists).
type IntPool struct {
	pool sync.Pool
}

func NewIntPool() *IntPool {
	return &IntPool{}
}

func (p *IntPool) Acquire(n int) []int {
	if v := p.pool.Get(); v != nil {
		buf := v.([]int)
		if cap(buf) >= n {
			buf = buf[:n]
			for i := range buf {
				buf[i] = 0
			}
			return buf
		}
	}
	return make([]int, n)
}

func (p *IntPool) Release(buf []int) {
	if cap(buf) == 0 {
		return
	}
	p.pool.Put(buf[:cap(buf)])
}
