// Package perf provides the lightweight instrumentation used across the
// pipeline: named timers and counters, memory snapshots, and the adaptive
// chunker that picks work-distribution sizes from measured throughput.
package perf

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Profiler records named timers, counters and memory snapshots. All methods
// are safe for concurrent use. A nil *Profiler is valid and records nothing,
// so callers can thread one through unconditionally.
type Profiler struct {
	mu        sync.Mutex
	timers    map[string]time.Duration
	counts    map[string]int64
	snapshots []MemSnapshot
}

// MemSnapshot is a point-in-time view of heap usage.
type MemSnapshot struct {
	Label      string
	HeapAlloc  uint64
	TotalAlloc uint64
	NumGC      uint32
	Taken      time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		timers: map[string]time.Duration{},
		counts: map[string]int64{},
	}
}

// StartTimer begins a named measurement and returns a stop function that
// accumulates the elapsed time. Multiple measurements under the same name
// sum together.
func (p *Profiler) StartTimer(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		p.mu.Lock()
		p.timers[name] += d
		p.mu.Unlock()
	}
}

// Count adds delta to a named counter.
func (p *Profiler) Count(name string, delta int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.counts[name] += delta
	p.mu.Unlock()
}

// Counter returns the current value of a named counter.
func (p *Profiler) Counter(name string) int64 {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}

// Timer returns the accumulated duration for a named timer.
func (p *Profiler) Timer(name string) time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timers[name]
}

// Snapshot records current heap statistics under a label.
func (p *Profiler) Snapshot(label string) {
	if p == nil {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	p.mu.Lock()
	p.snapshots = append(p.snapshots, MemSnapshot{
		Label:      label,
		HeapAlloc:  ms.HeapAlloc,
		TotalAlloc: ms.TotalAlloc,
		NumGC:      ms.NumGC,
		Taken:      time.Now(),
	})
	p.mu.Unlock()
}

// Report renders a stable, human-readable summary for debug logging.
func (p *Profiler) Report() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	names := make([]string, 0, len(p.timers))
	for name := range p.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "timer %s: %v\n", name, p.timers[name])
	}

	names = names[:0]
	for name := range p.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "count %s: %d\n", name, p.counts[name])
	}

	for _, s := range p.snapshots {
		fmt.Fprintf(&b, "mem %s: heap=%d total=%d gc=%d\n",
			s.Label, s.HeapAlloc, s.TotalAlloc, s.NumGC)
	}
	return b.String()
}
