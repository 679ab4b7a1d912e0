package vectorize

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/robmcdonald5/vec2art-sub004/pkg/perf"
	"github.com/robmcdonald5/vec2art-sub004/pkg/pool"
)

// ProgressFunc is invoked at stage boundaries with the stage name and overall
// completion in [0, 1]. It is never called at per-pixel granularity.
type ProgressFunc func(stage string, done float64)

// Option customizes one vectorization call.
type Option func(*execContext)

// WithLogger attaches a structured logger. Without one, logging goes to the
// logrus standard logger.
func WithLogger(log *logrus.Logger) Option {
	return func(ec *execContext) {
		if log != nil {
			ec.log = log
		}
	}
}

// WithProfiler attaches a profiler whose report lands in Result.Stats.
func WithProfiler(p *perf.Profiler) Option {
	return func(ec *execContext) { ec.prof = p }
}

// WithProgress attaches a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(ec *execContext) { ec.progress = fn }
}

// execContext carries the per-call runtime state: logger, profiler, pools,
// worker budget. Everything here is rebuilt per call; nothing is shared
// across calls.
type execContext struct {
	log      *logrus.Logger
	prof     *perf.Profiler
	progress ProgressFunc
	buffers  *pool.BufferPool
	ints     *pool.IntPool
	chunker  *perf.Chunker
	workers  int
}

func newExecContext(cfg Config, opts []Option) *execContext {
	ec := &execContext{
		log:     logrus.StandardLogger(),
		buffers: pool.NewBufferPool(),
		ints:    pool.NewIntPool(),
		chunker: perf.NewChunker(),
		workers: cfg.Workers,
	}
	if ec.workers <= 0 {
		ec.workers = runtime.GOMAXPROCS(0)
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

func (ec *execContext) report(stage string, done float64) {
	if ec.progress != nil {
		ec.progress(stage, done)
	}
}

// timer starts a profiler timer and returns its stop function. Safe with a
// nil profiler.
func (ec *execContext) timer(name string) func() {
	return ec.prof.StartTimer(name)
}
