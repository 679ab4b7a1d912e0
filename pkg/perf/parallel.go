package perf

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ParallelRows splits [0, rows) into chunks and runs fn over them on the
// configured number of workers. With one worker it runs inline, keeping
// single-threaded runs strictly deterministic. rowCost is the per-row work
// estimate (usually the image width) so the chunker sees total items, not row
// count. Every chunk is timed and fed back through Record, so chunk sizes
// adapt to the measured per-item cost as a run progresses. Callers must only
// write disjoint rows from fn.
func ParallelRows(rows, rowCost, workers int, chunker *Chunker, fn func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	if rowCost < 1 {
		rowCost = 1
	}
	if chunker != nil {
		workers = chunker.Workers(rows*rowCost, workers)
	}
	if workers <= 1 {
		if chunker == nil {
			fn(0, rows)
			return
		}
		start := time.Now()
		fn(0, rows)
		chunker.Record(rows*rowCost, time.Since(start))
		return
	}

	// An even split over the workers is the upper bound; recorded history can
	// only shrink chunks below it for better balance.
	chunkRows := (rows + workers - 1) / workers
	if chunker != nil {
		if adaptive := chunker.ChunkSize(rows*rowCost, workers) / rowCost; adaptive >= 1 && adaptive < chunkRows {
			chunkRows = adaptive
		}
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for y0 := 0; y0 < rows; y0 += chunkRows {
		y0, y1 := y0, min(y0+chunkRows, rows)
		g.Go(func() error {
			start := time.Now()
			fn(y0, y1)
			if chunker != nil {
				chunker.Record((y1-y0)*rowCost, time.Since(start))
			}
			return nil
		})
	}
	// Workers never fail; the group is used for the join.
	_ = g.Wait()
}
