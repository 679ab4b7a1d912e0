// Package superpixel implements SLIC-style segmentation: iterative clustering
// in a 5D position+Lab space, seeded on a regular or randomized pattern.
package superpixel

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
	"github.com/robmcdonald5/vec2art-sub004/pkg/perf"
	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
	"github.com/robmcdonald5/vec2art-sub004/pkg/spatial"
)

// SeedPattern selects the initial cluster placement.
type SeedPattern int

const (
	Square SeedPattern = iota
	Hex
	PoissonSeeds
)

// iterationBudget is the fixed SLIC iteration count. Convergence-based early
// exit is permitted by the contract but not needed at this budget.
const iterationBudget = 10

// LabelMap assigns every pixel a region id in [0, Count).
type LabelMap struct {
	Width  int
	Height int
	Labels []int
	Count  int
}

type cluster struct {
	x, y       float64
	l, a, b    float64
	n          int
	sx, sy     float64
	sl, sa, sb float64
}

func labPlane(img *raster.Image) (l, a, b []float64) {
	n := img.Width * img.Height
	l = make([]float64, n)
	a = make([]float64, n)
	b = make([]float64, n)
	for i := 0; i < n; i++ {
		j := i * 4
		c := colorful.Color{
			R: float64(img.Pix[j]) / 255,
			G: float64(img.Pix[j+1]) / 255,
			B: float64(img.Pix[j+2]) / 255,
		}
		l[i], a[i], b[i] = c.Lab()
	}
	return l, a, b
}

func seeds(width, height, num int, pattern SeedPattern, seed int64) []cluster {
	if num < 1 {
		num = 1
	}
	step := math.Sqrt(float64(width*height) / float64(num))
	if step < 1 {
		step = 1
	}

	var out []cluster
	switch pattern {
	case Hex:
		row := 0
		for y := step / 2; y < float64(height); y += step * math.Sqrt(3) / 2 {
			offset := 0.0
			if row%2 == 1 {
				offset = step / 2
			}
			for x := step/2 + offset; x < float64(width); x += step {
				out = append(out, cluster{x: x, y: y})
			}
			row++
		}
	case PoissonSeeds:
		// Dart throwing against a grid; deterministic under the seed.
		rng := rand.New(rand.NewSource(seed))
		grid := spatial.NewGrid(float64(width), float64(height), step)
		minDist := step * 0.8
		attempts := num * 30
		for i := 0; i < attempts && len(out) < num; i++ {
			p := geometry.Point{
				X: rng.Float64() * float64(width),
				Y: rng.Float64() * float64(height),
			}
			if grid.HasNeighborWithin(p, minDist) {
				continue
			}
			grid.Insert(p)
			out = append(out, cluster{x: p.X, y: p.Y})
		}
	default: // Square
		for y := step / 2; y < float64(height); y += step {
			for x := step / 2; x < float64(width); x += step {
				out = append(out, cluster{x: x, y: y})
			}
		}
	}
	if len(out) == 0 {
		out = append(out, cluster{x: float64(width) / 2, y: float64(height) / 2})
	}
	return out
}

// SLIC segments the image into approximately num superpixels. Compactness
// trades shape regularity (high) against color fidelity (low). The seed value
// only matters for the Poisson pattern. Assignment is row-parallel; results
// are identical across worker counts.
func SLIC(img *raster.Image, num int, compactness float64, pattern SeedPattern, seed int64, workers int, chunker *perf.Chunker) *LabelMap {
	width, height := img.Width, img.Height
	lp, ap, bp := labPlane(img)

	clusters := seeds(width, height, num, pattern, seed)
	step := math.Sqrt(float64(width*height) / float64(len(clusters)))
	if step < 1 {
		step = 1
	}
	if compactness <= 0 {
		compactness = 10
	}

	// Initialize cluster colors from their seed positions.
	for i := range clusters {
		x := int(clusters[i].x)
		y := int(clusters[i].y)
		if x >= width {
			x = width - 1
		}
		if y >= height {
			y = height - 1
		}
		j := y*width + x
		clusters[i].l = lp[j]
		clusters[i].a = ap[j]
		clusters[i].b = bp[j]
	}

	labels := make([]int, width*height)
	dists := make([]float64, width*height)

	// Normalizes the spatial term so compactness is comparable across sizes.
	invS2 := 1 / (step * step)
	m2 := compactness * compactness

	for iter := 0; iter < iterationBudget; iter++ {
		// Assignment: each pixel takes the best cluster among those whose
		// 2S x 2S window covers it. Workers own disjoint row bands, so the
		// result is identical across worker counts.
		perf.ParallelRows(height, width, workers, chunker, func(yLo, yHi int) {
			for y := yLo; y < yHi; y++ {
				for x := 0; x < width; x++ {
					i := y*width + x
					labels[i] = -1
					dists[i] = math.Inf(1)
				}
				for ci := range clusters {
					c := &clusters[ci]
					if float64(y) < c.y-2*step || float64(y) > c.y+2*step {
						continue
					}
					x0 := int(c.x - 2*step)
					x1 := int(c.x + 2*step)
					if x0 < 0 {
						x0 = 0
					}
					if x1 >= width {
						x1 = width - 1
					}
					for x := x0; x <= x1; x++ {
						i := y*width + x
						dl := lp[i] - c.l
						da := ap[i] - c.a
						db := bp[i] - c.b
						dc := dl*dl + da*da + db*db
						dx := float64(x) - c.x
						dy := float64(y) - c.y
						ds := dx*dx + dy*dy
						// colorful returns L in [0,1]; scale to the
						// conventional 0..100 Lab range so compactness values
						// carry over from the literature.
						d := dc*100*100 + m2*ds*invS2
						if d < dists[i] {
							dists[i] = d
							labels[i] = ci
						}
					}
				}
				// Unclaimed pixels (possible with sparse Poisson seeds) go to
				// the nearest cluster by position.
				for x := 0; x < width; x++ {
					i := y*width + x
					if labels[i] >= 0 {
						continue
					}
					best := math.Inf(1)
					for ci := range clusters {
						dx := float64(x) - clusters[ci].x
						dy := float64(y) - clusters[ci].y
						if d := dx*dx + dy*dy; d < best {
							best = d
							labels[i] = ci
						}
					}
				}
			}
		})

		// Update: recompute centroids.
		for ci := range clusters {
			c := &clusters[ci]
			c.n, c.sx, c.sy, c.sl, c.sa, c.sb = 0, 0, 0, 0, 0, 0
		}
		for i, ci := range labels {
			c := &clusters[ci]
			c.n++
			c.sx += float64(i % width)
			c.sy += float64(i / width)
			c.sl += lp[i]
			c.sa += ap[i]
			c.sb += bp[i]
		}
		for ci := range clusters {
			c := &clusters[ci]
			if c.n == 0 {
				continue
			}
			n := float64(c.n)
			c.x, c.y = c.sx/n, c.sy/n
			c.l, c.a, c.b = c.sl/n, c.sa/n, c.sb/n
		}
	}

	return &LabelMap{
		Width:  width,
		Height: height,
		Labels: labels,
		Count:  len(clusters),
	}
}
