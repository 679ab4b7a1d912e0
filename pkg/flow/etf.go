// Package flow implements the edge tangent flow stage: gradient analysis,
// iterative tangent smoothing, the flow-guided difference-of-Gaussians
// response, and the non-maximum-suppression / hysteresis steps that reduce it
// to a binary edge map.
package flow

import (
	"math"

	"github.com/robmcdonald5/vec2art-sub004/pkg/perf"
)

// Field holds per-pixel tangent vectors and gradient magnitudes. Tangents are
// unit length and defined modulo pi (a tangent and its negation describe the
// same undirected orientation); magnitudes are normalized to [0, 1].
type Field struct {
	Width  int
	Height int
	Tx     []float64
	Ty     []float64
	Mag    []float64
}

// GradientField computes Sobel gradients and returns the initial tangent
// field: tangents perpendicular to the gradient, magnitudes normalized.
func GradientField(gray []float64, width, height int) *Field {
	f := &Field{
		Width:  width,
		Height: height,
		Tx:     make([]float64, width*height),
		Ty:     make([]float64, width*height),
		Mag:    make([]float64, width*height),
	}

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if x >= width {
			x = width - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		return gray[y*width+x]
	}

	maxMag := 0.0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag := math.Hypot(gx, gy)
			i := y*width + x
			f.Mag[i] = mag
			if mag > maxMag {
				maxMag = mag
			}
			if mag > 0 {
				// Tangent is the gradient rotated 90 degrees.
				f.Tx[i] = -gy / mag
				f.Ty[i] = gx / mag
			}
		}
	}

	if maxMag > 0 {
		for i := range f.Mag {
			f.Mag[i] /= maxMag
		}
	}
	return f
}

// ETF smooths the tangent field by iteratively averaging each tangent with
// its neighbors, weighted by magnitude difference and direction coherency.
// This is what lets edge tracing follow coherent contours through noise
// instead of zig-zagging. Rows are processed in parallel; each iteration
// writes a fresh field, so readers always see the previous iteration's
// consistent state.
func ETF(f *Field, radius, iterations, workers int, chunker *perf.Chunker) *Field {
	if radius < 1 {
		radius = 1
	}
	cur := f
	for iter := 0; iter < iterations; iter++ {
		next := &Field{
			Width:  f.Width,
			Height: f.Height,
			Tx:     make([]float64, len(f.Tx)),
			Ty:     make([]float64, len(f.Ty)),
			Mag:    f.Mag,
		}
		perf.ParallelRows(f.Height, f.Width, workers, chunker, func(y0, y1 int) {
			etfRows(cur, next, radius, y0, y1)
		})
		cur = next
	}
	return cur
}

func etfRows(cur, next *Field, radius, y0, y1 int) {
	w, h := cur.Width, cur.Height
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			tx, ty := cur.Tx[i], cur.Ty[i]
			var sx, sy float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					j := ny*w + nx
					dot := tx*cur.Tx[j] + ty*cur.Ty[j]
					// Direction weight: aligned neighbors dominate.
					wd := math.Abs(dot)
					// Magnitude weight: stronger neighbors pull harder.
					wm := (1 + math.Tanh(cur.Mag[j]-cur.Mag[i])) / 2
					// Flip sign so opposing tangents reinforce (mod-pi
					// orientation).
					phi := 1.0
					if dot < 0 {
						phi = -1
					}
					sx += phi * cur.Tx[j] * wm * wd
					sy += phi * cur.Ty[j] * wm * wd
				}
			}
			m := math.Hypot(sx, sy)
			if m > 0 {
				next.Tx[i] = sx / m
				next.Ty[i] = sy / m
			} else {
				next.Tx[i] = tx
				next.Ty[i] = ty
			}
		}
	}
}
