package dots

import (
	"math/rand"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
	"github.com/robmcdonald5/vec2art-sub004/pkg/spatial"
)

// Dot is a single stipple: position in pixel coordinates, radius, and an
// opacity in (0, 1].
type Dot struct {
	X       float64
	Y       float64
	Radius  float64
	Opacity float64
}

// Options controls Poisson-disk sampling.
type Options struct {
	MinRadius      float64
	MaxRadius      float64
	Jitter         float64 // 0..1, positional jitter as a fraction of radius
	GradientSizing bool    // dense areas get dots near MinRadius
	Seed           int64
}

// PoissonSample places dots by dart throwing against a spatial grid. Density
// gates acceptance and, with GradientSizing, shrinks dots toward MinRadius in
// detailed areas. Pixels where background is true are never sampled. No two
// dot centers end up closer than the sum of their radii, so the gap is never
// under twice MinRadius; placement is deterministic under the seed.
func PoissonSample(density []float64, width, height int, background []bool, opt Options) []Dot {
	if opt.MinRadius <= 0 {
		opt.MinRadius = 0.5
	}
	if opt.MaxRadius < opt.MinRadius {
		opt.MaxRadius = opt.MinRadius
	}
	if opt.Jitter < 0 {
		opt.Jitter = 0
	}
	if opt.Jitter > 1 {
		opt.Jitter = 1
	}

	rng := rand.New(rand.NewSource(opt.Seed))
	grid := spatial.NewGrid(float64(width), float64(height),
		2*opt.MaxRadius*(1+opt.Jitter))

	// Enough attempts to saturate the image at the tightest spacing.
	attempts := int(float64(width*height) / (opt.MinRadius * opt.MinRadius))
	if attempts < 1000 {
		attempts = 1000
	}

	var out []Dot
	for i := 0; i < attempts; i++ {
		px := rng.Float64() * float64(width)
		py := rng.Float64() * float64(height)
		ix, iy := int(px), int(py)
		if ix >= width {
			ix = width - 1
		}
		if iy >= height {
			iy = height - 1
		}
		pi := iy*width + ix
		if background != nil && background[pi] {
			continue
		}
		d := density[pi]
		// Rejection sampling against the density field. The floor keeps flat
		// regions lightly stippled instead of empty.
		if rng.Float64() > 0.05+0.95*d {
			continue
		}

		r := (opt.MinRadius + opt.MaxRadius) / 2
		if opt.GradientSizing {
			r = opt.MaxRadius - d*(opt.MaxRadius-opt.MinRadius)
		}
		jitterMax := opt.Jitter * r

		// Spacing is checked against each neighbor's own radius. Stored
		// positions are final, so only the candidate's post-acceptance jitter
		// needs reserving. Grid indices align with out; Insert order matches
		// the appends below.
		p := geometry.Point{X: px, Y: py}
		tooClose := false
		for _, ni := range grid.Neighbors(p, r+opt.MaxRadius+jitterMax) {
			if p.Distance(grid.At(ni)) < r+out[ni].Radius+jitterMax {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		if jitterMax > 0 {
			p.X += (rng.Float64()*2 - 1) * jitterMax
			p.Y += (rng.Float64()*2 - 1) * jitterMax
			if p.X < 0 || p.X >= float64(width) || p.Y < 0 || p.Y >= float64(height) {
				continue
			}
		}
		grid.Insert(p)
		out = append(out, Dot{
			X:       p.X,
			Y:       p.Y,
			Radius:  r,
			Opacity: 0.3 + 0.7*d,
		})
	}
	return out
}
