// Package dots implements the stippling backend: a content-adaptive density
// field sampled with Poisson-disk spacing, so detailed areas get dense small
// dots and flat areas stay sparse.
package dots

import (
	"math"

	"github.com/robmcdonald5/vec2art-sub004/pkg/flow"
)

// DensityMap derives a per-pixel placement density in [0, 1] from local
// luminance variance and gradient magnitude. Both cues respond to detail;
// variance also fires inside textured regions where gradients cancel out.
func DensityMap(gray []float64, width, height int) []float64 {
	n := width * height
	density := make([]float64, n)
	if n == 0 {
		return density
	}

	grad := flow.GradientField(gray, width, height)

	// Local variance over a 5x5 window via summed-area tables of v and v^2.
	sum := make([]float64, (width+1)*(height+1))
	sum2 := make([]float64, (width+1)*(height+1))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := gray[y*width+x]
			i := (y+1)*(width+1) + (x + 1)
			sum[i] = v + sum[i-1] + sum[i-(width+1)] - sum[i-(width+1)-1]
			sum2[i] = v*v + sum2[i-1] + sum2[i-(width+1)] - sum2[i-(width+1)-1]
		}
	}
	window := func(t []float64, x0, y0, x1, y1 int) float64 {
		return t[y1*(width+1)+x1] - t[y0*(width+1)+x1] -
			t[y1*(width+1)+x0] + t[y0*(width+1)+x0]
	}

	const half = 2
	maxVar := 0.0
	variance := make([]float64, n)
	for y := 0; y < height; y++ {
		y0, y1 := y-half, y+half+1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > height {
			y1 = height
		}
		for x := 0; x < width; x++ {
			x0, x1 := x-half, x+half+1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > width {
				x1 = width
			}
			area := float64((x1 - x0) * (y1 - y0))
			mean := window(sum, x0, y0, x1, y1) / area
			v := window(sum2, x0, y0, x1, y1)/area - mean*mean
			if v < 0 {
				v = 0
			}
			variance[y*width+x] = v
			if v > maxVar {
				maxVar = v
			}
		}
	}
	if maxVar > 0 {
		for i := range variance {
			variance[i] /= maxVar
		}
	}

	for i := range density {
		d := 0.5*math.Sqrt(variance[i]) + 0.5*grad.Mag[i]
		if d > 1 {
			d = 1
		}
		density[i] = d
	}
	return density
}
