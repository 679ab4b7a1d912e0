package flow

import (
	"math"

	"github.com/robmcdonald5/vec2art-sub004/pkg/perf"
)

func gaussian(x, sigma float64) float64 {
	return math.Exp(-x*x/(2*sigma*sigma)) / (math.Sqrt(2*math.Pi) * sigma)
}

func sample(gray []float64, width, height int, x, y float64) float64 {
	ix := int(math.Round(x))
	iy := int(math.Round(y))
	if ix < 0 {
		ix = 0
	}
	if ix >= width {
		ix = width - 1
	}
	if iy < 0 {
		iy = 0
	}
	if iy >= height {
		iy = height - 1
	}
	return gray[iy*width+ix]
}

// FDoG computes the flow-guided difference-of-Gaussians response. For each
// pixel a 1D DoG is evaluated along the gradient direction (perpendicular to
// the tangent), then the DoG values are integrated along the flow line with a
// second Gaussian. Filtering along the tangent field rather than image axes
// is what keeps responses coherent along curved contours. The returned map is
// non-negative, normalized to [0, 1]: higher means more edge-like.
func FDoG(gray []float64, f *Field, sigmaC, sigmaM, tau float64, workers int, chunker *perf.Chunker) []float64 {
	width, height := f.Width, f.Height
	if sigmaC <= 0 {
		sigmaC = 1.0
	}
	if sigmaM <= 0 {
		sigmaM = 3.0
	}
	sigmaS := 1.6 * sigmaC
	radiusT := int(math.Ceil(sigmaS * 3))
	radiusS := int(math.Ceil(sigmaM * 3))

	// Pass 1: DoG across the flow.
	dog := make([]float64, width*height)
	perf.ParallelRows(height, width, workers, chunker, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				// Gradient direction: tangent rotated -90 degrees.
				gx, gy := f.Ty[i], -f.Tx[i]
				if gx == 0 && gy == 0 {
					continue
				}
				var acc float64
				for t := -radiusT; t <= radiusT; t++ {
					v := sample(gray, width, height, float64(x)+gx*float64(t), float64(y)+gy*float64(t))
					w := gaussian(float64(t), sigmaC) - tau*gaussian(float64(t), sigmaS)
					acc += v * w
				}
				dog[i] = acc
			}
		}
	})

	// Pass 2: integrate the DoG along the flow line.
	resp := make([]float64, width*height)
	perf.ParallelRows(height, width, workers, chunker, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				var acc, wsum float64
				// Walk forward and backward along the tangent.
				for _, dir := range [2]float64{1, -1} {
					px, py := float64(x), float64(y)
					tx, ty := f.Tx[i]*dir, f.Ty[i]*dir
					for s := 0; s <= radiusS; s++ {
						if s > 0 && tx == 0 && ty == 0 {
							break
						}
						if dir < 0 && s == 0 {
							continue // center already counted
						}
						ix := int(math.Round(px))
						iy := int(math.Round(py))
						if ix < 0 || ix >= width || iy < 0 || iy >= height {
							break
						}
						j := iy*width + ix
						w := gaussian(float64(s), sigmaM)
						acc += dog[j] * w
						wsum += w
						// Follow the local tangent, keeping direction
						// continuous across the mod-pi ambiguity.
						ntx, nty := f.Tx[j], f.Ty[j]
						if ntx*tx+nty*ty < 0 {
							ntx, nty = -ntx, -nty
						}
						if ntx == 0 && nty == 0 {
							break
						}
						tx, ty = ntx, nty
						px += tx
						py += ty
					}
				}
				if wsum > 0 {
					acc /= wsum
				}
				// Negative filter response marks an edge; map it to a
				// positive strength in (0, 1).
				if acc < 0 {
					resp[i] = -math.Tanh(acc)
				}
			}
		}
	})

	// Normalize.
	maxR := 0.0
	for _, v := range resp {
		if v > maxR {
			maxR = v
		}
	}
	if maxR > 0 {
		for i := range resp {
			resp[i] /= maxR
		}
	}
	return resp
}

// NonMaxSuppress thins the response map by zeroing pixels that are not local
// maxima along their gradient direction.
func NonMaxSuppress(resp []float64, f *Field) []float64 {
	width, height := f.Width, f.Height
	out := make([]float64, len(resp))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			v := resp[i]
			if v == 0 {
				continue
			}
			gx, gy := f.Ty[i], -f.Tx[i]
			n1 := sample(resp, width, height, float64(x)+gx, float64(y)+gy)
			n2 := sample(resp, width, height, float64(x)-gx, float64(y)-gy)
			if v >= n1 && v >= n2 {
				out[i] = v
			}
		}
	}
	return out
}

// Hysteresis produces a binary edge map with two thresholds: pixels at or
// above hi seed edges, and connected pixels at or above lo extend them.
func Hysteresis(resp []float64, width, height int, lo, hi float64) []bool {
	out := make([]bool, len(resp))
	var stack []int

	for i, v := range resp {
		if v >= hi {
			out[i] = true
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if !out[j] && resp[j] >= lo {
					out[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

// DirectionalResponse measures edge strength along a fixed scan direction
// given in radians (0 is the primary left-to-right scan; pi/4 diagonal; pi
// reverse). It returns the per-pixel response and a mean strength score used
// to gate whether a directional pass contributes to the merge.
func DirectionalResponse(gray []float64, width, height int, angle float64) ([]float64, float64) {
	dx := math.Cos(angle)
	dy := math.Sin(angle)

	resp := make([]float64, width*height)
	total := 0.0
	maxR := 0.0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fwd := sample(gray, width, height, float64(x)+dx, float64(y)+dy)
			back := sample(gray, width, height, float64(x)-dx, float64(y)-dy)
			v := math.Abs(fwd - back)
			resp[y*width+x] = v
			total += v
			if v > maxR {
				maxR = v
			}
		}
	}
	if maxR > 0 {
		for i := range resp {
			resp[i] /= maxR
		}
		total /= maxR * float64(len(resp))
	}
	return resp, total
}
