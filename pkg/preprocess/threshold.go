// Package preprocess turns a raw raster into the maps the backends consume:
// binary foreground maps, denoised luminance planes, and background masks.
package preprocess

import (
	"math"
)

// OtsuThreshold computes the global threshold that minimizes intra-class
// variance over the luminance histogram. Input values are expected in
// [0, 255].
func OtsuThreshold(gray []float64) float64 {
	var hist [256]int
	for _, v := range gray {
		i := int(v)
		if i < 0 {
			i = 0
		}
		if i > 255 {
			i = 255
		}
		hist[i]++
	}

	total := len(gray)
	sum := 0.0
	for i, count := range hist {
		sum += float64(i) * float64(count)
	}

	sumB := 0.0
	wB := 0
	best := -1.0
	first, last := 0, 0
	for i, count := range hist {
		wB += count
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(count)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			first, last = i, i
		} else if between == best {
			last = i
		}
	}
	// Every empty bin between well-separated modes ties for the maximum; split
	// the flat stretch down the middle instead of hugging the dark mode.
	return float64(first+last) / 2
}

// AdaptiveThreshold produces a binary map by comparing each pixel against the
// mean of its window x window neighborhood minus bias. True marks foreground
// (darker than the local mean). A summed-area table keeps it O(n).
func AdaptiveThreshold(gray []float64, width, height, window int, bias float64) []bool {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	// Summed-area table with a 1-pixel zero border.
	sat := make([]float64, (width+1)*(height+1))
	for y := 0; y < height; y++ {
		rowSum := 0.0
		for x := 0; x < width; x++ {
			rowSum += gray[y*width+x]
			sat[(y+1)*(width+1)+(x+1)] = sat[y*(width+1)+(x+1)] + rowSum
		}
	}

	out := make([]bool, width*height)
	for y := 0; y < height; y++ {
		y0 := max(0, y-half)
		y1 := min(height-1, y+half)
		for x := 0; x < width; x++ {
			x0 := max(0, x-half)
			x1 := min(width-1, x+half)
			area := float64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := sat[(y1+1)*(width+1)+(x1+1)] -
				sat[y0*(width+1)+(x1+1)] -
				sat[(y1+1)*(width+1)+x0] +
				sat[y0*(width+1)+x0]
			mean := sum / area
			out[y*width+x] = gray[y*width+x] < mean-bias
		}
	}
	return out
}

// ApplyThreshold maps a continuous response to a binary foreground map.
// Values below the threshold are foreground, matching the dark-ink-on-light-
// paper convention used throughout the pipeline.
func ApplyThreshold(gray []float64, threshold float64) []bool {
	out := make([]bool, len(gray))
	for i, v := range gray {
		out[i] = v < threshold
	}
	return out
}

// ApplyResponseThreshold is the inverse convention: values at or above the
// threshold are kept. Used for edge-response maps where high means edge.
func ApplyResponseThreshold(resp []float64, threshold float64) []bool {
	out := make([]bool, len(resp))
	for i, v := range resp {
		out[i] = v >= threshold
	}
	return out
}

// Denoise applies a 3x3 median filter to the luminance plane, removing
// salt-and-pepper noise without blurring edges the way a box filter would.
func Denoise(gray []float64, width, height int) []float64 {
	out := make([]float64, len(gray))
	var window [9]float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					window[n] = gray[ny*width+nx]
					n++
				}
			}
			// Insertion sort; the window is at most 9 values.
			for i := 1; i < n; i++ {
				v := window[i]
				j := i - 1
				for j >= 0 && window[j] > v {
					window[j+1] = window[j]
					j--
				}
				window[j+1] = v
			}
			out[y*width+x] = window[n/2]
		}
	}
	return out
}

// GaussianBlur convolves the plane with a separable Gaussian kernel.
func GaussianBlur(gray []float64, width, height int, sigma float64) []float64 {
	if sigma <= 0 {
		out := make([]float64, len(gray))
		copy(out, gray)
		return out
	}
	radius := int(math.Ceil(sigma * 3))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	tmp := make([]float64, len(gray))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 {
					sx = 0
				}
				if sx >= width {
					sx = width - 1
				}
				acc += gray[y*width+sx] * kernel[k+radius]
			}
			tmp[y*width+x] = acc
		}
	}
	out := make([]float64, len(gray))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 {
					sy = 0
				}
				if sy >= height {
					sy = height - 1
				}
				acc += tmp[sy*width+x] * kernel[k+radius]
			}
			out[y*width+x] = acc
		}
	}
	return out
}
