package preprocess

import (
	"errors"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
)

// Algorithm selects the background-detection policy.
type Algorithm int

const (
	Otsu Algorithm = iota
	Adaptive
	Auto
)

func (a Algorithm) String() string {
	switch a {
	case Otsu:
		return "otsu"
	case Adaptive:
		return "adaptive"
	case Auto:
		return "auto"
	}
	return "unknown"
}

// ErrBackgroundCoversImage is the diagnostic produced when the estimated
// background covers (nearly) the whole image. Removal is skipped in that case
// so a degenerate input is not erased entirely.
var ErrBackgroundCoversImage = errors.New("preprocess: background covers entire image")

// degenerateCoverage is the background fraction above which removal is
// considered degenerate and skipped.
const degenerateCoverage = 0.95

// Options controls background removal.
type Options struct {
	Algorithm Algorithm
	// Strength scales how aggressively adaptive thresholding classifies
	// background, in [0, 1].
	Strength float64
	// Tolerance is the Lab distance within which a pixel counts as background
	// for the auto policy. A tolerance of 0 picks a reasonable default.
	Tolerance float64
	// Window is the adaptive threshold neighborhood size (odd, >= 3).
	Window int
}

// Result is the outcome of background removal.
type Result struct {
	// Image has background pixels cleared to opaque white. It is a new buffer;
	// the input image is never mutated.
	Image *raster.Image
	// Mask is true where a pixel was classified as background.
	Mask []bool
	// Coverage is the fraction of pixels classified as background.
	Coverage float64
	// Diagnostic is non-nil when removal was skipped (currently only
	// ErrBackgroundCoversImage). The returned Image is then the unmodified
	// input and Mask is all false.
	Diagnostic error
}

func pixelLab(img *raster.Image, x, y int) colorful.Color {
	r, g, b, _ := img.RGBAAt(x, y)
	return colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
}

// estimateBackgroundLab samples the image border and returns the average
// border color in Lab space. Borders are a good proxy for background in
// scanned and photographed artwork.
func estimateBackgroundLab(img *raster.Image) (l, a, b float64) {
	var sl, sa, sb float64
	n := 0
	sample := func(x, y int) {
		cl, ca, cb := pixelLab(img, x, y).Lab()
		sl += cl
		sa += ca
		sb += cb
		n++
	}
	for x := 0; x < img.Width; x++ {
		sample(x, 0)
		sample(x, img.Height-1)
	}
	for y := 1; y < img.Height-1; y++ {
		sample(0, y)
		sample(img.Width-1, y)
	}
	return sl / float64(n), sa / float64(n), sb / float64(n)
}

// RemoveBackground classifies and clears background pixels per the selected
// policy. See Result for the degenerate-input behavior.
func RemoveBackground(img *raster.Image, opts Options) Result {
	mask := make([]bool, img.Width*img.Height)

	switch opts.Algorithm {
	case Auto:
		tolerance := opts.Tolerance
		if tolerance <= 0 {
			tolerance = 0.12
		}
		bl, ba, bb := estimateBackgroundLab(img)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				l, a, b := pixelLab(img, x, y).Lab()
				dl, da, db := l-bl, a-ba, b-bb
				if dl*dl+da*da+db*db <= tolerance*tolerance {
					mask[y*img.Width+x] = true
				}
			}
		}

	case Adaptive:
		window := opts.Window
		if window == 0 {
			window = 15
		}
		bias := 10 * (1 - clamp01(opts.Strength))
		gray := img.Gray()
		fg := AdaptiveThreshold(gray, img.Width, img.Height, window, bias)
		for i, isFG := range fg {
			mask[i] = !isFG
		}

	default: // Otsu
		gray := img.Gray()
		t := OtsuThreshold(gray)
		for i, v := range gray {
			mask[i] = v > t
		}
	}

	covered := 0
	for _, bg := range mask {
		if bg {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(mask))

	if coverage >= degenerateCoverage {
		// Fall back to no removal rather than erasing the whole image.
		return Result{
			Image:      img,
			Mask:       make([]bool, len(mask)),
			Coverage:   coverage,
			Diagnostic: ErrBackgroundCoversImage,
		}
	}

	out := img.Clone()
	for i, bg := range mask {
		if bg {
			j := i * 4
			out.Pix[j] = 255
			out.Pix[j+1] = 255
			out.Pix[j+2] = 255
			out.Pix[j+3] = 255
		}
	}
	return Result{Image: out, Mask: mask, Coverage: coverage}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
