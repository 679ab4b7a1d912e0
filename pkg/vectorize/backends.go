package vectorize

import (
	"math"

	"github.com/robmcdonald5/vec2art-sub004/pkg/dots"
	"github.com/robmcdonald5/vec2art-sub004/pkg/flow"
	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
	"github.com/robmcdonald5/vec2art-sub004/pkg/preprocess"
	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
	"github.com/robmcdonald5/vec2art-sub004/pkg/skeleton"
	"github.com/robmcdonald5/vec2art-sub004/pkg/superpixel"
	"github.com/robmcdonald5/vec2art-sub004/pkg/trace"
)

const (
	etfRadius     = 4
	etfIterations = 3
	fdogSigmaC    = 1.0
	fdogSigmaM    = 3.0
	fdogTau       = 0.90
	// Edge skeletons get a light fixed spur prune; MinBranchLength is a
	// centerline knob.
	edgeSpurLength = 3
)

// simplify applies the configured simplifier to one polyline.
func (c Config) simplify(line geometry.Polyline) geometry.Polyline {
	if c.Simplify.Algorithm == Visvalingam {
		return line.SimplifyVisvalingam(c.Simplify.Epsilon)
	}
	return line.SimplifyRDP(c.Simplify.Epsilon)
}

// resamplePitch is the point spacing, in pixels, imposed on raw chains before
// simplification. Pixel chains mix straight runs with dense stair-step
// clusters; an even spacing keeps the simplifier and fitter from weighting
// the clusters.
const resamplePitch = 1.0

// strokesFromPolylines turns raw pixel chains into polyline primitives:
// resample, simplify, optionally fit curves.
func strokesFromPolylines(lines []geometry.Polyline, cfg Config, width float64) []Primitive {
	var out []Primitive
	for _, line := range lines {
		line = line.Resample(resamplePitch)
		if len(line) < 2 {
			continue
		}
		closed := line.Closed()
		simplified := cfg.simplify(line)
		if len(simplified) < 2 {
			continue
		}
		p := Primitive{
			Kind:   KindPolyline,
			Points: simplified,
			Closed: closed,
			Width:  width,
		}
		if cfg.Curve.Enabled {
			p.Curves = trace.FitCurves(simplified, cfg.Curve.MaxError)
		}
		out = append(out, p)
	}
	return out
}

// maskToStrokes thins a binary map to a 1-px skeleton and extracts its chains
// as polylines.
func maskToStrokes(mask []bool, width, height int, cfg Config, spur int, strokeWidth float64) []Primitive {
	skel := skeleton.ZhangSuen(mask, width, height)
	g := skeleton.FromMask(skel, width, height)
	g.Prune(spur)
	g.JoinChains()
	return strokesFromPolylines(g.Polylines(), cfg, strokeWidth)
}

func clearBackground(mask, background []bool) {
	if background == nil {
		return
	}
	for i := range mask {
		if background[i] {
			mask[i] = false
		}
	}
}

// edgePass runs the flow-guided edge pipeline at one detail level.
func (ec *execContext) edgePass(gray []float64, width, height int, cfg Config, detail float64, background []bool) ([]Primitive, int) {
	defer ec.timer("edge pass")()

	blurred := preprocess.GaussianBlur(gray, width, height, 1.0)
	f := flow.GradientField(blurred, width, height)
	f = flow.ETF(f, etfRadius, etfIterations, ec.workers, ec.chunker)
	resp := flow.FDoG(blurred, f, fdogSigmaC, fdogSigmaM, fdogTau, ec.workers, ec.chunker)
	nms := flow.NonMaxSuppress(resp, f)

	// Higher detail lowers the thresholds, admitting weaker edges.
	hi := 0.40 - 0.30*detail
	lo := hi * 0.4
	edges := flow.Hysteresis(nms, width, height, lo, hi)
	clearBackground(edges, background)
	if cfg.MinRegionArea > 0 {
		edges = trace.RemoveSpeckles(edges, width, height, cfg.MinRegionArea, ec.ints)
	}
	return maskToStrokes(edges, width, height, cfg, edgeSpurLength, 1.0), 0
}

// directionalPass extracts edges along a fixed scan direction. It returns nil
// primitives when the direction's mean strength is below the gate.
func (ec *execContext) directionalPass(gray []float64, width, height int, cfg Config, detail, angle float64, background []bool) ([]Primitive, int, bool) {
	defer ec.timer("directional pass")()

	resp, score := flow.DirectionalResponse(gray, width, height, angle)
	if score < cfg.DirectionalStrengthThreshold {
		return nil, 0, false
	}
	thr := 0.50 - 0.25*detail
	edges := preprocess.ApplyResponseThreshold(resp, thr)
	clearBackground(edges, background)
	if cfg.MinRegionArea > 0 {
		edges = trace.RemoveSpeckles(edges, width, height, cfg.MinRegionArea, ec.ints)
	}
	return maskToStrokes(edges, width, height, cfg, edgeSpurLength, 1.0), 0, true
}

// binarize produces the foreground map for the centerline backend, honoring
// the configured threshold policy. Dark pixels are foreground.
func binarize(cfg Config, gray []float64, width, height int) []bool {
	if cfg.Background.Algorithm == preprocess.Adaptive {
		window := cfg.Background.Window
		if window < 3 {
			window = 15
		}
		bias := 0.02 + 0.08*cfg.Background.Strength
		return preprocess.AdaptiveThreshold(gray, width, height, window, bias)
	}
	return preprocess.ApplyThreshold(gray, preprocess.OtsuThreshold(gray))
}

// centerlinePass extracts skeletons of the thresholded foreground.
func (ec *execContext) centerlinePass(gray []float64, width, height int, cfg Config, detail float64, background []bool) ([]Primitive, int) {
	defer ec.timer("centerline pass")()

	// Median filtering before thresholding keeps salt noise out of the
	// skeleton, where a single stray pixel grows a whole spur.
	binary := binarize(cfg, preprocess.Denoise(gray, width, height), width, height)
	clearBackground(binary, background)
	if cfg.MinRegionArea > 0 {
		binary = trace.RemoveSpeckles(binary, width, height, cfg.MinRegionArea, ec.ints)
	}
	minBranch := cfg.MinBranchLength
	if minBranch < 1 {
		minBranch = 1
	}
	// Coarse detail prunes more aggressively.
	minBranch = int(float64(minBranch) * (1.5 - detail))
	g := skeleton.Extract(binary, width, height, cfg.Quality, minBranch)
	g.JoinChains()
	return strokesFromPolylines(g.Polylines(), cfg, 1.5), 0
}

// superpixelPass segments the image and emits one fill per region, holes
// carried as extra rings under the even-odd rule.
func (ec *execContext) superpixelPass(img *raster.Image, cfg Config, background []bool) ([]Primitive, int) {
	defer ec.timer("superpixel pass")()

	width, height := img.Width, img.Height
	m := superpixel.SLIC(img, cfg.NumSuperpixels, cfg.Compactness, cfg.SeedPattern,
		cfg.Seed, ec.workers, ec.chunker)
	m.ConnectedRegions()

	// Absorb islands smaller than a quarter of the nominal region size, then
	// enforce the requested budget.
	nominal := width * height / cfg.NumSuperpixels
	minSize := nominal / 4
	if minSize < cfg.MinRegionArea {
		minSize = cfg.MinRegionArea
	}
	m.MergeSmallRegions(minSize)
	m.LimitRegions(cfg.NumSuperpixels)

	bgFrac := backgroundFractions(m, background)
	regions, skipped := m.Boundaries(ec.ints)
	var out []Primitive
	for label, contours := range regions {
		// Regions that are mostly background are not worth a fill.
		if bgFrac != nil && bgFrac[label] > 0.8 {
			continue
		}

		var rings []geometry.Polyline
		var outer geometry.Polyline
		for _, c := range contours {
			pts := closeRing(cfg.simplify(closeRing(c.Points)))
			if len(pts) < 4 {
				continue
			}
			if c.Hole {
				rings = append(rings, pts)
			} else if outer == nil {
				outer = pts
			} else {
				rings = append(rings, pts)
			}
		}
		if outer == nil {
			skipped++
			continue
		}
		out = append(out, Primitive{
			Kind:    KindFill,
			Rings:   append([]geometry.Polyline{outer}, rings...),
			EvenOdd: len(rings) > 0,
			Area:    outer.Area(),
			Color:   regionColor(img, m, label),
		})
	}
	return out, skipped
}

// backgroundFractions returns, per region label, the fraction of the region's
// pixels classified as background. Nil when there is no background mask.
func backgroundFractions(m *superpixel.LabelMap, background []bool) []float64 {
	if background == nil {
		return nil
	}
	total := make([]int, m.Count)
	bg := make([]int, m.Count)
	for i, lab := range m.Labels {
		if lab < 0 || lab >= m.Count {
			continue
		}
		total[lab]++
		if background[i] {
			bg[lab]++
		}
	}
	out := make([]float64, m.Count)
	for i := range out {
		if total[i] > 0 {
			out[i] = float64(bg[i]) / float64(total[i])
		}
	}
	return out
}

// closeRing repeats the first point at the end when the ring is open.
func closeRing(pts geometry.Polyline) geometry.Polyline {
	if len(pts) >= 3 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return pts
}

// dotPass stipples the foreground with Poisson-disk placed dots.
func (ec *execContext) dotPass(img *raster.Image, gray []float64, cfg Config, background []bool) ([]Primitive, int) {
	defer ec.timer("dot pass")()

	width, height := img.Width, img.Height
	density := dots.DensityMap(gray, width, height)
	placed := dots.PoissonSample(density, width, height, background, dots.Options{
		MinRadius:      cfg.DotMinRadius,
		MaxRadius:      cfg.DotMaxRadius,
		Jitter:         cfg.DotJitter,
		GradientSizing: cfg.DotGradientSizing,
		Seed:           cfg.Seed,
	})

	out := make([]Primitive, 0, len(placed))
	for _, d := range placed {
		x, y := int(d.X), int(d.Y)
		if x >= width {
			x = width - 1
		}
		if y >= height {
			y = height - 1
		}
		r, g, b, _ := img.RGBAAt(x, y)
		out = append(out, Primitive{
			Kind:    KindDot,
			X:       d.X,
			Y:       d.Y,
			Radius:  d.Radius,
			Opacity: d.Opacity,
			Color:   rgba(r, g, b),
		})
	}
	return out, 0
}

// detailLevels spreads pass detail values from conservative to aggressive.
// A single pass runs at the configured detail directly.
func detailLevels(cfg Config) []float64 {
	if !cfg.Multipass || cfg.PassCount <= 1 {
		return []float64{cfg.Detail}
	}
	lo := cfg.Detail * 0.4
	levels := make([]float64, cfg.PassCount)
	for i := range levels {
		t := float64(i) / float64(cfg.PassCount-1)
		levels[i] = lo + t*(cfg.Detail-lo)
	}
	return levels
}

// noiseLength is the stroke arc length below which an uncorroborated
// aggressive-pass primitive counts as noise in multipass mode.
func noiseLength(width, height int) float64 {
	d := math.Hypot(float64(width), float64(height))
	return d * 0.02
}
