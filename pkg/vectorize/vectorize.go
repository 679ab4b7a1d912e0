package vectorize

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robmcdonald5/vec2art-sub004/pkg/preprocess"
	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
)

// Vectorize converts a raster image into an ordered sequence of vector
// primitives. Configuration and malformed-input errors are returned as hard
// failures; tracing and backend-local failures are absorbed into
// Result.Skipped; exceeding the wall-clock budget yields the best partial
// result with Truncated set. Single-threaded runs are byte-deterministic for
// a given image, configuration, and seed.
func Vectorize(img *raster.Image, cfg Config, opts ...Option) (*Result, error) {
	start := time.Now()
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: nil or empty image", raster.ErrBadDimensions)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ec := newExecContext(cfg, opts)
	res := &Result{}
	overBudget := func() bool {
		return cfg.MaxProcessingTime > 0 && time.Since(start) > cfg.MaxProcessingTime
	}

	log := ec.log.WithFields(logrus.Fields{
		"backend": cfg.Backend.String(),
		"detail":  cfg.Detail,
		"size":    fmt.Sprintf("%dx%d", img.Width, img.Height),
	})
	log.Debug("vectorize start")

	// Preprocessing.
	stop := ec.timer("preprocess")
	work := img
	var background []bool
	if cfg.Background.Enabled {
		pr := preprocess.RemoveBackground(img, preprocess.Options{
			Algorithm: cfg.Background.Algorithm,
			Strength:  cfg.Background.Strength,
			Tolerance: cfg.Background.Tolerance,
			Window:    cfg.Background.Window,
		})
		work = pr.Image
		background = pr.Mask
		if pr.Diagnostic != nil {
			res.Diagnostics = append(res.Diagnostics, pr.Diagnostic.Error())
			log.WithField("coverage", pr.Coverage).Warn(pr.Diagnostic.Error())
		}
	}
	gray := work.GrayInto(ec.buffers.Acquire(img.Width * img.Height))
	defer ec.buffers.Release(gray)
	stop()
	ec.prof.Snapshot("preprocess")
	ec.report("preprocess", 0.1)

	var prims []Primitive
	switch cfg.Backend {
	case SuperpixelBackend:
		var skipped int
		prims, skipped = ec.superpixelPass(work, cfg, background)
		res.Skipped += skipped
		res.Stats.Passes = 1
		ec.report("superpixel", 0.8)

	case DotBackend:
		var skipped int
		prims, skipped = ec.dotPass(work, gray, cfg, background)
		res.Skipped += skipped
		res.Stats.Passes = 1
		ec.report("dots", 0.8)

	default:
		prims = ec.strokePasses(work, gray, cfg, background, res, overBudget)
	}

	// Color annotation samples the original image, not the background-cleared
	// working copy.
	stop = ec.timer("color")
	annotateColors(img, prims)
	stop()
	ec.report("color", 0.95)

	sortPrimitives(prims)
	res.Primitives = prims
	res.Stats.Duration = time.Since(start)
	ec.prof.Count("primitives", int64(len(res.Primitives)))
	ec.prof.Count("skipped", int64(res.Skipped))
	ec.prof.Snapshot("done")
	if ec.prof != nil {
		res.Stats.Report = ec.prof.Report()
		log.Debug(res.Stats.Report)
	}
	log.WithFields(logrus.Fields{
		"primitives": len(res.Primitives),
		"skipped":    res.Skipped,
		"truncated":  res.Truncated,
		"duration":   res.Stats.Duration,
	}).Info("vectorize done")
	ec.report("done", 1.0)
	return res, nil
}

// strokePasses runs the edge or centerline backend across the configured
// detail levels and directional variants. In multipass mode the most
// aggressive pass is the base set and earlier conservative passes act as
// corroboration: an aggressive primitive too short to stand on its own is
// kept only when a conservative pass found it too. The merged count can
// therefore never exceed the aggressive pass alone.
func (ec *execContext) strokePasses(img *raster.Image, gray []float64, cfg Config, background []bool, res *Result, overBudget func() bool) []Primitive {
	width, height := img.Width, img.Height
	levels := detailLevels(cfg)

	runPass := func(detail float64) ([]Primitive, int) {
		if cfg.Backend == CenterlineBackend {
			return ec.centerlinePass(gray, width, height, cfg, detail, background)
		}
		return ec.edgePass(gray, width, height, cfg, detail, background)
	}

	var passes [][]Primitive
	for i, detail := range levels {
		if overBudget() {
			res.Truncated = true
			ec.log.WithField("pass", i+1).Warn("processing budget exceeded, returning partial result")
			break
		}
		prims, skipped := runPass(detail)
		res.Skipped += skipped
		passes = append(passes, prims)
		res.Stats.Passes++
		ec.report(fmt.Sprintf("pass %d/%d", i+1, len(levels)),
			0.1+0.7*float64(i+1)/float64(len(levels)))
	}
	if len(passes) == 0 {
		return nil
	}

	base := passes[len(passes)-1]
	var out []Primitive
	final := newMerger(width, height, cfg.MergeTolerance)

	if len(passes) > 1 {
		corroboration := newMerger(width, height, cfg.MergeTolerance)
		for _, pass := range passes[:len(passes)-1] {
			for _, p := range pass {
				corroboration.admit(p)
			}
		}
		minLen := noiseLength(width, height)
		for _, p := range base {
			if p.Points.Length() < minLen && !corroboration.duplicate(p) {
				continue
			}
			out = append(out, p)
			final.admit(p)
		}
	} else {
		out = base
		for _, p := range base {
			final.admit(p)
		}
	}

	// Directional variants merge after the primary passes; near-duplicates of
	// anything already admitted are dropped.
	type directional struct {
		name  string
		angle float64
		run   bool
	}
	for _, d := range []directional{
		{"reverse pass", math.Pi, cfg.ReversePass},
		{"diagonal pass", math.Pi / 4, cfg.DiagonalPass},
	} {
		if !d.run {
			continue
		}
		if overBudget() {
			res.Truncated = true
			break
		}
		prims, skipped, strong := ec.directionalPass(gray, width, height, cfg, cfg.Detail, d.angle, background)
		res.Skipped += skipped
		if !strong {
			ec.log.WithField("stage", d.name).Debug("directional strength below threshold, pass discarded")
			continue
		}
		for _, p := range prims {
			if final.duplicate(p) {
				continue
			}
			out = append(out, p)
			final.admit(p)
		}
		res.Stats.Passes++
		ec.report(d.name, 0.85)
	}
	return out
}

// sortPrimitives fixes the emission order: fills first, larger areas before
// smaller so small shapes draw on top, then strokes, then dots, each group
// keeping its generation order.
func sortPrimitives(prims []Primitive) {
	rank := func(k Kind) int {
		switch k {
		case KindFill:
			return 0
		case KindPolyline:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(prims, func(i, j int) bool {
		ri, rj := rank(prims[i].Kind), rank(prims[j].Kind)
		if ri != rj {
			return ri < rj
		}
		if prims[i].Kind == KindFill {
			return prims[i].Area > prims[j].Area
		}
		return false
	})
}
