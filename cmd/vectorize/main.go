package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robmcdonald5/vec2art-sub004/pkg/perf"
	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
	"github.com/robmcdonald5/vec2art-sub004/pkg/svgpath"
	"github.com/robmcdonald5/vec2art-sub004/pkg/vectorize"
)

func main() {
	backend := flag.String("backend", "edge", "feature backend: edge, centerline, superpixel, dots")
	detail := flag.Float64("detail", 0.5, "detail level, 0 (coarse) to 1 (fine)")
	multipass := flag.Bool("multipass", false, "run conservative-to-aggressive detail passes and merge")
	passes := flag.Int("passes", 2, "number of detail levels in multipass mode")
	removeBG := flag.Bool("remove-background", false, "detect and exclude the background before tracing")
	epsilon := flag.Float64("epsilon", 1.0, "simplification tolerance in pixels")
	curves := flag.Bool("curves", true, "fit cubic Bezier curves to simplified paths")
	superpixels := flag.Int("superpixels", 150, "region count for the superpixel backend")
	budget := flag.Duration("budget", 0, "wall-clock limit, 0 for none")
	workers := flag.Int("workers", 0, "worker goroutines, 0 for GOMAXPROCS")
	seed := flag.Int64("seed", 1, "seed for randomized placement")
	out := flag.String("o", "", "output SVG file, default stdout")
	verbose := flag.Bool("v", false, "debug logging")
	profile := flag.Bool("profile", false, "print per-stage timings to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] image\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	img, err := loadImage(flag.Arg(0))
	if err != nil {
		log.Fatalf("load %s: %s", flag.Arg(0), err)
	}

	cfg := vectorize.DefaultConfig()
	cfg.Backend, err = vectorize.ParseBackend(*backend)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Detail = *detail
	cfg.Multipass = *multipass
	cfg.PassCount = *passes
	cfg.Background.Enabled = *removeBG
	cfg.Simplify.Epsilon = *epsilon
	cfg.Curve.Enabled = *curves
	cfg.NumSuperpixels = *superpixels
	cfg.MaxProcessingTime = *budget
	cfg.Workers = *workers
	cfg.Seed = *seed

	opts := []vectorize.Option{vectorize.WithLogger(log)}
	var prof *perf.Profiler
	if *profile {
		prof = perf.NewProfiler()
		opts = append(opts, vectorize.WithProfiler(prof))
	}

	start := time.Now()
	res, err := vectorize.Vectorize(img, cfg, opts...)
	if err != nil {
		log.Fatal(err)
	}
	for _, d := range res.Diagnostics {
		log.Warn(d)
	}
	if res.Truncated {
		log.Warnf("budget exceeded after %s, output is partial", res.Stats.Duration)
	}
	if prof != nil {
		fmt.Fprint(os.Stderr, prof.Report())
	}
	log.Debugf("%d primitives in %s", len(res.Primitives), time.Since(start))

	doc := buildDocument(img.Width, img.Height, res.Primitives)
	w := os.Stdout
	if *out != "" {
		w, err = os.Create(*out)
		if err != nil {
			log.Fatalf("create %s: %s", *out, err)
		}
		defer w.Close()
	}
	if _, err := doc.WriteTo(w); err != nil {
		log.Fatalf("write svg: %s", err)
	}
}

func loadImage(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return raster.FromImage(decoded)
}

// buildDocument serializes primitives in their emission order: fills as
// even-odd paths, strokes as polylines or fitted curves, dots as circles.
func buildDocument(width, height int, prims []vectorize.Primitive) *svgpath.Document {
	doc := svgpath.NewDocument(width, height)
	for _, p := range prims {
		switch p.Kind {
		case vectorize.KindFill:
			subs := make([]*svgpath.SubPath, 0, len(p.Rings))
			for _, ring := range p.Rings {
				subs = append(subs, svgpath.FromPolyline(ring))
			}
			doc.AddPath(svgpath.ToString(subs), svgpath.PathStyle{
				Fill:    vectorize.CSSColor(p.Color),
				EvenOdd: p.EvenOdd,
			})

		case vectorize.KindPolyline:
			var sp *svgpath.SubPath
			if len(p.Curves) > 0 {
				sp = svgpath.FromCurves(p.Curves, p.Closed)
			} else {
				sp = svgpath.FromPolyline(p.Points)
			}
			stroke := vectorize.CSSColor(p.Color)
			if g := p.Gradient; g != nil {
				stroke = doc.AddLinearGradient(g.X1, g.Y1, g.X2, g.Y2,
					vectorize.CSSColor(g.From), vectorize.CSSColor(g.To))
			}
			doc.AddPath(svgpath.ToString([]*svgpath.SubPath{sp}), svgpath.PathStyle{
				Stroke:      stroke,
				StrokeWidth: p.Width,
			})

		case vectorize.KindDot:
			doc.AddCircle(p.X, p.Y, p.Radius, vectorize.CSSColor(p.Color), p.Opacity)
		}
	}
	return doc
}
