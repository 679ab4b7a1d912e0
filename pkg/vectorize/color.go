package vectorize

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
	"github.com/robmcdonald5/vec2art-sub004/pkg/superpixel"
)

// gradientDeltaE is the Lab distance between path endpoint colors above which
// a linear gradient is attached instead of a flat color.
const gradientDeltaE = 0.25

func rgba(r, g, b byte) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// CSSColor formats a color as an SVG hex value.
func CSSColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func pixelColorful(img *raster.Image, x, y int) colorful.Color {
	if x < 0 {
		x = 0
	}
	if x >= img.Width {
		x = img.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= img.Height {
		y = img.Height - 1
	}
	r, g, b, _ := img.RGBAAt(x, y)
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// labAverage averages colors in Lab space, where the mean tracks perceived
// color better than an RGB mean.
func labAverage(colors []colorful.Color) colorful.Color {
	if len(colors) == 0 {
		return colorful.Color{}
	}
	var l, a, b float64
	for _, c := range colors {
		cl, ca, cb := c.Lab()
		l += cl
		a += ca
		b += cb
	}
	n := float64(len(colors))
	return colorful.Lab(l/n, a/n, b/n)
}

// regionColor is the Lab-average color of one superpixel region.
func regionColor(img *raster.Image, m *superpixel.LabelMap, label int) color.RGBA {
	var colors []colorful.Color
	for i, lab := range m.Labels {
		if lab == label {
			colors = append(colors, pixelColorful(img, i%m.Width, i/m.Width))
		}
	}
	return toRGBA(labAverage(colors))
}

// buildPalette samples the image on a coarse grid and keeps colors that are
// perceptually distinct, for snapping path colors to the image's palette.
func buildPalette(img *raster.Image) []colorful.Color {
	const cells = 8
	const distinct = 0.08
	var palette []colorful.Color
	for gy := 0; gy < cells; gy++ {
		for gx := 0; gx < cells; gx++ {
			c := pixelColorful(img, gx*img.Width/cells+img.Width/(2*cells),
				gy*img.Height/cells+img.Height/(2*cells))
			fresh := true
			for _, p := range palette {
				if p.DistanceLab(c) < distinct {
					fresh = false
					break
				}
			}
			if fresh {
				palette = append(palette, c)
			}
		}
	}
	return palette
}

// nearestPaletteColor snaps c to the closest palette entry by Lab distance.
func nearestPaletteColor(palette []colorful.Color, c colorful.Color) colorful.Color {
	if len(palette) == 0 {
		return c
	}
	best := palette[0]
	bestD := best.DistanceLab(c)
	for _, p := range palette[1:] {
		if d := p.DistanceLab(c); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// pathSamples collects the image color under each polyline point.
func pathSamples(img *raster.Image, line geometry.Polyline) []colorful.Color {
	out := make([]colorful.Color, 0, len(line))
	for _, p := range line {
		out = append(out, pixelColorful(img, int(p.X), int(p.Y)))
	}
	return out
}

// annotateColors assigns each stroke primitive its representative color and
// attaches a linear gradient when the endpoint colors diverge perceptibly.
// Fill and dot primitives already carry colors from their backends.
func annotateColors(img *raster.Image, prims []Primitive) {
	palette := buildPalette(img)
	for i := range prims {
		p := &prims[i]
		if p.Kind != KindPolyline || len(p.Points) == 0 {
			continue
		}
		samples := pathSamples(img, p.Points)
		avg := labAverage(samples)
		p.Color = toRGBA(nearestPaletteColor(palette, avg))

		a := samples[0]
		b := samples[len(samples)-1]
		if a.DistanceLab(b) > gradientDeltaE {
			start := p.Points[0]
			end := p.Points[len(p.Points)-1]
			p.Gradient = &Gradient{
				From: toRGBA(a),
				To:   toRGBA(b),
				X1:   start.X, Y1: start.Y,
				X2: end.X, Y2: end.Y,
			}
		}
	}
}
