// Package svgpath builds SVG path data strings from geometry primitives and
// writes minimal SVG documents. It serializes only the command subset the
// vectorizer emits: MoveTo, LineTo, CurveTo, ClosePath.
package svgpath

import (
	"math"
	"strconv"
	"strings"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

type Command string

const (
	ClosePath Command = "Z"
	LineTo    Command = "L"
	CurveTo   Command = "C"
)

type DrawTo struct {
	Command Command
	X, Y    float64
	X1, Y1  float64
	X2, Y2  float64
}

// SubPath starts at (X, Y) and applies its DrawTo commands in order.
type SubPath struct {
	X, Y   float64
	DrawTo []*DrawTo
}

// FromPolyline converts a polyline into one subpath of line segments. A
// closed polyline (last point repeating the first) ends with a ClosePath
// instead of a redundant final LineTo.
func FromPolyline(line geometry.Polyline) *SubPath {
	if len(line) == 0 {
		return nil
	}
	sp := &SubPath{X: line[0].X, Y: line[0].Y}
	closed := line.Closed()
	last := len(line)
	if closed {
		last--
	}
	for _, p := range line[1:last] {
		sp.DrawTo = append(sp.DrawTo, &DrawTo{Command: LineTo, X: p.X, Y: p.Y})
	}
	if closed {
		sp.DrawTo = append(sp.DrawTo, &DrawTo{Command: ClosePath, X: sp.X, Y: sp.Y})
	}
	return sp
}

// FromCurves converts a chain of cubic segments into one subpath. Segments
// are assumed continuous; each contributes a single CurveTo.
func FromCurves(curves []geometry.CubicBezier, closed bool) *SubPath {
	if len(curves) == 0 {
		return nil
	}
	sp := &SubPath{X: curves[0].P0.X, Y: curves[0].P0.Y}
	for _, c := range curves {
		sp.DrawTo = append(sp.DrawTo, &DrawTo{
			Command: CurveTo,
			X1:      c.P1.X, Y1: c.P1.Y,
			X2: c.P2.X, Y2: c.P2.Y,
			X: c.P3.X, Y: c.P3.Y,
		})
	}
	if closed {
		sp.DrawTo = append(sp.DrawTo, &DrawTo{Command: ClosePath, X: sp.X, Y: sp.Y})
	}
	return sp
}

func formatNumber(n float64) string {
	// Round to hundredths; full float precision bloats path data for no
	// visible gain at pixel scale.
	return strconv.FormatFloat(round2(n), 'f', -1, 64)
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}

// ToString serializes subpaths as SVG path data. Nil subpaths are skipped.
func ToString(subPaths []*SubPath) string {
	var buf strings.Builder
	for _, sp := range subPaths {
		if sp == nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString("M " + formatNumber(sp.X) + " " + formatNumber(sp.Y))
		for _, d := range sp.DrawTo {
			switch d.Command {
			case LineTo:
				buf.WriteString(" L " + formatNumber(d.X) + " " + formatNumber(d.Y))
			case CurveTo:
				buf.WriteString(" C " +
					formatNumber(d.X1) + " " + formatNumber(d.Y1) + " " +
					formatNumber(d.X2) + " " + formatNumber(d.Y2) + " " +
					formatNumber(d.X) + " " + formatNumber(d.Y))
			case ClosePath:
				buf.WriteString(" Z")
			}
		}
	}
	return buf.String()
}
