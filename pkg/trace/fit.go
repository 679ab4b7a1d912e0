package trace

import (
	"math"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

const (
	// Reparameterization attempts before giving up and splitting.
	fitMaxIterations = 4
)

// FitCurves fits a piecewise cubic Bezier to the polyline with maximum
// deviation bounded by maxErr. Segments that cannot meet the bound are split
// at the worst point; the work list is an explicit stack, so deep splits never
// grow the call stack. Adjacent segments share endpoints exactly.
func FitCurves(points geometry.Polyline, maxErr float64) []geometry.CubicBezier {
	pts := points.Dedupe()
	if len(pts) < 2 {
		return nil
	}
	if maxErr <= 0 {
		maxErr = 1
	}

	type span struct{ first, last int }
	// Splitting pushes the right half first, so popping yields spans in path
	// order and out can be appended to directly.
	stack := []span{{0, len(pts) - 1}}
	var out []geometry.CubicBezier

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.last-s.first == 1 {
			out = append(out, lineBezier(pts[s.first], pts[s.last]))
			continue
		}

		seg := pts[s.first : s.last+1]
		tHat1 := tangentAt(pts, s.first, 1)
		tHat2 := tangentAt(pts, s.last, -1)
		params := chordLengthParams(seg)

		var best geometry.CubicBezier
		var bestParams []float64
		bestErr := math.Inf(1)
		for iter := 0; iter <= fitMaxIterations; iter++ {
			b := generateBezier(seg, params, tHat1, tHat2)
			err := b.MaxDeviation(seg, params)
			if err < bestErr {
				best, bestErr, bestParams = b, err, params
			}
			if err <= maxErr {
				break
			}
			// Reparameterization only pays off when the fit is close.
			if err >= 4*maxErr {
				break
			}
			params = reparameterize(seg, b, params)
		}

		if bestErr <= maxErr {
			out = append(out, best)
			continue
		}

		split := s.first + worstPoint(seg, best, bestParams)
		if split <= s.first {
			split = s.first + 1
		}
		if split >= s.last {
			split = s.last - 1
		}
		stack = append(stack, span{split, s.last}, span{s.first, split})
	}
	return out
}

func lineBezier(a, b geometry.Point) geometry.CubicBezier {
	d := b.Minus(a).Scale(1.0 / 3.0)
	return geometry.CubicBezier{
		P0: a,
		P1: a.Add(d),
		P2: a.Add(d).Add(d),
		P3: b,
	}
}

// tangentAt estimates the unit tangent at index i, looking dir steps along
// the polyline (1 for a left endpoint, -1 for a right endpoint).
func tangentAt(pts geometry.Polyline, i, dir int) geometry.Vector2 {
	j := i + dir
	if j < 0 {
		j = 0
	}
	if j >= len(pts) {
		j = len(pts) - 1
	}
	return pts[j].Minus(pts[i]).Normalize()
}

func chordLengthParams(pts geometry.Polyline) []float64 {
	params := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		params[i] = params[i-1] + pts[i].Distance(pts[i-1])
	}
	total := params[len(params)-1]
	if total > 0 {
		for i := range params {
			params[i] /= total
		}
	}
	return params
}

// generateBezier solves the least-squares fit for the two inner control
// points, endpoints and end tangent directions fixed. Degenerate systems fall
// back to the Wu-Barsky heuristic (control points at a third of the chord).
func generateBezier(pts geometry.Polyline, params []float64, tHat1, tHat2 geometry.Vector2) geometry.CubicBezier {
	n := len(pts)
	first, last := pts[0], pts[n-1]

	var c00, c01, c11 float64
	var x0, x1 float64
	for i := 0; i < n; i++ {
		t := params[i]
		u := 1 - t
		b0 := u * u * u
		b1 := 3 * u * u * t
		b2 := 3 * u * t * t
		b3 := t * t * t

		a1 := tHat1.Scale(b1)
		a2 := tHat2.Scale(b2)

		c00 += a1.Dot(a1)
		c01 += a1.Dot(a2)
		c11 += a2.Dot(a2)

		// Residual against the degree-elevated chord.
		rx := pts[i].X - (b0+b1)*first.X - (b2+b3)*last.X
		ry := pts[i].Y - (b0+b1)*first.Y - (b2+b3)*last.Y
		x0 += a1.X*rx + a1.Y*ry
		x1 += a2.X*rx + a2.Y*ry
	}

	det := c00*c11 - c01*c01
	var alpha1, alpha2 float64
	if det != 0 {
		alpha1 = (x0*c11 - x1*c01) / det
		alpha2 = (c00*x1 - c01*x0) / det
	}

	segLen := first.Distance(last)
	eps := 1e-6 * segLen
	if alpha1 < eps || alpha2 < eps {
		alpha1 = segLen / 3
		alpha2 = segLen / 3
	}

	return geometry.CubicBezier{
		P0: first,
		P1: first.Add(tHat1.Scale(alpha1)),
		P2: last.Add(tHat2.Scale(alpha2)),
		P3: last,
	}
}

// worstPoint returns the interior index deviating furthest from the fit; the
// segment splits there. Only computed when a span fails its error budget.
func worstPoint(pts geometry.Polyline, b geometry.CubicBezier, params []float64) int {
	worst := 0.0
	split := len(pts) / 2
	for i := 1; i < len(pts)-1; i++ {
		if d := b.Eval(params[i]).Distance(pts[i]); d > worst {
			worst = d
			split = i
		}
	}
	return split
}

// reparameterize nudges each parameter toward the curve's closest point with
// one Newton-Raphson step.
func reparameterize(pts geometry.Polyline, b geometry.CubicBezier, params []float64) []float64 {
	out := make([]float64, len(params))
	for i, t := range params {
		out[i] = newtonStep(b, pts[i], t)
	}
	// Parameters must stay monotonic for the fit to make sense.
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			out[i] = out[i-1]
		}
	}
	return out
}

// newtonStep moves t one Newton-Raphson iteration toward the parameter of the
// curve point closest to p, minimizing (Q(t)-p) . Q'(t).
func newtonStep(b geometry.CubicBezier, p geometry.Point, t float64) float64 {
	q := b.Eval(t)

	// First derivative control points.
	d1 := [3]geometry.Vector2{
		b.P1.Minus(b.P0).Scale(3),
		b.P2.Minus(b.P1).Scale(3),
		b.P3.Minus(b.P2).Scale(3),
	}
	u := 1 - t
	q1 := d1[0].Scale(u * u).Add(d1[1].Scale(2 * u * t)).Add(d1[2].Scale(t * t))

	// Second derivative control points.
	d2 := [2]geometry.Vector2{
		d1[1].Minus(d1[0]).Scale(2),
		d1[2].Minus(d1[1]).Scale(2),
	}
	q2 := d2[0].Scale(u).Add(d2[1].Scale(t))

	diff := q.Minus(p)
	num := diff.Dot(q1)
	den := q1.Dot(q1) + diff.Dot(q2)
	if den == 0 {
		return t
	}
	t -= num / den
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t
}
