package geometry

// CubicBezier is a cubic Bezier segment with control points P0..P3. P0 and P3
// are the endpoints.
type CubicBezier struct {
	P0, P1, P2, P3 Point
}

// Eval evaluates the curve at parameter t in [0, 1].
func (b CubicBezier) Eval(t float64) Point {
	u := 1 - t
	// Bernstein basis, expanded.
	w0 := u * u * u
	w1 := 3 * u * u * t
	w2 := 3 * u * t * t
	w3 := t * t * t
	return Point{
		X: w0*b.P0.X + w1*b.P1.X + w2*b.P2.X + w3*b.P3.X,
		Y: w0*b.P0.Y + w1*b.P1.Y + w2*b.P2.Y + w3*b.P3.Y,
	}
}

// MaxDeviation returns the largest distance from any of the given points to
// the curve, with each point compared at the matching parameter value.
// Points and params must have equal lengths.
func (b CubicBezier) MaxDeviation(points Polyline, params []float64) float64 {
	dmax := 0.0
	for i, p := range points {
		d := b.Eval(params[i]).Distance(p)
		if d > dmax {
			dmax = d
		}
	}
	return dmax
}
