package geometry

import (
	"math"
)

type Point struct {
	X float64
	Y float64
}

type Vector2 = Point

type LineSegment struct {
	A Point
	B Point
}

type Rectangle struct {
	Min Point
	Max Point
}

// Polyline is an ordered sequence of points. A closed polyline repeats its
// first point as its last point.
type Polyline []Point

func (a Vector2) Add(b Vector2) Vector2 {
	return Vector2{X: a.X + b.X, Y: a.Y + b.Y}
}

func (a Vector2) Minus(b Vector2) Vector2 {
	return Vector2{X: a.X - b.X, Y: a.Y - b.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

func (a Vector2) Dot(b Vector2) float64 {
	return a.X*b.X + a.Y*b.Y
}

func (a Vector2) CrossProductZ(b Vector2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Normalize returns a unit-length copy of v, or the zero vector if v has no
// length to normalize.
func (v Vector2) Normalize() Vector2 {
	m := v.Magnitude()
	if m == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / m, Y: v.Y / m}
}

// Distance returns the distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

func (s LineSegment) Length() float64 {
	return s.A.Distance(s.B)
}

// Distance returns the distance between a point and a line segment.
func (s LineSegment) Distance(p Point) float64 {
	AP := p.Minus(s.A)
	AB := s.A.Minus(s.B)
	mAP := AP.Magnitude()
	mBP := p.Minus(s.B).Magnitude()
	mAB := AB.Magnitude()

	if mAP > mAB || mBP > mAB {
		// closest point on line is outside segment boundaries, so the closest point
		// is the nearest of the two endpoints.
		return math.Min(mAP, mBP)
	}

	return math.Abs(AP.CrossProductZ(AB)) / mAB
}

// Closed reports whether the polyline's last point coincides with its first.
func (line Polyline) Closed() bool {
	return len(line) >= 3 && line[0] == line[len(line)-1]
}

// Dedupe removes consecutive duplicate points, eliminating degenerate
// zero-length segments. The input slice is reused.
func (line Polyline) Dedupe() Polyline {
	if len(line) < 2 {
		return line
	}
	out := line[:1]
	for _, p := range line[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// Centroid returns the average of the polyline's points. For a closed
// polyline the duplicated final point is not counted twice.
func (line Polyline) Centroid() Point {
	pts := line
	if line.Closed() {
		pts = line[:len(line)-1]
	}
	if len(pts) == 0 {
		return Point{X: math.NaN(), Y: math.NaN()}
	}
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// Area returns the unsigned area enclosed by the polyline (shoelace formula).
// Open polylines are treated as implicitly closed.
func (line Polyline) Area() float64 {
	if len(line) < 3 {
		return 0
	}
	area := 0.0
	n := len(line)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += line[i].CrossProductZ(line[j])
	}
	return math.Abs(area) / 2
}

// Bounds returns the axis-aligned bounding rectangle of the polyline.
func (line Polyline) Bounds() Rectangle {
	if len(line) == 0 {
		return Rectangle{}
	}
	r := Rectangle{Min: line[0], Max: line[0]}
	for _, p := range line[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Length returns the total arc length of the polyline.
func (line Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += line[i].Distance(line[i-1])
	}
	return total
}

// Resample returns a copy of the polyline with points spaced approximately
// spacing apart along its length. Endpoints are preserved exactly and
// degenerate segments are dropped first.
func (line Polyline) Resample(spacing float64) Polyline {
	line = line.Dedupe()
	if len(line) < 2 || spacing <= 0 {
		return line
	}
	out := Polyline{line[0]}
	carry := 0.0
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		segLen := a.Distance(b)
		pos := spacing - carry
		for pos < segLen {
			t := pos / segLen
			out = append(out, Point{
				X: a.X + (b.X-a.X)*t,
				Y: a.Y + (b.Y-a.Y)*t,
			})
			pos += spacing
		}
		carry = segLen - (pos - spacing)
	}
	last := line[len(line)-1]
	if out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}
