package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimplifyRDP(t *testing.T) {
	tests := []struct {
		name    string
		points  Polyline
		epsilon float64
		want    Polyline
	}{
		{
			name: "peak kept",
			points: Polyline{
				{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 2}, {5, 1}, {6, 0},
			},
			epsilon: 0.001,
			want:    Polyline{{0, 0}, {3, 3}, {6, 0}},
		},
		{
			name: "collinear collapses",
			points: Polyline{
				{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0},
			},
			epsilon: 0.001,
			want:    Polyline{{0, 0}, {6, 0}},
		},
		{
			name: "large epsilon keeps endpoints only",
			points: Polyline{
				{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 2}, {5, 1}, {6, 0},
			},
			epsilon: 10,
			want:    Polyline{{0, 0}, {6, 0}},
		},
		{
			name:    "two points unchanged",
			points:  Polyline{{0, 0}, {1, 1}},
			epsilon: 1,
			want:    Polyline{{0, 0}, {1, 1}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.points.SimplifyRDP(test.epsilon)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("SimplifyRDP(%v) mismatch (-want +got):\n%s", test.epsilon, diff)
			}
		})
	}
}

func TestSimplifyRDPBoundedDeviation(t *testing.T) {
	// Every removed point must stay within epsilon of the simplified chain.
	var line Polyline
	for i := 0; i <= 200; i++ {
		x := float64(i) * 0.1
		line = append(line, Point{X: x, Y: math.Sin(x)})
	}

	epsilon := 0.05
	simplified := line.SimplifyRDP(epsilon)
	if len(simplified) >= len(line) {
		t.Fatalf("no simplification happened: %d -> %d points", len(line), len(simplified))
	}

	for _, p := range line {
		best := math.Inf(1)
		for i := 1; i < len(simplified); i++ {
			seg := LineSegment{A: simplified[i-1], B: simplified[i]}
			best = math.Min(best, seg.Distance(p))
		}
		if best > epsilon+1e-9 {
			t.Errorf("point %v deviates %f > epsilon %f", p, best, epsilon)
		}
	}
}

func TestSimplifyVisvalingam(t *testing.T) {
	// A tiny bump below the area threshold disappears; a tall one survives.
	line := Polyline{{0, 0}, {1, 0.01}, {2, 0}, {3, 5}, {4, 0}}
	got := line.SimplifyVisvalingam(0.5)

	want := Polyline{{0, 0}, {2, 0}, {3, 5}, {4, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SimplifyVisvalingam mismatch (-want +got):\n%s", diff)
	}
}

func TestSimplifyVisvalingamKeepsEndpoints(t *testing.T) {
	line := Polyline{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	got := line.SimplifyVisvalingam(1)
	if len(got) < 2 || got[0] != line[0] || got[len(got)-1] != line[len(line)-1] {
		t.Errorf("endpoints not preserved: %v", got)
	}
}

func TestResample(t *testing.T) {
	line := Polyline{{0, 0}, {10, 0}}
	got := line.Resample(2.5)
	want := Polyline{{0, 0}, {2.5, 0}, {5, 0}, {7.5, 0}, {10, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resample mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupe(t *testing.T) {
	line := Polyline{{0, 0}, {0, 0}, {1, 1}, {1, 1}, {2, 2}}
	got := line.Dedupe()
	want := Polyline{{0, 0}, {1, 1}, {2, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedupe mismatch (-want +got):\n%s", diff)
	}
}

func TestCentroidAndArea(t *testing.T) {
	square := Polyline{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	c := square.Centroid()
	if math.Abs(c.X-2) > 1e-9 || math.Abs(c.Y-2) > 1e-9 {
		t.Errorf("Centroid() = %v, want (2,2)", c)
	}
	if a := square.Area(); math.Abs(a-16) > 1e-9 {
		t.Errorf("Area() = %f, want 16", a)
	}
}

func TestBezierEval(t *testing.T) {
	b := CubicBezier{
		P0: Point{0, 0}, P1: Point{0, 0}, P2: Point{3, 3}, P3: Point{3, 3},
	}
	if got := b.Eval(0); got != b.P0 {
		t.Errorf("Eval(0) = %v, want %v", got, b.P0)
	}
	if got := b.Eval(1); got != b.P3 {
		t.Errorf("Eval(1) = %v, want %v", got, b.P3)
	}
	mid := b.Eval(0.5)
	if math.Abs(mid.X-1.5) > 1e-9 || math.Abs(mid.Y-1.5) > 1e-9 {
		t.Errorf("Eval(0.5) = %v, want (1.5,1.5)", mid)
	}
}
