package dots

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// checkered returns a gray plane with a busy left half and a flat right half.
func checkered(w, h int) []float64 {
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 0.5
			if x < w/2 && (x+y)%2 == 0 {
				v = 1.0
			}
			gray[y*w+x] = v
		}
	}
	return gray
}

func TestDensityFollowsDetail(t *testing.T) {
	const w, h = 40, 40
	density := DensityMap(checkered(w, h), w, h)

	var left, right float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2-2 {
				left += density[y*w+x]
			} else if x > w/2+2 {
				right += density[y*w+x]
			}
		}
	}
	if left <= right {
		t.Errorf("busy half density %.2f not above flat half %.2f", left, right)
	}
	for i, d := range density {
		if d < 0 || d > 1 {
			t.Fatalf("density[%d] = %v outside [0,1]", i, d)
		}
	}
}

func TestPoissonMinimumSpacing(t *testing.T) {
	const w, h = 60, 60
	density := DensityMap(checkered(w, h), w, h)
	opt := Options{MinRadius: 1.5, MaxRadius: 3, Jitter: 0.4, GradientSizing: true, Seed: 7}
	got := PoissonSample(density, w, h, nil, opt)

	if len(got) == 0 {
		t.Fatal("no dots placed")
	}
	// Sum of radii is the binding pair bound; it is never under 2*MinRadius.
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			d := math.Hypot(got[i].X-got[j].X, got[i].Y-got[j].Y)
			if want := got[i].Radius + got[j].Radius; d < want {
				t.Fatalf("dots %d and %d are %.2f apart, want >= %.2f (sum of radii)", i, j, d, want)
			}
		}
	}
	for i, dot := range got {
		if dot.Radius < opt.MinRadius || dot.Radius > opt.MaxRadius {
			t.Errorf("dot %d radius %v outside [%v,%v]", i, dot.Radius, opt.MinRadius, opt.MaxRadius)
		}
		if dot.Opacity <= 0 || dot.Opacity > 1 {
			t.Errorf("dot %d opacity %v outside (0,1]", i, dot.Opacity)
		}
	}
}

func TestPoissonExcludesBackground(t *testing.T) {
	const w, h = 30, 30
	density := make([]float64, w*h)
	background := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			density[y*w+x] = 1
			background[y*w+x] = y < h/2
		}
	}
	got := PoissonSample(density, w, h, background, Options{MinRadius: 1, MaxRadius: 2, Seed: 3})

	if len(got) == 0 {
		t.Fatal("no dots placed in the foreground half")
	}
	for i, dot := range got {
		if int(dot.Y) < h/2 {
			t.Errorf("dot %d at (%.1f,%.1f) landed on background", i, dot.X, dot.Y)
		}
	}
}

func TestPoissonDeterministic(t *testing.T) {
	const w, h = 40, 40
	density := DensityMap(checkered(w, h), w, h)
	opt := Options{MinRadius: 1, MaxRadius: 2.5, Jitter: 0.3, GradientSizing: true, Seed: 11}
	a := PoissonSample(density, w, h, nil, opt)
	b := PoissonSample(density, w, h, nil, opt)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different dots:\n%s", diff)
	}
}
