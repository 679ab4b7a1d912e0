package flow

import (
	"math"
	"testing"
)

// verticalEdgeImage builds a plane that is dark on the left half and light on
// the right, giving a single strong vertical edge at x = w/2.
func verticalEdgeImage(w, h int) []float64 {
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				gray[y*w+x] = 255
			}
		}
	}
	return gray
}

func TestGradientFieldInvariants(t *testing.T) {
	w, h := 32, 32
	f := GradientField(verticalEdgeImage(w, h), w, h)

	for i := range f.Mag {
		if f.Mag[i] < 0 || f.Mag[i] > 1 {
			t.Fatalf("Mag[%d] = %f outside [0,1]", i, f.Mag[i])
		}
		m := math.Hypot(f.Tx[i], f.Ty[i])
		if f.Mag[i] > 0 && math.Abs(m-1) > 1e-9 {
			t.Fatalf("tangent %d not unit length: %f", i, m)
		}
	}

	// At the vertical edge the gradient is horizontal, so the tangent must be
	// vertical (|Ty| ~ 1).
	i := (h/2)*w + w/2
	if math.Abs(f.Ty[i]) < 0.9 {
		t.Errorf("tangent at vertical edge = (%f, %f), want vertical", f.Tx[i], f.Ty[i])
	}
}

func TestETFSmoothsTangents(t *testing.T) {
	w, h := 32, 32
	gray := verticalEdgeImage(w, h)
	f := GradientField(gray, w, h)
	smoothed := ETF(f, 2, 3, 1, nil)

	// Tangents stay unit length (mod-pi orientation preserved).
	for i := range smoothed.Tx {
		m := math.Hypot(smoothed.Tx[i], smoothed.Ty[i])
		if m > 0 && math.Abs(m-1) > 1e-9 {
			t.Fatalf("smoothed tangent %d not unit length: %f", i, m)
		}
	}

	// Near the edge, tangents should still run along it.
	i := (h/2)*w + w/2
	if math.Abs(smoothed.Ty[i]) < 0.9 {
		t.Errorf("smoothed tangent at edge = (%f, %f), want vertical", smoothed.Tx[i], smoothed.Ty[i])
	}
}

func TestETFParallelMatchesSerial(t *testing.T) {
	w, h := 48, 48
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray[y*w+x] = float64((x*7 + y*13) % 256)
		}
	}

	serial := ETF(GradientField(gray, w, h), 2, 2, 1, nil)
	parallel := ETF(GradientField(gray, w, h), 2, 2, 4, nil)

	for i := range serial.Tx {
		if math.Abs(serial.Tx[i]-parallel.Tx[i]) > 1e-12 ||
			math.Abs(serial.Ty[i]-parallel.Ty[i]) > 1e-12 {
			t.Fatalf("parallel ETF diverged from serial at %d", i)
		}
	}
}

func TestFDoGRespondsAtEdge(t *testing.T) {
	w, h := 48, 48
	gray := verticalEdgeImage(w, h)
	f := ETF(GradientField(gray, w, h), 2, 2, 1, nil)
	resp := FDoG(gray, f, 1.0, 3.0, 0.99, 1, nil)

	edge := resp[(h/2)*w+w/2-1]
	flat := resp[(h/2)*w+4]
	if edge <= flat {
		t.Errorf("edge response %f not above flat response %f", edge, flat)
	}
	for i, v := range resp {
		if v < 0 || v > 1 {
			t.Fatalf("resp[%d] = %f outside [0,1]", i, v)
		}
	}
}

func TestHysteresis(t *testing.T) {
	// 1x5 response: strong seed, weak connected tail, isolated weak pixel.
	resp := []float64{0.9, 0.4, 0.4, 0.0, 0.4}
	edges := Hysteresis(resp, 5, 1, 0.3, 0.8)

	want := []bool{true, true, true, false, false}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edges[%d] = %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestNonMaxSuppressThins(t *testing.T) {
	w, h := 16, 16
	gray := verticalEdgeImage(w, h)
	f := GradientField(gray, w, h)
	resp := make([]float64, w*h)
	// A three-pixel-wide horizontal ramp peaking at the edge column.
	for y := 0; y < h; y++ {
		resp[y*w+w/2-1] = 0.5
		resp[y*w+w/2] = 1.0
		resp[y*w+w/2+1] = 0.5
	}
	thinned := NonMaxSuppress(resp, f)
	y := h / 2
	if thinned[y*w+w/2] == 0 {
		t.Error("peak suppressed")
	}
}

func TestDirectionalResponse(t *testing.T) {
	w, h := 32, 32
	gray := verticalEdgeImage(w, h)

	// A vertical edge is strongest under a horizontal scan.
	_, horiz := DirectionalResponse(gray, w, h, 0)
	_, vert := DirectionalResponse(gray, w, h, math.Pi/2)
	if horiz <= vert {
		t.Errorf("horizontal strength %f not above vertical %f", horiz, vert)
	}
}
