package superpixel

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robmcdonald5/vec2art-sub004/pkg/raster"
)

// halves builds an image split into a left and right color field.
func halves(w, h int, left, right [3]uint8) *raster.Image {
	img, _ := raster.New(w, h, make([]byte, w*h*4))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := left
			if x >= w/2 {
				c = right
			}
			j := (y*w + x) * 4
			img.Pix[j] = c[0]
			img.Pix[j+1] = c[1]
			img.Pix[j+2] = c[2]
			img.Pix[j+3] = 255
		}
	}
	return img
}

func TestSeedCounts(t *testing.T) {
	tests := []struct {
		name    string
		pattern SeedPattern
	}{
		{"square", Square},
		{"hex", Hex},
		{"poisson", PoissonSeeds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := seeds(100, 100, 25, tc.pattern, 1)
			if len(got) == 0 {
				t.Fatal("no seeds placed")
			}
			// Patterns are approximate; allow a factor of two either way.
			if len(got) < 12 || len(got) > 50 {
				t.Errorf("got %d seeds for requested 25", len(got))
			}
			for _, c := range got {
				if c.x < 0 || c.x >= 100 || c.y < 0 || c.y >= 100 {
					t.Errorf("seed (%v,%v) outside image", c.x, c.y)
				}
			}
		})
	}
}

func TestSLICLabelsValid(t *testing.T) {
	img := halves(60, 40, [3]uint8{255, 0, 0}, [3]uint8{0, 0, 255})
	m := SLIC(img, 12, 10, Square, 0, 1, nil)

	if m.Width != 60 || m.Height != 40 {
		t.Fatalf("label map is %dx%d", m.Width, m.Height)
	}
	for i, lab := range m.Labels {
		if lab < 0 || lab >= m.Count {
			t.Fatalf("pixel %d has label %d outside [0,%d)", i, lab, m.Count)
		}
	}
}

func TestSLICSeparatesColorHalves(t *testing.T) {
	img := halves(60, 40, [3]uint8{255, 0, 0}, [3]uint8{0, 0, 255})
	m := SLIC(img, 8, 10, Square, 0, 1, nil)

	// No label should span the color boundary by much. Count, per label, how
	// many pixels fall on each side; a strongly mixed label means the color
	// term is not being honored.
	leftN := make([]int, m.Count)
	rightN := make([]int, m.Count)
	for i, lab := range m.Labels {
		if i%m.Width < m.Width/2 {
			leftN[lab]++
		} else {
			rightN[lab]++
		}
	}
	for lab := 0; lab < m.Count; lab++ {
		l, r := leftN[lab], rightN[lab]
		if l == 0 || r == 0 {
			continue
		}
		minority := l
		if r < minority {
			minority = r
		}
		if minority > (l+r)/5 {
			t.Errorf("label %d mixes halves badly: %d left, %d right", lab, l, r)
		}
	}
}

func TestSLICDeterministic(t *testing.T) {
	img := halves(50, 50, [3]uint8{10, 200, 30}, [3]uint8{240, 240, 20})
	a := SLIC(img, 10, 12, PoissonSeeds, 42, 1, nil)
	b := SLIC(img, 10, 12, PoissonSeeds, 42, 1, nil)
	if diff := cmp.Diff(a.Labels, b.Labels); diff != "" {
		t.Errorf("same seed produced different labels:\n%s", diff)
	}
}

func TestSLICParallelMatchesSerial(t *testing.T) {
	img := halves(90, 70, [3]uint8{10, 200, 30}, [3]uint8{240, 240, 20})
	serial := SLIC(img, 12, 10, Square, 0, 1, nil)
	parallel := SLIC(img, 12, 10, Square, 0, 4, nil)
	if diff := cmp.Diff(serial.Labels, parallel.Labels); diff != "" {
		t.Errorf("parallel labels differ from serial:\n%s", diff)
	}
}

func TestConnectedRegions(t *testing.T) {
	// Two islands of label 0 split by a stripe of label 1 must come out as
	// three distinct regions.
	m := &LabelMap{
		Width:  6,
		Height: 1,
		Labels: []int{0, 0, 1, 1, 0, 0},
		Count:  2,
	}
	got := m.ConnectedRegions()
	if got != 3 {
		t.Fatalf("got %d regions, want 3", got)
	}
	if m.Labels[0] == m.Labels[4] {
		t.Error("disconnected islands share a label after relabeling")
	}
}

func TestMergeSmallRegions(t *testing.T) {
	m := &LabelMap{
		Width:  8,
		Height: 1,
		Labels: []int{0, 0, 0, 1, 2, 2, 2, 2},
		Count:  3,
	}
	m.MergeSmallRegions(2)
	if m.Count != 2 {
		t.Fatalf("got %d regions after merge, want 2", m.Count)
	}
	// The single-pixel region joins its larger neighbor.
	if m.Labels[3] != m.Labels[4] {
		t.Errorf("small region did not merge into the larger neighbor: %v", m.Labels)
	}
}

func TestMergeNeverIncreasesCount(t *testing.T) {
	img := halves(80, 80, [3]uint8{0, 0, 0}, [3]uint8{255, 255, 255})
	m := SLIC(img, 16, 10, Hex, 0, 1, nil)
	before := m.ConnectedRegions()
	m.MergeSmallRegions(20)
	if m.Count > before {
		t.Errorf("merge increased region count from %d to %d", before, m.Count)
	}
}

func TestBoundariesAreClosed(t *testing.T) {
	m := &LabelMap{
		Width:  6,
		Height: 6,
		Labels: make([]int, 36),
		Count:  2,
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if x >= 3 {
				m.Labels[y*6+x] = 1
			}
		}
	}
	regions, skipped := m.Boundaries(nil)
	if skipped != 0 {
		t.Fatalf("skipped %d regions", skipped)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	for lab, contours := range regions {
		if len(contours) != 1 {
			t.Fatalf("region %d has %d contours, want 1", lab, len(contours))
		}
		c := contours[0]
		if c.Hole {
			t.Errorf("region %d outer contour flagged as hole", lab)
		}
		if len(c.Points) < 4 {
			t.Errorf("region %d boundary has %d points", lab, len(c.Points))
		}
	}
}

func TestLimitRegions(t *testing.T) {
	img := halves(200, 200, [3]uint8{200, 40, 40}, [3]uint8{40, 40, 200})
	m := SLIC(img, 50, 10, Square, 0, 1, nil)
	m.ConnectedRegions()
	m.MergeSmallRegions(8)
	m.LimitRegions(50)
	if m.Count < 1 || m.Count > 50 {
		t.Fatalf("got %d regions, want between 1 and 50", m.Count)
	}
	for _, lab := range m.Labels {
		if lab < 0 || lab >= m.Count {
			t.Fatalf("label %d outside [0,%d) after limiting", lab, m.Count)
		}
	}
}
