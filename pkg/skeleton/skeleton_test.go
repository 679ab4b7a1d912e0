package skeleton

import (
	"testing"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

// line builds an axis-aligned pixel run between two points, inclusive.
func line(x0, y0, x1, y1 int) geometry.Polyline {
	var pts geometry.Polyline
	dx, dy := sign(x1-x0), sign(y1-y0)
	x, y := x0, y0
	for {
		pts = append(pts, geometry.Point{X: float64(x), Y: float64(y)})
		if x == x1 && y == y1 {
			return pts
		}
		x += dx
		y += dy
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// maskFrom builds a bool mask from a string picture, '#' marking foreground.
func maskFrom(rows []string) ([]bool, int, int) {
	h := len(rows)
	w := len(rows[0])
	mask := make([]bool, w*h)
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				mask[y*w+x] = true
			}
		}
	}
	return mask, w, h
}

func countTrue(mask []bool) int {
	n := 0
	for _, v := range mask {
		if v {
			n++
		}
	}
	return n
}

func TestZhangSuenThickLine(t *testing.T) {
	// A 3-pixel-thick horizontal bar should thin to a single-pixel line.
	mask, w, h := maskFrom([]string{
		"..........",
		".########.",
		".########.",
		".########.",
		"..........",
	})
	skel := ZhangSuen(mask, w, h)

	got := countTrue(skel)
	if got == 0 || got > 10 {
		t.Fatalf("skeleton has %d pixels, want a thin line", got)
	}
	// No pixel may have more than 2 neighbors on a simple bar.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !skel[y*w+x] {
				continue
			}
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx >= 0 && nx < w && ny >= 0 && ny < h && skel[ny*w+nx] {
						n++
					}
				}
			}
			if n > 2 {
				t.Fatalf("skeleton pixel (%d,%d) has %d neighbors, not 1-px wide", x, y, n)
			}
		}
	}
}

func TestDistanceTransform(t *testing.T) {
	mask, w, h := maskFrom([]string{
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	})
	dt := DistanceTransform(mask, w, h)
	if dt[0] != 0 {
		t.Error("background distance should be 0")
	}
	// Center pixel is deepest.
	center := dt[2*w+2]
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			if x == 2 && y == 2 {
				continue
			}
			if dt[y*w+x] > center {
				t.Errorf("dt(%d,%d)=%d exceeds center %d", x, y, dt[y*w+x], center)
			}
		}
	}
}

func TestGraphFromLine(t *testing.T) {
	// A simple 1-px line: two endpoint nodes, one chain.
	mask, w, h := maskFrom([]string{
		".......",
		".#####.",
		".......",
	})
	g := FromMask(mask, w, h)
	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(g.Nodes))
	}
	if len(g.Chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(g.Chains))
	}
	if len(g.Chains[0].Points) != 5 {
		t.Errorf("chain has %d points, want 5", len(g.Chains[0].Points))
	}
}

func TestGraphFromT(t *testing.T) {
	// A T junction. Diagonal adjacency near the junction produces extra
	// nodes, so assert coverage rather than exact counts: every skeleton
	// pixel must appear in some chain.
	mask, w, h := maskFrom([]string{
		".......",
		".#####.",
		"...#...",
		"...#...",
		".......",
	})
	g := FromMask(mask, w, h)
	if len(g.Chains) < 3 {
		t.Fatalf("got %d chains, want at least 3", len(g.Chains))
	}

	covered := make([]bool, w*h)
	for _, c := range g.Chains {
		for _, p := range c.Points {
			covered[int(p.Y)*w+int(p.X)] = true
		}
	}
	for i := range mask {
		if mask[i] && !covered[i] {
			t.Errorf("skeleton pixel %d not covered by any chain", i)
		}
	}
}

func TestGraphStaircase(t *testing.T) {
	// A stair-stepped line. Each corner pixel sits diagonally next to the
	// pixel after its orthogonal step; counting those bridged diagonals would
	// read every corner as a junction and shred the line into stubs.
	mask, w, h := maskFrom([]string{
		"..#",
		".##",
		"##.",
		"#..",
	})
	g := FromMask(mask, w, h)
	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2 endpoints", len(g.Nodes))
	}
	if len(g.Chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(g.Chains))
	}
	if len(g.Chains[0].Points) != 6 {
		t.Errorf("chain has %d points, want 6", len(g.Chains[0].Points))
	}
}

func TestGraphSquareRing(t *testing.T) {
	// Orthogonal corners bridge their diagonals; the ring must come out as a
	// single loop, not a pile of corner-to-corner fragments.
	mask, w, h := maskFrom([]string{
		"####",
		"#..#",
		"#..#",
		"####",
	})
	g := FromMask(mask, w, h)
	if len(g.Chains) != 1 {
		t.Fatalf("got %d chains, want 1 loop", len(g.Chains))
	}
	c := g.Chains[0]
	if c.A != c.B {
		t.Errorf("loop endpoints differ: %d != %d", c.A, c.B)
	}
	if len(c.Points) != 13 {
		t.Errorf("loop has %d points, want 13 (12 pixels + repeated start)", len(c.Points))
	}
}

func TestGraphCycle(t *testing.T) {
	// A closed diamond ring where every pixel has exactly two neighbors has
	// no natural nodes; one must be synthesized.
	mask, w, h := maskFrom([]string{
		".......",
		"...#...",
		"..#.#..",
		".#...#.",
		"..#.#..",
		"...#...",
		".......",
	})
	g := FromMask(mask, w, h)
	if len(g.Chains) != 1 {
		t.Fatalf("got %d chains, want 1 loop", len(g.Chains))
	}
	c := g.Chains[0]
	if c.A != c.B {
		t.Errorf("loop chain endpoints differ: %d != %d", c.A, c.B)
	}
	if len(c.Points) != 9 {
		t.Errorf("loop has %d points, want 9 (8 pixels + repeated start)", len(c.Points))
	}
}

func TestPruneSpurs(t *testing.T) {
	// A junction with two long arms and one short spur. The short chain to
	// the dangling endpoint goes; long chains survive even when they end at
	// an endpoint.
	g := &Graph{
		Nodes: []Node{
			{X: 5, Y: 0},  // junction
			{X: 0, Y: 0},  // endpoint, long arm
			{X: 10, Y: 0}, // endpoint, long arm
			{X: 5, Y: 2},  // endpoint, spur
		},
		Chains: []Chain{
			{A: 0, B: 1, Points: line(5, 0, 0, 0)},
			{A: 0, B: 2, Points: line(5, 0, 10, 0)},
			{A: 0, B: 3, Points: line(5, 0, 5, 2)},
		},
	}
	g.Prune(4)

	if len(g.Chains) != 2 {
		t.Fatalf("got %d chains after pruning, want 2", len(g.Chains))
	}
	for _, c := range g.Chains {
		if len(c.Points) < 4 {
			t.Errorf("short chain %v survived pruning", c.Points)
		}
	}
}

func TestJoinChains(t *testing.T) {
	// Pruning the spur leaves the junction with two chain ends; joining must
	// fuse the long arms into one continuous chain.
	g := &Graph{
		Nodes: []Node{
			{X: 5, Y: 0},
			{X: 0, Y: 0},
			{X: 10, Y: 0},
			{X: 5, Y: 2},
		},
		Chains: []Chain{
			{A: 0, B: 1, Points: line(5, 0, 0, 0)},
			{A: 0, B: 2, Points: line(5, 0, 10, 0)},
			{A: 0, B: 3, Points: line(5, 0, 5, 2)},
		},
	}
	g.Prune(4)
	g.JoinChains()

	if len(g.Chains) != 1 {
		t.Fatalf("got %d chains after joining, want 1", len(g.Chains))
	}
	c := g.Chains[0]
	if len(c.Points) != 11 {
		t.Errorf("joined chain has %d points, want 11", len(c.Points))
	}
	ends := map[int]bool{c.A: true, c.B: true}
	if !ends[1] || !ends[2] {
		t.Errorf("joined chain connects nodes %d and %d, want 1 and 2", c.A, c.B)
	}
}

func TestJoinChainsClosesLoop(t *testing.T) {
	// Two arcs between the same two nodes fuse into one closed loop.
	g := &Graph{
		Nodes: []Node{{X: 0, Y: 0}, {X: 4, Y: 0}},
		Chains: []Chain{
			{A: 0, B: 1, Points: line(0, 0, 4, 0)},
			{A: 0, B: 1, Points: geometry.Polyline{
				{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 0},
			}},
		},
	}
	g.JoinChains()

	if len(g.Chains) != 1 {
		t.Fatalf("got %d chains, want 1 loop", len(g.Chains))
	}
	pts := g.Chains[0].Points
	if pts[0] != pts[len(pts)-1] {
		t.Error("loop chain does not repeat its start point")
	}
}

func TestExtractConvergesToThinSkeleton(t *testing.T) {
	rows := []string{
		"............",
		".##########.",
		".##########.",
		".##########.",
		".##########.",
		"............",
	}
	for _, q := range []Quality{HighPerformance, HighQuality} {
		mask, w, h := maskFrom(rows)
		g := Extract(mask, w, h, q, 2)
		if len(g.Chains) == 0 {
			t.Errorf("quality %d produced no chains", q)
		}
	}
}
