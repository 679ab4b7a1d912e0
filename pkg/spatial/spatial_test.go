package spatial

import (
	"testing"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

func TestGridNeighbors(t *testing.T) {
	g := NewGrid(100, 100, 10)
	g.Insert(geometry.Point{X: 5, Y: 5})
	g.Insert(geometry.Point{X: 8, Y: 5})
	g.Insert(geometry.Point{X: 50, Y: 50})

	got := g.Neighbors(geometry.Point{X: 5, Y: 5}, 5)
	if len(got) != 2 {
		t.Errorf("Neighbors returned %d points, want 2", len(got))
	}

	got = g.Neighbors(geometry.Point{X: 90, Y: 90}, 5)
	if len(got) != 0 {
		t.Errorf("Neighbors returned %d points, want 0", len(got))
	}
}

func TestGridNeighborsAcrossCells(t *testing.T) {
	// A query straddling a cell boundary must still see the neighbor.
	g := NewGrid(100, 100, 10)
	g.Insert(geometry.Point{X: 9.9, Y: 5})
	got := g.Neighbors(geometry.Point{X: 10.1, Y: 5}, 1)
	if len(got) != 1 {
		t.Errorf("Neighbors across cell boundary returned %d points, want 1", len(got))
	}
}

func TestGridHasNeighborWithin(t *testing.T) {
	g := NewGrid(100, 100, 10)
	g.Insert(geometry.Point{X: 20, Y: 20})

	if !g.HasNeighborWithin(geometry.Point{X: 21, Y: 20}, 2) {
		t.Error("expected neighbor within radius 2")
	}
	if g.HasNeighborWithin(geometry.Point{X: 25, Y: 20}, 2) {
		t.Error("unexpected neighbor within radius 2")
	}
	// Strict inequality: a point exactly at radius does not count.
	if g.HasNeighborWithin(geometry.Point{X: 22, Y: 20}, 2) {
		t.Error("point exactly at radius should not count as within")
	}
}

func TestQuadTreeWithin(t *testing.T) {
	qt := NewQuadTree(0, 0, 100, 100)
	qt.Insert(geometry.Point{X: 10, Y: 10}, 0)
	qt.Insert(geometry.Point{X: 12, Y: 10}, 1)
	qt.Insert(geometry.Point{X: 90, Y: 90}, 2)

	matches := qt.Within(geometry.Point{X: 10, Y: 10}, 5)
	if len(matches) != 2 {
		t.Fatalf("Within returned %d matches, want 2", len(matches))
	}
	// Nearest first.
	if matches[0].Index != 0 || matches[1].Index != 1 {
		t.Errorf("matches not sorted nearest first: %+v", matches)
	}
}
