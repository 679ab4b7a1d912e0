// Package spatial provides the neighbor-query structures shared by the
// vectorization backends: a uniform bucket grid for dense point sets and a
// quadtree for sparse endpoint adjacency.
package spatial

import (
	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

// Grid buckets indices into a caller-owned point slice by uniform cells. It
// owns no domain data; callers look indices back up in their own collection.
// A Grid is not safe for concurrent mutation without external synchronization.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
	points   []geometry.Point
}

// NewGrid creates a grid covering a width x height area with the given cell
// size. Cell size should be at least the largest query radius for O(1)
// neighborhood scans.
func NewGrid(width, height, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1
	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]int, cols*rows),
	}
}

func (g *Grid) cellIndex(p geometry.Point) int {
	cx := int(p.X / g.cellSize)
	cy := int(p.Y / g.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy >= g.rows {
		cy = g.rows - 1
	}
	return cy*g.cols + cx
}

// Insert records a point and returns its index.
func (g *Grid) Insert(p geometry.Point) int {
	idx := len(g.points)
	g.points = append(g.points, p)
	cell := g.cellIndex(p)
	g.cells[cell] = append(g.cells[cell], idx)
	return idx
}

// Len returns the number of inserted points.
func (g *Grid) Len() int {
	return len(g.points)
}

// At returns the point stored at index i.
func (g *Grid) At(i int) geometry.Point {
	return g.points[i]
}

// Neighbors returns indices of all points within radius of p. Only the cells
// overlapping the query disc are scanned.
func (g *Grid) Neighbors(p geometry.Point, radius float64) []int {
	minCX := int((p.X - radius) / g.cellSize)
	maxCX := int((p.X + radius) / g.cellSize)
	minCY := int((p.Y - radius) / g.cellSize)
	maxCY := int((p.Y + radius) / g.cellSize)
	if minCX < 0 {
		minCX = 0
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}

	var out []int
	r2 := radius * radius
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, idx := range g.cells[cy*g.cols+cx] {
				q := g.points[idx]
				dx := q.X - p.X
				dy := q.Y - p.Y
				if dx*dx+dy*dy <= r2 {
					out = append(out, idx)
				}
			}
		}
	}
	return out
}

// HasNeighborWithin reports whether any inserted point lies strictly closer
// than radius to p. This is the hot query for Poisson-disk placement, so it
// returns early instead of collecting matches.
func (g *Grid) HasNeighborWithin(p geometry.Point, radius float64) bool {
	minCX := int((p.X - radius) / g.cellSize)
	maxCX := int((p.X + radius) / g.cellSize)
	minCY := int((p.Y - radius) / g.cellSize)
	maxCY := int((p.Y + radius) / g.cellSize)
	if minCX < 0 {
		minCX = 0
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}

	r2 := radius * radius
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, idx := range g.cells[cy*g.cols+cx] {
				q := g.points[idx]
				dx := q.X - p.X
				dy := q.Y - p.Y
				if dx*dx+dy*dy < r2 {
					return true
				}
			}
		}
	}
	return false
}
