package spatial

import (
	"sort"

	"github.com/asim/quadtree"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

// QuadTree indexes sparse points carrying an integer payload (a primitive or
// dot index). It is used where the uniform grid would be wasteful: endpoint
// adjacency during multipass merge, where most cells are empty.
type QuadTree struct {
	tree *quadtree.QuadTree
}

// NewQuadTree creates a quadtree covering the given bounds, with a small
// margin so points exactly on the edge are not dropped.
func NewQuadTree(minX, minY, maxX, maxY float64) *QuadTree {
	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	halfWidth := maxX - midX
	halfHeight := maxY - midY

	// Margin to avoid dropping objects at the edges.
	halfWidth += 10
	halfHeight += 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &QuadTree{tree: quadtree.New(aabb, 0, nil)}
}

// Insert adds a point with an associated index payload.
func (t *QuadTree) Insert(p geometry.Point, index int) {
	t.tree.Insert(quadtree.NewPoint(p.X, p.Y, index))
}

// Match is a point returned from a query, with its payload index.
type Match struct {
	Point geometry.Point
	Index int
}

// Within returns all indexed points within maxDist of p, sorted nearest
// first.
func (t *QuadTree) Within(p geometry.Point, maxDist float64) []Match {
	aabb := quadtree.NewAABB(
		quadtree.NewPoint(p.X, p.Y, nil),
		quadtree.NewPoint(maxDist, maxDist, nil))

	var matches []Match
	for _, qp := range t.tree.Search(aabb) {
		x, y := qp.Coordinates()
		mp := geometry.Point{X: x, Y: y}
		if mp.Distance(p) <= maxDist {
			matches = append(matches, Match{Point: mp, Index: qp.Data().(int)})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Point.Distance(p) < matches[j].Point.Distance(p)
	})
	return matches
}
