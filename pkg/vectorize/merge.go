package vectorize

import (
	"math"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
	"github.com/robmcdonald5/vec2art-sub004/pkg/spatial"
)

// merger deduplicates primitives across passes. Strokes are keyed by their
// start, middle, and end points in a quadtree; a candidate within tolerance
// of an existing primitive's signature at all three keys is a duplicate and
// is dropped, never averaged. Dots dedupe on center distance alone.
type merger struct {
	tolerance float64
	tree      *spatial.QuadTree
	sigs      []signature
}

type signature struct {
	start, mid, end geometry.Point
	kind            Kind
}

func newMerger(width, height int, tolerance float64) *merger {
	return &merger{
		tolerance: tolerance,
		tree:      spatial.NewQuadTree(0, 0, float64(width), float64(height)),
	}
}

func strokeSignature(p Primitive) signature {
	switch p.Kind {
	case KindDot:
		c := geometry.Point{X: p.X, Y: p.Y}
		return signature{start: c, mid: c, end: c, kind: KindDot}
	case KindFill:
		c := p.Rings[0].Centroid()
		return signature{start: c, mid: c, end: c, kind: KindFill}
	default:
		pts := p.Points
		return signature{
			start: pts[0],
			mid:   pts[len(pts)/2],
			end:   pts[len(pts)-1],
			kind:  KindPolyline,
		}
	}
}

// duplicate reports whether an already-admitted primitive matches p within
// tolerance. Open strokes also match their own reversal.
func (m *merger) duplicate(p Primitive) bool {
	sig := strokeSignature(p)
	for _, match := range m.tree.Within(sig.mid, m.tolerance) {
		prev := m.sigs[match.Index]
		if prev.kind != sig.kind {
			continue
		}
		if m.close(prev.start, sig.start) && m.close(prev.end, sig.end) {
			return true
		}
		// Reversed trace of the same feature.
		if m.close(prev.start, sig.end) && m.close(prev.end, sig.start) {
			return true
		}
	}
	return false
}

func (m *merger) close(a, b geometry.Point) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= m.tolerance
}

// admit records p's signature so later passes can dedupe against it.
func (m *merger) admit(p Primitive) {
	sig := strokeSignature(p)
	m.tree.Insert(sig.mid, len(m.sigs))
	m.sigs = append(m.sigs, sig)
}
