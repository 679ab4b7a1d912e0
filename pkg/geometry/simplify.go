package geometry

import (
	"container/heap"
)

// SimplifyRDP simplifies the polyline with the Ramer-Douglas-Peucker
// algorithm. It uses an explicit work stack instead of recursion so that
// pathological inputs (very long, very noisy polylines) cannot exhaust the
// goroutine stack.
func (line Polyline) SimplifyRDP(epsilon float64) Polyline {
	if len(line) < 3 {
		return line
	}

	keep := make([]bool, len(line))
	keep[0] = true
	keep[len(line)-1] = true

	type span struct{ first, last int }
	stack := []span{{0, len(line) - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		chord := LineSegment{A: line[s.first], B: line[s.last]}
		dmax := 0.0
		index := s.first
		for i := s.first + 1; i < s.last; i++ {
			d := chord.Distance(line[i])
			if d > dmax {
				index = i
				dmax = d
			}
		}

		if dmax > epsilon {
			keep[index] = true
			stack = append(stack, span{s.first, index}, span{index, s.last})
		}
	}

	out := make(Polyline, 0, len(line))
	for i, p := range line {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// triangleArea returns twice the area of the triangle abc. Comparing doubled
// areas avoids a division in the heap's hot path.
func triangleArea(a, b, c Point) float64 {
	area := b.Minus(a).CrossProductZ(c.Minus(a))
	if area < 0 {
		return -area
	}
	return area
}

type vwVertex struct {
	point Point
	area  float64
	index int // heap index, -1 once removed
	prev  int
	next  int
}

type vwHeap struct {
	verts []vwVertex
	order []int // heap of indices into verts
}

func (h *vwHeap) Len() int { return len(h.order) }
func (h *vwHeap) Less(i, j int) bool {
	return h.verts[h.order[i]].area < h.verts[h.order[j]].area
}
func (h *vwHeap) Swap(i, j int) {
	h.order[i], h.order[j] = h.order[j], h.order[i]
	h.verts[h.order[i]].index = i
	h.verts[h.order[j]].index = j
}
func (h *vwHeap) Push(x any) {
	idx := x.(int)
	h.verts[idx].index = len(h.order)
	h.order = append(h.order, idx)
}
func (h *vwHeap) Pop() any {
	n := len(h.order)
	idx := h.order[n-1]
	h.order = h.order[:n-1]
	h.verts[idx].index = -1
	return idx
}

// SimplifyVisvalingam simplifies the polyline with the Visvalingam-Whyatt
// algorithm: interior points are removed smallest-triangle-first until every
// remaining point's triangle area exceeds the threshold derived from epsilon.
// Using epsilon² keeps the parameter comparable to the RDP distance epsilon.
func (line Polyline) SimplifyVisvalingam(epsilon float64) Polyline {
	if len(line) < 3 {
		return line
	}
	// Doubled-area threshold; triangleArea returns doubled areas.
	threshold := 2 * epsilon * epsilon

	h := &vwHeap{verts: make([]vwVertex, len(line))}
	for i, p := range line {
		h.verts[i] = vwVertex{point: p, index: -1, prev: i - 1, next: i + 1}
	}
	for i := 1; i < len(line)-1; i++ {
		h.verts[i].area = triangleArea(line[i-1], line[i], line[i+1])
		h.order = append(h.order, i)
		h.verts[i].index = len(h.order) - 1
	}
	heap.Init(h)

	removed := 0
	for h.Len() > 0 {
		idx := h.order[0]
		if h.verts[idx].area > threshold {
			break
		}
		heap.Pop(h)
		removed++

		// Unlink the vertex and recompute its neighbors' areas.
		prev := h.verts[idx].prev
		next := h.verts[idx].next
		h.verts[prev].next = next
		h.verts[next].prev = prev

		for _, n := range []int{prev, next} {
			if n <= 0 || n >= len(line)-1 || h.verts[n].index < 0 {
				continue
			}
			h.verts[n].area = triangleArea(
				h.verts[h.verts[n].prev].point,
				h.verts[n].point,
				h.verts[h.verts[n].next].point)
			heap.Fix(h, h.verts[n].index)
		}
	}

	out := make(Polyline, 0, len(line)-removed)
	for i := 0; i >= 0 && i < len(line); i = h.verts[i].next {
		out = append(out, h.verts[i].point)
	}
	return out
}
