package superpixel

import (
	"github.com/robmcdonald5/vec2art-sub004/pkg/pool"
	"github.com/robmcdonald5/vec2art-sub004/pkg/trace"
)

// Boundaries traces every region's contours, indexed by region label: the
// outer boundary first, then any enclosed hole boundaries, ready for even-odd
// fills. Regions whose trace exhausts its budget contribute to skipped. The
// pool holds labeling scratch and may be nil.
func (m *LabelMap) Boundaries(ints *pool.IntPool) (regions [][]trace.Contour, skipped int) {
	regions = make([][]trace.Contour, m.Count)
	for label := 0; label < m.Count; label++ {
		contours, sk := trace.Contours(m.RegionMask(label), m.Width, m.Height, ints)
		regions[label] = contours
		skipped += sk
	}
	return regions, skipped
}
