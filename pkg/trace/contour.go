// Package trace converts binary masks into closed contour polylines and fits
// piecewise cubic curves to them.
package trace

import (
	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
	"github.com/robmcdonald5/vec2art-sub004/pkg/pool"
)

// Contour is one closed boundary. Hole contours bound enclosed background and
// render with even-odd fill against their surrounding outline.
type Contour struct {
	Points geometry.Polyline
	Hole   bool
}

// Moore neighborhood in clockwise order starting west.
var mooreOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func mooreIndex(dx, dy int) int {
	for i, o := range mooreOffsets {
		if o[0] == dx && o[1] == dy {
			return i
		}
	}
	return 0
}

// mooreTrace walks the boundary of the region defined by inside, clockwise
// from the region's first pixel in scan order. It returns false if the walk
// does not close within budget steps; callers abandon such components rather
// than retry. Jacob's stopping criterion: terminate when the walk is about to
// repeat its first move out of the start pixel. The walk may pass through the
// start several times on thin shapes, but only the repeated first transition
// means the boundary has closed.
func mooreTrace(inside func(x, y int) bool, sx, sy, budget int) (geometry.Polyline, bool) {
	points := geometry.Polyline{{X: float64(sx), Y: float64(sy)}}

	// The scan reached (sx,sy) from the west, so the initial backtrack is the
	// pixel to its left.
	bx, by := sx-1, sy
	cx, cy := sx, sy
	firstX, firstY := -1, -1

	for steps := 0; steps < budget; steps++ {
		start := (mooreIndex(bx-cx, by-cy) + 1) % 8
		found := false
		for k := 0; k < 8; k++ {
			o := mooreOffsets[(start+k)%8]
			nx, ny := cx+o[0], cy+o[1]
			if inside(nx, ny) {
				if firstX >= 0 && cx == sx && cy == sy && nx == firstX && ny == firstY {
					// Closed; drop the re-entered start pixel from the tail.
					return points[:len(points)-1], true
				}
				if firstX < 0 {
					firstX, firstY = nx, ny
				}
				// Backtrack becomes the last outside neighbor checked before
				// the hit; with k == 0 it is unchanged.
				if k > 0 {
					p := mooreOffsets[(start+k-1)%8]
					bx, by = cx+p[0], cy+p[1]
				}
				cx, cy = nx, ny
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel; a one-point contour is closed by definition.
			return points, true
		}
		points = append(points, geometry.Point{X: float64(cx), Y: float64(cy)})
	}
	return nil, false
}

// acquireInts draws a scratch buffer from the caller's pool, or allocates one
// when no pool was supplied.
func acquireInts(ints *pool.IntPool, n int) []int {
	if ints == nil {
		return make([]int, n)
	}
	return ints.Acquire(n)
}

func releaseInts(ints *pool.IntPool, buf []int) {
	if ints != nil {
		ints.Release(buf)
	}
}

// label floods 8- or 4-connected components. Returns per-pixel component ids
// (-1 outside the predicate), component sizes, and one seed pixel (first in
// scan order) per component. The ids buffer comes from ints; callers release
// it when done.
func label(match []bool, width, height int, diagonal bool, ints *pool.IntPool) (ids []int, sizes []int, seeds []int) {
	ids = acquireInts(ints, width*height)
	for i := range ids {
		ids[i] = -1
	}
	offsets := [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	if diagonal {
		offsets = append(offsets, [2]int{-1, -1}, [2]int{1, -1}, [2]int{-1, 1}, [2]int{1, 1})
	}

	var stack []int
	for start := range match {
		if !match[start] || ids[start] >= 0 {
			continue
		}
		id := len(sizes)
		seeds = append(seeds, start)
		sizes = append(sizes, 0)
		ids[start] = id
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sizes[id]++
			x, y := i%width, i/width
			for _, o := range offsets {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if match[j] && ids[j] < 0 {
					ids[j] = id
					stack = append(stack, j)
				}
			}
		}
	}
	return ids, sizes, seeds
}

// RemoveSpeckles returns a copy of the mask with foreground components and
// enclosed background holes smaller than minArea pixels erased. Holes touching
// the image border are background proper and are never filled. The pool holds
// labeling scratch and may be nil.
func RemoveSpeckles(mask []bool, width, height, minArea int, ints *pool.IntPool) []bool {
	out := make([]bool, len(mask))
	copy(out, mask)
	if minArea <= 1 {
		return out
	}

	fgIDs, fgSizes, _ := label(out, width, height, true, ints)
	for i, id := range fgIDs {
		if id >= 0 && fgSizes[id] < minArea {
			out[i] = false
		}
	}
	releaseInts(ints, fgIDs)

	bg := make([]bool, len(out))
	for i, fg := range out {
		bg[i] = !fg
	}
	bgIDs, bgSizes, _ := label(bg, width, height, false, ints)
	touchesBorder := make([]bool, len(bgSizes))
	for x := 0; x < width; x++ {
		if id := bgIDs[x]; id >= 0 {
			touchesBorder[id] = true
		}
		if id := bgIDs[(height-1)*width+x]; id >= 0 {
			touchesBorder[id] = true
		}
	}
	for y := 0; y < height; y++ {
		if id := bgIDs[y*width]; id >= 0 {
			touchesBorder[id] = true
		}
		if id := bgIDs[y*width+width-1]; id >= 0 {
			touchesBorder[id] = true
		}
	}
	for i, id := range bgIDs {
		if id >= 0 && !touchesBorder[id] && bgSizes[id] < minArea {
			out[i] = true
		}
	}
	releaseInts(ints, bgIDs)
	return out
}

// pointInContours counts, even-odd, how many contours contain p.
func pointInContours(p geometry.Point, contours []Contour) bool {
	inside := false
	for _, c := range contours {
		if c.Hole {
			continue
		}
		n := len(c.Points)
		j := n - 1
		for i := 0; i < n; i++ {
			a, b := c.Points[i], c.Points[j]
			if (a.Y > p.Y) != (b.Y > p.Y) &&
				p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
			j = i
		}
	}
	return inside
}

// Contours traces every foreground component's outer boundary and every
// enclosed hole's boundary. Components whose trace does not close within the
// step budget are dropped and counted in skipped; they are never retried.
// Output order follows the scan order of component seeds, so results are
// deterministic. The pool holds labeling scratch and may be nil.
func Contours(mask []bool, width, height int, ints *pool.IntPool) (contours []Contour, skipped int) {
	if width == 0 || height == 0 {
		return nil, 0
	}
	budget := width*height*4 + 8

	fgIDs, _, fgSeeds := label(mask, width, height, true, ints)
	releaseInts(ints, fgIDs)
	insideFg := func(x, y int) bool {
		return x >= 0 && x < width && y >= 0 && y < height && mask[y*width+x]
	}
	for _, seed := range fgSeeds {
		pts, ok := mooreTrace(insideFg, seed%width, seed/width, budget)
		if !ok {
			skipped++
			continue
		}
		contours = append(contours, Contour{Points: pts})
	}

	// Enclosed background components are hole candidates; confirm with a
	// ray-cast interior test against the outer contours.
	bg := make([]bool, len(mask))
	for i, fg := range mask {
		bg[i] = !fg
	}
	bgIDs, bgSizes, bgSeeds := label(bg, width, height, false, ints)
	defer releaseInts(ints, bgIDs)
	touchesBorder := make([]bool, len(bgSizes))
	for x := 0; x < width; x++ {
		if id := bgIDs[x]; id >= 0 {
			touchesBorder[id] = true
		}
		if id := bgIDs[(height-1)*width+x]; id >= 0 {
			touchesBorder[id] = true
		}
	}
	for y := 0; y < height; y++ {
		if id := bgIDs[y*width]; id >= 0 {
			touchesBorder[id] = true
		}
		if id := bgIDs[y*width+width-1]; id >= 0 {
			touchesBorder[id] = true
		}
	}
	for id, seed := range bgSeeds {
		if touchesBorder[id] {
			continue
		}
		sx, sy := seed%width, seed/width
		if !pointInContours(geometry.Point{X: float64(sx), Y: float64(sy)}, contours) {
			continue
		}
		insideHole := func(x, y int) bool {
			return x >= 0 && x < width && y >= 0 && y < height && bgIDs[y*width+x] == id
		}
		pts, ok := mooreTrace(insideHole, sx, sy, budget)
		if !ok {
			skipped++
			continue
		}
		contours = append(contours, Contour{Points: pts, Hole: true})
	}
	return contours, skipped
}
