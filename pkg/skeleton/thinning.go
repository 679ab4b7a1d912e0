// Package skeleton extracts centerline graphs from binary foreground maps.
// Two strategies are provided behind one entry point: a distance-transform
// ridge extractor (fast) and Zhang-Suen thinning (slower, better on thin
// branching structures). Both converge to a 1-pixel-wide skeleton.
package skeleton

// ZhangSuen thins the foreground mask to a 1-pixel-wide skeleton. The input
// mask is not modified.
func ZhangSuen(mask []bool, width, height int) []bool {
	cur := make([]bool, len(mask))
	copy(cur, mask)

	at := func(m []bool, x, y int) bool {
		if x < 0 || x >= width || y < 0 || y >= height {
			return false
		}
		return m[y*width+x]
	}

	// Neighbors P2..P9 clockwise from north.
	offsets := [8][2]int{
		{0, -1}, {1, -1}, {1, 0}, {1, 1},
		{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}

	var toClear []int
	for {
		changed := false
		for pass := 0; pass < 2; pass++ {
			toClear = toClear[:0]
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					if !cur[y*width+x] {
						continue
					}
					var p [8]bool
					count := 0
					for i, o := range offsets {
						p[i] = at(cur, x+o[0], y+o[1])
						if p[i] {
							count++
						}
					}
					if count < 2 || count > 6 {
						continue
					}
					// Transitions false->true around the ring.
					trans := 0
					for i := 0; i < 8; i++ {
						if !p[i] && p[(i+1)%8] {
							trans++
						}
					}
					if trans != 1 {
						continue
					}
					// p[0]=N, p[2]=E, p[4]=S, p[6]=W
					if pass == 0 {
						if (p[0] && p[2] && p[4]) || (p[2] && p[4] && p[6]) {
							continue
						}
					} else {
						if (p[0] && p[2] && p[6]) || (p[0] && p[4] && p[6]) {
							continue
						}
					}
					toClear = append(toClear, y*width+x)
				}
			}
			for _, i := range toClear {
				cur[i] = false
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return cur
}
