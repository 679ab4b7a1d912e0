package skeleton

// DistanceTransform computes an approximate distance-to-background field over
// the foreground mask using the two-pass 3-4 chamfer metric. Background
// pixels get distance 0.
func DistanceTransform(mask []bool, width, height int) []int {
	const inf = 1 << 29
	dt := make([]int, width*height)
	for i, fg := range mask {
		if fg {
			dt[i] = inf
		}
	}

	at := func(x, y int) int {
		if x < 0 || x >= width || y < 0 || y >= height {
			return 0
		}
		return dt[y*width+x]
	}

	// Forward pass: top-left to bottom-right.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if dt[i] == 0 {
				continue
			}
			d := dt[i]
			if v := at(x-1, y) + 3; v < d {
				d = v
			}
			if v := at(x, y-1) + 3; v < d {
				d = v
			}
			if v := at(x-1, y-1) + 4; v < d {
				d = v
			}
			if v := at(x+1, y-1) + 4; v < d {
				d = v
			}
			dt[i] = d
		}
	}

	// Backward pass: bottom-right to top-left.
	for y := height - 1; y >= 0; y-- {
		for x := width - 1; x >= 0; x-- {
			i := y*width + x
			if dt[i] == 0 {
				continue
			}
			d := dt[i]
			if v := at(x+1, y) + 3; v < d {
				d = v
			}
			if v := at(x, y+1) + 3; v < d {
				d = v
			}
			if v := at(x+1, y+1) + 4; v < d {
				d = v
			}
			if v := at(x-1, y+1) + 4; v < d {
				d = v
			}
			dt[i] = d
		}
	}
	return dt
}

// RidgeMask marks pixels lying on ridges of the distance field: foreground
// pixels whose distance is not exceeded by more than one chamfer step in any
// direction. The result is generally a few pixels wide, so callers thin it
// before graph extraction.
func RidgeMask(dt []int, mask []bool, width, height int) []bool {
	out := make([]bool, len(dt))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !mask[i] {
				continue
			}
			d := dt[i]
			isRidge := true
			for dy := -1; dy <= 1 && isRidge; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					step := 3
					if dx != 0 && dy != 0 {
						step = 4
					}
					if dt[ny*width+nx] > d+step-1 {
						isRidge = false
						break
					}
				}
			}
			out[i] = isRidge
		}
	}
	return out
}

// Quality selects the centerline extraction strategy.
type Quality int

const (
	// HighPerformance walks ridges of the chamfer distance transform and
	// thins only the ridge pixels.
	HighPerformance Quality = iota
	// HighQuality runs Zhang-Suen thinning over the full foreground.
	HighQuality
)

// Extract produces a pruned centerline graph from the foreground mask using
// the selected strategy. Chains shorter than minBranch that dangle from an
// endpoint are pruned as spurs.
func Extract(mask []bool, width, height int, quality Quality, minBranch int) *Graph {
	var skel []bool
	switch quality {
	case HighQuality:
		skel = ZhangSuen(mask, width, height)
	default:
		dt := DistanceTransform(mask, width, height)
		ridge := RidgeMask(dt, mask, width, height)
		// Ridges can be two pixels wide where the chamfer metric ties; a
		// thinning pass over the (sparse) ridge mask settles them.
		skel = ZhangSuen(ridge, width, height)
	}
	g := FromMask(skel, width, height)
	g.Prune(minBranch)
	return g
}
