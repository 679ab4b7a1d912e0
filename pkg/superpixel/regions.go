package superpixel

// ConnectedRegions relabels the map so that every label is a 4-connected
// region, and returns the region count. SLIC windows can leave a cluster's
// pixels split into disconnected islands; downstream boundary extraction
// needs each label to be one connected component.
func (m *LabelMap) ConnectedRegions() int {
	out := make([]int, len(m.Labels))
	for i := range out {
		out[i] = -1
	}

	next := 0
	var stack []int
	for start := range m.Labels {
		if out[start] >= 0 {
			continue
		}
		orig := m.Labels[start]
		out[start] = next
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.Width, i/m.Width
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
					continue
				}
				j := ny*m.Width + nx
				if out[j] < 0 && m.Labels[j] == orig {
					out[j] = next
					stack = append(stack, j)
				}
			}
		}
		next++
	}

	m.Labels = out
	m.Count = next
	return next
}

// MergeSmallRegions absorbs regions smaller than minSize pixels into their
// largest 4-connected neighbor. Merging only ever reduces the region count.
func (m *LabelMap) MergeSmallRegions(minSize int) {
	if minSize <= 1 {
		return
	}
	for {
		sizes := make([]int, m.Count)
		for _, lab := range m.Labels {
			sizes[lab]++
		}

		// Pick the first small region in label order for determinism.
		small := -1
		for lab, n := range sizes {
			if n > 0 && n < minSize {
				small = lab
				break
			}
		}
		if small < 0 {
			return
		}

		// Find its biggest neighboring region.
		neighborSize := map[int]int{}
		for i, lab := range m.Labels {
			if lab != small {
				continue
			}
			x, y := i%m.Width, i/m.Width
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
					continue
				}
				if n := m.Labels[ny*m.Width+nx]; n != small {
					neighborSize[n] = sizes[n]
				}
			}
		}
		target := -1
		for lab, n := range neighborSize {
			if target < 0 || n > neighborSize[target] || (n == neighborSize[target] && lab < target) {
				target = lab
			}
		}
		if target < 0 {
			// Isolated region covering the whole image; nothing to merge into.
			return
		}

		for i, lab := range m.Labels {
			if lab == small {
				m.Labels[i] = target
			}
		}
		m.compact()
	}
}

// LimitRegions merges the smallest region into its largest neighbor until at
// most max regions remain. Used to restore the requested superpixel budget
// after connectivity relabeling splits clusters into islands.
func (m *LabelMap) LimitRegions(max int) {
	if max < 1 {
		max = 1
	}
	for m.Count > max {
		sizes := make([]int, m.Count)
		for _, lab := range m.Labels {
			sizes[lab]++
		}
		smallest := 0
		for lab, n := range sizes {
			if n < sizes[smallest] {
				smallest = lab
			}
		}

		neighborSize := map[int]int{}
		for i, lab := range m.Labels {
			if lab != smallest {
				continue
			}
			x, y := i%m.Width, i/m.Width
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
					continue
				}
				if n := m.Labels[ny*m.Width+nx]; n != smallest {
					neighborSize[n] = sizes[n]
				}
			}
		}
		target := -1
		for lab, n := range neighborSize {
			if target < 0 || n > neighborSize[target] || (n == neighborSize[target] && lab < target) {
				target = lab
			}
		}
		if target < 0 {
			return
		}
		for i, lab := range m.Labels {
			if lab == smallest {
				m.Labels[i] = target
			}
		}
		m.compact()
	}
}

// compact renumbers labels to be dense in [0, Count).
func (m *LabelMap) compact() {
	remap := make(map[int]int)
	next := 0
	for _, lab := range m.Labels {
		if _, ok := remap[lab]; !ok {
			remap[lab] = next
			next++
		}
	}
	for i, lab := range m.Labels {
		m.Labels[i] = remap[lab]
	}
	m.Count = next
}

// RegionMask returns the binary mask of one region.
func (m *LabelMap) RegionMask(label int) []bool {
	mask := make([]bool, len(m.Labels))
	for i, lab := range m.Labels {
		mask[i] = lab == label
	}
	return mask
}
