package skeleton

import (
	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

// Node is a skeleton branch point or endpoint.
type Node struct {
	X, Y int
}

// Chain is a pixel run connecting two nodes. A and B index Graph.Nodes; a
// closed loop has A == B. Points includes both node pixels.
type Chain struct {
	A, B   int
	Points geometry.Polyline
}

// Graph is a skeleton represented as an arena of indexed nodes and chains.
// Integer indices instead of pointers keep the structure trivially safe for
// parallel reads and make pruning a matter of slice rebuilds.
type Graph struct {
	Nodes  []Node
	Chains []Chain
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// linked reports whether the skeleton pixel at (x, y) connects to the
// neighbor at offset (dx, dy). A diagonal bridged by an orthogonal skeleton
// pixel does not count: the path already runs through the orthogonal, and
// counting both turns every stair-step corner of a thinned curve into a fake
// junction.
func linked(skel []bool, width, height, x, y, dx, dy int) bool {
	nx, ny := x+dx, y+dy
	if nx < 0 || nx >= width || ny < 0 || ny >= height || !skel[ny*width+nx] {
		return false
	}
	if dx != 0 && dy != 0 && (skel[y*width+nx] || skel[ny*width+x]) {
		return false
	}
	return true
}

// FromMask builds a graph from a 1-pixel-wide skeleton mask. Connectivity is
// the reduced adjacency from linked; pixels with a link count other than 2
// become nodes (endpoints and junctions), and runs of degree-2 pixels between
// them become chains. Pure cycles get one synthetic node.
func FromMask(skel []bool, width, height int) *Graph {
	degree := make([]int8, len(skel))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !skel[i] {
				continue
			}
			for _, o := range neighborOffsets {
				if linked(skel, width, height, x, y, o[0], o[1]) {
					degree[i]++
				}
			}
		}
	}

	g := &Graph{}
	nodeAt := make(map[int]int) // pixel index -> node index
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if skel[i] && degree[i] != 2 {
				nodeAt[i] = len(g.Nodes)
				g.Nodes = append(g.Nodes, Node{X: x, Y: y})
			}
		}
	}

	visited := make([]bool, len(skel))
	type edgeKey struct{ a, b int }
	seenDirect := map[edgeKey]bool{}

	walk := func(startPixel, firstPixel int) {
		startNode := nodeAt[startPixel]
		points := geometry.Polyline{
			{X: float64(startPixel % width), Y: float64(startPixel / width)},
		}
		prev := startPixel
		cur := firstPixel
		for {
			points = append(points, geometry.Point{
				X: float64(cur % width), Y: float64(cur / width),
			})
			if endNode, isNode := nodeAt[cur]; isNode {
				a, b := startNode, endNode
				if len(points) == 2 {
					// Directly adjacent nodes produce the same two-point
					// chain from both ends; keep one.
					if a > b {
						a, b = b, a
					}
					key := edgeKey{a, b}
					if seenDirect[key] {
						return
					}
					seenDirect[key] = true
				}
				g.Chains = append(g.Chains, Chain{A: startNode, B: endNode, Points: points})
				return
			}
			visited[cur] = true
			next := -1
			cx, cy := cur%width, cur/width
			for _, o := range neighborOffsets {
				if !linked(skel, width, height, cx, cy, o[0], o[1]) {
					continue
				}
				j := (cy+o[1])*width + cx + o[0]
				if j != prev && !visited[j] {
					next = j
					break
				}
			}
			if next < 0 {
				// Dead end without a node pixel; close out what we have.
				g.Chains = append(g.Chains, Chain{A: startNode, B: startNode, Points: points})
				return
			}
			prev = cur
			cur = next
		}
	}

	// Chains radiating from nodes, in scan order for deterministic output.
	for _, node := range g.Nodes {
		pixel := node.Y*width + node.X
		for _, o := range neighborOffsets {
			if !linked(skel, width, height, node.X, node.Y, o[0], o[1]) {
				continue
			}
			j := (node.Y+o[1])*width + node.X + o[0]
			if visited[j] {
				continue
			}
			walk(pixel, j)
		}
	}

	// Remaining unvisited degree-2 pixels are pure cycles. Promote one pixel
	// per cycle to a node and walk around.
	for i := 0; i < len(skel); i++ {
		if !skel[i] || visited[i] || degree[i] != 2 {
			continue
		}
		if _, isNode := nodeAt[i]; isNode {
			continue
		}
		nodeAt[i] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{X: i % width, Y: i / width})
		x, y := i%width, i/width
		for _, o := range neighborOffsets {
			if !linked(skel, width, height, x, y, o[0], o[1]) {
				continue
			}
			j := (y+o[1])*width + x + o[0]
			if !visited[j] {
				walk(i, j)
				break
			}
		}
	}

	return g
}

// nodeDegrees counts chains attached to each node. A loop chain counts twice.
func (g *Graph) nodeDegrees() []int {
	deg := make([]int, len(g.Nodes))
	for _, c := range g.Chains {
		deg[c.A]++
		deg[c.B]++
	}
	return deg
}

// Prune repeatedly removes spur chains: chains shorter than minBranch pixels
// hanging off an endpoint. Junction-to-junction chains are never pruned
// regardless of length, so connectivity survives.
func (g *Graph) Prune(minBranch int) {
	if minBranch <= 1 {
		return
	}
	for {
		deg := g.nodeDegrees()
		kept := g.Chains[:0]
		removed := 0
		for _, c := range g.Chains {
			isSpur := len(c.Points) < minBranch &&
				c.A != c.B &&
				(deg[c.A] == 1 || deg[c.B] == 1)
			if isSpur {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		g.Chains = kept
		if removed == 0 {
			return
		}
	}
}

// JoinChains merges chain pairs that meet at a node with exactly two chain
// ends, yielding maximal paths. Pruning often leaves such pass-through nodes
// behind; without joining, one continuous stroke would come out as several
// short ones. A pair whose far ends coincide closes into a loop.
func (g *Graph) JoinChains() {
	for {
		deg := g.nodeDegrees()
		merged := false
		for node := range g.Nodes {
			if deg[node] != 2 {
				continue
			}
			first, second := -1, -1
			for ci := range g.Chains {
				c := &g.Chains[ci]
				if c.A != node && c.B != node {
					continue
				}
				if c.A == c.B {
					// Already a closed loop through this node.
					first, second = -1, -1
					break
				}
				if first < 0 {
					first = ci
				} else {
					second = ci
					break
				}
			}
			if second < 0 {
				continue
			}

			a := g.Chains[first]
			b := g.Chains[second]
			// Orient a to end at the node and b to start there.
			if a.A == node {
				a = reverseChain(a)
			}
			if b.B == node {
				b = reverseChain(b)
			}
			joined := Chain{
				A:      a.A,
				B:      b.B,
				Points: append(append(geometry.Polyline{}, a.Points...), b.Points[1:]...),
			}
			kept := make([]Chain, 0, len(g.Chains)-1)
			for ci := range g.Chains {
				if ci != first && ci != second {
					kept = append(kept, g.Chains[ci])
				}
			}
			g.Chains = append(kept, joined)
			merged = true
			break
		}
		if !merged {
			return
		}
	}
}

func reverseChain(c Chain) Chain {
	pts := make(geometry.Polyline, len(c.Points))
	for i, p := range c.Points {
		pts[len(pts)-1-i] = p
	}
	return Chain{A: c.B, B: c.A, Points: pts}
}

// Polylines returns each chain's pixel run, ready for path construction.
func (g *Graph) Polylines() []geometry.Polyline {
	out := make([]geometry.Polyline, 0, len(g.Chains))
	for _, c := range g.Chains {
		out = append(out, c.Points)
	}
	return out
}
