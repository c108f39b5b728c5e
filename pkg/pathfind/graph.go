package pathfind

import (
	"math"

	"github.com/egresslab/go-egress/pkg/hazard"
)

// Penalty weights for dynamic edge costs.
const (
	fireExpFactor     = 0.5 // fire penalty = exp(intensity * factor)
	smokeFactor       = 0.3 // smoke penalty = intensity * factor
	crowdingFactor    = 5.0 // crowding penalty = (density - threshold) * factor
	crowdingThreshold = 2.0 // people per cell before crowding penalizes
)

// edge is a weighted connection to a neighboring walkable cell.
type edge struct {
	to     hazard.CellKey
	weight float64
}

// Graph is the navigation graph for one cycle: a node per walkable
// in-bounds cell, edges to up-to-8 neighbors weighted by hazard
// penalties. Built from a grid snapshot and read-only afterwards.
type Graph struct {
	bounds    Bounds
	cellSize  float64
	nodes     map[hazard.CellKey]struct{}
	adjacency map[hazard.CellKey][]edge
	edgeCount int
}

// neighborOffsets covers 8-connectivity. Diagonal moves cost √2 × cell size.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// BuildGraph constructs the navigation graph from a hazard snapshot.
func BuildGraph(snap hazard.Snapshot, bounds Bounds, cellSize float64) *Graph {
	g := &Graph{
		bounds:    bounds,
		cellSize:  cellSize,
		nodes:     make(map[hazard.CellKey]struct{}),
		adjacency: make(map[hazard.CellKey][]edge),
	}

	for x := 0; x < bounds.Width; x++ {
		for y := 0; y < bounds.Height; y++ {
			key := hazard.CellKey{X: x, Y: y}
			if snap.IsWalkable(key) {
				g.nodes[key] = struct{}{}
			}
		}
	}

	for key := range g.nodes {
		var edges []edge
		for _, off := range neighborOffsets {
			to := hazard.CellKey{X: key.X + off[0], Y: key.Y + off[1]}
			if !bounds.Contains(to.X, to.Y) {
				continue
			}
			if _, ok := g.nodes[to]; !ok {
				continue
			}

			base := cellSize
			if off[0] != 0 && off[1] != 0 {
				base = math.Sqrt2 * cellSize
			}
			// Penalty averaged over the edge's two endpoints.
			penalty := (cellPenalty(snap.Cell(key)) + cellPenalty(snap.Cell(to))) / 2
			edges = append(edges, edge{to: to, weight: base * (1 + penalty)})
		}
		g.adjacency[key] = edges
		g.edgeCount += len(edges)
	}
	return g
}

// cellPenalty sums the hazard penalties for a single cell. Absent cells
// carry no penalty, so edge cost reduces to base distance on clear grids.
func cellPenalty(c *hazard.Cell) float64 {
	if c == nil {
		return 0
	}
	var p float64
	if c.Fire != nil {
		// Exponential: small fire is cheap, dense fire becomes
		// prohibitively expensive before being outright impassable.
		p += math.Exp(c.Fire.Intensity * fireExpFactor)
	}
	if c.Smoke != nil {
		p += c.Smoke.Intensity * smokeFactor
	}
	if c.Crowding != nil && c.Crowding.Density > crowdingThreshold {
		p += (c.Crowding.Density - crowdingThreshold) * crowdingFactor
	}
	return p
}

// HasNode reports whether the cell is a node in the graph.
func (g *Graph) HasNode(key hazard.CellKey) bool {
	_, ok := g.nodes[key]
	return ok
}

// NodeCount returns the number of walkable cells in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

func (g *Graph) neighbors(key hazard.CellKey) []edge {
	return g.adjacency[key]
}

// euclidean is the A* heuristic: straight-line grid distance. Penalties
// only ever increase edge cost above base distance, so this never
// overestimates and the heuristic stays admissible.
func (g *Graph) euclidean(a, b hazard.CellKey) float64 {
	dx := float64(a.X-b.X) * g.cellSize
	dy := float64(a.Y-b.Y) * g.cellSize
	return math.Sqrt(dx*dx + dy*dy)
}
