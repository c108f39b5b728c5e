package pathfind

import (
	"container/heap"

	"github.com/egresslab/go-egress/pkg/hazard"
)

// astar finds the cheapest path between two graph nodes. Returns nil if
// either endpoint is missing from the graph or no path exists.
//
// Tie-breaking when two frontier entries share the same f-score: the
// lower heuristic value wins, then the lower (X, Y) coordinate. This
// keeps route output deterministic across runs.
func (g *Graph) astar(start, goal hazard.CellKey) []hazard.CellKey {
	if !g.HasNode(start) || !g.HasNode(goal) {
		return nil
	}

	gScore := map[hazard.CellKey]float64{start: 0}
	cameFrom := make(map[hazard.CellKey]hazard.CellKey)
	closed := make(map[hazard.CellKey]bool)

	open := &frontier{}
	heap.Init(open)
	heap.Push(open, &frontierItem{
		key: start,
		f:   g.euclidean(start, goal),
		h:   g.euclidean(start, goal),
	})

	for open.Len() > 0 {
		current := heap.Pop(open).(*frontierItem)
		if current.key == goal {
			return reconstruct(cameFrom, goal)
		}
		if closed[current.key] {
			continue
		}
		closed[current.key] = true

		for _, e := range g.neighbors(current.key) {
			if closed[e.to] {
				continue
			}
			tentative := gScore[current.key] + e.weight
			if best, seen := gScore[e.to]; seen && tentative >= best {
				continue
			}
			gScore[e.to] = tentative
			cameFrom[e.to] = current.key
			h := g.euclidean(e.to, goal)
			heap.Push(open, &frontierItem{key: e.to, f: tentative + h, h: h})
		}
	}
	return nil
}

func reconstruct(cameFrom map[hazard.CellKey]hazard.CellKey, goal hazard.CellKey) []hazard.CellKey {
	path := []hazard.CellKey{goal}
	cur := goal
	for {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// Reverse in place: reconstruction walks goal → start.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// frontierItem is an open-set entry ordered by f-score.
type frontierItem struct {
	key hazard.CellKey
	f   float64
	h   float64
}

// frontier implements heap.Interface for the A* open set.
type frontier []*frontierItem

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	if q[i].key.X != q[j].key.X {
		return q[i].key.X < q[j].key.X
	}
	return q[i].key.Y < q[j].key.Y
}

func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) {
	*q = append(*q, x.(*frontierItem))
}

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
