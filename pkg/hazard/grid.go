package hazard

import "sync"

// ImpassableFireThreshold is the fire intensity above which a cell can
// no longer be traversed at all.
const ImpassableFireThreshold = 4.5

// Grid is the mutable hazard grid. External sensing merges partial cell
// maps in; the engine takes an immutable Snapshot once per cycle so
// assignment and planning see consistent state.
type Grid struct {
	mu    sync.RWMutex
	cells map[CellKey]*Cell
}

// NewGrid creates an empty hazard grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[CellKey]*Cell)}
}

// Merge overlays updates onto the grid: insert-or-replace per key.
// Replacement is whole-cell; there is no field-level merge. Returns the
// number of cells touched so the caller can decide on a graph rebuild.
func (g *Grid) Merge(updates map[CellKey]*Cell) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, cell := range updates {
		if cell == nil {
			delete(g.cells, key)
			continue
		}
		c := *cell
		g.cells[key] = &c
	}
	return len(updates)
}

// Cell returns the cell at key, or nil if absent. The returned pointer
// must be treated as read-only.
func (g *Grid) Cell(key CellKey) *Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[key]
}

// Len returns the number of cells carrying hazard state.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Clear removes all hazard state.
func (g *Grid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = make(map[CellKey]*Cell)
}

// Snapshot returns an immutable copy of the grid for one cycle.
func (g *Grid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cells := make(map[CellKey]*Cell, len(g.cells))
	for key, cell := range g.cells {
		c := *cell
		if len(cell.Obstacles) > 0 {
			c.Obstacles = append([]Obstacle(nil), cell.Obstacles...)
		}
		cells[key] = &c
	}
	return Snapshot{cells: cells}
}

// Snapshot is a read-only view of the grid taken at cycle start.
type Snapshot struct {
	cells map[CellKey]*Cell
}

// Cell returns the cell at key, or nil if absent.
func (s Snapshot) Cell(key CellKey) *Cell {
	return s.cells[key]
}

// Len returns the number of cells in the snapshot.
func (s Snapshot) Len() int {
	return len(s.cells)
}

// IsWalkable reports whether the cell at key can be traversed. A cell is
// impassable iff its fire intensity exceeds ImpassableFireThreshold or it
// contains an impassable obstacle. Absent cells are walkable.
func (s Snapshot) IsWalkable(key CellKey) bool {
	return cellWalkable(s.cells[key])
}

func cellWalkable(c *Cell) bool {
	if c == nil {
		return true
	}
	if c.FireIntensity() > ImpassableFireThreshold {
		return false
	}
	for _, obs := range c.Obstacles {
		if obs.Severity == SeverityImpassable {
			return false
		}
	}
	return true
}
