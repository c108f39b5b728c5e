package occupancy

import (
	"sort"
	"sync"
)

// ExitStore holds the exit inventory.
type ExitStore struct {
	mu    sync.RWMutex
	exits map[string]*Exit
}

// NewExitStore creates an empty exit inventory.
func NewExitStore() *ExitStore {
	return &ExitStore{exits: make(map[string]*Exit)}
}

// Upsert inserts or replaces an exit record. The previous CurrentLoad is
// preserved on replacement so status updates don't reset load tracking.
func (s *ExitStore) Upsert(exit Exit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.exits[exit.ID]; ok && exit.CurrentLoad == 0 {
		exit.CurrentLoad = prev.CurrentLoad
	}
	e := exit
	s.exits[exit.ID] = &e
}

// Get returns a copy of the exit, or (zero, false) if unknown.
func (s *ExitStore) Get(id string) (Exit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.exits[id]
	if !ok {
		return Exit{}, false
	}
	return *e, true
}

// Remove drops an exit. Returns whether it existed.
func (s *ExitStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exits[id]; !ok {
		return false
	}
	delete(s.exits, id)
	return true
}

// Len returns the number of known exits.
func (s *ExitStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exits)
}

// Snapshot returns a copy of all exits sorted by ID.
func (s *ExitStore) Snapshot() []Exit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Exit, 0, len(s.exits))
	for _, e := range s.exits {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetLoads resets every exit's CurrentLoad from the per-exit counts of
// the cycle's fresh assignment. Exits absent from counts drop to zero:
// loads are recounted, never incremented cumulatively.
func (s *ExitStore) SetLoads(counts map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.exits {
		e.CurrentLoad = counts[id]
	}
}
