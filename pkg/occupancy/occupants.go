package occupancy

import (
	"sort"
	"sync"
	"time"

	"github.com/egresslab/go-egress/pkg/geometry"
)

// DefaultStaleTimeout is how long an occupant may go without a position
// update before being dropped from the roster.
const DefaultStaleTimeout = 30 * time.Second

// PositionUpdate carries an inbound occupant state change. Optional
// fields are pointers: nil leaves the current value untouched.
type PositionUpdate struct {
	Position         geometry.Vector3 `json:"position"`
	Heading          *float64         `json:"heading,omitempty"`
	ViewingDirection *float64         `json:"viewingDirection,omitempty"`
	Speed            *float64         `json:"speed,omitempty"`
}

// OccupantStore holds the live occupant roster.
type OccupantStore struct {
	mu        sync.RWMutex
	occupants map[string]*Occupant
}

// NewOccupantStore creates an empty roster.
func NewOccupantStore() *OccupantStore {
	return &OccupantStore{occupants: make(map[string]*Occupant)}
}

// Register creates or resets an occupant at an initial position.
func (s *OccupantStore) Register(id string, position geometry.Vector3) *Occupant {
	s.mu.Lock()
	defer s.mu.Unlock()

	occ := &Occupant{
		ID:         id,
		Position:   position,
		GroupSize:  1,
		LastUpdate: time.Now(),
	}
	s.occupants[id] = occ
	c := *occ
	return &c
}

// SetGroupSize records how many people move together under one device.
// Values below one are ignored.
func (s *OccupantStore) SetGroupSize(id string, n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	occ, ok := s.occupants[id]
	if !ok || n < 1 {
		return false
	}
	occ.GroupSize = n
	return true
}

// Update applies a position update to an existing occupant. Returns
// false if the occupant is unknown.
func (s *OccupantStore) Update(id string, upd PositionUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	occ, ok := s.occupants[id]
	if !ok {
		return false
	}
	occ.Position = upd.Position
	if upd.Heading != nil {
		occ.Heading = *upd.Heading
	}
	if upd.ViewingDirection != nil {
		occ.ViewingDirection = *upd.ViewingDirection
	}
	if upd.Speed != nil {
		occ.Speed = *upd.Speed
	}
	occ.LastUpdate = time.Now()
	return true
}

// Get returns a copy of the occupant, or (zero, false) if unknown.
func (s *OccupantStore) Get(id string) (Occupant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occ, ok := s.occupants[id]
	if !ok {
		return Occupant{}, false
	}
	return *occ, true
}

// Remove drops an occupant from the roster. Returns whether it existed.
func (s *OccupantStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.occupants[id]; !ok {
		return false
	}
	delete(s.occupants, id)
	return true
}

// Len returns the number of active occupants.
func (s *OccupantStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.occupants)
}

// Snapshot returns a copy of all occupants sorted by ID. Cycle phases
// iterate the snapshot so occupant ordering is deterministic.
func (s *OccupantStore) Snapshot() []Occupant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Occupant, 0, len(s.occupants))
	for _, occ := range s.occupants {
		out = append(out, *occ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PruneStale removes occupants whose last update is older than timeout
// and returns their IDs. Disconnected phones stop holding exit capacity.
func (s *OccupantStore) PruneStale(timeout time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	cutoff := time.Now().Add(-timeout)
	for id, occ := range s.occupants {
		if occ.LastUpdate.Before(cutoff) {
			removed = append(removed, id)
			delete(s.occupants, id)
		}
	}
	return removed
}
