// Package assignment solves the per-cycle occupant-to-exit matching as
// an optimal bipartite assignment over a distance-plus-congestion cost
// matrix. Optimal matching matters here: greedy nearest-exit assignment
// overloads single exits under uneven crowd distribution.
package assignment

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/egresslab/go-egress/internal/log"
	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/occupancy"
)

// ErrNoExits is returned when no exit is clear with spare capacity.
// Fatal for the whole cycle: no assignment is possible at all.
var ErrNoExits = errors.New("assignment: no available exits")

// padCost is the sentinel for padding rows/columns of a non-square cost
// matrix. Large enough that padding is never preferred over any real
// pairing, small enough to stay well clear of float overflow in sums.
const padCost = 1e9

// Config holds the assignment engine tunables.
type Config struct {
	// CongestionWeight scales the load/capacity ratio added to the
	// distance cost. Exits loaded before this cycle become less
	// attractive, a negative-feedback load balancing term.
	CongestionWeight float64

	// ImbalanceThreshold is the per-exit load standard deviation above
	// which a warning is surfaced. Non-fatal, operator signal only.
	ImbalanceThreshold float64
}

// DefaultConfig returns the recommended assignment configuration.
func DefaultConfig() Config {
	return Config{
		CongestionWeight:   100,
		ImbalanceThreshold: 25,
	}
}

// Result is the outcome of one cycle's assignment.
type Result struct {
	// ExitFor maps occupant ID to assigned exit ID.
	ExitFor map[string]string

	// Loads is the recounted per-exit occupant count.
	Loads map[string]int

	// LoadStdDev is the standard deviation of per-exit counts.
	LoadStdDev float64

	// Imbalanced is set when LoadStdDev exceeds the threshold.
	Imbalanced bool
}

// Engine computes optimal occupant-to-exit assignments.
type Engine struct {
	cfg Config
}

// New creates an assignment engine.
func New(cfg Config) *Engine {
	if cfg.CongestionWeight == 0 {
		cfg.CongestionWeight = DefaultConfig().CongestionWeight
	}
	if cfg.ImbalanceThreshold == 0 {
		cfg.ImbalanceThreshold = DefaultConfig().ImbalanceThreshold
	}
	return &Engine{cfg: cfg}
}

// Cost returns the assignment cost for one occupant-exit pairing.
// The congestion term uses the exit load from before this cycle.
func (e *Engine) Cost(occ occupancy.Occupant, exit occupancy.Exit) float64 {
	cost := geometry.Distance(occ.Position, exit.Position)
	if exit.Capacity > 0 {
		cost += float64(exit.CurrentLoad) / float64(exit.Capacity) * e.cfg.CongestionWeight
	}
	return cost
}

// slot is one unit of exit capacity offered to the matcher. Exits with
// room for k more occupants contribute k slots, each pricing in the
// marginal congestion of being one person deeper into that exit's load.
type slot struct {
	exit  occupancy.Exit
	depth int // occupants already assigned ahead of this slot
}

func (e *Engine) slotCost(occ occupancy.Occupant, s slot) float64 {
	exit := s.exit
	exit.CurrentLoad += s.depth
	return e.Cost(occ, exit)
}

// Assign matches every occupant to an eligible exit, minimizing total
// cost. Occupants may share an exit up to its remaining capacity; when
// total capacity falls short, exits take overflow (warned via the
// imbalance signal, never rejected).
func (e *Engine) Assign(occupants []occupancy.Occupant, exits []occupancy.Exit) (*Result, error) {
	eligible := make([]occupancy.Exit, 0, len(exits))
	for _, exit := range exits {
		if exit.Eligible() {
			eligible = append(eligible, exit)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoExits
	}

	result := &Result{
		ExitFor: make(map[string]string, len(occupants)),
		Loads:   make(map[string]int, len(eligible)),
	}
	if len(occupants) > 0 {
		e.solve(occupants, eligible, result)
	}

	// Per-exit counts for every eligible exit, zeros included, so the
	// imbalance statistic sees empty exits.
	counts := make([]float64, len(eligible))
	for i, exit := range eligible {
		counts[i] = float64(result.Loads[exit.ID])
	}
	if len(counts) > 1 {
		result.LoadStdDev = stat.StdDev(counts, nil)
	}
	if result.LoadStdDev > e.cfg.ImbalanceThreshold {
		result.Imbalanced = true
		log.Warn("exit load imbalance above threshold",
			"stddev", result.LoadStdDev,
			"threshold", e.cfg.ImbalanceThreshold)
	}
	return result, nil
}

// solve runs one Munkres instance over capacity slots. The matrix is
// padded to square with a sentinel cost; padding rows/columns are never
// selected as real assignments and are discarded from the result.
func (e *Engine) solve(occupants []occupancy.Occupant, exits []occupancy.Exit, result *Result) {
	// Slots per exit: remaining capacity, topped up evenly when total
	// capacity cannot cover every occupant (overflow slots keep pricing
	// marginal congestion, so overload spreads instead of piling up).
	perExit := make([]int, len(exits))
	total := 0
	for i, exit := range exits {
		perExit[i] = exit.Capacity - exit.CurrentLoad
		if perExit[i] < 1 {
			perExit[i] = 1
		}
		total += perExit[i]
	}
	for total < len(occupants) {
		for i := range perExit {
			perExit[i]++
			total++
			if total >= len(occupants) {
				break
			}
		}
	}

	slots := make([]slot, 0, total)
	for i, exit := range exits {
		for d := 0; d < perExit[i]; d++ {
			slots = append(slots, slot{exit: exit, depth: d})
		}
	}

	n := len(occupants)
	if len(slots) > n {
		n = len(slots)
	}
	cost := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i >= len(occupants) || j >= len(slots) {
				cost.Set(i, j, padCost)
				continue
			}
			cost.Set(i, j, e.slotCost(occupants[i], slots[j]))
		}
	}

	colForRow := solveMunkres(cost)
	for i, occ := range occupants {
		j := colForRow[i]
		if j >= len(slots) {
			continue // padding column, only reachable when i is padding too
		}
		result.ExitFor[occ.ID] = slots[j].exit.ID
		result.Loads[slots[j].exit.ID]++
	}
}
