package assignment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/occupancy"
)

func clearExit(id string, x float64, capacity int) occupancy.Exit {
	return occupancy.Exit{
		ID:       id,
		Position: geometry.Vector3{X: x},
		Status:   occupancy.ExitClear,
		Capacity: capacity,
	}
}

func occupantAt(id string, x float64) occupancy.Occupant {
	return occupancy.Occupant{ID: id, Position: geometry.Vector3{X: x}}
}

func TestAssign_NoEligibleExits(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Assign(
		[]occupancy.Occupant{occupantAt("a", 0)},
		[]occupancy.Exit{
			{ID: "blocked", Status: occupancy.ExitBlocked, Capacity: 10},
			{ID: "full", Status: occupancy.ExitClear, Capacity: 5, CurrentLoad: 5},
		},
	)
	assert.ErrorIs(t, err, ErrNoExits)
}

func TestAssign_EveryOccupantGetsAnExit(t *testing.T) {
	e := New(DefaultConfig())

	occupants := []occupancy.Occupant{
		occupantAt("a", 1), occupantAt("b", 2), occupantAt("c", 48),
	}
	exits := []occupancy.Exit{clearExit("west", 0, 10), clearExit("east", 50, 10)}

	res, err := e.Assign(occupants, exits)
	require.NoError(t, err)
	require.Len(t, res.ExitFor, 3)

	assert.Equal(t, "west", res.ExitFor["a"])
	assert.Equal(t, "west", res.ExitFor["b"])
	assert.Equal(t, "east", res.ExitFor["c"])
	assert.Equal(t, map[string]int{"west": 2, "east": 1}, res.Loads)
}

// Five occupants clustered near one of two capacity-3 exits: greedy
// nearest-exit would send four to the near exit. The optimal engine must
// split 3/2 and stay under the imbalance threshold.
func TestAssign_SplitsInsteadOfOverloading(t *testing.T) {
	e := New(DefaultConfig())

	occupants := []occupancy.Occupant{
		occupantAt("o1", 1),
		occupantAt("o2", 2),
		occupantAt("o3", 3),
		occupantAt("o4", 4),
		occupantAt("o5", 40),
	}
	exits := []occupancy.Exit{clearExit("near", 0, 3), clearExit("far", 100, 3)}

	res, err := e.Assign(occupants, exits)
	require.NoError(t, err)
	require.Len(t, res.ExitFor, 5, "every occupant must be assigned")

	assert.Equal(t, 3, res.Loads["near"])
	assert.Equal(t, 2, res.Loads["far"])
	assert.False(t, res.Imbalanced)
	assert.Less(t, res.LoadStdDev, e.cfg.ImbalanceThreshold)
}

// Optimality property: total distance-plus-congestion cost never exceeds
// the greedy nearest-exit assignment on the same input.
func TestAssign_NotWorseThanGreedy(t *testing.T) {
	e := New(DefaultConfig())

	occupants := []occupancy.Occupant{
		occupantAt("a", 5), occupantAt("b", 6), occupantAt("c", 7), occupantAt("d", 45),
	}
	exits := []occupancy.Exit{clearExit("x", 0, 2), clearExit("y", 50, 2)}

	res, err := e.Assign(occupants, exits)
	require.NoError(t, err)

	// Greedy: each occupant takes the nearest exit regardless of load.
	greedyFor := make(map[string]string, len(occupants))
	for _, occ := range occupants {
		best := math.Inf(1)
		for _, ex := range exits {
			if c := e.Cost(occ, ex); c < best {
				best = c
				greedyFor[occ.ID] = ex.ID
			}
		}
	}

	// Both assignments priced under the engine's objective: distance
	// plus marginal congestion for each additional occupant at an exit.
	price := func(exitFor map[string]string) float64 {
		exitByID := map[string]occupancy.Exit{}
		for _, ex := range exits {
			exitByID[ex.ID] = ex
		}
		counts := map[string]int{}
		var total float64
		for _, occ := range occupants {
			ex := exitByID[exitFor[occ.ID]]
			total += geometry.Distance(occ.Position, ex.Position)
			counts[ex.ID]++
		}
		for id, n := range counts {
			ex := exitByID[id]
			for k := 0; k < n; k++ {
				total += float64(ex.CurrentLoad+k) / float64(ex.Capacity) * e.cfg.CongestionWeight
			}
		}
		return total
	}

	assert.LessOrEqual(t, price(res.ExitFor), price(greedyFor)+1e-9)
}

func TestAssign_CongestionRepelsLoadedExit(t *testing.T) {
	e := New(DefaultConfig())

	// Equidistant exits, but one is already half loaded from the
	// previous cycle. The congestion term must tip the match.
	occupants := []occupancy.Occupant{occupantAt("a", 25)}
	exits := []occupancy.Exit{
		clearExit("loaded", 0, 10),
		clearExit("empty", 50, 10),
	}
	exits[0].CurrentLoad = 5

	res, err := e.Assign(occupants, exits)
	require.NoError(t, err)
	assert.Equal(t, "empty", res.ExitFor["a"])
}

func TestAssign_OverflowBeyondCapacityWarnsNotRejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImbalanceThreshold = 1 // force the warning path
	e := New(cfg)

	occupants := []occupancy.Occupant{
		occupantAt("a", 0), occupantAt("b", 1), occupantAt("c", 2), occupantAt("d", 3),
	}
	// Single exit with capacity 1: three occupants overflow.
	exits := []occupancy.Exit{clearExit("only", 0, 1)}

	res, err := e.Assign(occupants, exits)
	require.NoError(t, err)
	assert.Len(t, res.ExitFor, 4, "overload is signaled, not rejected")
	assert.Equal(t, 4, res.Loads["only"])
}

func TestAssign_EmptyOccupants(t *testing.T) {
	e := New(DefaultConfig())
	res, err := e.Assign(nil, []occupancy.Exit{clearExit("e", 0, 5)})
	require.NoError(t, err)
	assert.Empty(t, res.ExitFor)
	assert.Zero(t, res.LoadStdDev)
}
