// Package engine runs the fixed-cadence evacuation coordination cycle:
// exit assignment, hazard-aware route planning, and guidance delivery.
// Each cycle works over immutable snapshots of the occupant roster, exit
// table, and hazard grid; external updates land between cycles.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/egresslab/go-egress/internal/log"
	"github.com/egresslab/go-egress/pkg/assignment"
	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/guidance"
	"github.com/egresslab/go-egress/pkg/hazard"
	"github.com/egresslab/go-egress/pkg/occupancy"
	"github.com/egresslab/go-egress/pkg/pathfind"
	"github.com/egresslab/go-egress/pkg/protocol"
)

// Sender delivers a message to a single occupant's connection.
type Sender interface {
	Send(occupantID string, msg *protocol.Message) error
}

// Broadcaster fans a message out to every connected client.
type Broadcaster interface {
	Broadcast(msg *protocol.Message) error
}

// Engine owns the coordination state and the cycle loop.
type Engine struct {
	cfg Config

	occupants *occupancy.OccupantStore
	exits     *occupancy.ExitStore
	grid      *hazard.Grid
	planner   *pathfind.Planner
	assigner  *assignment.Engine
	generator *guidance.Generator

	delivery Sender
	monitor  Broadcaster

	logger *slog.Logger

	mu           sync.RWMutex
	metrics      Metrics
	pendingCells int // grid cells touched since last graph rebuild

	// Staged building geometry. The planner is only ever touched by the
	// cycle goroutine; handler goroutines stage changes here and the
	// next cycle applies them before taking its snapshot.
	pendingBounds      *pathfind.Bounds
	pendingFloorHeight float64
	graphDirty         bool
}

// New creates an engine with fresh stores. Delivery is wired separately
// so the transport can be brought up after the loop state exists.
func New(cfg Config) *Engine {
	if cfg.CyclePeriod <= 0 {
		cfg.CyclePeriod = DefaultConfig().CyclePeriod
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.ArrivalRadius <= 0 {
		cfg.ArrivalRadius = DefaultConfig().ArrivalRadius
	}

	return &Engine{
		cfg:        cfg,
		occupants:  occupancy.NewOccupantStore(),
		exits:      occupancy.NewExitStore(),
		grid:       hazard.NewGrid(),
		planner:    pathfind.New(cfg.Planner),
		assigner:   assignment.New(cfg.Assignment),
		generator:  guidance.New(),
		logger:     log.Component("engine"),
		graphDirty: true, // force the first rebuild
	}
}

// SetDelivery wires the per-occupant guidance transport.
func (e *Engine) SetDelivery(d Sender) {
	e.delivery = d
}

// SetMonitor wires the monitor broadcast transport.
func (e *Engine) SetMonitor(b Broadcaster) {
	e.monitor = b
}

// Occupants exposes the live occupant roster.
func (e *Engine) Occupants() *occupancy.OccupantStore {
	return e.occupants
}

// Exits exposes the live exit table.
func (e *Engine) Exits() *occupancy.ExitStore {
	return e.exits
}

// MergeHazards applies a partial grid update and records the touched
// cell count for rebuild bookkeeping.
func (e *Engine) MergeHazards(updates map[hazard.CellKey]*hazard.Cell) int {
	touched := e.grid.Merge(updates)
	e.mu.Lock()
	e.pendingCells += touched
	e.mu.Unlock()
	return touched
}

// SetBuilding stages new grid bounds and optionally a new floor height.
// Safe to call from any goroutine; the change takes effect at the start
// of the next cycle, never while workers are routing.
func (e *Engine) SetBuilding(width, height int, floorHeight float64) {
	e.mu.Lock()
	e.pendingBounds = &pathfind.Bounds{Width: width, Height: height}
	e.pendingFloorHeight = floorHeight
	e.graphDirty = true
	e.mu.Unlock()
	e.logger.Info("building configured",
		"width", width, "height", height, "floorHeight", floorHeight)
}

// applyBuildingConfig moves staged geometry changes into the planner.
// Called only from the cycle goroutine, before the cycle snapshot.
func (e *Engine) applyBuildingConfig() {
	e.mu.Lock()
	bounds := e.pendingBounds
	floorHeight := e.pendingFloorHeight
	e.pendingBounds = nil
	e.pendingFloorHeight = 0
	e.mu.Unlock()

	if bounds != nil {
		e.planner.SetBounds(*bounds)
	}
	e.planner.SetFloorHeight(floorHeight) // no-op when non-positive
}

// AlertOccupant pushes an out-of-band hazard alert to one occupant,
// outside the normal cycle cadence.
func (e *Engine) AlertOccupant(occupantID string, warning pathfind.HazardWarning) error {
	if _, ok := e.occupants.Get(occupantID); !ok {
		return ErrUnknownOccupant
	}
	payload := e.generator.HazardAlert(occupantID, warning)
	return e.send(occupantID, protocol.TypeHazardAlert, payload)
}

// Metrics returns a snapshot of the loop counters.
func (e *Engine) Metrics() Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics
}

// Run drives the coordination loop until the context is cancelled.
// Cycles never overlap: a cycle that outruns the period simply delays
// the next tick, it is not cancelled mid-flight.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.CyclePeriod)
	defer ticker.Stop()

	e.logger.Info("coordination loop started", "period", e.cfg.CyclePeriod)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("coordination loop stopped")
			return
		case <-ticker.C:
			e.runCycle()
		}
	}
}

// runCycle executes one assign → plan → deliver pass.
func (e *Engine) runCycle() {
	start := time.Now()

	if e.cfg.StaleTimeout > 0 {
		if pruned := e.occupants.PruneStale(e.cfg.StaleTimeout); len(pruned) > 0 {
			e.logger.Info("pruned stale occupants", "count", len(pruned), "ids", pruned)
		}
	}

	e.applyBuildingConfig()

	occupants := e.occupants.Snapshot()
	exits := e.exits.Snapshot()
	gridSnap := e.grid.Snapshot()

	e.maybeRebuild(gridSnap)

	assignments, failures := 0, 0
	if len(occupants) > 0 {
		result, err := e.assigner.Assign(occupants, exits)
		if err != nil {
			if errors.Is(err, assignment.ErrNoExits) {
				e.logger.Error("no available exits, cycle aborted",
					"occupants", len(occupants))
			} else {
				e.logger.Error("assignment failed", "error", err)
			}
			e.finishCycle(start, 0, 0)
			return
		}
		e.exits.SetLoads(result.Loads)
		assignments = len(result.ExitFor)

		exitByID := make(map[string]occupancy.Exit, len(exits))
		for _, exit := range exits {
			exitByID[exit.ID] = exit
		}
		var delivered int
		delivered, failures = e.fanOut(occupants, exitByID, result, gridSnap)
		e.logger.Debug("cycle fan-out done",
			"assigned", assignments, "delivered", delivered, "failures", failures)
	}

	e.finishCycle(start, assignments, failures)
}

// fanOut plans and delivers guidance for each assigned occupant on a
// bounded worker pool. Per-occupant failures are logged and skipped;
// they never take down the cycle.
func (e *Engine) fanOut(
	occupants []occupancy.Occupant,
	exitByID map[string]occupancy.Exit,
	result *assignment.Result,
	gridSnap hazard.Snapshot,
) (delivered, failures int) {
	var (
		wg        sync.WaitGroup
		tally     sync.Mutex
		work      = make(chan occupancy.Occupant)
		evacuated int64
	)

	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for occ := range work {
				switch e.serveOccupant(occ, exitByID, result, gridSnap) {
				case servedRoute:
					tally.Lock()
					delivered++
					tally.Unlock()
				case servedArrival:
					tally.Lock()
					delivered++
					evacuated++
					tally.Unlock()
				case servedFailed:
					tally.Lock()
					failures++
					tally.Unlock()
				}
			}
		}()
	}

	for _, occ := range occupants {
		work <- occ
	}
	close(work)
	wg.Wait()

	if evacuated > 0 {
		e.mu.Lock()
		e.metrics.Evacuated += evacuated
		e.mu.Unlock()
	}
	return delivered, failures
}

type serveOutcome int

const (
	servedRoute serveOutcome = iota
	servedArrival
	servedFailed
	servedSkipped
)

// serveOccupant handles one occupant within a cycle: arrival check,
// route planning, guidance delivery.
func (e *Engine) serveOccupant(
	occ occupancy.Occupant,
	exitByID map[string]occupancy.Exit,
	result *assignment.Result,
	gridSnap hazard.Snapshot,
) serveOutcome {
	exitID, ok := result.ExitFor[occ.ID]
	if !ok {
		return servedSkipped
	}
	exit, ok := exitByID[exitID]
	if !ok {
		return servedSkipped
	}

	if geometry.Distance(occ.Position, exit.Position) < e.cfg.ArrivalRadius {
		payload := e.generator.EvacuationComplete(occ.ID, exit.ID)
		if err := e.send(occ.ID, protocol.TypeEvacuationComplete, payload); err != nil {
			e.logger.Warn("evacuation-complete delivery failed",
				"occupant", occ.ID, "error", err)
		}
		e.occupants.Remove(occ.ID)
		e.logger.Info("occupant evacuated", "occupant", occ.ID, "exit", exit.ID)
		return servedArrival
	}

	route, err := e.planner.FindRoute(occ.Position, exit.Position, gridSnap)
	if err != nil {
		e.logger.Warn("no route for occupant",
			"occupant", occ.ID, "exit", exit.ID, "error", err)
		return servedFailed
	}

	payload := e.generator.RouteUpdate(occ.ID, route, occ.Heading)
	if err := e.send(occ.ID, protocol.TypeRouteUpdate, payload); err != nil {
		e.logger.Warn("guidance delivery failed", "occupant", occ.ID, "error", err)
		return servedFailed
	}
	return servedRoute
}

// send wraps a guidance payload in the wire envelope and hands it to
// the delivery transport. No transport wired is not an error; the
// engine can run headless in tests and simulations.
func (e *Engine) send(occupantID string, msgType protocol.MessageType, payload *guidance.Payload) error {
	if e.delivery == nil {
		return nil
	}
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return e.delivery.Send(occupantID, msg)
}

// maybeRebuild reconstructs the navigation graph when enough grid cells
// changed or the building geometry did.
func (e *Engine) maybeRebuild(snap hazard.Snapshot) {
	e.mu.Lock()
	rebuild := e.graphDirty || e.pendingCells > e.cfg.RebuildThreshold
	if rebuild {
		e.graphDirty = false
		e.pendingCells = 0
	}
	e.mu.Unlock()

	if rebuild {
		e.planner.Rebuild(snap)
	}
}

// finishCycle records metrics and emits the monitor snapshot.
func (e *Engine) finishCycle(start time.Time, assignments, failures int) {
	took := time.Since(start)
	if took > e.cfg.CyclePeriod*9/10 {
		e.logger.Warn("cycle ran long",
			"took", took, "period", e.cfg.CyclePeriod)
	}

	e.mu.Lock()
	e.metrics.CycleCount++
	e.metrics.LastCycleMs = float64(took.Microseconds()) / 1000
	e.metrics.Occupants = e.occupants.Len()
	e.metrics.Exits = e.exits.Len()
	e.metrics.HazardCells = e.grid.Len()
	e.metrics.Assignments = assignments
	e.metrics.RouteFailures = failures
	e.metrics.GraphNodes = e.planner.NodeCount()
	e.metrics.GraphEdges = e.planner.EdgeCount()
	e.metrics.UpdatedAt = time.Now()
	snapshot := e.metrics
	e.mu.Unlock()

	if e.monitor != nil {
		if msg, err := protocol.NewMessage(protocol.TypeMetrics, snapshot); err == nil {
			e.monitor.Broadcast(msg)
		}
	}
}
