package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/egresslab/go-egress/pkg/engine"
	"github.com/egresslab/go-egress/pkg/hub"
	"github.com/egresslab/go-egress/pkg/occupancy"
	"github.com/egresslab/go-egress/pkg/pathfind"
	"github.com/egresslab/go-egress/pkg/protocol"
)

// handleRegister enrolls an occupant. When no ID is supplied a UUID is
// assigned.
func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req protocol.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	id := req.OccupantID
	if id == "" {
		id = uuid.NewString()
	}

	s.engine.Occupants().Register(id, req.InitialPosition)
	if req.GroupSize > 1 {
		s.engine.Occupants().SetGroupSize(id, req.GroupSize)
	}
	s.addEvent("occupant", "registered "+id)

	return c.Status(fiber.StatusCreated).JSON(protocol.RegisterResponse{OccupantID: id})
}

// handleListOccupants returns the current roster.
func (s *Server) handleListOccupants(c *fiber.Ctx) error {
	return c.JSON(s.engine.Occupants().Snapshot())
}

// handlePosition applies an occupant state update.
func (s *Server) handlePosition(c *fiber.Ctx) error {
	id := c.Params("id")

	var req protocol.PositionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	ok := s.engine.Occupants().Update(id, occupancy.PositionUpdate{
		Position:         req.Position,
		Heading:          req.Heading,
		ViewingDirection: req.ViewingDirection,
		Speed:            req.Speed,
	})
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown occupant",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleAlert pushes an out-of-band hazard alert to one occupant.
func (s *Server) handleAlert(c *fiber.Ctx) error {
	id := c.Params("id")

	var warning pathfind.HazardWarning
	if err := c.BodyParser(&warning); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := s.engine.AlertOccupant(id, warning); err != nil {
		if errors.Is(err, engine.ErrUnknownOccupant) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown occupant",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleRemoveOccupant drops an occupant from the roster.
func (s *Server) handleRemoveOccupant(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.engine.Occupants().Remove(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown occupant",
		})
	}
	s.addEvent("occupant", "removed "+id)
	return c.SendStatus(fiber.StatusNoContent)
}

// handleHazards merges a partial hazard grid update.
func (s *Server) handleHazards(c *fiber.Ctx) error {
	var req protocol.HazardUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	cells, err := req.ParseCells()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	touched := s.engine.MergeHazards(cells)
	s.addEvent("hazard", fmt.Sprintf("merged %d cells", touched))
	return c.JSON(fiber.Map{"touched": touched})
}

// handleListExits returns the current exit table.
func (s *Server) handleListExits(c *fiber.Ctx) error {
	return c.JSON(s.engine.Exits().Snapshot())
}

// handleUpsertExit creates or updates an exit record.
func (s *Server) handleUpsertExit(c *fiber.Ctx) error {
	id := c.Params("id")

	var req protocol.ExitUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Capacity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "capacity must be non-negative",
		})
	}

	s.engine.Exits().Upsert(occupancy.Exit{
		ID:       id,
		Position: req.Position,
		Status:   req.Status,
		Capacity: req.Capacity,
	})
	s.addEvent("exit", fmt.Sprintf("%s %s cap=%d", id, req.Status, req.Capacity))
	return c.SendStatus(fiber.StatusNoContent)
}

// handleRemoveExit drops an exit from the table.
func (s *Server) handleRemoveExit(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.engine.Exits().Remove(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown exit",
		})
	}
	s.addEvent("exit", "removed "+id)
	return c.SendStatus(fiber.StatusNoContent)
}

// handleBuilding replaces the grid bounds and floor height.
func (s *Server) handleBuilding(c *fiber.Ctx) error {
	var req protocol.BuildingConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Width <= 0 || req.Height <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "width and height must be positive",
		})
	}

	s.engine.SetBuilding(req.Width, req.Height, req.FloorHeight)
	s.addEvent("building", fmt.Sprintf("%dx%d cells", req.Width, req.Height))
	return c.SendStatus(fiber.StatusNoContent)
}

// handleMetrics returns the engine's loop counters.
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.engine.Metrics())
}

// handleEvents returns recent operator events.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

// handleGuidanceWS serves an occupant's guidance stream. The occupant
// must already be registered.
func (s *Server) handleGuidanceWS(c *websocket.Conn) {
	id := c.Params("id")
	if _, ok := s.engine.Occupants().Get(id); !ok {
		if msg, err := protocol.NewErrorMessage("unknown occupant"); err == nil {
			if data, err := msg.Bytes(); err == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}
		}
		c.Close()
		return
	}

	client := hub.NewClient(s.guidanceHub, c, id, func(c *hub.Client, data []byte) {
		s.onGuidanceMessage(c.OccupantID(), data)
	})
	client.Run() // Blocks until connection closes
}

// handleMonitorWS serves the broadcast monitor feed. Listen-only.
func (s *Server) handleMonitorWS(c *websocket.Conn) {
	// Replay the event buffer so dashboards start with history
	s.eventsMu.RLock()
	for _, entry := range s.events {
		c.WriteJSON(entry)
	}
	s.eventsMu.RUnlock()

	client := hub.NewClient(s.monitorHub, c, "", nil)
	client.Run()
}

// onGuidanceMessage dispatches inbound traffic from an occupant's
// guidance connection. Besides its own state updates, a device may
// report hazards it observes and relay exit or building configuration
// from co-located sensing clients.
func (s *Server) onGuidanceMessage(occupantID string, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.sendError(occupantID, "malformed message")
		return
	}

	switch msg.Type {
	case protocol.TypeRegister:
		// Reconnect with a fresh starting position; the occupant ID is
		// fixed by the socket path.
		req, err := msg.GetRegisterRequest()
		if err != nil {
			s.sendError(occupantID, "malformed register request")
			return
		}
		s.engine.Occupants().Register(occupantID, req.InitialPosition)
		if req.GroupSize > 1 {
			s.engine.Occupants().SetGroupSize(occupantID, req.GroupSize)
		}
		if resp, err := protocol.NewRegisteredMessage(occupantID); err == nil {
			s.guidanceHub.Send(occupantID, resp)
		}

	case protocol.TypePositionUpdate:
		req, err := msg.GetPositionUpdate()
		if err != nil {
			s.sendError(occupantID, "malformed position update")
			return
		}
		s.engine.Occupants().Update(occupantID, occupancy.PositionUpdate{
			Position:         req.Position,
			Heading:          req.Heading,
			ViewingDirection: req.ViewingDirection,
			Speed:            req.Speed,
		})

	case protocol.TypeStop:
		s.engine.Occupants().Remove(occupantID)
		s.addEvent("occupant", "stopped "+occupantID)

	case protocol.TypeHazardUpdate:
		req, err := msg.GetHazardUpdate()
		if err != nil {
			s.sendError(occupantID, "malformed hazard update")
			return
		}
		cells, err := req.ParseCells()
		if err != nil {
			s.sendError(occupantID, err.Error())
			return
		}
		touched := s.engine.MergeHazards(cells)
		s.addEvent("hazard", fmt.Sprintf("merged %d cells (reported by %s)", touched, occupantID))

	case protocol.TypeExitUpdate:
		req, err := msg.GetExitUpdate()
		if err != nil || req.ExitID == "" {
			s.sendError(occupantID, "malformed exit update")
			return
		}
		s.engine.Exits().Upsert(occupancy.Exit{
			ID:       req.ExitID,
			Position: req.Position,
			Status:   req.Status,
			Capacity: req.Capacity,
		})
		s.addEvent("exit", fmt.Sprintf("%s %s cap=%d", req.ExitID, req.Status, req.Capacity))

	case protocol.TypeBuildingConfig:
		req, err := msg.GetBuildingConfig()
		if err != nil || req.Width <= 0 || req.Height <= 0 {
			s.sendError(occupantID, "malformed building config")
			return
		}
		s.engine.SetBuilding(req.Width, req.Height, req.FloorHeight)
		s.addEvent("building", fmt.Sprintf("%dx%d cells", req.Width, req.Height))

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return
		}
		if pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, nowMilli()); err == nil {
			s.guidanceHub.Send(occupantID, pong)
		}

	default:
		s.sendError(occupantID, "unsupported message type: "+string(msg.Type))
	}
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}

// sendError pushes a protocol error message to one occupant.
func (s *Server) sendError(occupantID, text string) {
	if msg, err := protocol.NewErrorMessage(text); err == nil {
		s.guidanceHub.Send(occupantID, msg)
	}
}
