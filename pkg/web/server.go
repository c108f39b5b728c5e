// Package web exposes the coordination engine over HTTP and websockets:
// a REST surface for registration and sensing updates, an addressed
// guidance websocket per occupant, and a broadcast monitor feed.
package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/egresslab/go-egress/internal/log"
	"github.com/egresslab/go-egress/pkg/engine"
	"github.com/egresslab/go-egress/pkg/hub"
)

// maxEvents bounds the in-memory event buffer.
const maxEvents = 500

// EventEntry is one line of the operator-facing event feed.
type EventEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // occupant, exit, hazard, building
	Message string `json:"message"`
}

// Server is the engine's HTTP and websocket front end.
type Server struct {
	app    *fiber.App
	port   string
	engine *engine.Engine

	// Hubs for websocket delivery (thread-safe!)
	guidanceHub *hub.Hub
	monitorHub  *hub.Hub

	// Event buffer (last 500 entries)
	events   []EventEntry
	eventsMu sync.RWMutex

	logger *slog.Logger
}

// NewServer creates the front end and wires the engine's transports.
func NewServer(port string, eng *engine.Engine) *Server {
	s := &Server{
		port:        port,
		engine:      eng,
		guidanceHub: hub.New("guidance"),
		monitorHub:  hub.New("monitor"),
		events:      make([]EventEntry, 0, maxEvents),
		logger:      log.Component("web"),
	}
	eng.SetDelivery(s.guidanceHub)
	eng.SetMonitor(s.monitorHub)

	app := fiber.New(fiber.Config{
		AppName:               "Egress Coordinator",
		DisableStartupMessage: true,
	})

	// CORS for local dashboards
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Post("/occupants", s.handleRegister)
	api.Get("/occupants", s.handleListOccupants)
	api.Put("/occupants/:id/position", s.handlePosition)
	api.Post("/occupants/:id/alert", s.handleAlert)
	api.Delete("/occupants/:id", s.handleRemoveOccupant)
	api.Post("/hazards", s.handleHazards)
	api.Get("/exits", s.handleListExits)
	api.Put("/exits/:id", s.handleUpsertExit)
	api.Delete("/exits/:id", s.handleRemoveExit)
	api.Put("/building", s.handleBuilding)
	api.Get("/metrics", s.handleMetrics)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/guidance/:id", websocket.New(s.handleGuidanceWS))
	app.Get("/ws/monitor", websocket.New(s.handleMonitorWS))

	s.app = app
	return s
}

// Start runs the hubs and listens. Blocks until shutdown.
func (s *Server) Start() error {
	go s.guidanceHub.Run()
	go s.monitorHub.Run()

	s.logger.Info("listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// GuidanceHub returns the addressed guidance hub.
func (s *Server) GuidanceHub() *hub.Hub {
	return s.guidanceHub
}

// MonitorHub returns the broadcast monitor hub.
func (s *Server) MonitorHub() *hub.Hub {
	return s.monitorHub
}

// addEvent appends to the event buffer and mirrors it to the monitor
// feed.
func (s *Server) addEvent(eventType, message string) {
	entry := EventEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    eventType,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	s.monitorHub.BroadcastJSON(entry)
}
