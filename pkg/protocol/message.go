// Package protocol defines the WebSocket and REST message shapes spoken
// between the evacuation engine and its external collaborators: sensing
// upstream, rendering and mobile clients downstream.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/hazard"
	"github.com/egresslab/go-egress/pkg/occupancy"
)

// MessageType identifies the type of message.
type MessageType string

const (
	// Inbound: collaborators → engine
	TypeRegister       MessageType = "register"        // occupant registration
	TypePositionUpdate MessageType = "position-update" // occupant state update
	TypeStop           MessageType = "stop"            // explicit occupant removal
	TypeHazardUpdate   MessageType = "hazard-update"   // partial grid merge
	TypeExitUpdate     MessageType = "exit-update"     // exit record upsert
	TypeBuildingConfig MessageType = "building-config" // grid bounds / floor height

	// Outbound: engine → collaborators
	TypeRouteUpdate        MessageType = "route-update"
	TypeHazardAlert        MessageType = "hazard-alert"
	TypeEvacuationComplete MessageType = "evacuation-complete"
	TypeMetrics            MessageType = "metrics"
	TypeRegistered         MessageType = "registered"
	TypeError              MessageType = "error"

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Inbound payloads
// =============================================================================

// RegisterRequest enrolls an occupant. ID is optional; the engine
// assigns one when omitted.
type RegisterRequest struct {
	OccupantID      string           `json:"occupantId,omitempty"`
	InitialPosition geometry.Vector3 `json:"initialPosition"`
	GroupSize       int              `json:"groupSize,omitempty"`
}

// RegisterResponse confirms enrollment.
type RegisterResponse struct {
	OccupantID string `json:"occupantId"`
}

// PositionUpdateRequest carries an occupant state change. Optional
// fields left nil keep their current value.
type PositionUpdateRequest struct {
	Position         geometry.Vector3 `json:"position"`
	Heading          *float64         `json:"heading,omitempty"`
	ViewingDirection *float64         `json:"viewingDirection,omitempty"`
	Speed            *float64         `json:"speed,omitempty"`
}

// HazardUpdateRequest is a partial grid merge keyed by canonical "x,y"
// cell keys. A null cell clears that key.
type HazardUpdateRequest struct {
	Cells map[string]*hazard.Cell `json:"cells"`
}

// ParseCells converts the wire cell map into grid keys.
func (r *HazardUpdateRequest) ParseCells() (map[hazard.CellKey]*hazard.Cell, error) {
	out := make(map[hazard.CellKey]*hazard.Cell, len(r.Cells))
	for raw, cell := range r.Cells {
		key, err := hazard.ParseCellKey(raw)
		if err != nil {
			return nil, err
		}
		out[key] = cell
	}
	return out, nil
}

// ExitUpdateRequest upserts an exit record. ExitID rides in the body
// for websocket transport; the REST route takes it from the path and
// ignores the field.
type ExitUpdateRequest struct {
	ExitID   string               `json:"exitId,omitempty"`
	Position geometry.Vector3     `json:"position"`
	Status   occupancy.ExitStatus `json:"status"`
	Capacity int                  `json:"capacity"`
}

// BuildingConfigRequest sets the grid bounds and floor height.
type BuildingConfigRequest struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FloorHeight float64 `json:"floorHeight,omitempty"`
}

// =============================================================================
// Bidirectional payloads
// =============================================================================

// PingData contains ping information.
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains the pong response.
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}

// ErrorData carries a client-facing error string.
type ErrorData struct {
	Error string `json:"error"`
}
