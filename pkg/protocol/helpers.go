package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewRegisteredMessage confirms an occupant registration.
func NewRegisteredMessage(occupantID string) (*Message, error) {
	return NewMessage(TypeRegistered, RegisterResponse{OccupantID: occupantID})
}

// NewErrorMessage wraps a client-facing error string.
func NewErrorMessage(err string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Error: err})
}

// NewPingMessage creates a ping message.
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message.
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetRegisterRequest extracts a registration request from a message.
func (m *Message) GetRegisterRequest() (*RegisterRequest, error) {
	var data RegisterRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPositionUpdate extracts a position update from a message.
func (m *Message) GetPositionUpdate() (*PositionUpdateRequest, error) {
	var data PositionUpdateRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetHazardUpdate extracts a hazard grid update from a message.
func (m *Message) GetHazardUpdate() (*HazardUpdateRequest, error) {
	var data HazardUpdateRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetExitUpdate extracts an exit upsert from a message.
func (m *Message) GetExitUpdate() (*ExitUpdateRequest, error) {
	var data ExitUpdateRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetBuildingConfig extracts a building configuration from a message.
func (m *Message) GetBuildingConfig() (*BuildingConfigRequest, error) {
	var data BuildingConfigRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message.
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message.
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
