package engine

import "errors"

// ErrUnknownOccupant is returned when an operation names an occupant
// that is not on the roster.
var ErrUnknownOccupant = errors.New("engine: unknown occupant")
