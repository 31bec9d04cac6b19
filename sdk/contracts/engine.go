package contracts

import (
	"github.com/google/uuid"
)

// ControlValue is a named scalar cell owned by the engine.
type ControlValue interface {
	Value() float64
	Set(value float64)
}

// ModulationOutput is an opaque handle to an engine output usable as a modulation source.
type ModulationOutput interface {
	Name() string
	Value() float64
}

// ModulationConnection is a weighted, directed edge from a source port to a destination port.
// Values handed out by a ModulationRouter are copies; mutating them has no effect on the routing.
type ModulationConnection struct {
	ID          uuid.UUID
	Source      string
	Destination string
	Amount      float64
}

// ModulationRouter owns the set of active modulation connections.
// Implementations are not safe for concurrent use; callers hold the synth Guard.
type ModulationRouter interface {
	// Connection returns the connection for the ordered pair, if any.
	Connection(source, destination string) (ModulationConnection, bool)
	// Connect registers a new connection, or updates the amount of the existing one for the same pair.
	// The returned value carries the registry-assigned ID.
	Connect(conn ModulationConnection) (ModulationConnection, error)
	// SetAmount changes the amount of an existing connection, keeping its ID.
	SetAmount(source, destination string, amount float64) (ModulationConnection, error)
	// Disconnect removes the connection for the pair and reports whether one existed.
	Disconnect(source, destination string) (ModulationConnection, bool)
	SourceConnections(source string) []ModulationConnection
	DestinationConnections(destination string) []ModulationConnection
	Connections() []ModulationConnection
}

// Engine is the synthesis engine capability consumed by the control plane.
// Like ModulationRouter, it relies on the caller holding the Guard for every call.
type Engine interface {
	ModulationRouter

	// Control looks a name up in the parameter control table.
	Control(name string) (ControlValue, bool)
	// ControlNames lists every control in a stable order.
	ControlNames() []string
	ModulationSource(name string) (ModulationOutput, bool)
	NumActiveVoices() int
}
