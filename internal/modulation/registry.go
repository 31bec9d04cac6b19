// Package modulation implements the registry of source→destination modulation connections.
//
// The registry exclusively owns its connections and only hands out copies, so callers
// never hold a reference that can outlive a Disconnect. It performs no locking of its
// own: the engine that embeds it is only touched under the synth guard.
package modulation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// Ports tells the registry which endpoint names exist.
type Ports interface {
	HasSource(name string) bool
	HasDestination(name string) bool
}

type pair struct {
	source      string
	destination string
}

// Registry holds at most one connection per ordered (source, destination) pair.
// Connections with a zero amount are never stored.
type Registry struct {
	ports       Ports
	connections map[pair]*contracts.ModulationConnection
	order       []pair // insertion order, for stable listings
}

// NewRegistry creates an empty registry validating endpoints against ports.
// A nil ports accepts every name.
func NewRegistry(ports Ports) *Registry {
	return &Registry{
		ports:       ports,
		connections: make(map[pair]*contracts.ModulationConnection),
	}
}

// Len returns the number of active connections.
func (r *Registry) Len() int {
	return len(r.connections)
}

// Connection returns a copy of the connection for the pair.
func (r *Registry) Connection(source, destination string) (contracts.ModulationConnection, bool) {
	c, ok := r.connections[pair{source, destination}]
	if !ok {
		return contracts.ModulationConnection{}, false
	}
	return *c, true
}

// Connect registers conn, or updates the amount of the existing connection for its pair
// while keeping that connection's ID.
func (r *Registry) Connect(conn contracts.ModulationConnection) (contracts.ModulationConnection, error) {
	if err := r.validate(conn.Source, conn.Destination); err != nil {
		return contracts.ModulationConnection{}, err
	}
	if conn.Amount == 0 {
		return contracts.ModulationConnection{}, fmt.Errorf("%w: %s -> %s", contracts.ErrZeroAmount, conn.Source, conn.Destination)
	}

	key := pair{conn.Source, conn.Destination}
	if existing, ok := r.connections[key]; ok {
		existing.Amount = conn.Amount
		return *existing, nil
	}

	if conn.ID == uuid.Nil {
		conn.ID = uuid.Must(uuid.NewV7())
	}
	stored := conn
	r.connections[key] = &stored
	r.order = append(r.order, key)
	return stored, nil
}

// SetAmount updates an existing connection. A zero amount removes it.
func (r *Registry) SetAmount(source, destination string, amount float64) (contracts.ModulationConnection, error) {
	key := pair{source, destination}
	existing, ok := r.connections[key]
	if !ok {
		return contracts.ModulationConnection{}, fmt.Errorf("%w: %s -> %s", contracts.ErrNotConnected, source, destination)
	}
	if amount == 0 {
		removed, _ := r.Disconnect(source, destination)
		removed.Amount = 0
		return removed, nil
	}
	existing.Amount = amount
	return *existing, nil
}

// Disconnect removes the connection for the pair.
func (r *Registry) Disconnect(source, destination string) (contracts.ModulationConnection, bool) {
	key := pair{source, destination}
	c, ok := r.connections[key]
	if !ok {
		return contracts.ModulationConnection{}, false
	}
	delete(r.connections, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *c, true
}

// SourceConnections lists the connections leaving source, in insertion order.
func (r *Registry) SourceConnections(source string) []contracts.ModulationConnection {
	return r.collect(func(k pair) bool { return k.source == source })
}

// DestinationConnections lists the connections arriving at destination, in insertion order.
func (r *Registry) DestinationConnections(destination string) []contracts.ModulationConnection {
	return r.collect(func(k pair) bool { return k.destination == destination })
}

// Connections lists every connection, in insertion order.
func (r *Registry) Connections() []contracts.ModulationConnection {
	return r.collect(func(pair) bool { return true })
}

// Clear removes every connection.
func (r *Registry) Clear() {
	r.connections = make(map[pair]*contracts.ModulationConnection)
	r.order = nil
}

func (r *Registry) collect(match func(pair) bool) []contracts.ModulationConnection {
	out := make([]contracts.ModulationConnection, 0)
	for _, k := range r.order {
		if match(k) {
			out = append(out, *r.connections[k])
		}
	}
	return out
}

func (r *Registry) validate(source, destination string) error {
	if r.ports == nil {
		return nil
	}
	if !r.ports.HasSource(source) {
		return fmt.Errorf("%w: source %q", contracts.ErrUnknownPort, source)
	}
	if !r.ports.HasDestination(destination) {
		return fmt.Errorf("%w: destination %q", contracts.ErrUnknownPort, destination)
	}
	return nil
}

var _ contracts.ModulationRouter = (*Registry)(nil)
