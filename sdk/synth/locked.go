package synth

import (
	"fmt"
	"sync/atomic"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// LockedSynth is the engine view available while the synth guard is held, either
// inside a facade call or between LockSynth and UnlockSynth. The guard is not
// reentrant, so code holding it uses these methods instead of the Controller's.
//
// A view returned by LockSynth is valid only until the matching UnlockSynth; using
// it afterwards panics with ErrSynthUnlocked.
type LockedSynth struct {
	c        *Controller
	released atomic.Bool
}

// ctl returns the controller, or panics when the view outlived its critical section.
func (s *LockedSynth) ctl() *Controller {
	if s.released.Load() {
		panic(ErrSynthUnlocked)
	}
	return s.c
}

// SetValue writes a control cell.
func (s *LockedSynth) SetValue(name string, value float64) error {
	control, ok := s.ctl().engine.Control(name)
	if !ok {
		return s.ctl().misuse(fmt.Errorf("%w: %s", contracts.ErrUnknownControl, name))
	}
	control.Set(value)
	return nil
}

// Value reads a control cell.
func (s *LockedSynth) Value(name string) (float64, error) {
	control, ok := s.ctl().engine.Control(name)
	if !ok {
		return 0, s.ctl().misuse(fmt.Errorf("%w: %s", contracts.ErrUnknownControl, name))
	}
	return control.Value(), nil
}

// ChangeModulationAmount creates, updates or deletes the connection for the pair in
// one step. A zero amount removes an existing connection and is a no-op otherwise.
func (s *LockedSynth) ChangeModulationAmount(source, destination string, amount float64) error {
	_, exists := s.ctl().engine.Connection(source, destination)
	switch {
	case !exists && amount == 0:
		return nil
	case !exists:
		_, err := s.ctl().engine.Connect(contracts.ModulationConnection{
			Source:      source,
			Destination: destination,
			Amount:      amount,
		})
		return s.ctl().misuse(err)
	case amount == 0:
		s.ctl().engine.Disconnect(source, destination)
		return nil
	default:
		_, err := s.ctl().engine.SetAmount(source, destination, amount)
		return err
	}
}

// Connection returns the connection for the pair.
func (s *LockedSynth) Connection(source, destination string) (contracts.ModulationConnection, bool) {
	return s.ctl().engine.Connection(source, destination)
}

// Connect registers a connection and returns it with its assigned ID.
func (s *LockedSynth) Connect(conn contracts.ModulationConnection) (contracts.ModulationConnection, error) {
	created, err := s.ctl().engine.Connect(conn)
	return created, s.ctl().misuse(err)
}

// Disconnect removes the connection for the pair.
func (s *LockedSynth) Disconnect(source, destination string) bool {
	_, ok := s.ctl().engine.Disconnect(source, destination)
	return ok
}

// SourceConnections lists connections leaving source.
func (s *LockedSynth) SourceConnections(source string) []contracts.ModulationConnection {
	return s.ctl().engine.SourceConnections(source)
}

// DestinationConnections lists connections arriving at destination.
func (s *LockedSynth) DestinationConnections(destination string) []contracts.ModulationConnection {
	return s.ctl().engine.DestinationConnections(destination)
}

// NumActiveVoices returns the voice count. The guard is already held, so it never fails.
func (s *LockedSynth) NumActiveVoices() int {
	return s.ctl().engine.NumActiveVoices()
}

// ModulationSource returns the output handle for a source port.
func (s *LockedSynth) ModulationSource(name string) (contracts.ModulationOutput, error) {
	out, ok := s.ctl().engine.ModulationSource(name)
	if !ok {
		return nil, s.ctl().misuse(fmt.Errorf("%w: source %q", contracts.ErrUnknownPort, name))
	}
	return out, nil
}
