// Package codec captures and restores complete engine state.
//
// StateToVar and VarToState run entirely under the synth guard, so a snapshot never
// mixes values from before and after a concurrent change. Encode and Decode turn a
// snapshot into YAML for files and the preset bank.
package codec

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// Codec is the default contracts.StateCodec.
type Codec struct {
	logger contracts.Logger
}

// New creates a codec.
func New(logger contracts.Logger) *Codec {
	return &Codec{logger: logger}
}

// StateToVar captures every control value and connection.
func (c *Codec) StateToVar(engine contracts.Engine, guard contracts.Guard) (contracts.Snapshot, error) {
	guard.Lock()
	defer guard.Unlock()

	snap := contracts.Snapshot{
		Version: contracts.SnapshotVersion,
		Values:  make(map[string]float64),
	}
	for _, name := range engine.ControlNames() {
		control, ok := engine.Control(name)
		if !ok {
			return contracts.Snapshot{}, fmt.Errorf("%w: %s listed but not found", contracts.ErrUnknownControl, name)
		}
		snap.Values[name] = control.Value()
	}
	for _, conn := range engine.Connections() {
		snap.Modulations = append(snap.Modulations, contracts.ConnectionState{
			Source:      conn.Source,
			Destination: conn.Destination,
			Amount:      conn.Amount,
		})
	}
	sortConnections(snap.Modulations)
	return snap, nil
}

// VarToState applies a snapshot. Unknown controls and ports are skipped with a warning
// so presets written for a larger patch still load. Existing connections are replaced.
func (c *Codec) VarToState(engine contracts.Engine, guard contracts.Guard, state contracts.Snapshot) error {
	if state.Version > contracts.SnapshotVersion {
		return fmt.Errorf("%w: %d", contracts.ErrUnsupportedVersion, state.Version)
	}

	guard.Lock()
	defer guard.Unlock()

	names := make([]string, 0, len(state.Values))
	for name := range state.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		control, ok := engine.Control(name)
		if !ok {
			c.logger.Warn("skipping unknown control in snapshot", c.logger.Field().String("name", name))
			continue
		}
		control.Set(state.Values[name])
	}

	for _, conn := range engine.Connections() {
		engine.Disconnect(conn.Source, conn.Destination)
	}
	for _, m := range state.Modulations {
		if m.Amount == 0 {
			continue
		}
		_, err := engine.Connect(contracts.ModulationConnection{
			Source:      m.Source,
			Destination: m.Destination,
			Amount:      m.Amount,
		})
		if err != nil {
			c.logger.Warn("skipping modulation in snapshot",
				c.logger.Field().String("source", m.Source),
				c.logger.Field().String("destination", m.Destination),
				c.logger.Field().Error("error", err))
		}
	}
	return nil
}

// Encode renders a snapshot as YAML with two-space indentation.
func Encode(snap contracts.Snapshot) ([]byte, error) {
	if snap.Version == 0 {
		snap.Version = contracts.SnapshotVersion
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a YAML snapshot. A missing version is treated as the current one.
func Decode(data []byte) (contracts.Snapshot, error) {
	var snap contracts.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return contracts.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version == 0 {
		snap.Version = contracts.SnapshotVersion
	}
	if snap.Version > contracts.SnapshotVersion {
		return contracts.Snapshot{}, fmt.Errorf("%w: %d", contracts.ErrUnsupportedVersion, snap.Version)
	}
	if snap.Values == nil {
		snap.Values = make(map[string]float64)
	}
	return snap, nil
}

func sortConnections(conns []contracts.ConnectionState) {
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].Source != conns[j].Source {
			return conns[i].Source < conns[j].Source
		}
		return conns[i].Destination < conns[j].Destination
	})
}

var _ contracts.StateCodec = (*Codec)(nil)
