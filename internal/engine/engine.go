// Package engine provides a headless synthesis engine exposing the capabilities the
// control plane consumes: the parameter control table, the modulation routing
// registry, modulation source ports and the active-voice count.
//
// Engine methods are not synchronized. The control plane calls them only while holding
// the synth guard; the audio thread reads control values and outputs lock-free.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/leandrodaf/synthsync/internal/modulation"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// Patch describes the ports and controls an engine is built with.
type Patch struct {
	Controls []ControlSpec `yaml:"controls"`
	// Sources lists modulation source port names.
	Sources []string `yaml:"sources"`
	// Destinations lists modulation destination names. Empty means every control.
	Destinations []string `yaml:"destinations"`
	// Voices is the polyphony limit.
	Voices int `yaml:"voices"`
}

// Engine is the reference contracts.Engine implementation.
type Engine struct {
	*modulation.Registry

	controls     map[string]*Control
	names        []string
	sources      map[string]*Output
	destinations map[string]struct{}
	maxVoices    int
	voices       atomic.Int32
}

// New builds an engine from a patch. Duplicate or empty names are rejected.
func New(patch Patch) (*Engine, error) {
	e := &Engine{
		controls:     make(map[string]*Control, len(patch.Controls)),
		sources:      make(map[string]*Output, len(patch.Sources)),
		destinations: make(map[string]struct{}),
		maxVoices:    patch.Voices,
	}

	for _, spec := range patch.Controls {
		if spec.Name == "" {
			return nil, fmt.Errorf("control name must not be empty")
		}
		if _, dup := e.controls[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate control %q", spec.Name)
		}
		e.controls[spec.Name] = newControl(spec)
		e.names = append(e.names, spec.Name)
	}

	for _, name := range patch.Sources {
		if name == "" {
			return nil, fmt.Errorf("modulation source name must not be empty")
		}
		if _, dup := e.sources[name]; dup {
			return nil, fmt.Errorf("duplicate modulation source %q", name)
		}
		e.sources[name] = &Output{name: name}
	}

	destinations := patch.Destinations
	if len(destinations) == 0 {
		destinations = e.names
	}
	for _, name := range destinations {
		if name == "" {
			return nil, fmt.Errorf("modulation destination name must not be empty")
		}
		e.destinations[name] = struct{}{}
	}

	e.Registry = modulation.NewRegistry(e)
	return e, nil
}

// Control looks a name up in the parameter control table.
func (e *Engine) Control(name string) (contracts.ControlValue, bool) {
	c, ok := e.controls[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// ControlNames lists controls in patch order.
func (e *Engine) ControlNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// ModulationSource returns the output port handle for a source name.
func (e *Engine) ModulationSource(name string) (contracts.ModulationOutput, bool) {
	o, ok := e.sources[name]
	if !ok {
		return nil, false
	}
	return o, true
}

// Output returns the concrete output port so the audio thread can publish samples.
func (e *Engine) Output(name string) (*Output, bool) {
	o, ok := e.sources[name]
	return o, ok
}

// HasSource reports whether name is a modulation source port.
func (e *Engine) HasSource(name string) bool {
	_, ok := e.sources[name]
	return ok
}

// HasDestination reports whether name is a modulation destination.
func (e *Engine) HasDestination(name string) bool {
	_, ok := e.destinations[name]
	return ok
}

// NumActiveVoices returns the number of sounding voices.
func (e *Engine) NumActiveVoices() int {
	return int(e.voices.Load())
}

// SetActiveVoices is called by the voice allocator. The count is clamped to the polyphony limit.
func (e *Engine) SetActiveVoices(n int) {
	if n < 0 {
		n = 0
	}
	if e.maxVoices > 0 && n > e.maxVoices {
		n = e.maxVoices
	}
	e.voices.Store(int32(n))
}

var _ contracts.Engine = (*Engine)(nil)
