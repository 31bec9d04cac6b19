// Package midilearn binds physical MIDI controllers to named parameters.
//
// One arming slot exists per coordinator. Arming while another arm is pending replaces
// the pending one. The next control-change message maps its controller number to the
// armed name and range; mapped controllers then drive every bound parameter.
package midilearn

import (
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// maxControllerValue is the largest 7-bit controller value.
const maxControllerValue = 127

type valueRange struct {
	min float64
	max float64
}

// scale maps a 7-bit controller value into the range.
func (r valueRange) scale(value uint8) float64 {
	return r.min + (r.max-r.min)*float64(value)/maxControllerValue
}

type armedSlot struct {
	name string
	valueRange
}

// Coordinator implements contracts.MidiManager on top of raw MIDI events.
type Coordinator struct {
	mu       sync.Mutex
	sink     contracts.MidiValueSink
	logger   contracts.Logger
	armed    *armedSlot
	mappings map[uint8]map[string]valueRange
}

// NewCoordinator creates a coordinator that applies mapped values to sink.
func NewCoordinator(sink contracts.MidiValueSink, logger contracts.Logger) *Coordinator {
	return &Coordinator{
		sink:     sink,
		logger:   logger,
		mappings: make(map[uint8]map[string]valueRange),
	}
}

// ArmMidiLearn arms the slot for name. A pending arm is replaced.
func (c *Coordinator) ArmMidiLearn(name string, min, max float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.armed != nil && c.armed.name != name {
		c.logger.Debug("MIDI learn arm superseded",
			c.logger.Field().String("previous", c.armed.name),
			c.logger.Field().String("name", name))
	}
	c.armed = &armedSlot{name: name, valueRange: valueRange{min: min, max: max}}
	c.logger.Info("MIDI learn armed",
		c.logger.Field().String("name", name),
		c.logger.Field().Float64("min", min),
		c.logger.Field().Float64("max", max))
}

// CancelMidiLearn clears the arming slot without creating a mapping.
func (c *Coordinator) CancelMidiLearn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.armed != nil {
		c.logger.Info("MIDI learn cancelled", c.logger.Field().String("name", c.armed.name))
	}
	c.armed = nil
}

// ClearMidiLearn removes every mapping to name. The arming slot is left untouched.
func (c *Coordinator) ClearMidiLearn(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for controller, names := range c.mappings {
		delete(names, name)
		if len(names) == 0 {
			delete(c.mappings, controller)
		}
	}
}

// IsMidiMapped reports whether any controller is bound to name.
func (c *Coordinator) IsMidiMapped(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, names := range c.mappings {
		if _, ok := names[name]; ok {
			return true
		}
	}
	return false
}

// Armed returns the name waiting for a controller, if any.
func (c *Coordinator) Armed() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.armed == nil {
		return "", false
	}
	return c.armed.name, true
}

// ProcessMIDI handles one captured event. Only control-change messages are used.
func (c *Coordinator) ProcessMIDI(event contracts.MIDI) error {
	var channel, controller, value uint8
	if !event.Message().GetControlChange(&channel, &controller, &value) {
		return nil
	}
	return c.controlChange(controller, value)
}

type target struct {
	name  string
	value float64
}

func (c *Coordinator) controlChange(controller, value uint8) error {
	c.mu.Lock()
	if c.armed != nil {
		names, ok := c.mappings[controller]
		if !ok {
			names = make(map[string]valueRange)
			c.mappings[controller] = names
		}
		names[c.armed.name] = c.armed.valueRange
		c.logger.Info("MIDI learn mapped",
			c.logger.Field().String("name", c.armed.name),
			c.logger.Field().Uint8("controller", controller))
		c.armed = nil
	}

	names := c.mappings[controller]
	targets := make([]target, 0, len(names))
	for name, r := range names {
		targets = append(targets, target{name: name, value: r.scale(value)})
	}
	c.mu.Unlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].name < targets[j].name })

	// The sink takes the synth guard; it must not be called with c.mu held.
	var err error
	for _, t := range targets {
		err = multierr.Append(err, c.sink.ValueChangedThroughMidi(t.name, t.value))
	}
	return err
}

// Mappings returns every binding ordered by controller and name.
func (c *Coordinator) Mappings() []contracts.MidiMapping {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]contracts.MidiMapping, 0)
	for controller, names := range c.mappings {
		for name, r := range names {
			out = append(out, contracts.MidiMapping{Controller: controller, Name: name, Min: r.min, Max: r.max})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Controller != out[j].Controller {
			return out[i].Controller < out[j].Controller
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RestoreMappings replaces every binding. Controllers above 127 are ignored.
func (c *Coordinator) RestoreMappings(mappings []contracts.MidiMapping) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mappings = make(map[uint8]map[string]valueRange)
	for _, m := range mappings {
		if m.Controller > maxControllerValue {
			c.logger.Warn("ignoring MIDI mapping with invalid controller",
				c.logger.Field().String("name", m.Name),
				c.logger.Field().Uint8("controller", m.Controller))
			continue
		}
		names, ok := c.mappings[m.Controller]
		if !ok {
			names = make(map[string]valueRange)
			c.mappings[m.Controller] = names
		}
		names[m.Name] = valueRange{min: m.Min, max: m.Max}
	}
}

var (
	_ contracts.MidiManager      = (*Coordinator)(nil)
	_ contracts.MIDIProcessor    = (*Coordinator)(nil)
	_ contracts.MidiMappingStore = (*Coordinator)(nil)
)
