package engine

import (
	"math"
	"sync/atomic"
)

// ControlSpec describes one entry of the parameter control table.
type ControlSpec struct {
	Name    string  `yaml:"name"`
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// Control is a control value cell. The value is published atomically so the audio
// thread can read it without taking the synth guard; writers go through the guard.
type Control struct {
	spec ControlSpec
	bits atomic.Uint64
}

func newControl(spec ControlSpec) *Control {
	c := &Control{spec: spec}
	c.Set(spec.Default)
	return c
}

// Name returns the control's identifier.
func (c *Control) Name() string {
	return c.spec.Name
}

// Spec returns the control's static description.
func (c *Control) Spec() ControlSpec {
	return c.spec
}

// Value returns the last published value.
func (c *Control) Value() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Set publishes a new value. Values are stored as given; range limits are advisory.
func (c *Control) Set(value float64) {
	c.bits.Store(math.Float64bits(value))
}

// Output is a modulation source port. The audio thread publishes its current value.
type Output struct {
	name string
	bits atomic.Uint64
}

// Name returns the port name.
func (o *Output) Name() string {
	return o.name
}

// Value returns the last published output sample.
func (o *Output) Value() float64 {
	return math.Float64frombits(o.bits.Load())
}

// Publish stores the latest output sample.
func (o *Output) Publish(value float64) {
	o.bits.Store(math.Float64bits(value))
}
