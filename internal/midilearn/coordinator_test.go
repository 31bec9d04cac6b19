package midilearn

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/synthsync/internal/logger"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

type applied struct {
	name  string
	value float64
}

type recordingSink struct {
	mu    sync.Mutex
	calls []applied
	err   error
}

func (s *recordingSink) ValueChangedThroughMidi(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, applied{name, value})
	return s.err
}

func (s *recordingSink) all() []applied {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]applied, len(s.calls))
	copy(out, s.calls)
	return out
}

func cc(channel, controller, value uint8) contracts.MIDI {
	return contracts.MIDI{Status: byte(contracts.ControlChange) | channel, Data1: controller, Data2: value}
}

func newTestCoordinator() (*Coordinator, *recordingSink) {
	sink := &recordingSink{}
	return NewCoordinator(sink, logger.NewNopLogger()), sink
}

func TestCoordinator_ArmThenEventMaps(t *testing.T) {
	c, sink := newTestCoordinator()

	c.ArmMidiLearn("cutoff", 0, 1)
	name, armed := c.Armed()
	require.True(t, armed)
	assert.Equal(t, "cutoff", name)
	assert.False(t, c.IsMidiMapped("cutoff"))

	require.NoError(t, c.ProcessMIDI(cc(0, 74, 127)))

	assert.True(t, c.IsMidiMapped("cutoff"))
	_, armed = c.Armed()
	assert.False(t, armed, "resolution clears the arming slot")
	assert.Equal(t, []applied{{"cutoff", 1}}, sink.all())
}

func TestCoordinator_CancelBeforeResolution(t *testing.T) {
	c, sink := newTestCoordinator()

	c.ArmMidiLearn("cutoff", 0, 1)
	c.CancelMidiLearn()
	require.NoError(t, c.ProcessMIDI(cc(0, 74, 64)))

	assert.False(t, c.IsMidiMapped("cutoff"))
	assert.Empty(t, sink.all())
}

func TestCoordinator_ClearAfterMapping(t *testing.T) {
	c, _ := newTestCoordinator()

	c.ArmMidiLearn("cutoff", 0, 1)
	require.NoError(t, c.ProcessMIDI(cc(0, 74, 0)))
	require.True(t, c.IsMidiMapped("cutoff"))

	c.ClearMidiLearn("cutoff")
	assert.False(t, c.IsMidiMapped("cutoff"))
	assert.Empty(t, c.Mappings())
}

func TestCoordinator_ClearLeavesArmingSlot(t *testing.T) {
	c, _ := newTestCoordinator()

	c.ArmMidiLearn("resonance", 0, 1)
	c.ClearMidiLearn("resonance")

	name, armed := c.Armed()
	assert.True(t, armed)
	assert.Equal(t, "resonance", name)
}

func TestCoordinator_ArmSupersedesPending(t *testing.T) {
	c, sink := newTestCoordinator()

	c.ArmMidiLearn("cutoff", 0, 1)
	c.ArmMidiLearn("resonance", 0, 2)
	require.NoError(t, c.ProcessMIDI(cc(2, 71, 127)))

	assert.False(t, c.IsMidiMapped("cutoff"))
	assert.True(t, c.IsMidiMapped("resonance"))
	assert.Equal(t, []applied{{"resonance", 2}}, sink.all())
}

func TestCoordinator_MappedControllerScalesValue(t *testing.T) {
	c, sink := newTestCoordinator()

	c.ArmMidiLearn("cutoff", 20, 100)
	require.NoError(t, c.ProcessMIDI(cc(0, 74, 0)))
	require.NoError(t, c.ProcessMIDI(cc(5, 74, 64)))
	require.NoError(t, c.ProcessMIDI(cc(0, 10, 64))) // unmapped controller

	calls := sink.all()
	require.Len(t, calls, 2)
	assert.Equal(t, 20.0, calls[0].value)
	assert.InDelta(t, 20+80*64.0/127, calls[1].value, 1e-9)
}

func TestCoordinator_OneControllerManyNames(t *testing.T) {
	c, sink := newTestCoordinator()

	c.ArmMidiLearn("resonance", 0, 1)
	require.NoError(t, c.ProcessMIDI(cc(0, 1, 0)))
	c.ArmMidiLearn("cutoff", 1, 0)
	require.NoError(t, c.ProcessMIDI(cc(0, 1, 127)))

	calls := sink.all()
	require.Len(t, calls, 3)
	assert.Equal(t, []applied{{"cutoff", 0}, {"resonance", 1}}, calls[1:])
}

func TestCoordinator_IgnoresNonControlMessages(t *testing.T) {
	c, sink := newTestCoordinator()

	c.ArmMidiLearn("cutoff", 0, 1)
	require.NoError(t, c.ProcessMIDI(contracts.MIDI{Status: byte(contracts.NoteOn), Data1: 60, Data2: 100}))

	_, armed := c.Armed()
	assert.True(t, armed)
	assert.Empty(t, sink.all())
}

func TestCoordinator_SinkErrorsAreReturned(t *testing.T) {
	c, sink := newTestCoordinator()
	sink.err = errors.New("rejected")

	c.ArmMidiLearn("cutoff", 0, 1)
	err := c.ProcessMIDI(cc(0, 74, 10))
	assert.EqualError(t, err, "rejected")
}

func TestCoordinator_MappingsRoundTrip(t *testing.T) {
	c, _ := newTestCoordinator()
	c.ArmMidiLearn("resonance", 0, 1)
	require.NoError(t, c.ProcessMIDI(cc(0, 71, 0)))
	c.ArmMidiLearn("cutoff", 0.2, 0.8)
	require.NoError(t, c.ProcessMIDI(cc(0, 74, 0)))

	saved := c.Mappings()
	assert.Equal(t, []contracts.MidiMapping{
		{Controller: 71, Name: "resonance", Min: 0, Max: 1},
		{Controller: 74, Name: "cutoff", Min: 0.2, Max: 0.8},
	}, saved)

	other, _ := newTestCoordinator()
	other.RestoreMappings(append(saved, contracts.MidiMapping{Controller: 200, Name: "bad"}))
	assert.Equal(t, saved, other.Mappings())
	assert.False(t, other.IsMidiMapped("bad"))
}
