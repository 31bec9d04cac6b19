package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

func testPatch() Patch {
	return Patch{
		Controls: []ControlSpec{
			{Name: "cutoff", Default: 0.5, Min: 0, Max: 1},
			{Name: "resonance", Default: 0.1, Min: 0, Max: 1},
		},
		Sources: []string{"lfo1", "env1"},
		Voices:  8,
	}
}

func TestNew_ControlTable(t *testing.T) {
	e, err := New(testPatch())
	require.NoError(t, err)

	assert.Equal(t, []string{"cutoff", "resonance"}, e.ControlNames())

	c, ok := e.Control("cutoff")
	require.True(t, ok)
	assert.Equal(t, 0.5, c.Value())

	c.Set(0.9)
	again, _ := e.Control("cutoff")
	assert.Equal(t, 0.9, again.Value(), "a name maps to exactly one cell")

	_, ok = e.Control("missing")
	assert.False(t, ok)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New(Patch{Controls: []ControlSpec{{Name: "a"}, {Name: "a"}}})
	assert.Error(t, err)

	_, err = New(Patch{Sources: []string{"lfo", "lfo"}})
	assert.Error(t, err)

	_, err = New(Patch{Controls: []ControlSpec{{Name: ""}}})
	assert.Error(t, err)
}

func TestEngine_DestinationsDefaultToControls(t *testing.T) {
	e, err := New(testPatch())
	require.NoError(t, err)

	assert.True(t, e.HasDestination("cutoff"))
	assert.False(t, e.HasDestination("lfo1"))
	assert.True(t, e.HasSource("lfo1"))

	_, err = e.Connect(contracts.ModulationConnection{Source: "lfo1", Destination: "cutoff", Amount: 0.4})
	require.NoError(t, err)
	_, err = e.Connect(contracts.ModulationConnection{Source: "cutoff", Destination: "lfo1", Amount: 0.4})
	assert.ErrorIs(t, err, contracts.ErrUnknownPort)
}

func TestEngine_ExplicitDestinations(t *testing.T) {
	p := testPatch()
	p.Destinations = []string{"pitch"}
	e, err := New(p)
	require.NoError(t, err)

	assert.True(t, e.HasDestination("pitch"))
	assert.False(t, e.HasDestination("cutoff"))
}

func TestEngine_ModulationSource(t *testing.T) {
	e, err := New(testPatch())
	require.NoError(t, err)

	out, ok := e.Output("lfo1")
	require.True(t, ok)
	out.Publish(-0.75)

	src, ok := e.ModulationSource("lfo1")
	require.True(t, ok)
	assert.Equal(t, "lfo1", src.Name())
	assert.Equal(t, -0.75, src.Value())

	_, ok = e.ModulationSource("nope")
	assert.False(t, ok)
}

func TestEngine_ActiveVoicesClamped(t *testing.T) {
	e, err := New(testPatch())
	require.NoError(t, err)

	e.SetActiveVoices(3)
	assert.Equal(t, 3, e.NumActiveVoices())
	e.SetActiveVoices(20)
	assert.Equal(t, 8, e.NumActiveVoices())
	e.SetActiveVoices(-1)
	assert.Equal(t, 0, e.NumActiveVoices())
}
