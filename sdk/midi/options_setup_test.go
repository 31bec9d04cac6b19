package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/synthsync/internal/logger"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	assert.Equal(t, contracts.InfoLevel, opts.LogLevel)
	assert.Equal(t, DefaultClientName, opts.CoreMIDIConfig.ClientName)
	require.NotNil(t, opts.MIDIEventFilter)
	assert.True(t, opts.MIDIEventFilter.Allows(0xB4))
	assert.False(t, opts.MIDIEventFilter.Allows(0x90))
}

func TestApplyDefaultOptions_KeepsExplicitValues(t *testing.T) {
	opts, err := applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "studio"}),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn}}),
	)
	require.NoError(t, err)

	assert.Equal(t, contracts.DebugLevel, opts.LogLevel)
	assert.Equal(t, "studio", opts.CoreMIDIConfig.ClientName)
	assert.True(t, opts.MIDIEventFilter.Allows(0x91))
	assert.False(t, opts.MIDIEventFilter.Allows(0xB0))
}

func TestNewClientFor_UnsupportedOS(t *testing.T) {
	_, err := newClientFor("plan9", &contracts.ClientOptions{Logger: logger.NewNopLogger()})
	assert.ErrorIs(t, err, ErrUnsupportedOS)
}
