package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/synthsync/internal/notify"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
log_level: debug
ui_queue_size: 16
midi:
  enabled: true
  client_name: studio
  device: 2
  buffer: 32
preset_db: /tmp/bank.db
patch:
  controls:
    - {name: cutoff, default: 0.5, min: 0, max: 1}
    - {name: pitch, default: 0, min: -12, max: 12}
  sources: [lfo1]
  destinations: [cutoff]
  voices: 4
`))
	require.NoError(t, err)

	assert.Equal(t, contracts.DebugLevel, cfg.Level())
	assert.Equal(t, 16, cfg.UIQueueSize)
	assert.Equal(t, MIDI{Enabled: true, ClientName: "studio", Device: 2, Buffer: 32}, cfg.MIDI)
	assert.Equal(t, "/tmp/bank.db", cfg.PresetDB)
	require.Len(t, cfg.Patch.Controls, 2)
	assert.Equal(t, -12.0, cfg.Patch.Controls[1].Min)
	assert.Equal(t, []string{"cutoff"}, cfg.Patch.Destinations)
	assert.Equal(t, 4, cfg.Patch.Voices)
}

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, contracts.InfoLevel, cfg.Level())
	assert.Equal(t, notify.DefaultQueueSize, cfg.UIQueueSize)
	assert.Equal(t, DefaultMIDIBuffer, cfg.MIDI.Buffer)
	assert.Equal(t, DefaultPresetDB, cfg.PresetDB)
	assert.False(t, cfg.MIDI.Enabled)
	assert.NotEmpty(t, cfg.Patch.Controls)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown level", "log_level: loud"},
		{"negative queue", "ui_queue_size: -1"},
		{"negative buffer", "midi: {buffer: -4}"},
		{"negative device", "midi: {device: -1}"},
		{"min above max", "patch: {controls: [{name: a, min: 1, max: 0}]}"},
		{"default outside range", "patch: {controls: [{name: a, default: 2, min: 0, max: 1}]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse(strings.NewReader("log_levl: info"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, contracts.WarnLevel, cfg.Level())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
