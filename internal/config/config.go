// Package config loads the synthctl configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leandrodaf/synthsync/internal/engine"
	"github.com/leandrodaf/synthsync/internal/notify"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// Defaults applied to fields left empty in the file.
const (
	DefaultLogLevel   = "info"
	DefaultMIDIBuffer = 256
	DefaultPresetDB   = "presets.db"
	DefaultVoices     = 8
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the synthctl configuration.
type Config struct {
	LogLevel    string       `yaml:"log_level"`
	LogFile     string       `yaml:"log_file"`
	UIQueueSize int          `yaml:"ui_queue_size"`
	MIDI        MIDI         `yaml:"midi"`
	PresetDB    string       `yaml:"preset_db"`
	Patch       engine.Patch `yaml:"patch"`
}

// MIDI configures device capture.
type MIDI struct {
	Enabled    bool   `yaml:"enabled"`
	ClientName string `yaml:"client_name"`
	Device     int    `yaml:"device"`
	Buffer     int    `yaml:"buffer"`
}

// Default returns the configuration used when no file is given: a small patch
// with a filter, an amplifier and two modulation sources.
func Default() Config {
	cfg := Config{
		Patch: engine.Patch{
			Controls: []engine.ControlSpec{
				{Name: "cutoff", Default: 0.5, Min: 0, Max: 1},
				{Name: "resonance", Default: 0.1, Min: 0, Max: 1},
				{Name: "gain", Default: 0.8, Min: 0, Max: 1},
			},
			Sources: []string{"lfo1", "env1"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML configuration. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	if len(cfg.Patch.Controls) == 0 && len(cfg.Patch.Sources) == 0 {
		cfg.Patch = Default().Patch
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.UIQueueSize == 0 {
		c.UIQueueSize = notify.DefaultQueueSize
	}
	if c.MIDI.ClientName == "" {
		c.MIDI.ClientName = "synthsync"
	}
	if c.MIDI.Buffer == 0 {
		c.MIDI.Buffer = DefaultMIDIBuffer
	}
	if c.PresetDB == "" {
		c.PresetDB = DefaultPresetDB
	}
	if c.Patch.Voices == 0 {
		c.Patch.Voices = DefaultVoices
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := contracts.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	if c.UIQueueSize < 0 {
		return fmt.Errorf("%w: ui_queue_size must not be negative", ErrInvalid)
	}
	if c.MIDI.Buffer < 0 {
		return fmt.Errorf("%w: midi.buffer must not be negative", ErrInvalid)
	}
	if c.MIDI.Device < 0 {
		return fmt.Errorf("%w: midi.device must not be negative", ErrInvalid)
	}
	if c.Patch.Voices < 0 {
		return fmt.Errorf("%w: patch.voices must not be negative", ErrInvalid)
	}
	for _, spec := range c.Patch.Controls {
		if spec.Min > spec.Max {
			return fmt.Errorf("%w: control %q has min above max", ErrInvalid, spec.Name)
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			return fmt.Errorf("%w: control %q default outside [%g, %g]", ErrInvalid, spec.Name, spec.Min, spec.Max)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() contracts.LogLevel {
	level, err := contracts.ParseLogLevel(c.LogLevel)
	if err != nil {
		return contracts.InfoLevel
	}
	return level
}
