package contracts

// SnapshotVersion is the version written by the current state codec.
const SnapshotVersion = 1

// Snapshot is a serializable capture of every control value and modulation connection.
type Snapshot struct {
	Version     int                `yaml:"version"`
	Values      map[string]float64 `yaml:"values"`
	Modulations []ConnectionState  `yaml:"modulations,omitempty"`
	MidiLearn   []MidiMapping      `yaml:"midi_learn,omitempty"`
}

// ConnectionState is the persisted form of a ModulationConnection. IDs are not persisted.
type ConnectionState struct {
	Source      string  `yaml:"source"`
	Destination string  `yaml:"destination"`
	Amount      float64 `yaml:"amount"`
}

// MidiMapping binds a MIDI controller number to a named parameter range.
type MidiMapping struct {
	Controller uint8   `yaml:"controller"`
	Name       string  `yaml:"name"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
}
