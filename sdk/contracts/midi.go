package contracts

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI represents a raw channel-voice message captured from an input device.
type MIDI struct {
	Timestamp uint64 // Timestamp indicates the time the event occurred (Unix nanoseconds).
	Status    byte   // Status is the full status byte (command in the high nibble, channel in the low nibble).
	Data1     byte   // Data1 is the note or controller number (0-127).
	Data2     byte   // Data2 is the velocity or controller value (0-127).
}

// Command returns the status byte with the channel bits cleared.
func (m MIDI) Command() MIDICommand {
	return MIDICommand(m.Status & 0xF0)
}

// Channel returns the zero-based MIDI channel.
func (m MIDI) Channel() uint8 {
	return m.Status & 0x0F
}

// Message returns the event as a gomidi message for typed decoding.
func (m MIDI) Message() gomidi.Message {
	return gomidi.Message([]byte{m.Status, m.Data1, m.Data2})
}

// ClientMIDI defines an interface for MIDI client operations.
type ClientMIDI interface {
	Stop() error                         // Stops the MIDI client and releases resources.
	ListDevices() ([]DeviceInfo, error)  // Lists all available MIDI devices.
	SelectDevice(deviceID int) error     // Selects a MIDI device by its ID for communication.
	StartCapture(eventChannel chan MIDI) // Starts capturing MIDI events and sends them to the specified channel.
}

// MidiManager arms, cancels and clears bindings from physical controls to named parameters.
type MidiManager interface {
	ArmMidiLearn(name string, min, max float64)
	CancelMidiLearn()
	ClearMidiLearn(name string)
	IsMidiMapped(name string) bool
}

// MIDIProcessor consumes captured MIDI events.
type MIDIProcessor interface {
	ProcessMIDI(event MIDI) error
}

// MidiMappingStore exposes learned mappings so they can travel inside a Snapshot.
type MidiMappingStore interface {
	Mappings() []MidiMapping
	RestoreMappings(mappings []MidiMapping)
}

// MidiValueSink receives values resolved from mapped controllers.
type MidiValueSink interface {
	ValueChangedThroughMidi(name string, value float64) error
}
