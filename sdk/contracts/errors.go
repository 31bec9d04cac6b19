package contracts

import "errors"

var (
	// ErrUnknownControl is returned when a name is absent from the parameter control table.
	ErrUnknownControl = errors.New("unknown control name")
	// ErrUnknownPort is returned when a modulation endpoint is not recognized by the engine.
	ErrUnknownPort = errors.New("unknown modulation port")
	// ErrZeroAmount is returned when registering a connection whose amount is zero.
	ErrZeroAmount = errors.New("modulation amount is zero")
	// ErrNotConnected is returned when updating a connection that does not exist.
	ErrNotConnected = errors.New("modulation connection not found")
	// ErrLockUnavailable reports a failed non-blocking guard acquisition. It is a normal negative result.
	ErrLockUnavailable = errors.New("synth lock unavailable")
	// ErrUIUnavailable reports a dropped UI notification. It never reaches facade callers.
	ErrUIUnavailable = errors.New("ui message queue unavailable")
	// ErrUnsupportedVersion is returned when decoding a snapshot written by a newer codec.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
