// Package synth is the single gateway through which the GUI, host automation and
// MIDI input read or change synth state.
//
// Every engine access happens under one exclusive guard. Notifications to the host
// and the GUI are sent after the guard is released. GUI notifications for changes
// that did not originate in the GUI are best effort: they are dropped, not waited
// for, when the UI queue is busy. The voice-count query uses a try-lock and returns
// VoicesUnavailable instead of blocking.
package synth

import (
	"context"
	"errors"

	"github.com/leandrodaf/synthsync/internal/midilearn"
	"github.com/leandrodaf/synthsync/internal/notify"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// VoicesUnavailable is returned by NumActiveVoices when the guard is held elsewhere.
const VoicesUnavailable = -1

var (
	// ErrNilEngine is returned by NewController when no engine is given.
	ErrNilEngine = errors.New("engine is required")
	// ErrNoMIDIProcessor is returned by ListenMIDI when the MIDI manager cannot consume events.
	ErrNoMIDIProcessor = errors.New("MIDI manager does not process events")
	// ErrSynthUnlocked is the panic value when a LockSynth view is used after UnlockSynth.
	ErrSynthUnlocked = errors.New("synth view used after UnlockSynth")
)

// Controller is the synchronization facade.
type Controller struct {
	engine        contracts.Engine
	guard         contracts.Guard
	state         *LockedSynth // used by facade calls while they hold the guard
	held          *LockedSynth // view handed out by LockSynth; guarded
	host          contracts.Host
	notifier      contracts.UINotifier
	midi          contracts.MidiManager
	codec         contracts.StateCodec
	logger        contracts.Logger
	panicOnMisuse bool
}

// NewController creates a facade over engine.
//
// Unless overridden, GUI updates go through a notify.Dispatcher that must be pumped
// with RunUI, and MIDI learn is handled by a midilearn.Coordinator feeding values
// back through ValueChangedThroughMidi.
func NewController(engine contracts.Engine, opts ...contracts.ControllerOption) (*Controller, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		engine:        engine,
		guard:         options.Guard,
		host:          options.Host,
		notifier:      options.Notifier,
		midi:          options.MidiManager,
		codec:         options.StateCodec,
		logger:        options.Logger,
		panicOnMisuse: options.PanicOnMisuse,
	}
	c.state = &LockedSynth{c: c}

	if c.notifier == nil {
		c.notifier = notify.NewDispatcher(options.GUI, options.UIQueueSize, options.Logger)
	}
	if c.midi == nil {
		c.midi = midilearn.NewCoordinator(c, options.Logger)
	}
	return c, nil
}

// ValueChanged writes a control value under the guard without notifying anyone.
func (c *Controller) ValueChanged(name string, value float64) error {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.SetValue(name, value)
}

// ValueChangedInternal applies a GUI-originated change and informs the host.
// The GUI is not notified since it already shows the value.
func (c *Controller) ValueChangedInternal(name string, value float64) error {
	if err := c.ValueChanged(name, value); err != nil {
		return err
	}
	c.host.SetValueNotifyHost(name, value)
	return nil
}

// ValueChangedThroughMidi applies a MIDI-originated change. MIDI is treated like host automation.
func (c *Controller) ValueChangedThroughMidi(name string, value float64) error {
	return c.ValueChangedExternal(name, value)
}

// ValueChangedExternal applies a host- or MIDI-originated change and asks the UI to
// repaint the control. A busy UI queue drops the repaint; the value is still applied.
func (c *Controller) ValueChangedExternal(name string, value float64) error {
	if err := c.ValueChanged(name, value); err != nil {
		return err
	}
	if err := c.notifier.TryPost(name, value); err != nil {
		c.logger.Debug("GUI update skipped",
			c.logger.Field().String("name", name),
			c.logger.Field().Error("reason", err))
	}
	return nil
}

// Value reads a control value under the guard.
func (c *Controller) Value(name string) (float64, error) {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.Value(name)
}

// ChangeModulationAmount sets the amount of the source→destination connection in a
// single critical section: the connection is created on the first non-zero amount,
// updated in place afterwards and removed when the amount becomes zero.
func (c *Controller) ChangeModulationAmount(source, destination string, amount float64) error {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.ChangeModulationAmount(source, destination, amount)
}

// Connection returns the connection for the pair.
func (c *Controller) Connection(source, destination string) (contracts.ModulationConnection, bool) {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.Connection(source, destination)
}

// ConnectModulation registers conn with the engine.
func (c *Controller) ConnectModulation(conn contracts.ModulationConnection) (contracts.ModulationConnection, error) {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.Connect(conn)
}

// DisconnectModulation removes the connection with conn's source and destination.
func (c *Controller) DisconnectModulation(conn contracts.ModulationConnection) bool {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.Disconnect(conn.Source, conn.Destination)
}

// SourceConnections returns a snapshot of the connections leaving source.
func (c *Controller) SourceConnections(source string) []contracts.ModulationConnection {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.SourceConnections(source)
}

// DestinationConnections returns a snapshot of the connections arriving at destination.
func (c *Controller) DestinationConnections(destination string) []contracts.ModulationConnection {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.DestinationConnections(destination)
}

// NumActiveVoices returns the voice count, or VoicesUnavailable without waiting when
// the guard is held. Safe to call from a UI polling timer.
func (c *Controller) NumActiveVoices() int {
	if !c.guard.TryLock() {
		return VoicesUnavailable
	}
	defer c.guard.Unlock()
	return c.state.NumActiveVoices()
}

// ModulationSource returns the output handle of a modulation source.
func (c *Controller) ModulationSource(name string) (contracts.ModulationOutput, error) {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.state.ModulationSource(name)
}

// LockSynth acquires the guard for a multi-step sequence. Every LockSynth must be
// matched by UnlockSynth on all paths; prefer WithSynthLock. The returned view is
// invalidated by UnlockSynth.
func (c *Controller) LockSynth() *LockedSynth {
	c.guard.Lock()
	c.held = &LockedSynth{c: c}
	return c.held
}

// UnlockSynth invalidates the view returned by LockSynth and releases the guard.
func (c *Controller) UnlockSynth() {
	if c.held != nil {
		c.held.released.Store(true)
		c.held = nil
	}
	c.guard.Unlock()
}

// WithSynthLock runs fn with the guard held and releases it however fn returns.
func (c *Controller) WithSynthLock(fn func(s *LockedSynth) error) error {
	s := c.LockSynth()
	defer c.UnlockSynth()
	return fn(s)
}

// SaveToVar captures the full state, including learned MIDI mappings.
func (c *Controller) SaveToVar() (contracts.Snapshot, error) {
	snap, err := c.codec.StateToVar(c.engine, c.guard)
	if err != nil {
		return contracts.Snapshot{}, err
	}
	if store, ok := c.midi.(contracts.MidiMappingStore); ok {
		snap.MidiLearn = store.Mappings()
	}
	return snap, nil
}

// LoadFromVar restores a snapshot and requests a full GUI refresh.
// Learned MIDI mappings are replaced by the snapshot's; a snapshot without any clears them.
func (c *Controller) LoadFromVar(state contracts.Snapshot) error {
	if err := c.codec.VarToState(c.engine, c.guard, state); err != nil {
		return err
	}
	if store, ok := c.midi.(contracts.MidiMappingStore); ok {
		store.RestoreMappings(state.MidiLearn)
	}
	c.notifier.RefreshAll()
	c.logger.Info("state loaded",
		c.logger.Field().Int("values", len(state.Values)),
		c.logger.Field().Int("modulations", len(state.Modulations)))
	return nil
}

// ArmMidiLearn arms MIDI learn for name with the range the controller will span.
func (c *Controller) ArmMidiLearn(name string, min, max float64) {
	c.midi.ArmMidiLearn(name, min, max)
}

// CancelMidiLearn disarms MIDI learn without creating a mapping.
func (c *Controller) CancelMidiLearn() {
	c.midi.CancelMidiLearn()
}

// ClearMidiLearn removes any mapping to name.
func (c *Controller) ClearMidiLearn(name string) {
	c.midi.ClearMidiLearn(name)
}

// IsMidiMapped reports whether a controller is bound to name.
func (c *Controller) IsMidiMapped(name string) bool {
	return c.midi.IsMidiMapped(name)
}

// ListenMIDI feeds captured events to the MIDI manager until ctx is done or events is closed.
func (c *Controller) ListenMIDI(ctx context.Context, events <-chan contracts.MIDI) error {
	proc, ok := c.midi.(contracts.MIDIProcessor)
	if !ok {
		return ErrNoMIDIProcessor
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := proc.ProcessMIDI(event); err != nil {
				c.logger.Error("failed to apply MIDI event",
					c.logger.Field().Uint8("status", event.Status),
					c.logger.Field().Error("error", err))
			}
		}
	}
}

// RunUI delivers queued GUI notifications on the calling goroutine until ctx is done.
// It returns immediately when the notifier needs no pumping.
func (c *Controller) RunUI(ctx context.Context) error {
	pump, ok := c.notifier.(contracts.UIPump)
	if !ok {
		return nil
	}
	return pump.Run(ctx)
}

// misuse reports unknown control and port names, which indicate a malformed caller.
func (c *Controller) misuse(err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, contracts.ErrUnknownControl) && !errors.Is(err, contracts.ErrUnknownPort) {
		return err
	}
	c.logger.Error("invalid synth access", c.logger.Field().Error("error", err))
	if c.panicOnMisuse {
		panic(err)
	}
	return err
}

var _ contracts.MidiValueSink = (*Controller)(nil)
