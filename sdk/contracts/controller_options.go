package contracts

// ControllerOptions defines the configuration of a synth controller.
type ControllerOptions struct {
	Logger        Logger      // Logger for facade diagnostics.
	LogLevel      LogLevel    // Level of logging to use.
	GUI           GUI         // Control surface receiving notifications.
	Host          Host        // Automation host notified of GUI-originated changes.
	Notifier      UINotifier  // Overrides the default UI dispatcher built around GUI.
	UIQueueSize   int         // Capacity of the default UI dispatcher queue.
	MidiManager   MidiManager // Overrides the default MIDI learn coordinator.
	StateCodec    StateCodec  // Codec used by SaveToVar and LoadFromVar.
	Guard         Guard       // Overrides the default critical section.
	PanicOnMisuse bool        // Panic on unknown control or port names instead of returning errors.
}

// ControllerOption is a function that modifies ControllerOptions.
type ControllerOption func(*ControllerOptions)

// WithControllerLogger sets the logger for the controller.
func WithControllerLogger(l Logger) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.Logger = l
	}
}

// WithControllerLogLevel sets the logging level for the controller.
func WithControllerLogLevel(level LogLevel) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.LogLevel = level
	}
}

// WithGUI sets the control surface.
func WithGUI(gui GUI) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.GUI = gui
	}
}

// WithHost sets the automation host.
func WithHost(host Host) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.Host = host
	}
}

// WithNotifier replaces the default UI dispatcher.
func WithNotifier(n UINotifier) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.Notifier = n
	}
}

// WithUIQueueSize sets the capacity of the default UI dispatcher.
func WithUIQueueSize(size int) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.UIQueueSize = size
	}
}

// WithMidiManager replaces the default MIDI learn coordinator.
func WithMidiManager(m MidiManager) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.MidiManager = m
	}
}

// WithStateCodec replaces the default state codec.
func WithStateCodec(c StateCodec) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.StateCodec = c
	}
}

// WithGuard replaces the default critical section.
func WithGuard(g Guard) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.Guard = g
	}
}

// WithPanicOnMisuse makes unknown control and port names fatal. Meant for debug builds and tests.
func WithPanicOnMisuse(enabled bool) ControllerOption {
	return func(opts *ControllerOptions) {
		opts.PanicOnMisuse = enabled
	}
}
