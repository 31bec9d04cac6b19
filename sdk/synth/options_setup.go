package synth

import (
	"fmt"

	"github.com/leandrodaf/synthsync/internal/codec"
	"github.com/leandrodaf/synthsync/internal/guard"
	"github.com/leandrodaf/synthsync/internal/logger"
	"github.com/leandrodaf/synthsync/internal/notify"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// applyDefaultOptions sets default values for ControllerOptions if not explicitly provided.
// The UI notifier and MIDI manager are left nil here; NewController builds them because
// they need the GUI and the controller itself.
func applyDefaultOptions(opts ...contracts.ControllerOption) (contracts.ControllerOptions, error) {
	options := &contracts.ControllerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.UIQueueSize < 0 {
		return contracts.ControllerOptions{}, fmt.Errorf("invalid UI queue size %d", options.UIQueueSize)
	}
	if options.UIQueueSize == 0 {
		options.UIQueueSize = notify.DefaultQueueSize
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.GUI == nil {
		options.GUI = nopGUI{}
	}
	if options.Host == nil {
		options.Host = nopHost{}
	}
	if options.StateCodec == nil {
		options.StateCodec = codec.New(options.Logger)
	}
	if options.Guard == nil {
		options.Guard = guard.New()
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}

type nopGUI struct{}

func (nopGUI) UpdateGuiControl(string, float64) {}
func (nopGUI) UpdateFullGui()                   {}

type nopHost struct{}

func (nopHost) SetValueNotifyHost(string, float64) {}
