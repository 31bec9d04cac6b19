package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/leandrodaf/synthsync/internal/codec"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	Preset string
	Set    map[string]string
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the synth state as YAML",
		Long: `Print the state a session would save: control values, modulation
connections and MIDI learn mappings. The state starts from the configured
patch defaults, optionally a preset, then any --set assignments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Preset, "preset", "", "preset to load first")
	cmd.Flags().StringToStringVar(&opts.Set, "set", nil, "control values to apply, name=value")

	return cmd
}

func runState(cmd *cobra.Command, rootOpts *RootOptions, opts *StateOptions) (err error) {
	// GUI output is discarded; only the encoded state goes to stdout.
	s, err := newSession(rootOpts, io.Discard)
	if err != nil {
		return err
	}

	if opts.Preset != "" {
		store, openErr := s.openStore()
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()

		snap, loadErr := store.Load(cmd.Context(), opts.Preset)
		if loadErr != nil {
			return loadErr
		}
		if loadErr = s.controller.LoadFromVar(snap); loadErr != nil {
			return loadErr
		}
	}
	if err := s.applyValues(opts.Set); err != nil {
		return err
	}

	snap, err := s.controller.SaveToVar()
	if err != nil {
		return err
	}
	data, err := codec.Encode(snap)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
