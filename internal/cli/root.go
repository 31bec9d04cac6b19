// Package cli implements the synthctl command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command for synthctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "synthctl",
		Short: "synthctl drives a synth control plane",
		Long: `Drive a synth control plane from the terminal.

Runs a headless engine behind the synchronization facade, captures MIDI
control changes for MIDI learn and manages a bank of saved presets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel == "" {
				return nil
			}
			_, err := contracts.ParseLogLevel(opts.LogLevel)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewPresetCommand(opts))
	cmd.AddCommand(NewDevicesCommand(opts))

	return cmd
}
