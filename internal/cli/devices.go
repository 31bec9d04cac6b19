package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/leandrodaf/synthsync/sdk/contracts"
	"github.com/leandrodaf/synthsync/sdk/midi"
)

// NewDevicesCommand creates the devices command.
func NewDevicesCommand(rootOpts *RootOptions) *cobra.Command {
	var monitor bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List MIDI input devices",
		Long: `List MIDI input devices. With --monitor, capture control changes from
the configured device and print them until interrupted, which shows the
controller numbers MIDI learn will bind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(cmd, rootOpts, monitor)
		},
	}

	cmd.Flags().BoolVarP(&monitor, "monitor", "m", false, "print incoming control changes")

	return cmd
}

func runDevices(cmd *cobra.Command, rootOpts *RootOptions, monitor bool) (err error) {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(cfg.Level()),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: cfg.MIDI.ClientName}),
	)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Stop()) }()

	devices, err := client.ListDevices()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMANUFACTURER")
	for _, d := range devices {
		fmt.Fprintf(w, "%d\t%s\t%s\n", d.ID, d.Name, d.Manufacturer)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !monitor {
		return nil
	}

	if err := client.SelectDevice(cfg.MIDI.Device); err != nil {
		return err
	}
	events := make(chan contracts.MIDI, cfg.MIDI.Buffer)
	client.StartCapture(events)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return printEvents(ctx, cmd, events)
}

func printEvents(ctx context.Context, cmd *cobra.Command, events <-chan contracts.MIDI) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			var channel, controller, value uint8
			if msg := event.Message(); msg.GetControlChange(&channel, &controller, &value) {
				fmt.Fprintf(cmd.OutOrStdout(), "channel=%d controller=%d value=%d\n", channel+1, controller, value)
			}
		}
	}
}
