package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/leandrodaf/synthsync/internal/preset"
	"github.com/leandrodaf/synthsync/sdk/contracts"
	"github.com/leandrodaf/synthsync/sdk/midi"
	"github.com/leandrodaf/synthsync/sdk/synth"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Preset   string
	Save     string
	Learn    string
	LearnMin float64
	LearnMax float64
	Set      map[string]string
	Duration time.Duration
	Poll     time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a control-plane session",
		Long: `Run a control-plane session until interrupted.

GUI notifications are printed to stdout. When MIDI is enabled in the
configuration, control changes from the selected device drive MIDI learn
and mapped controls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Preset, "preset", "", "preset to load before starting")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save the final state under this preset name")
	cmd.Flags().StringVar(&opts.Learn, "learn", "", "arm MIDI learn for this control")
	cmd.Flags().Float64Var(&opts.LearnMin, "learn-min", 0, "value sent for controller position 0")
	cmd.Flags().Float64Var(&opts.LearnMax, "learn-max", 1, "value sent for controller position 127")
	cmd.Flags().StringToStringVar(&opts.Set, "set", nil, "control values to apply, name=value")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.Poll, "poll", time.Second, "active-voice polling interval")

	return cmd
}

func runSession(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions) (err error) {
	s, err := newSession(rootOpts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if opts.Poll <= 0 {
		return fmt.Errorf("--poll must be positive")
	}

	if opts.Preset != "" || opts.Save != "" {
		store, openErr := s.openStore()
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()

		if opts.Preset != "" {
			snap, loadErr := store.Load(cmd.Context(), opts.Preset)
			if loadErr != nil {
				return loadErr
			}
			if loadErr = s.controller.LoadFromVar(snap); loadErr != nil {
				return loadErr
			}
		}
		if opts.Save != "" {
			defer func() {
				if err == nil {
					err = saveState(s, store, opts.Save)
				}
			}()
		}
	}

	if err := s.applyValues(opts.Set); err != nil {
		return err
	}
	if opts.Learn != "" {
		s.controller.ArmMidiLearn(opts.Learn, opts.LearnMin, opts.LearnMax)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.controller.RunUI(gctx)
	})
	g.Go(func() error {
		return pollVoices(gctx, s, opts.Poll)
	})

	if s.cfg.MIDI.Enabled {
		client, events, midiErr := s.startMIDI()
		if midiErr != nil {
			return midiErr
		}
		defer func() { err = multierr.Append(err, client.Stop()) }()
		g.Go(func() error {
			return s.controller.ListenMIDI(gctx, events)
		})
	}

	s.log.Info("session started", s.log.Field().Int("controls", len(s.engine.ControlNames())))
	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	s.log.Info("session stopped")
	return err
}

func (s *session) startMIDI() (contracts.ClientMIDI, chan contracts.MIDI, error) {
	client, err := midi.NewMIDIClient(
		contracts.WithLogger(s.log),
		contracts.WithLogLevel(s.cfg.Level()),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: s.cfg.MIDI.ClientName}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create MIDI client: %w", err)
	}

	devices, err := client.ListDevices()
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to list MIDI devices: %w", err), client.Stop())
	}
	for _, d := range devices {
		s.log.Debug("MIDI device",
			s.log.Field().Int("id", d.ID),
			s.log.Field().String("name", d.Name),
			s.log.Field().String("manufacturer", d.Manufacturer))
	}
	if err := client.SelectDevice(s.cfg.MIDI.Device); err != nil {
		return nil, nil, multierr.Append(err, client.Stop())
	}

	events := make(chan contracts.MIDI, s.cfg.MIDI.Buffer)
	client.StartCapture(events)
	return client, events, nil
}

// pollVoices reports the voice count the way a UI timer would: it never waits for the guard.
func pollVoices(ctx context.Context, s *session, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := synth.VoicesUnavailable
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n := s.controller.NumActiveVoices()
			if n == last {
				continue
			}
			last = n
			s.log.Debug("active voices", s.log.Field().Int("voices", n))
		}
	}
}

func saveState(s *session, store *preset.Store, name string) error {
	snap, err := s.controller.SaveToVar()
	if err != nil {
		return err
	}
	if err := store.Save(context.Background(), name, snap); err != nil {
		return err
	}
	s.log.Info("state saved", s.log.Field().String("preset", name))
	return nil
}
