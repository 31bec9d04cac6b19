package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/leandrodaf/synthsync/internal/codec"
	"github.com/leandrodaf/synthsync/internal/preset"
)

// NewPresetCommand creates the preset command group.
func NewPresetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage the preset bank",
	}

	cmd.AddCommand(newPresetListCommand(rootOpts))
	cmd.AddCommand(newPresetSaveCommand(rootOpts))
	cmd.AddCommand(newPresetShowCommand(rootOpts))
	cmd.AddCommand(newPresetDeleteCommand(rootOpts))

	return cmd
}

// withStore runs fn against the configured preset bank.
func withStore(rootOpts *RootOptions, fn func(s *session, store *preset.Store) error) (err error) {
	s, err := newSession(rootOpts, io.Discard)
	if err != nil {
		return err
	}
	store, err := s.openStore()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()
	return fn(s, store)
}

func newPresetListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(_ *session, store *preset.Store) error {
				infos, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tVERSION\tUPDATED")
				for _, info := range infos {
					fmt.Fprintf(w, "%s\t%d\t%s\n", info.Name, info.Version, info.UpdatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
}

func newPresetSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		from string
		set  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a preset",
		Long: `Save a preset built from the configured patch defaults, an optional
state file (--from) and any --set assignments. Names in the state file that
the patch does not have are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(s *session, store *preset.Store) error {
				if from != "" {
					data, err := os.ReadFile(from)
					if err != nil {
						return fmt.Errorf("failed to read state file: %w", err)
					}
					snap, err := codec.Decode(data)
					if err != nil {
						return err
					}
					if err := s.controller.LoadFromVar(snap); err != nil {
						return err
					}
				}
				if err := s.applyValues(set); err != nil {
					return err
				}
				snap, err := s.controller.SaveToVar()
				if err != nil {
					return err
				}
				if err := store.Save(cmd.Context(), args[0], snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "state file (YAML) to start from")
	cmd.Flags().StringToStringVar(&set, "set", nil, "control values to apply, name=value")

	return cmd
}

func newPresetShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a preset as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(_ *session, store *preset.Store) error {
				snap, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := codec.Encode(snap)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}

func newPresetDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(_ *session, store *preset.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
