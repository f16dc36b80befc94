package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// NewPrefsCmd creates the prefs command group for local operator
// preferences.
func NewPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage local operator preferences",
		Long: `Operator preferences (theme, view mode) are stored locally and never
sent to the sync backend.`,
	}

	cmd.AddCommand(newPrefsListCmd())
	cmd.AddCommand(newPrefsSetCmd())
	cmd.AddCommand(newPrefsUnsetCmd())

	return cmd
}

func newPrefsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			prefs := container.Prefs()
			if prefs == nil {
				return fmt.Errorf("local preference storage is unavailable")
			}

			all, err := prefs.All(cmd.Context())
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(all)
			}

			if len(all) == 0 {
				return formatter.Info("No preferences stored")
			}
			for key, value := range all {
				formatter.Item(key, value)
			}
			return nil
		},
	}
}

func newPrefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			prefs := container.Prefs()
			if prefs == nil {
				return fmt.Errorf("local preference storage is unavailable")
			}

			if err := prefs.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return formatter.Success("Set %s = %s", args[0], args[1])
		},
	}
}

func newPrefsUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			prefs := container.Prefs()
			if prefs == nil {
				return fmt.Errorf("local preference storage is unavailable")
			}

			if err := prefs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return formatter.Success("Removed %s", args[0])
		},
	}
}
