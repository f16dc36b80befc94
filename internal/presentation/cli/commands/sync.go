package commands

import (
	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [project-id]",
		Short: "Trigger a sync run",
		Long: `Trigger a sync run for one project, or for every active project when no
project is named. The backend acknowledges the trigger immediately; the
run itself completes asynchronously and lands in the session history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			var message string
			spinner := output.NewSpinner("Triggering sync...",
				output.WithSpinnerColor(formatter.Format() != output.FormatJSON))
			if formatter.Format() != output.FormatJSON {
				spinner.Start()
			}

			var err error
			if len(args) == 1 {
				ack, runErr := container.Service().RunSyncProject(cmd.Context(), args[0])
				message, err = ack.Message, runErr
			} else {
				ack, runErr := container.Service().RunSyncAll(cmd.Context())
				message, err = ack.Message, runErr
			}

			if err != nil {
				spinner.StopWithError(err.Error())
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(map[string]string{"message": message})
			}
			spinner.StopWithSuccess(message)
			return nil
		},
	}

	return cmd
}
