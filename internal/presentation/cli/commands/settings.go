package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/domain/settings"
	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// NewSettingsCmd creates the settings command group.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and edit the sync-service settings",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if err := container.Service().LoadSettings(cmd.Context()); err != nil {
				return err
			}
			cfg := container.Store().Snapshot().Settings

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(cfg)
			}

			formatter.Header("Sync service settings")
			formatter.Item("Sync cutoff", output.FormatSeconds(cfg.SyncCutoffSeconds))
			formatter.Item("Default schedule", cfg.DefaultScheduleCron)
			formatter.Item("Webhook URL", orDash(cfg.WebhookURL))
			formatter.Item("Firebase project", orDash(cfg.FirebaseProjectID))
			formatter.Item("Notifications", fmt.Sprintf("%t", cfg.EnableNotifications))
			formatter.Item("Max retries", fmt.Sprintf("%d", cfg.MaxRetries))
			formatter.Item("Batch size", fmt.Sprintf("%d", cfg.BatchSize))
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		cutoff        int
		schedule      string
		webhookURL    string
		firebaseID    string
		notifications bool
		maxRetries    int
		batchSize     int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update settings fields",
		Long: `Update one or more settings fields. Only the flags you pass are sent;
everything else keeps its current value on the backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			var patch settings.Patch
			if cmd.Flags().Changed("cutoff") {
				patch.SyncCutoffSeconds = &cutoff
			}
			if cmd.Flags().Changed("schedule") {
				patch.DefaultScheduleCron = &schedule
			}
			if cmd.Flags().Changed("webhook-url") {
				patch.WebhookURL = &webhookURL
			}
			if cmd.Flags().Changed("firebase-project") {
				patch.FirebaseProjectID = &firebaseID
			}
			if cmd.Flags().Changed("notifications") {
				patch.EnableNotifications = &notifications
			}
			if cmd.Flags().Changed("max-retries") {
				patch.MaxRetries = &maxRetries
			}
			if cmd.Flags().Changed("batch-size") {
				patch.BatchSize = &batchSize
			}

			if patch == (settings.Patch{}) {
				return fmt.Errorf("nothing to update: pass at least one settings flag")
			}

			merged, err := container.Service().UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(merged)
			}
			return formatter.Success("Settings updated")
		},
	}

	cmd.Flags().IntVar(&cutoff, "cutoff", 0, "execution cutoff in seconds")
	cmd.Flags().StringVar(&schedule, "schedule", "", "default schedule (5-field cron expression)")
	cmd.Flags().StringVar(&webhookURL, "webhook-url", "", "status webhook URL")
	cmd.Flags().StringVar(&firebaseID, "firebase-project", "", "Firebase project for notifications")
	cmd.Flags().BoolVar(&notifications, "notifications", false, "enable notifications")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum automatic retries per run")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "files per sync batch")

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
