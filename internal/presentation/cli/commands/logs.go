package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// NewLogsCmd creates the logs command group.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"log", "l"},
		Short:   "Inspect sync session history",
		Long: `Browse the sync session history with filtering, drill into per-file
outcomes, retry failed sessions, and lint the retry linkage.`,
	}

	cmd.AddCommand(newLogsListCmd())
	cmd.AddCommand(newLogsFilesCmd())
	cmd.AddCommand(newLogsRetryCmd())
	cmd.AddCommand(newLogsVerifyCmd())

	return cmd
}

// buildFilter assembles the log filter from flags, falling back to the
// configured defaults.
func buildFilter(days int, daysChanged bool, status, search string) logs.Filter {
	filter := logs.NewFilter()

	cfg := GetAppContext().Config
	filter.WindowDays = cfg.Logs.DefaultWindowDays
	if cfg.Logs.DefaultStatus != "" {
		filter.Status = cfg.Logs.DefaultStatus
	}

	if daysChanged {
		filter.WindowDays = days
	}
	if status != "" {
		filter.Status = status
	}
	filter.Search = search
	return filter
}

func newLogsListCmd() *cobra.Command {
	var (
		days   int
		status string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sync sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			filter := buildFilter(days, cmd.Flags().Changed("days"), status, search)

			view, err := container.Service().Sessions(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if prefs := container.Prefs(); prefs != nil {
				// Best effort; losing filter history costs nothing.
				_ = prefs.RecordFilter(cmd.Context(), filter)
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(view)
			}

			if len(view.Entries) == 0 {
				return formatter.Info("No sessions match the filter")
			}

			rows := make([][]string, 0, len(view.Entries))
			for _, e := range view.Entries {
				marker := ""
				if e.IsRetry {
					marker = "retry"
				}
				if e.WasRetried {
					if marker != "" {
						marker += ", "
					}
					marker += "retried"
				}
				rows = append(rows, []string{
					e.ID,
					e.ProjectName,
					output.FormatTimestamp(e.StartedAt),
					string(e.Status),
					output.FormatSeconds(e.DurationSeconds),
					fmt.Sprintf("%d", e.FilesCount),
					output.FormatBytes(e.TotalSizeSynced),
					marker,
				})
			}

			if err := formatter.Table(output.TableData{
				Columns: []output.TableColumn{
					{Header: "SESSION"},
					{Header: "PROJECT"},
					{Header: "STARTED"},
					{Header: "STATUS"},
					{Header: "DURATION", Align: output.AlignRight},
					{Header: "FILES", Align: output.AlignRight},
					{Header: "SIZE", Align: output.AlignRight},
					{Header: "RETRY"},
				},
				Rows: rows,
			}); err != nil {
				return err
			}

			agg := view.Aggregates
			formatter.Println("")
			formatter.Println("%s", formatter.Dim(fmt.Sprintf(
				"%d sessions, %d files, mean duration %s, %s synced",
				agg.Sessions, agg.FilesProcessed,
				output.FormatSeconds(agg.MeanDurationSeconds),
				output.FormatBytes(agg.TotalSizeSynced))))
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "only sessions from the last N days (-1 for all time)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status: all, success, error, interrupted")
	cmd.Flags().StringVar(&search, "search", "", "substring match on project name or run id")

	return cmd
}

func newLogsFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <session-id> <project-id>",
		Short: "Show the per-file outcomes of one session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			files, err := container.Service().FileLogs(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(files)
			}

			if len(files) == 0 {
				return formatter.Info("No file logs for session %s", args[0])
			}

			rows := make([][]string, 0, len(files))
			for _, fl := range files {
				rows = append(rows, []string{
					fl.FileName,
					fl.Status,
					output.FormatBytes(fl.FileSize),
					output.FormatTimestamp(fl.ModifiedDate),
					fl.SourcePath,
				})
			}

			return formatter.Table(output.TableData{
				Columns: []output.TableColumn{
					{Header: "FILE"},
					{Header: "STATUS"},
					{Header: "SIZE", Align: output.AlignRight},
					{Header: "MODIFIED"},
					{Header: "PATH"},
				},
				Rows: rows,
			})
		},
	}
}

func newLogsRetryCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "retry <session-id> <project-id>",
		Short: "Retry a failed session",
		Long: `Retry a failed sync session. Only sessions with status error that have
not already been retried are eligible; ineligible retries are rejected
before any backend call.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			// Load history first so the eligibility gate sees this session.
			filter := logs.NewFilter()
			if cmd.Flags().Changed("days") {
				filter.WindowDays = days
			}
			if _, err := container.Service().Sessions(cmd.Context(), filter); err != nil {
				return err
			}

			retry, err := container.Service().RetrySession(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(retry)
			}
			return formatter.Success("Retry started: session %s (retries %s)", retry.ID, args[0])
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", -1, "history window to load before retrying")

	return cmd
}

func newLogsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Lint the retry linkage of the session history",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if _, err := container.Service().Sessions(cmd.Context(), logs.NewFilter()); err != nil {
				return err
			}

			issues := container.Service().VerifyHistory()
			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(issues)
			}

			if len(issues) == 0 {
				return formatter.Success("Retry linkage is consistent")
			}

			for _, issue := range issues {
				formatter.Warning("%s: %s", issue.SessionID, issue.Reason)
			}
			return fmt.Errorf("%d linkage issue(s) found", len(issues))
		},
	}
}
