package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// statusReport is the JSON shape of the status command.
type statusReport struct {
	Projects   []project.Project   `json:"projects"`
	Heartbeats []project.Heartbeat `json:"heartbeats"`
	Stats      logs.DashboardStats `json:"stats"`
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync dashboard",
		Long: `Show the operator dashboard: per-project liveness from the heartbeat
poll plus activity statistics for today and the trailing week.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if err := container.Service().LoadProjects(cmd.Context()); err != nil {
				return err
			}
			projects := container.Store().Snapshot().Projects

			heartbeats, err := container.Service().Heartbeats(cmd.Context())
			if err != nil {
				return err
			}

			stats, err := container.Service().Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(statusReport{
					Projects:   projects,
					Heartbeats: heartbeats,
					Stats:      stats,
				})
			}

			byProject := make(map[string]project.Heartbeat, len(heartbeats))
			for _, hb := range heartbeats {
				byProject[hb.ProjectID] = hb
			}

			now := time.Now()
			formatter.Header("Projects")
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				liveness := "-"
				if hb, ok := byProject[p.ID]; ok {
					liveness = fmt.Sprintf("%s (%s)", hb.LastStatus,
						output.FormatTimeAgo(hb.LastCheckTimestamp, now))
				}
				rows = append(rows, []string{p.Name, string(p.Status), liveness})
			}
			if err := formatter.Table(output.TableData{
				Columns: []output.TableColumn{
					{Header: "PROJECT"},
					{Header: "STATUS"},
					{Header: "HEARTBEAT"},
				},
				Rows: rows,
			}); err != nil {
				return err
			}

			formatter.Println("")
			formatter.Header("Activity")
			printStats(formatter, "Today", stats.Today)
			printStats(formatter, "Last 7 days", stats.Last7Day)
			return nil
		},
	}
}

func printStats(formatter *output.Formatter, label string, st logs.Stats) {
	formatter.Item(label, fmt.Sprintf("%d sessions, %d files, %s, %s sync time",
		st.Sessions, st.Files,
		output.FormatBytes(st.Size),
		output.FormatSeconds(st.DurationSeconds)))
}
