package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// NewProjectsCmd creates the projects command group.
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage sync-pair projects",
		Long:    `List, inspect, create, update, pause, resume, and delete folder-sync projects.`,
	}

	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsShowCmd())
	cmd.AddCommand(newProjectsCreateCmd())
	cmd.AddCommand(newProjectsUpdateCmd())
	cmd.AddCommand(newProjectsDeleteCmd())
	cmd.AddCommand(newProjectsPauseCmd())
	cmd.AddCommand(newProjectsResumeCmd())

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if err := container.Service().LoadProjects(cmd.Context()); err != nil {
				return err
			}

			projects := container.Store().Snapshot().Projects
			if len(projects) == 0 {
				return formatter.Info("No projects configured")
			}

			now := time.Now()
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				lastSync := "never"
				if p.LastSyncAt != nil {
					lastSync = output.FormatTimeAgo(*p.LastSyncAt, now)
				}
				rows = append(rows, []string{
					p.ID,
					p.Name,
					string(p.Status),
					string(p.LastSyncStatus),
					lastSync,
					fmt.Sprintf("%d", p.FilesCount),
					output.FormatBytes(p.TotalSize),
				})
			}

			return formatter.FormatAuto(projects, &output.TableData{
				Columns: []output.TableColumn{
					{Header: "ID"},
					{Header: "NAME"},
					{Header: "STATUS"},
					{Header: "LAST RESULT"},
					{Header: "LAST SYNC"},
					{Header: "FILES", Align: output.AlignRight},
					{Header: "SIZE", Align: output.AlignRight},
				},
				Rows: rows,
			})
		},
	}
}

func newProjectsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one project in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			p, err := container.Bridge().GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("project %s not found", args[0])
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(p)
			}

			formatter.Header(p.Name)
			formatter.Item("ID", p.ID)
			formatter.Item("Description", p.Description)
			formatter.Item("Status", string(p.Status))
			formatter.Item("Source", p.SourceFolderLink)
			formatter.Item("Destination", p.DestFolderLink)
			if p.SyncStartDate != nil {
				formatter.Item("Sync start date", output.FormatTimestamp(*p.SyncStartDate))
			}
			if p.LastSyncAt != nil {
				formatter.Item("Last sync", output.FormatTimestamp(*p.LastSyncAt))
			}
			formatter.Item("Last result", string(p.LastSyncStatus))
			formatter.Item("Files", fmt.Sprintf("%d", p.FilesCount))
			formatter.Item("Total size", output.FormatBytes(p.TotalSize))
			formatter.Item("Created", output.FormatTimestamp(p.CreatedAt))
			return nil
		},
	}
}

func newProjectsCreateCmd() *cobra.Command {
	var (
		name        string
		description string
		sourceID    string
		sourceLink  string
		destID      string
		destLink    string
		startDate   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new sync project",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			draft := project.Draft{
				Name:             name,
				Description:      description,
				SourceFolderID:   sourceID,
				SourceFolderLink: sourceLink,
				DestFolderID:     destID,
				DestFolderLink:   destLink,
			}
			if startDate != "" {
				t, err := time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("invalid --start-date %q: expected YYYY-MM-DD", startDate)
				}
				draft.SyncStartDate = &t
			}

			created, err := container.Service().CreateProject(cmd.Context(), draft)
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(created)
			}
			return formatter.Success("Created project %s (%s)", created.Name, created.ID)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "project name (required)")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&sourceID, "source", "", "source folder ID (required)")
	cmd.Flags().StringVar(&sourceLink, "source-link", "", "source folder link")
	cmd.Flags().StringVar(&destID, "dest", "", "destination folder ID (required)")
	cmd.Flags().StringVar(&destLink, "dest-link", "", "destination folder link")
	cmd.Flags().StringVar(&startDate, "start-date", "", "skip files older than this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func newProjectsUpdateCmd() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			patch := project.Patch{ID: args[0]}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if patch.Name == nil && patch.Description == nil {
				return fmt.Errorf("nothing to update: pass --name or --description")
			}

			updated, err := container.Service().UpdateProject(cmd.Context(), patch)
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(updated)
			}
			return formatter.Success("Updated project %s", updated.ID)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new project name")
	cmd.Flags().StringVar(&description, "description", "", "new project description")

	return cmd
}

func newProjectsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project (session history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if !force {
				return fmt.Errorf("refusing to delete %s without --force", args[0])
			}

			if err := container.Service().DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			return formatter.Success("Deleted project %s", args[0])
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "confirm the deletion")

	return cmd
}

func newProjectsPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <project-id>",
		Short: "Suspend scheduled syncing for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if err := container.Service().LoadProjects(cmd.Context()); err != nil {
				return err
			}

			updated, err := container.Service().PauseProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return formatter.Success("Paused project %s", updated.ID)
		},
	}
}

func newProjectsResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <project-id>",
		Short: "Resume scheduled syncing for a paused or errored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			formatter := GetFormatter()

			if err := container.Service().LoadProjects(cmd.Context()); err != nil {
				return err
			}

			updated, err := container.Service().ResumeProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return formatter.Success("Resumed project %s", updated.ID)
		},
	}
}
