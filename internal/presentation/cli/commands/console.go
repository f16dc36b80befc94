package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/eravn/syncdeck/internal/application"
	"github.com/eravn/syncdeck/internal/application/registry"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/infrastructure/config"
	"github.com/eravn/syncdeck/internal/infrastructure/storage"
	"github.com/eravn/syncdeck/internal/presentation/cli/output"
)

// NewConsoleCmd creates the interactive console command.
func NewConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive log console",
		Long: `Start an interactive console over the session history.

Console commands:
  list                    - Reload and show the filtered session list
  days <n|all>            - Set the time window filter
  status <s>              - Set the status filter (all, success, error, interrupted)
  search <text>           - Set the search filter (empty to clear)
  expand <session-id>     - Expand one session's file logs (collapses any other)
  collapse                - Collapse the expanded session
  retry <session-id>      - Retry a failed session
  theme <light|dark>      - Switch the display theme
  help                    - Show this help
  exit, quit              - Leave the console`,
		Args: cobra.NoArgs,
		RunE: runConsole,
	}
}

// console holds the interactive session state. At most one session row is
// expanded at a time; expanding another collapses the previous one.
type console struct {
	container *application.Container
	formatter *output.Formatter
	filter    logs.Filter
	view      logs.View
	expanded  string // expanded session ID, empty when collapsed

	reloadMu  sync.Mutex
	newConfig *config.Config // set by the config watcher, applied on the next reload
}

// runConsole executes the interactive console REPL.
func runConsole(cmd *cobra.Command, args []string) error {
	container := GetContainer()
	formatter := GetFormatter()
	ctx := context.Background()

	c := &console{
		container: container,
		formatter: formatter,
		filter:    logs.NewFilter(),
	}
	c.filter.WindowDays = container.Config().Logs.DefaultWindowDays
	if s := container.Config().Logs.DefaultStatus; s != "" {
		c.filter.Status = s
	}

	// Recall the last used filter if one was recorded.
	if prefs := container.Prefs(); prefs != nil {
		if last, ok, err := prefs.LastFilter(ctx); err == nil && ok {
			c.filter = last
		}
	}

	// Pick up config edits made while the console is open. The new
	// defaults land on the next reload rather than mid-render.
	if loader, err := config.NewLoader(""); err == nil {
		watcher, err := config.NewWatcher(loader, globalFlags.ConfigFile,
			config.DefaultWatcherConfig(), func(cfg *config.Config) {
				c.reloadMu.Lock()
				c.newConfig = cfg
				c.reloadMu.Unlock()
			})
		if err == nil && watcher.Watch() == nil {
			defer watcher.Close()
			go func() {
				for range watcher.Errors() {
					// Invalid edits keep the current config in effect.
				}
			}()
		}
	}

	formatter.Header("Sync log console")
	formatter.Info("Type help for commands, exit to leave.")
	formatter.Println("")

	if err := c.reload(ctx); err != nil {
		formatter.Error("%s", err.Error())
	}

	rl, err := readline.New("syncdeck> ")
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		exit, err := c.handle(ctx, line)
		if err != nil {
			formatter.Error("%s", err.Error())
			continue
		}
		if exit {
			break
		}
	}

	formatter.Info("Console closed.")
	return nil
}

// handle dispatches one console command line.
// Returns (shouldExit, error).
func (c *console) handle(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "exit", "quit":
		return true, nil

	case "help":
		c.printHelp()
		return false, nil

	case "list":
		return false, c.reload(ctx)

	case "days":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: days <n|all>")
		}
		if strings.EqualFold(args[0], "all") {
			c.filter.WindowDays = logs.AllTime
		} else {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return false, fmt.Errorf("days must be a positive number or 'all'")
			}
			c.filter.WindowDays = n
		}
		return false, c.reload(ctx)

	case "status":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: status <all|success|error|interrupted>")
		}
		c.filter.Status = strings.ToLower(args[0])
		return false, c.reload(ctx)

	case "search":
		c.filter.Search = strings.Join(args, " ")
		return false, c.reload(ctx)

	case "expand":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: expand <session-id>")
		}
		return false, c.expand(ctx, args[0])

	case "collapse":
		c.expanded = ""
		c.formatter.Info("Collapsed")
		return false, nil

	case "retry":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: retry <session-id>")
		}
		return false, c.retry(ctx, args[0])

	case "theme":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: theme <light|dark>")
		}
		return false, c.setTheme(ctx, args[0])

	default:
		return false, fmt.Errorf("unknown command %q, type help", command)
	}
}

func (c *console) printHelp() {
	f := c.formatter
	f.Header("Console commands")
	f.Item("list", "Reload and show the filtered session list")
	f.Item("days <n|all>", "Set the time window filter")
	f.Item("status <s>", "Set the status filter")
	f.Item("search <text>", "Set the search filter (empty to clear)")
	f.Item("expand <session-id>", "Expand one session's file logs")
	f.Item("collapse", "Collapse the expanded session")
	f.Item("retry <session-id>", "Retry a failed session")
	f.Item("theme <light|dark>", "Switch the display theme")
	f.Item("exit, quit", "Leave the console")
	f.Println("")
}

// reload fetches the history through the current filter and renders it.
func (c *console) reload(ctx context.Context) error {
	c.applyConfigReload()

	view, err := c.container.Service().Sessions(ctx, c.filter)
	if err != nil {
		return err
	}
	c.view = view

	// The expanded row may have been filtered away.
	if c.expanded != "" && c.findEntry(c.expanded) == nil {
		c.expanded = ""
	}

	if prefs := c.container.Prefs(); prefs != nil {
		_ = prefs.RecordFilter(ctx, c.filter)
	}

	c.render()
	return nil
}

// applyConfigReload folds a watched config change into the current
// filter. The search term is untouched; window and status take the new
// defaults.
func (c *console) applyConfigReload() {
	c.reloadMu.Lock()
	cfg := c.newConfig
	c.newConfig = nil
	c.reloadMu.Unlock()

	if cfg == nil {
		return
	}
	c.filter.WindowDays = cfg.Logs.DefaultWindowDays
	if cfg.Logs.DefaultStatus != "" {
		c.filter.Status = cfg.Logs.DefaultStatus
	}
	c.formatter.Info("Configuration reloaded, filter defaults applied")
}

func (c *console) render() {
	f := c.formatter

	window := "all time"
	if c.filter.WindowDays != logs.AllTime {
		window = fmt.Sprintf("last %d days", c.filter.WindowDays)
	}
	f.Println("%s", f.Dim(fmt.Sprintf("filter: %s, status %s, search %q",
		window, c.filter.Status, c.filter.Search)))

	if len(c.view.Entries) == 0 {
		f.Info("No sessions match the filter")
		return
	}

	for _, e := range c.view.Entries {
		c.renderEntry(e)
	}

	agg := c.view.Aggregates
	f.Println("")
	f.Println("%s", f.Dim(fmt.Sprintf("%d sessions, %d files, mean %s, %s synced",
		agg.Sessions, agg.FilesProcessed,
		output.FormatSeconds(agg.MeanDurationSeconds),
		output.FormatBytes(agg.TotalSizeSynced))))
}

func (c *console) renderEntry(e logs.Entry) {
	f := c.formatter

	marker := " "
	if e.ID == c.expanded {
		marker = "▼"
	}

	status := string(e.Status)
	switch e.Status {
	case session.OutcomeSuccess:
		status = f.Colorize(status, output.ColorGreen)
	case session.OutcomeError:
		status = f.Colorize(status, output.ColorRed)
	case session.OutcomeInterrupted:
		status = f.Colorize(status, output.ColorYellow)
	}

	annotations := ""
	if e.IsRetry {
		annotations += " " + f.Dim("[retry of "+e.RetryOf+"]")
	}
	if e.WasRetried {
		annotations += " " + f.Dim("[retried by "+e.RetriedBy+"]")
	}

	f.Println("%s %s  %s  %s  %s  %d files%s",
		marker, e.ID, e.ProjectName,
		output.FormatTimestamp(e.StartedAt), status,
		e.FilesCount, annotations)
}

func (c *console) findEntry(sessionID string) *logs.Entry {
	for i := range c.view.Entries {
		if c.view.Entries[i].ID == sessionID {
			return &c.view.Entries[i]
		}
	}
	return nil
}

// expand shows one session's file logs. Only one session is expanded at a
// time, and the logs are fetched fresh on every expansion.
func (c *console) expand(ctx context.Context, sessionID string) error {
	entry := c.findEntry(sessionID)
	if entry == nil {
		return fmt.Errorf("session %s is not in the current view", sessionID)
	}

	files, err := c.container.Service().FileLogs(ctx, entry.ID, entry.ProjectID)
	if err != nil {
		return err
	}

	c.expanded = sessionID
	c.renderEntry(*entry)

	if len(files) == 0 {
		c.formatter.Println("    %s", c.formatter.Dim("no file logs"))
		return nil
	}
	for _, fl := range files {
		c.formatter.Println("    %s  %s  %s",
			fl.FileName, fl.Status, output.FormatBytes(fl.FileSize))
	}
	return nil
}

// retry retries a failed session and re-renders the refreshed history.
func (c *console) retry(ctx context.Context, sessionID string) error {
	entry := c.findEntry(sessionID)
	if entry == nil {
		return fmt.Errorf("session %s is not in the current view", sessionID)
	}

	retried, err := c.container.Service().RetrySession(ctx, entry.ID, entry.ProjectID)
	if err != nil {
		return err
	}

	c.formatter.Success("Retry started: session %s", retried.ID)
	return c.reload(ctx)
}

func (c *console) setTheme(ctx context.Context, name string) error {
	var theme registry.Theme
	switch strings.ToLower(name) {
	case "light":
		theme = registry.ThemeLight
	case "dark":
		theme = registry.ThemeDark
	default:
		return fmt.Errorf("unknown theme %q", name)
	}

	c.container.Store().SetTheme(theme)
	if prefs := c.container.Prefs(); prefs != nil {
		_ = prefs.Set(ctx, storage.PrefTheme, string(theme))
	}
	c.formatter.Success("Theme set to %s", theme)
	return nil
}
