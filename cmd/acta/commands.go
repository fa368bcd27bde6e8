package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/acta/internal/adapters/storage/sqlite"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/config"
	"github.com/evanschultz/acta/internal/domain"
	"github.com/evanschultz/acta/internal/prefs"
	"github.com/evanschultz/acta/internal/scheduler"
	"github.com/evanschultz/acta/internal/sound"
	"github.com/evanschultz/acta/internal/theme"
	"github.com/evanschultz/acta/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// runTUI wires the completion pipeline and runs the dashboard until it quits.
func (c *cli) runTUI(ctx context.Context) (err error) {
	s, err := c.openSession(ctx, "tui")
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	engine := scheduler.NewEngine(16)
	engine.Start()
	defer engine.Stop()

	var player app.SoundPlayer = sound.Nop{}
	if s.cfg.UI.Sound {
		player = sound.NewBell(c.stderr)
	}
	notes := tui.NewNotifications()
	completion := app.NewCompletion(s.repo, app.CompletionConfig{
		Scheduler: engine,
		Sound:     player,
		Notifier:  notes,
		Clock:     c.now,
		Logger:    s.logger.Library(),
		OnCompleted: func(task domain.Task) {
			s.logger.Info("task completed", "task_id", task.ID)
		},
	})
	defer completion.Close()

	m := tui.NewModel(s.svc,
		tui.WithCompletion(completion, engine.C()),
		tui.WithNotifications(notes),
		tui.WithPrefs(s.prefs),
		tui.WithToastTTL(time.Duration(s.cfg.UI.ToastSeconds)*time.Second),
		tui.WithKeyConfig(tui.KeyConfig{
			CommandPalette: s.cfg.Keys.CommandPalette,
			Undo:           s.cfg.Keys.Undo,
			Search:         s.cfg.Keys.Search,
		}),
		tui.WithLogger(s.logger.Library()),
	)
	s.logger.Info("starting tui program loop")
	if _, err := c.programFactory(m).Run(); err != nil {
		s.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}

func (c *cli) pathsCommand() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := c.resolvePaths()
			if err != nil {
				return err
			}
			if create {
				if err := config.EnsureConfigDir(paths.ConfigPath); err != nil {
					return fmt.Errorf("create config dir: %w", err)
				}
				if err := os.MkdirAll(paths.DataDir, 0o755); err != nil {
					return fmt.Errorf("create data dir: %w", err)
				}
			}
			c.printf("app: %s\n", c.flags.appName)
			c.printf("dev_mode: %t\n", c.flags.devMode)
			c.printf("config: %s\n", paths.ConfigPath)
			c.printf("env: %s\n", paths.EnvPath)
			c.printf("data_dir: %s\n", paths.DataDir)
			c.printf("db: %s\n", paths.DBPath)
			c.printf("prefs_file: %s\n", paths.PrefsPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "init", false, "create the config and data directories")
	return cmd
}

func (c *cli) tasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect the task collection",
	}

	var view, search string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print tasks as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "tasks list", func(s *session) error {
				tasks, err := selectTasks(cmd.Context(), s.svc, view, search)
				if err != nil {
					return err
				}
				c.printf("%s\n", renderTaskTable(tasks))
				stats, err := s.svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				c.printf("%d tasks · %d completed · %d overdue · %d%% done today\n", stats.Total, stats.Completed, stats.Overdue, stats.DailyProgress)
				return nil
			})
		},
	}
	list.Flags().StringVar(&view, "view", "all", "which tasks to show: all, today or overdue")
	list.Flags().StringVar(&search, "search", "", "case-insensitive title filter")

	var format, out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write tasks as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "tasks export", func(s *session) error {
				snap, err := s.svc.ExportSnapshot(cmd.Context())
				if err != nil {
					return err
				}
				encoded, err := encodeSnapshot(snap, format)
				if err != nil {
					return err
				}
				return writeOutput(c.stdout, out, encoded)
			})
		},
	}
	export.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	export.Flags().StringVar(&out, "out", "-", "output file path ('-' for stdout)")

	cmd.AddCommand(list, export)
	return cmd
}

// selectTasks applies the --view and --search filters.
func selectTasks(ctx context.Context, svc *app.Service, view, search string) ([]domain.Task, error) {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(view)) {
	case "", "all":
	case "today":
		tasks = app.DueToday(tasks, svc.Now(), nil)
	case "overdue":
		tasks = app.Overdue(tasks, svc.Now(), nil)
	default:
		return nil, fmt.Errorf("unknown view %q (want all, today or overdue)", view)
	}
	return app.FilterTasks(tasks, search, nil), nil
}

func renderTaskTable(tasks []domain.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		due := "-"
		if task.HasDueDate() {
			due = task.DueDate
			if task.DueTime != "" {
				due += " " + domain.FormatClock(task.DueTime)
			}
		}
		rows = append(rows, []string{task.ID, task.Title, string(task.Priority), task.Status.Label(), due})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "TITLE", "PRIORITY", "STATUS", "DUE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func encodeSnapshot(snap app.Snapshot, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		encoded, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode tasks json: %w", err)
		}
		return append(encoded, '\n'), nil
	case "yaml", "yml":
		encoded, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode tasks yaml: %w", err)
		}
		return encoded, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// readSnapshot decodes a snapshot file, picking YAML by extension and JSON otherwise.
func readSnapshot(path string) (app.Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("read tasks file: %w", err)
	}
	var snap app.Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &snap)
	default:
		err = json.Unmarshal(content, &snap)
	}
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("decode tasks file %q: %w", path, err)
	}
	return snap, nil
}

func writeOutput(stdout io.Writer, path string, content []byte) error {
	if path == "" || path == "-" {
		if _, err := stdout.Write(content); err != nil {
			return fmt.Errorf("write to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

func (c *cli) prefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change persisted UI preferences",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored UI preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "prefs show", func(s *session) error {
				c.printUIState(s.prefs.State())
				return nil
			})
		},
	}
	set := &cobra.Command{
		Use:       "set <field> <value>",
		Short:     "Change one preference (sidebar, color-mode, theme, task-view)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"sidebar", "color-mode", "theme", "task-view"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), "prefs set", func(s *session) error {
				state, err := setPreference(cmd.Context(), s.prefs, args[0], args[1])
				if err != nil {
					return err
				}
				c.printUIState(state)
				return nil
			})
		},
	}
	keys := &cobra.Command{
		Use:   "keys",
		Short: "List stored keys with their last write time (sqlite backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "prefs keys", func(s *session) error {
				store, ok := s.kv.(*sqlite.Store)
				if !ok {
					return errors.New("prefs keys needs the sqlite backend")
				}
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, e := range entries {
					c.printf("%s\t%s\n", e.Key, e.UpdatedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.AddCommand(show, set, keys)
	return cmd
}

// setPreference routes one field through the store so validation and persistence stay in one place.
func setPreference(ctx context.Context, store *prefs.Store, field, value string) (prefs.UIState, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "sidebar", "sidebar-collapsed":
		collapsed, err := parseCollapsed(value)
		if err != nil {
			return prefs.UIState{}, err
		}
		return store.SetSidebarCollapsed(ctx, collapsed)
	case "color-mode", "colormode", "mode":
		return store.SetColorMode(ctx, prefs.ColorMode(strings.ToLower(value)))
	case "theme", "theme-preset":
		preset, err := theme.ParsePreset(value)
		if err != nil {
			return prefs.UIState{}, fmt.Errorf("%w: %q", prefs.ErrInvalidThemePreset, value)
		}
		return store.SetThemePreset(ctx, string(preset))
	case "task-view", "view":
		return store.SetTaskViewMode(ctx, prefs.TaskViewMode(strings.ToLower(value)))
	default:
		return prefs.UIState{}, fmt.Errorf("unknown preference %q", field)
	}
}

func parseCollapsed(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "collapsed":
		return true, nil
	case "expanded":
		return false, nil
	}
	collapsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("sidebar wants true/false or collapsed/expanded, got %q", value)
	}
	return collapsed, nil
}

func (c *cli) printUIState(state prefs.UIState) {
	c.printf("sidebar_collapsed: %t\n", state.SidebarCollapsed)
	c.printf("color_mode: %s\n", state.ColorMode)
	c.printf("theme_preset: %s\n", state.ThemePreset)
	c.printf("task_view_mode: %s\n", state.TaskViewMode)
}

func (c *cli) themesCommand() *cobra.Command {
	var light bool
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List theme presets with their accent colours",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c.printf("%s\n", renderThemeTable(!light))
			return nil
		},
	}
	cmd.Flags().BoolVar(&light, "light", false, "show light-mode tokens")
	return cmd
}

func renderThemeTable(dark bool) string {
	rows := make([][]string, 0, len(theme.Presets()))
	for _, preset := range theme.Presets() {
		tokens := theme.Tokens(preset, dark)
		rows = append(rows, []string{string(preset), preset.Label(), tokens.Primary, tokens.Background})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("PRESET", "LABEL", "PRIMARY", "BACKGROUND").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if (col == 2 || col == 3) && row < len(rows) {
				return cellStyle.Foreground(lipgloss.Color(rows[row][col]))
			}
			return cellStyle
		})
	return t.Render()
}

// withSession opens a session for one non-interactive command and closes it afterwards.
func (c *cli) withSession(ctx context.Context, command string, fn func(*session) error) (err error) {
	s, err := c.openSession(ctx, command)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := fn(s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	s.logger.Debug("command flow complete", "command", command)
	return nil
}

// errMissingInput reports a value that neither a flag nor a form supplied.
var errMissingInput = errors.New("missing required input")

func requireFlags(values map[string]string) error {
	missing := make([]string, 0, len(values))
	for name, value := range values {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", errMissingInput, strings.Join(missing, ", "))
}
