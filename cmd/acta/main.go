package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/acta/internal/auth"
	"github.com/evanschultz/acta/internal/mailer"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program the TUI command needs.
type program interface {
	Run() (tea.Model, error)
}

func main() {
	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	c.interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if err := fang.Execute(context.Background(), c.rootCommand(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
	noPersist  bool
	tasksFile  string
}

// cli carries process IO and the seams tests replace.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	getenv         func(string) string
	now            func() time.Time
	programFactory func(tea.Model) program
	// interactive allows huh forms to ask for values missing from flags.
	interactive bool
	authDelay   time.Duration
	httpClient  *http.Client
	mailOptions []mailer.Option

	flags globalFlags
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		getenv: os.Getenv,
		now:    time.Now,
		programFactory: func(m tea.Model) program {
			return tea.NewProgram(m)
		},
		authDelay: auth.DefaultDelay,
	}
}

// rootCommand builds the command tree. The bare command launches the dashboard.
func (c *cli) rootCommand() *cobra.Command {
	defaultDev := version == "dev"
	if envDev, ok := parseBoolEnv(c.getenv, "ACTA_DEV_MODE"); ok {
		defaultDev = envDev
	}
	appName := "acta"
	if envApp := strings.TrimSpace(c.getenv("ACTA_APP_NAME")); envApp != "" {
		appName = envApp
	}

	root := &cobra.Command{
		Use:           "acta",
		Short:         "A terminal task dashboard",
		Long:          "acta tracks tasks by due date with a delayed, undoable completion flow.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "path to config TOML")
	pf.StringVar(&c.flags.dbPath, "db", "", "path to sqlite preferences database")
	pf.StringVar(&c.flags.appName, "app", appName, "application name for config/data path resolution")
	pf.BoolVar(&c.flags.devMode, "dev", defaultDev, "use dev mode paths (<app>-dev)")
	pf.BoolVar(&c.flags.noPersist, "no-persist", false, "keep preferences and tokens in memory only")
	pf.StringVar(&c.flags.tasksFile, "tasks-file", "", "load tasks from an exported snapshot instead of the mock seed")

	root.AddCommand(
		c.pathsCommand(),
		c.tasksCommand(),
		c.prefsCommand(),
		c.themesCommand(),
		c.signInCommand(),
		c.registerCommand(),
		c.signOutCommand(),
		c.whoAmICommand(),
		c.profileCommand(),
		c.contactCommand(),
		c.emailStatusCommand(),
	)
	return root
}

// parseBoolEnv reads a boolean variable; ok is false when unset or malformed.
func parseBoolEnv(getenv func(string) string, name string) (value bool, ok bool) {
	raw := strings.TrimSpace(getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// printf writes to stdout, ignoring write failures like the rest of the CLI output.
func (c *cli) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.stdout, format, args...)
}
