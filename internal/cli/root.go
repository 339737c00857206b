package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/plugfy/plugfy/internal/branding"
	"github.com/plugfy/plugfy/internal/config"
	"github.com/plugfy/plugfy/internal/host"
	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/spf13/cobra"
)

// app holds the state shared by every command of one invocation.
type app struct {
	version string
	commit  string
	date    string

	stdout io.Writer
	stderr io.Writer

	verbose        bool
	configFile     string
	extensionsPath string

	logger   *log.Logger
	hostOpts []host.Option
}

func newApp(version, commit, date string) *app {
	return &app{
		version: version,
		commit:  commit,
		date:    date,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	flags := &runFlags{}
	rootCmd := &cobra.Command{
		Use:   branding.CLIName() + " <extension>",
		Short: branding.Description(),
		Long: branding.DisplayName() + ` loads the highest installed version of an extension from
{extensions-path}/<extension>/Compiled/<version>/ and runs one of its commands.

Examples:
  ` + branding.CLIName() + ` myext --command run
  ` + branding.CLIName() + ` myext -c sync -p '{"full": true}'
  ` + branding.CLIName() + ` myext -c sync --param full=true --constraint "^1.2"`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.initLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtension(cmd, args, flags)
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.extensionsPath, "extensions-path", "", "extensions root (overrides configuration)")
	pf.StringVar(&a.configFile, "config", "", "config file (default is $HOME/"+branding.HomeDir()+"/config.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	flags.register(rootCmd)

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newDescribeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	return rootCmd
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	a := newApp(version, commit, date)
	return a.execute(os.Args[1:])
}

// execute runs one invocation. A panic in any command is reported as
// outcome.Internal so the process still exits 1.
func (a *app) execute(args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if a.logger != nil {
				a.logger.Debug("recovered panic", "panic", r, "stack", string(debug.Stack()))
			}
			err = outcome.New(outcome.Internal, "Error: %v", r)
		}
		if err != nil {
			a.reportError(err)
		}
	}()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (a *app) initLogger() {
	if a.logger != nil {
		return
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix: branding.CLIName(),
		Level:  log.WarnLevel,
	})
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		Overrides:  map[string]any{config.KeyExtensionsPath: a.extensionsPath},
	})
	if err != nil {
		return nil, outcome.Wrap(outcome.InvalidArguments, err, "Invalid configuration")
	}
	a.logger.Debug("configuration loaded",
		"environment", cfg.Environment(), "files", cfg.Files(), "extensionsPath", cfg.ExtensionsPath())
	return cfg, nil
}

func (a *app) newHost() *host.Host {
	opts := append([]host.Option{host.WithOutput(a.stdout), host.WithLogger(a.logger)}, a.hostOpts...)
	return host.New(opts...)
}

// reportError prints a failure on stderr. Classified failures print their
// message; anything else (flag parsing, I/O) is prefixed.
func (a *app) reportError(err error) {
	st := newStyles(a.stderr)
	var oe *outcome.Error
	if errors.As(err, &oe) {
		fmt.Fprintln(a.stderr, renderFirstLine(st.err, err.Error()))
		if a.logger != nil {
			a.logger.Debug("run failed", "kind", oe.Kind)
		}
		return
	}
	fmt.Fprintln(a.stderr, renderFirstLine(st.err, "Error: "+err.Error()))
}

// renderFirstLine styles only the first line of msg; lipgloss pads every
// line of a block to one width, which would alter tracebacks.
func renderFirstLine(style lipgloss.Style, msg string) string {
	first, rest, found := strings.Cut(msg, "\n")
	if !found {
		return style.Render(msg)
	}
	return style.Render(first) + "\n" + rest
}
