package cli

import (
	"github.com/plugfy/plugfy/internal/branding"
	"github.com/plugfy/plugfy/internal/host"
	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/spf13/cobra"
)

// runFlags are shared by the root command and "run".
type runFlags struct {
	command    string
	parameters string
	params     []string
	constraint string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.command, "command", "c", "", "command to execute (matched case-insensitively)")
	cmd.Flags().StringVarP(&f.parameters, "parameters", "p", "", "JSON parameters passed to the command")
	cmd.Flags().StringArrayVar(&f.params, "param", nil, "parameter override key=value (can be specified multiple times)")
	cmd.Flags().StringVar(&f.constraint, "constraint", "", `only consider versions matching this semver range (e.g. "^1.2")`)
}

func newRunCmd(a *app) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <extension>",
		Short: "Run an extension command",
		Long: `Run a command of an installed extension. This is the same as
"` + branding.CLIName() + ` <extension>" and is useful when an extension shares its
name with a built-in subcommand.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtension(cmd, args, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) runExtension(cmd *cobra.Command, args []string, flags *runFlags) error {
	if len(args) != 1 {
		return outcome.New(outcome.InvalidArguments, "Usage: %s <extension> --command <command> [--parameters <json>]", branding.CLIName())
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	_, err = a.newHost().Run(cmd.Context(), host.Request{
		ExtensionsPath: cfg.ExtensionsPath(),
		ExtensionName:  args[0],
		Command:        flags.command,
		Parameters:     flags.parameters,
		Overrides:      flags.params,
		Constraint:     flags.constraint,
		Settings:       cfg.Settings(),
	})
	return err
}
