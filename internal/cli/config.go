package cli

import (
	"fmt"

	"github.com/plugfy/plugfy/internal/branding"
	"github.com/plugfy/plugfy/internal/config"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user settings",
		Long: `Read and write settings stored at ~/` + branding.HomeDir() + `/config.yaml. Reads
see the merged view of every source: the user file, appsettings.json,
appsettings.{environment}.json and ` + branding.EnvPrefix() + `_* environment variables.`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.Set(a.configFile, key, value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Get(args[0]))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			st := newStyles(w)
			fmt.Fprintln(w, st.muted.Render("# environment: "+cfg.Environment()))
			for _, f := range cfg.Files() {
				fmt.Fprintln(w, st.muted.Render("# source: "+f))
			}
			data, err := yaml.Marshal(cfg.Settings())
			if err != nil {
				return fmt.Errorf("encoding settings: %w", err)
			}
			_, err = w.Write(data)
			return err
		},
	})

	return configCmd
}
