package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/plugfy/plugfy/internal/resolver"
	"github.com/spf13/cobra"
)

// listEntry represents an installed extension for display.
type listEntry struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Versions    []string `json:"versions"`
	Description string   `json:"description,omitempty"`
	Problems    []string `json:"problems,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed extensions",
		Long: `List every extension directory under the extensions root with its valid
versions, highest first. The version marked in the VERSION column is the one a
run would load.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			installed, err := resolver.DiscoverAll(cfg.ExtensionsPath())
			if err != nil {
				return err
			}

			entries := make([]listEntry, 0, len(installed))
			for _, inst := range installed {
				entries = append(entries, newListEntry(inst))
			}

			if asJSON {
				return printListJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No extensions installed in %s.\n", cfg.ExtensionsPath())
				return nil
			}
			return printListTable(cmd, entries)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newListEntry(inst resolver.Installed) listEntry {
	e := listEntry{
		Name:        inst.Name,
		Versions:    []string{},
		Description: inst.Description,
		Problems:    inst.Problems,
	}
	for _, v := range inst.Versions {
		e.Versions = append(e.Versions, v.Version.String())
	}
	if hi, ok := inst.Highest(); ok {
		e.Version = hi.Version.String()
	}
	return e
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	st := newStyles(cmd.OutOrStdout())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tAVAILABLE\tDESCRIPTION")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		description := e.Description
		if len(e.Problems) > 0 {
			description = st.warning.Render(strings.Join(e.Problems, "; "))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, version, len(e.Versions), description)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
