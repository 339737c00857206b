package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/plugfy/plugfy/internal/host"
	"github.com/spf13/cobra"
)

type describeOutput struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Path        string          `json:"path"`
	Description string          `json:"description,omitempty"`
	Author      string          `json:"author,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Instances   []string        `json:"instances"`
	Commands    []describeEntry `json:"commands"`
	Failures    []string        `json:"failures,omitempty"`
}

type describeEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newDescribeCmd(a *app) *cobra.Command {
	var (
		asJSON     bool
		constraint string
	)
	cmd := &cobra.Command{
		Use:   "describe <extension>",
		Short: "Show the commands an extension provides",
		Long: `Resolve and load an extension without running it, then print the version
that would be used, the commands it advertises, and any modules that failed
to load.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			d, err := a.newHost().Describe(cmd.Context(), host.Request{
				ExtensionsPath: cfg.ExtensionsPath(),
				ExtensionName:  args[0],
				Constraint:     constraint,
				Settings:       cfg.Settings(),
			})
			if err != nil {
				return err
			}

			out := newDescribeOutput(args[0], d)
			if asJSON {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling description: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return printDescription(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&constraint, "constraint", "", "only consider versions matching this semver range")
	return cmd
}

func newDescribeOutput(name string, d *host.Description) describeOutput {
	out := describeOutput{
		Name:      name,
		Version:   d.Resolution.Selected.Version.String(),
		Path:      d.Resolution.Selected.Path,
		Instances: append([]string{}, d.Instances...),
		Commands:  []describeEntry{},
	}
	if d.Manifest != nil {
		out.Description = d.Manifest.Description
		out.Author = d.Manifest.Author
		out.Tags = d.Manifest.Tags
	}
	for _, opt := range d.Options {
		out.Commands = append(out.Commands, describeEntry{Name: opt.Name, Description: opt.Description})
	}
	for _, f := range d.Failures {
		out.Failures = append(out.Failures, f.Err.Error())
	}
	return out
}

func printDescription(cmd *cobra.Command, out describeOutput) error {
	w := cmd.OutOrStdout()
	st := newStyles(w)

	fmt.Fprintf(w, "%s %s\n", st.title.Render(out.Name), out.Version)
	if out.Description != "" {
		fmt.Fprintln(w, out.Description)
	}
	if out.Author != "" {
		fmt.Fprintf(w, "Author: %s\n", out.Author)
	}
	if len(out.Tags) > 0 {
		fmt.Fprintf(w, "Tags:   %s\n", strings.Join(out.Tags, ", "))
	}
	fmt.Fprintln(w, st.muted.Render(out.Path))
	fmt.Fprintln(w)

	if len(out.Commands) == 0 {
		fmt.Fprintln(w, "No compatible extension found in this version.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "COMMAND\tDESCRIPTION")
		for _, c := range out.Commands {
			fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(out.Failures) > 0 {
		fmt.Fprintln(w)
		for _, f := range out.Failures {
			fmt.Fprintln(w, st.warning.Render("! "+f))
		}
	}
	return nil
}
