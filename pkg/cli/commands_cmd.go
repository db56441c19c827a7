package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newCommandsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List all available CLI commands with their flags",
		Long:  "Introspects the command tree and lists every command with its path, description, and flags. Works offline.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := walkCommands(cmd.Root(), "")
			if filter != "" {
				needle := strings.ToLower(filter)
				var kept [][2]string
				for _, e := range entries {
					if strings.Contains(strings.ToLower(e[0]+" "+e[1]), needle) {
						kept = append(kept, e)
					}
				}
				entries = kept
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "COMMAND\tDESCRIPTION")
			for _, e := range entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", e[0], e[1])
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring search across command names and descriptions")
	return cmd
}

// walkCommands collects leaf commands as (path, short) pairs, flags folded
// into the description.
func walkCommands(cmd *cobra.Command, parentPath string) [][2]string {
	var entries [][2]string
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		path := child.Name()
		if parentPath != "" {
			path = parentPath + " " + child.Name()
		}
		if child.HasSubCommands() {
			entries = append(entries, walkCommands(child, path)...)
			continue
		}
		desc := child.Short
		if flags := flagNames(child); len(flags) > 0 {
			desc = fmt.Sprintf("%s (flags: %s)", desc, strings.Join(flags, ", "))
		}
		entries = append(entries, [2]string{path, desc})
	}
	return entries
}

func flagNames(cmd *cobra.Command) []string {
	var names []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		names = append(names, "--"+f.Name)
	})
	return names
}
