package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"covtrack/internal/service/extract"
)

func newExtractCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract probes, regions, and engines from text",
		Long:  "Runs the extraction patterns over a text file, or stdin when no file is given, and prints what was found.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := env.svcs.Extract.Analyze(cmd.Context(), string(text))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Probes:  %s\n", extract.RenderProbes(res.Probes))
			_, _ = fmt.Fprintf(out, "Regions: %s\n", joinOrNothing(res.Regions))
			_, _ = fmt.Fprintf(out, "Engines: %s\n", joinOrNothing(res.Engines))
			return nil
		},
	}
}

func joinOrNothing(items []string) string {
	if len(items) == 0 {
		return extract.NothingFound
	}
	return strings.Join(items, ", ")
}
