package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"covtrack/internal/domain"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracker data as CSV",
	}
	cmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")

	cmd.AddCommand(
		newExportMetricsCmd(flags, &outPath),
		newExportCoverageCmd(flags, &outPath),
	)
	return cmd
}

func newExportMetricsCmd(flags *rootFlags, outPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <variant>",
		Short: "Export the metric definitions of one variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.ParseVariant(args[0])
			if err != nil {
				return err
			}
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			return withOutput(cmd, *outPath, func(w io.Writer) error {
				return env.svcs.Metrics.Export(cmd.Context(), v, w)
			})
		},
	}
}

func newExportCoverageCmd(flags *rootFlags, outPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <variant>",
		Short: "Export the coverage entries of one variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.ParseVariant(args[0])
			if err != nil {
				return err
			}
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			return withOutput(cmd, *outPath, func(w io.Writer) error {
				return env.svcs.Coverage.Export(cmd.Context(), v, w)
			})
		},
	}
}

func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
