package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"covtrack/internal/domain"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-import CSV files",
	}
	cmd.AddCommand(newImportMetricsCmd(flags), newImportCoverageCmd(flags))
	return cmd
}

func newImportMetricsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <variant> <file.csv>",
		Short: "Import metric definitions for one variant",
		Long:  "Reads a metric CSV and inserts each row. Rows settle independently; the annotated copy lands in the report directory.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.ParseVariant(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			rep, err := env.svcs.MetricImporter.Import(cmd.Context(), v, f)
			if err != nil {
				return err
			}
			printImportReport(cmd, rep)
			return nil
		},
	}
}

func newImportCoverageCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <file.csv>",
		Short: "Import coverage entries",
		Long:  "Reads a coverage CSV (tc_id, variant, metrics, plus optional regions and engines) and records each row.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			rep, err := env.svcs.CovImporter.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			printImportReport(cmd, rep)
			return nil
		},
	}
}

func printImportReport(cmd *cobra.Command, rep *domain.ImportReport) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%d rows: %d inserted, %d duplicates, %d errors\n",
		rep.Total, rep.Inserted, rep.Duplicates, rep.Errors)
	_, _ = fmt.Fprintf(out, "Annotated report: %s\n", rep.ReportFile)
}
