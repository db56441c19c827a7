package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newReportsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage stored import reports",
	}
	cmd.AddCommand(newReportsListCmd(flags), newReportsPurgeCmd(flags))
	return cmd
}

func newReportsListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored report files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			files, err := env.svcs.Reports.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
			for _, f := range files {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", f.Name, f.Size, f.ModTime.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newReportsPurgeCmd(flags *rootFlags) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete report files older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			age := maxAge
			if age == 0 {
				age = env.cfg.ReportMaxAge
			}
			n, err := env.svcs.Reports.Purge(age)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d report(s) older than %s\n", n, age)
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Retention window (default $REPORT_MAX_AGE or 168h)")
	return cmd
}
