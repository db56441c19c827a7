// Package cli implements the covtrack command-line interface.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"covtrack/internal/app"
	"covtrack/internal/config"
	"covtrack/internal/db"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootFlags struct {
	dbPath    string
	reportDir string
	patterns  string
	envFile   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "covtrack",
		Short:         "Search telemetry coverage tracker CLI",
		Long:          "Administrative command-line interface for the search telemetry coverage tracker. Commands operate directly on the tracker database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv(flags.envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "Path to the tracker database (default $DB_PATH or covtrack.sqlite)")
	rootCmd.PersistentFlags().StringVar(&flags.reportDir, "report-dir", "", "Directory for import report files (default $REPORT_DIR or reports)")
	rootCmd.PersistentFlags().StringVar(&flags.patterns, "patterns", "", "YAML file overriding the extraction patterns (default $PATTERNS_FILE)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Env file loaded before reading configuration")

	rootCmd.AddCommand(
		newMigrateCmd(flags),
		newUserCmd(flags),
		newImportCmd(flags),
		newExportCmd(flags),
		newExtractCmd(flags),
		newReportsCmd(flags),
		newCommandsCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// cliEnv bundles the open database pools and the service graph a
// subcommand works against.
type cliEnv struct {
	cfg     *config.Config
	writeDB *sql.DB
	readDB  *sql.DB
	svcs    app.Services
}

func (e *cliEnv) Close() {
	_ = e.readDB.Close()
	_ = e.writeDB.Close()
}

// openEnv loads configuration, opens the database, runs pending
// migrations, and builds the service graph.
func openEnv(flags *rootFlags) (*cliEnv, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.reportDir != "" {
		cfg.ReportDir = flags.reportDir
	}
	if flags.patterns != "" {
		cfg.PatternsFile = flags.patterns
	}

	writeDB, readDB, err := db.OpenPair(cfg.DBPath, 2)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(writeDB); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, err
	}

	svcs, err := app.NewServices(cfg, writeDB, readDB)
	if err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, err
	}
	return &cliEnv{cfg: cfg, writeDB: writeDB, readDB: readDB, svcs: svcs}, nil
}
