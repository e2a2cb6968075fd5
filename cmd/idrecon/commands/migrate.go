package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/store"
)

var migrateOutput string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	Long: `Apply pending schema migrations to the configured database and report
the resulting schema version.

PostgreSQL uses the SQL migrations embedded in the binary. SQLite schemas are
created and updated in place and have no version. The server also migrates
on startup, so this is only needed to upgrade a database ahead of a rollout.

Examples:
  idrecon migrate
  idrecon migrate --config /etc/idrecon/config.yaml -o json`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(migrateOutput)
	if err != nil {
		return err
	}
	cfg, err := loadLocal()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Debug("Migrating schema", logger.Driver(string(cfg.Database.Type)))
	state, err := store.Migrate(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return printResult(cmd, format, state, func() error {
		return output.SimpleTable(cmd.OutOrStdout(), [][2]string{
			{"Database", string(cfg.Database.Type)},
			{"Version", strconv.FormatUint(uint64(state.Version), 10)},
			{"Changed", strconv.FormatBool(state.Changed)},
			{"Dirty", strconv.FormatBool(state.Dirty)},
		})
	})
}
