package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/prompt"
	"github.com/marmos91/idrecon/pkg/config"
	"github.com/marmos91/idrecon/pkg/store"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Write a configuration file with default settings.

The file is created at $XDG_CONFIG_HOME/idrecon/config.yaml unless --config
is given. With --interactive the main settings are asked for first.

Examples:
  # Create the default configuration
  idrecon config init

  # Overwrite an existing file
  idrecon config init --force

  # Answer a few questions first
  idrecon config init --interactive`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	cfg := config.GetDefaultConfig()

	force := initForce
	if initInteractive {
		if err := askSettings(cfg); err != nil {
			return handleAbort(cmd, err)
		}
		if _, statErr := os.Stat(path); statErr == nil && !force {
			ok, err := prompt.Confirm(fmt.Sprintf("Overwrite %s", path), false)
			if err != nil {
				return handleAbort(cmd, err)
			}
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			force = true
		}
	}

	if err := config.WriteConfig(cfg, path, force); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Review the domains section and add ldap settings to enable sync")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: idrecon start")
	_, _ = fmt.Fprintf(out, "  3. Or specify the config explicitly: idrecon start --config %s\n", path)
	return nil
}

// askSettings prompts for the settings most installations change.
func askSettings(cfg *config.Config) error {
	dbType, err := prompt.Select("Database", []string{string(store.DatabaseTypeSQLite), string(store.DatabaseTypePostgres)})
	if err != nil {
		return err
	}
	cfg.Database.Type = store.DatabaseType(dbType)

	if cfg.Database.Type == store.DatabaseTypePostgres {
		pg := &cfg.Database.Postgres
		if pg.Host, err = prompt.Input("PostgreSQL host", "localhost"); err != nil {
			return err
		}
		if pg.Port, err = prompt.InputPort("PostgreSQL port", 5432); err != nil {
			return err
		}
		if pg.Database, err = prompt.Input("Database name", "idrecon"); err != nil {
			return err
		}
		if pg.User, err = prompt.Input("Database user", "idrecon"); err != nil {
			return err
		}
		cfg.Database.SQLite = store.SQLiteConfig{}
		cfg.Database.ApplyDefaults()
	}

	if cfg.API.Port, err = prompt.InputPort("API port", cfg.API.Port); err != nil {
		return err
	}

	level, err := prompt.Select("Log level", []string{"INFO", "DEBUG", "WARN", "ERROR"})
	if err != nil {
		return err
	}
	cfg.Logging.Level = strings.ToUpper(level)
	return nil
}

func handleAbort(cmd *cobra.Command, err error) error {
	if prompt.IsAborted(err) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nAborted.")
		return nil
	}
	return err
}
