package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
)

var syncOutput string

var syncCmd = &cobra.Command{
	Use:   "sync <domain>",
	Short: "Pull a domain's accounts over LDAP",
	Long: `Read every user account of a domain from its LDAP server and replace the
stored directory records of that domain.

The domain needs an ldap section in the configuration.

Examples:
  # Sync one domain
  idrecon sync moscow`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runSync(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(syncOutput)
	if err != nil {
		return err
	}

	cfg, err := loadLocal()
	if err != nil {
		return err
	}
	if !cfg.SyncEnabled() {
		return fmt.Errorf("no domain has an ldap section configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, svc, err := openService(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := svc.Sync(ctx, args[0])
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return printResult(cmd, format, res, func() error {
		return output.SimpleTable(cmd.OutOrStdout(), views.SyncPairs(res))
	})
}
