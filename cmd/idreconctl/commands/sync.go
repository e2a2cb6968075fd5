package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
)

var syncTimeout time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync <domain>",
	Short: "Pull a domain's accounts over LDAP",
	Long: `Ask the server to read every user account of a domain from its LDAP
server and replace the stored directory records of that domain.

Examples:
  # Sync one domain
  idreconctl sync moscow

  # Allow a slow domain controller more time
  idreconctl sync izhevsk --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 5*time.Minute, "Request timeout")
}

func runSync(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	res, err := client.WithTimeout(syncTimeout).Sync(args[0])
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, res, func() error {
		cmdutil.PrintSuccess(fmt.Sprintf("Domain '%s' synchronized", res.Domain))
		return output.SimpleTable(os.Stdout, views.SyncPairs(res))
	})
}
