package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
	"github.com/marmos91/idrecon/pkg/apiclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check server readiness",
	Long: `Query the readiness endpoint of the server, which also pings its database.

Examples:
  # Check the current context's server
  idreconctl status

  # Check another server
  idreconctl status --server http://recon.internal:8080`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	url, err := cmdutil.ResolveServer()
	if err != nil {
		return err
	}

	health, err := cmdutil.NewClient(url).Ready()
	if err != nil {
		var apiErr *apiclient.APIError
		if !errors.As(err, &apiErr) {
			return fmt.Errorf("server %s is unreachable: %w", url, err)
		}
		return fmt.Errorf("server %s is not ready: %w", url, err)
	}

	return cmdutil.PrintResource(os.Stdout, health, func() error {
		pairs := [][2]string{
			{"Server", url},
			{"Status", health.Status},
			{"Store", health.Data["store"]},
			{"Latency", health.Data["latency"]},
			{"Checked", views.FormatTime(health.Timestamp)},
		}
		return output.SimpleTable(os.Stdout, pairs)
	})
}
