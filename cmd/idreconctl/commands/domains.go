package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List configured directory domains",
	RunE:  runDomains,
}

// DomainList is a list of domains for table rendering.
type DomainList []reconciler.Domain

// Headers implements TableRenderer.
func (dl DomainList) Headers() []string {
	return []string{"KEY", "LABEL", "DN SUFFIX", "LDAP SYNC"}
}

// Rows implements TableRenderer.
func (dl DomainList) Rows() [][]string {
	rows := make([][]string, 0, len(dl))
	for _, d := range dl {
		rows = append(rows, []string{d.Key, d.Label, output.Cell(d.DNSuffix), cmdutil.BoolToYesNo(d.Sync)})
	}
	return rows
}

func runDomains(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	domains, err := client.Domains()
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, domains, len(domains) == 0, "No domains configured.", DomainList(domains))
}
