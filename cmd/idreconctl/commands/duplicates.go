package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/recon/browse"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List logins present in more than one domain",
	Long: `List every directory account whose login also exists in another domain.

Examples:
  # Show the cross-domain logins
  idreconctl duplicates`,
	RunE: runDuplicates,
}

// LoginDuplicateList renders the cross-domain login report.
type LoginDuplicateList []browse.LoginDuplicate

// Headers implements TableRenderer.
func (ll LoginDuplicateList) Headers() []string {
	return []string{"LOGIN", "DOMAIN", "NAME", "EMAIL", "ENABLED", "EMPLOYEE ID", "DOMAINS"}
}

// Rows implements TableRenderer.
func (ll LoginDuplicateList) Rows() [][]string {
	rows := make([][]string, 0, len(ll))
	for _, d := range ll {
		rows = append(rows, []string{
			d.Login,
			output.Cell(d.Domain),
			output.Cell(output.Truncate(d.DisplayName, 30)),
			output.Cell(d.Email),
			output.Cell(d.Enabled),
			output.Cell(d.EmployeeID),
			output.Count(d.DomainsCount),
		})
	}
	return rows
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	dups, err := client.LoginDuplicates()
	if err != nil {
		return fmt.Errorf("failed to get duplicates: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, dups, func() error {
		if len(dups.Rows) == 0 {
			fmt.Println("No logins found in more than one domain.")
			return nil
		}
		if err := output.PrintTable(os.Stdout, LoginDuplicateList(dups.Rows)); err != nil {
			return err
		}
		fmt.Printf("\n%d records, %d unique logins\n", dups.TotalRecords, dups.UniqueLogins)
		return nil
	})
}
