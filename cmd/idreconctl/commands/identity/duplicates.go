package identity

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/recon/model"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates <key>",
	Short: "List records that may belong to the same person",
	Long: `List records outside an identity that share its exact normalized name
or email address.

Examples:
  idreconctl identity duplicates login:ivanov`,
	Args: cobra.ExactArgs(1),
	RunE: runDuplicates,
}

// MatchList renders possible duplicates.
type MatchList []model.DuplicateMatch

// Headers implements TableRenderer.
func (ml MatchList) Headers() []string {
	return []string{"SOURCE", "KEY", "LOGIN", "DOMAIN", "NAME", "EMAIL", "MATCHED BY"}
}

// Rows implements TableRenderer.
func (ml MatchList) Rows() [][]string {
	rows := make([][]string, 0, len(ml))
	for _, m := range ml {
		rows = append(rows, []string{
			string(m.Source),
			output.Cell(m.Key),
			output.Cell(m.Login),
			output.Cell(m.Domain),
			output.Cell(output.Truncate(m.Name, 30)),
			output.Cell(m.Email),
			strings.Join(m.MatchedBy, ", "),
		})
	}
	return rows
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	matches, err := client.IdentityDuplicates(args[0])
	if err != nil {
		return fmt.Errorf("failed to get duplicates: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, matches, len(matches) == 0, "No possible duplicates found.", MatchList(matches))
}
