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

var listSearch string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List identities",
	Long: `List every resolved identity.

Examples:
  # List identities
  idreconctl identity list

  # Filter by name, login or employee ID
  idreconctl identity list --search ivanov`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive filter on key, name and logins")
}

// IdentityList is a list of identities for table rendering.
type IdentityList []model.IdentitySummary

// Headers implements TableRenderer.
func (il IdentityList) Headers() []string {
	return []string{"KEY", "NAME", "LOGINS", "SOURCES", "MFA", "HR"}
}

// Rows implements TableRenderer.
func (il IdentityList) Rows() [][]string {
	rows := make([][]string, 0, len(il))
	for _, s := range il {
		rows = append(rows, []string{
			s.Key,
			output.Cell(output.Truncate(s.Name, 30)),
			output.Cell(output.Truncate(strings.Join(s.Logins, ", "), 40)),
			output.Cell(strings.Join(s.Sources, ", ")),
			cmdutil.BoolToYesNo(s.HasMfa),
			cmdutil.BoolToYesNo(s.HasHr),
		})
	}
	return rows
}

// matches reports whether query occurs in the key, name or a login.
func matches(s *model.IdentitySummary, query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(s.Key), query) || strings.Contains(strings.ToLower(s.Name), query) {
		return true
	}
	for _, l := range s.Logins {
		if strings.Contains(strings.ToLower(l), query) {
			return true
		}
	}
	return false
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	list, err := client.Identities()
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}

	if listSearch != "" {
		filtered := list[:0]
		for i := range list {
			if matches(&list[i], listSearch) {
				filtered = append(filtered, list[i])
			}
		}
		list = filtered
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No identities found.", IdentityList(list))
}
