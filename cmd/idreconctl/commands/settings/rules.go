package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/recon/classify"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the OU classification rules",
	Long: `Show the OU classification rules in evaluation order.

Examples:
  idreconctl settings ou-rules get
  idreconctl settings ou-rules get -o json > rules.json`,
	RunE: runGet,
}

var setFile string

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the OU classification rules",
	Long: `Replace the OU classification rules with the contents of a JSON or YAML
file. Each domain maps to a list of [pattern, type] pairs.

Example file:
  izhevsk:
    - ["OU=Disabled", "Disabled"]
    - ["OU=Service", "Service"]
  "*":
    - ["OU=Users", "User"]

Examples:
  idreconctl settings ou-rules set --file rules.yaml`,
	RunE: runSet,
}

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in OU classification rules",
	RunE:  runReset,
}

func init() {
	setCmd.Flags().StringVarP(&setFile, "file", "f", "", "JSON or YAML rules file (required)")
	_ = setCmd.MarkFlagRequired("file")
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation")
}

// RuleList flattens a rule set into rows, domains sorted with "*" last.
type RuleList classify.RuleSet

// Headers implements TableRenderer.
func (rl RuleList) Headers() []string {
	return []string{"DOMAIN", "ORDER", "PATTERN", "TYPE"}
}

// Rows implements TableRenderer.
func (rl RuleList) Rows() [][]string {
	domains := make([]string, 0, len(rl))
	for d := range rl {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i] == classify.AnyDomain || domains[j] == classify.AnyDomain {
			return domains[j] == classify.AnyDomain && domains[i] != classify.AnyDomain
		}
		return domains[i] < domains[j]
	})

	var rows [][]string
	for _, d := range domains {
		for i, r := range rl[d] {
			rows = append(rows, []string{d, output.Count(i + 1), r.Pattern, r.Type})
		}
	}
	return rows
}

// ReadRules parses a rules file. YAML is a superset of JSON, so both go
// through the YAML decoder into the JSON form the API accepts. Domain keys
// and types are checked by the server.
func ReadRules(data []byte) (classify.RuleSet, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	var rules classify.RuleSet
	if err := json.Unmarshal(encoded, &rules); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules in file", classify.ErrInvalidRules)
	}
	return rules, nil
}

func printRules(rules classify.RuleSet) error {
	return cmdutil.PrintOutput(os.Stdout, rules, len(rules) == 0, "No rules configured.", RuleList(rules))
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	rules, err := client.OURules()
	if err != nil {
		return fmt.Errorf("failed to get OU rules: %w", err)
	}
	return printRules(rules)
}

func runSet(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(setFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", setFile, err)
	}
	rules, err := ReadRules(data)
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	saved, err := client.SetOURules(rules)
	if err != nil {
		return fmt.Errorf("failed to set OU rules: %w", err)
	}

	cmdutil.PrintSuccess("OU rules updated")
	return printRules(saved)
}

func runReset(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	return cmdutil.RunWithConfirmation("Replace the OU rules with the built-in defaults?", resetForce, func() error {
		rules, err := client.ResetOURules()
		if err != nil {
			return fmt.Errorf("failed to reset OU rules: %w", err)
		}
		cmdutil.PrintSuccess("OU rules reset to defaults")
		return printRules(rules)
	})
}
