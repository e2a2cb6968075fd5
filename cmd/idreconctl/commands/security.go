package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/recon/audit"
)

var (
	securityCheck    string
	securitySeverity string
)

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Run the security audit of directory accounts",
	Long: `Run every security check over the stored directory accounts.

Without --check only the per-check summary is shown. With --check the
flagged accounts of that check are listed.

Examples:
  # Summary of all checks
  idreconctl security

  # Only critical and high findings
  idreconctl security --severity high

  # Accounts flagged by one check
  idreconctl security --check spn_kerberoasting`,
	RunE: runSecurity,
}

func init() {
	securityCmd.Flags().StringVar(&securityCheck, "check", "", "List the accounts flagged by this check ID")
	securityCmd.Flags().StringVar(&securitySeverity, "severity", "", "Minimum severity (critical|high|medium|info)")
}

var severityRank = map[audit.Severity]int{
	audit.SeverityCritical: 3,
	audit.SeverityHigh:     2,
	audit.SeverityMedium:   1,
	audit.SeverityInfo:     0,
}

// findingsTable summarizes the checks at or above minRank, one per row.
func findingsTable(findings []audit.Finding, minRank int) *output.TableData {
	table := output.NewTableData("CHECK", "SEVERITY", "COUNT", "TITLE")
	for _, f := range findings {
		if severityRank[f.Severity] >= minRank {
			table.AddRow(f.ID, string(f.Severity), output.Count(f.Count), f.Title)
		}
	}
	return table
}

// ItemList is the accounts flagged by one check.
type ItemList []audit.Item

// Headers implements TableRenderer.
func (il ItemList) Headers() []string {
	return []string{"DOMAIN", "LOGIN", "NAME", "ENABLED", "TYPE", "DETAIL"}
}

// Rows implements TableRenderer.
func (il ItemList) Rows() [][]string {
	rows := make([][]string, 0, len(il))
	for _, it := range il {
		rows = append(rows, []string{
			output.Cell(it.Domain),
			output.Cell(it.Login),
			output.Cell(output.Truncate(it.DisplayName, 30)),
			output.Cell(it.Enabled),
			output.Cell(it.AccountType),
			output.Cell(itemDetail(it)),
		})
	}
	return rows
}

func itemDetail(it audit.Item) string {
	var parts []string
	if it.SPN != "" {
		parts = append(parts, "spn="+output.Truncate(it.SPN, 40))
	}
	if it.LastLogon != "" {
		parts = append(parts, "last_logon="+it.LastLogon)
	}
	if it.PasswordLastSet != "" {
		parts = append(parts, "pwd_last_set="+it.PasswordLastSet)
	}
	if it.DaysAgo != "" {
		parts = append(parts, "days="+it.DaysAgo)
	}
	if it.GroupCount > 0 {
		parts = append(parts, fmt.Sprintf("groups=%d", it.GroupCount))
	}
	return strings.Join(parts, " ")
}

func runSecurity(cmd *cobra.Command, args []string) error {
	var minRank int
	if securitySeverity != "" {
		rank, ok := severityRank[audit.Severity(strings.ToLower(securitySeverity))]
		if !ok {
			return fmt.Errorf("invalid severity %q (valid: critical, high, medium, info)", securitySeverity)
		}
		minRank = rank
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	report, err := client.SecurityFindings()
	if err != nil {
		return fmt.Errorf("failed to run security audit: %w", err)
	}

	if securityCheck != "" {
		for _, f := range report.Findings {
			if f.ID == securityCheck {
				return cmdutil.PrintOutput(os.Stdout, f, len(f.Items) == 0, "No accounts flagged.", ItemList(f.Items))
			}
		}
		return fmt.Errorf("unknown check %q", securityCheck)
	}

	findings := findingsTable(report.Findings, minRank)
	return cmdutil.PrintResource(os.Stdout, report, func() error {
		pairs := [][2]string{
			{"Accounts", output.Count(report.TotalAccounts)},
			{"Enabled", output.Count(report.TotalEnabled)},
			{"Issues", output.Count(report.TotalIssues)},
			{"Critical", output.Count(report.CriticalCount)},
			{"High", output.Count(report.HighCount)},
		}
		if err := output.SimpleTable(os.Stdout, pairs); err != nil {
			return err
		}
		fmt.Println()
		if findings.Len() == 0 {
			fmt.Println("No findings at this severity.")
			return nil
		}
		return output.PrintTable(os.Stdout, findings)
	})
}
