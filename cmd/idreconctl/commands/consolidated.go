package commands

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/recon/model"
)

var (
	consolidatedOnlyIssues bool
	consolidatedDomain     string
	exportFormat           string
	exportOut              string
)

var consolidatedCmd = &cobra.Command{
	Use:     "consolidated",
	Aliases: []string{"table"},
	Short:   "Show the consolidated reconciliation table",
	Long: `Show one row per directory account and per MFA or HR record that matched
no account, with the discrepancies found between sources.

Examples:
  # Show every row
  idreconctl consolidated

  # Only rows with discrepancies in one domain
  idreconctl consolidated --issues --domain moscow

  # Download the report as a spreadsheet
  idreconctl consolidated export --format xlsx`,
	RunE: runConsolidated,
}

var consolidatedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the consolidated table as XLSX or CSV",
	Long: `Download the consolidated table. The file name defaults to the one the
server suggests. Use --out - to write to stdout.`,
	RunE: runConsolidatedExport,
}

var consolidatedArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Store the consolidated report in the server's S3 bucket",
	Long: `Render the consolidated table on the server and upload it to the bucket
configured under export.s3. Fails with a conflict when the server has no
bucket configured.`,
	RunE: runConsolidatedArchive,
}

func init() {
	consolidatedCmd.Flags().BoolVar(&consolidatedOnlyIssues, "issues", false, "Only rows with discrepancies")
	consolidatedCmd.Flags().StringVar(&consolidatedDomain, "domain", "", "Only rows of this domain")

	consolidatedExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Export format (xlsx|csv)")
	consolidatedExportCmd.Flags().StringVar(&exportOut, "out", "", "Output file, or - for stdout")
	consolidatedCmd.AddCommand(consolidatedExportCmd)

	consolidatedArchiveCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Report format (xlsx|csv)")
	consolidatedCmd.AddCommand(consolidatedArchiveCmd)
}

// ConsolidatedList is the consolidated table for terminal rendering.
type ConsolidatedList []model.ConsolidatedRow

// Headers implements TableRenderer.
func (cl ConsolidatedList) Headers() []string {
	return []string{"SOURCE", "DOMAIN", "LOGIN", "ENABLED", "TYPE", "MFA", "HR", "NAME", "ISSUES"}
}

// Rows implements TableRenderer.
func (cl ConsolidatedList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, r := range cl {
		name := r.NameDirectory
		if name == "" {
			name = r.NameHr
		}
		if name == "" {
			name = r.NameMfa
		}
		rows = append(rows, []string{
			r.RowSource,
			output.Cell(r.Domain),
			output.Cell(r.Login),
			output.Cell(r.AccountEnabled),
			output.Cell(r.AccountType),
			output.Cell(r.MfaEnabled),
			cmdutil.BoolToYesNo(r.HasHr),
			output.Cell(output.Truncate(name, 30)),
			output.Cell(output.Truncate(strings.Join(r.Discrepancies, "; "), 60)),
		})
	}
	return rows
}

// filterConsolidated keeps rows matching the domain and issue filters.
func filterConsolidated(rows []model.ConsolidatedRow, domain string, onlyIssues bool) []model.ConsolidatedRow {
	out := make([]model.ConsolidatedRow, 0, len(rows))
	for _, r := range rows {
		if domain != "" && !strings.EqualFold(r.Domain, domain) {
			continue
		}
		if onlyIssues && len(r.Discrepancies) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

func runConsolidated(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	rows, err := client.Consolidated()
	if err != nil {
		return fmt.Errorf("failed to get consolidated table: %w", err)
	}
	rows = filterConsolidated(rows, consolidatedDomain, consolidatedOnlyIssues)

	return cmdutil.PrintOutput(os.Stdout, rows, len(rows) == 0, "No rows found.", ConsolidatedList(rows))
}

func runConsolidatedExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	suggested, err := client.ExportConsolidated(string(format), &buf)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOut == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	path := exportOut
	if path == "" {
		path = suggested
	}
	if path == "" {
		path = format.Filename("consolidated", time.Now())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Report written to %s (%d bytes)", path, buf.Len()))
	return nil
}

func runConsolidatedArchive(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	report, err := client.ArchiveConsolidated(string(format))
	if err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, report, func() error {
		return output.SimpleTable(os.Stdout, [][2]string{
			{"Bucket", report.Bucket},
			{"Key", report.Key},
			{"Format", string(report.Format)},
			{"Size", strconv.Itoa(report.Size)},
		})
	})
}
