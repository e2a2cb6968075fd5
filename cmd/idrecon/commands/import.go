package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

var (
	importOutput   string
	importDomain   string
	importDNSuffix string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a source file into the local database",
	Long: `Parse a CSV or XLSX export and replace the stored records of one source.

The import runs against the configured database directly, without a running
server. Each import fully replaces the previous contents of the source.

Examples:
  # Replace the accounts of one directory domain
  idrecon import directory ad_izhevsk.csv --domain izhevsk

  # Replace the MFA registry
  idrecon import mfa users_export.csv

  # Replace the HR roster and print the report as JSON
  idrecon import hr staff.xlsx -o json`,
}

var importDirectoryCmd = &cobra.Command{
	Use:   "directory <file>",
	Short: "Import a directory account export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importDomain == "" {
			return fmt.Errorf("--domain is required")
		}
		return runImport(cmd, args[0], func(ctx context.Context, svc *reconciler.Service, f *os.File, name string) (*reconciler.ImportResult, error) {
			return svc.ImportDirectory(ctx, importDomain, f, name, importDNSuffix)
		})
	},
}

var importMFACmd = &cobra.Command{
	Use:   "mfa <file>",
	Short: "Import an MFA registry export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], func(ctx context.Context, svc *reconciler.Service, f *os.File, name string) (*reconciler.ImportResult, error) {
			return svc.ImportMFA(ctx, f, name)
		})
	},
}

var importHRCmd = &cobra.Command{
	Use:   "hr <file>",
	Short: "Import an HR roster export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], func(ctx context.Context, svc *reconciler.Service, f *os.File, name string) (*reconciler.ImportResult, error) {
			return svc.ImportHR(ctx, f, name)
		})
	},
}

func init() {
	importCmd.PersistentFlags().StringVarP(&importOutput, "output", "o", "table", "Output format (table|json|yaml)")

	importDirectoryCmd.Flags().StringVarP(&importDomain, "domain", "d", "", "Configured domain key (required)")
	importDirectoryCmd.Flags().StringVar(&importDNSuffix, "dn-suffix", "", "Keep only accounts under this DN suffix (default: the domain's dn_suffix)")

	importCmd.AddCommand(importDirectoryCmd)
	importCmd.AddCommand(importMFACmd)
	importCmd.AddCommand(importHRCmd)
}

type importFunc func(ctx context.Context, svc *reconciler.Service, f *os.File, filename string) (*reconciler.ImportResult, error)

func runImport(cmd *cobra.Command, path string, fn importFunc) error {
	format, err := output.ParseFormat(importOutput)
	if err != nil {
		return err
	}

	cfg, err := loadLocal()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, svc, err := openService(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := fn(ctx, svc, f, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	return printResult(cmd, format, res, func() error {
		return views.PrintImport(cmd.OutOrStdout(), res)
	})
}

// printResult writes data as JSON or YAML, or calls table for table output.
func printResult(cmd *cobra.Command, format output.Format, data any, table func() error) error {
	w := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return table()
	}
}

