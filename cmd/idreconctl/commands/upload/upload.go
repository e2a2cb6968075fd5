// Package upload implements source file upload commands.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/views"
	"github.com/marmos91/idrecon/pkg/apiclient"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// Cmd is the upload subcommand.
var Cmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a source export to the server",
	Long: `Upload a CSV or XLSX export. Each upload fully replaces the previous
contents of its source.

Examples:
  # Replace the accounts of one directory domain
  idreconctl upload directory ad_kostroma.csv --domain kostroma

  # Replace the MFA registry
  idreconctl upload mfa users_export.csv

  # Replace the HR roster
  idreconctl upload hr staff.xlsx`,
}

var (
	directoryDomain   string
	directoryDNSuffix string
)

var directoryCmd = &cobra.Command{
	Use:   "directory <file>",
	Short: "Upload a directory account export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload(args[0], func(c *apiclient.Client, name string, r io.Reader) (*reconciler.ImportResult, error) {
			return c.UploadDirectory(directoryDomain, directoryDNSuffix, name, r)
		})
	},
}

var mfaCmd = &cobra.Command{
	Use:   "mfa <file>",
	Short: "Upload an MFA registry export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload(args[0], (*apiclient.Client).UploadMFA)
	},
}

var hrCmd = &cobra.Command{
	Use:   "hr <file>",
	Short: "Upload an HR roster export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload(args[0], (*apiclient.Client).UploadHR)
	},
}

func init() {
	directoryCmd.Flags().StringVarP(&directoryDomain, "domain", "d", "", "Configured domain key (required)")
	directoryCmd.Flags().StringVar(&directoryDNSuffix, "dn-suffix", "", "Keep only accounts under this DN suffix (default: the domain's dn_suffix)")
	_ = directoryCmd.MarkFlagRequired("domain")

	Cmd.AddCommand(directoryCmd)
	Cmd.AddCommand(mfaCmd)
	Cmd.AddCommand(hrCmd)
}

type uploadFunc func(c *apiclient.Client, filename string, r io.Reader) (*reconciler.ImportResult, error)

func runUpload(path string, fn uploadFunc) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	res, err := fn(client, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, res, func() error {
		cmdutil.PrintSuccess(fmt.Sprintf("%s uploaded", filepath.Base(path)))
		return views.PrintImport(os.Stdout, res)
	})
}
