package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/pkg/export"
)

var (
	exportFormat string
	exportOut    string
	exportS3     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the consolidated table",
	Long: `Render the consolidated reconciliation table from the local database.

The file name defaults to consolidated_<yyyymmdd_hhmmss>.<ext> in the
current directory. Use --out - to write to stdout. With --s3 the report is
also archived to the bucket configured under export.s3.

Examples:
  # Write an XLSX report to the current directory
  idrecon export

  # Write CSV to stdout
  idrecon export --format csv --out -

  # Archive the report to S3 as well
  idrecon export --s3`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Export format (xlsx|csv)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file, or - for stdout")
	exportCmd.Flags().BoolVar(&exportS3, "s3", false, "Archive the report to the configured S3 bucket")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	cfg, err := loadLocal()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, svc, err := openService(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, format); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	name := format.Filename("consolidated", time.Now())

	switch exportOut {
	case "-":
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
	default:
		path := exportOut
		if path == "" {
			path = name
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s (%d bytes)\n", path, buf.Len())
	}

	if !exportS3 {
		return nil
	}

	archiver, err := export.NewArchiverFromConfig(ctx, cfg.Export.S3, nil)
	if errors.Is(err, export.ErrArchiveDisabled) {
		return fmt.Errorf("--s3 requires export.s3.enabled in the configuration")
	}
	if err != nil {
		return err
	}

	key, err := archiver.Upload(ctx, name, format, buf.Bytes())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report archived to s3://%s/%s\n", archiver.Bucket(), key)
	return nil
}
