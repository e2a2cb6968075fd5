// Package views renders reconciliation results for both command-line tools.
package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

// TimeLayout is how timestamps are shown in tables.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in local time, or the placeholder when zero.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return output.Placeholder
	}
	return t.Local().Format(TimeLayout)
}

// ImportPairs lists the fields of an import as key/value pairs.
func ImportPairs(res *reconciler.ImportResult) [][2]string {
	var pairs [][2]string
	if up := res.Upload; up != nil {
		pairs = append(pairs,
			[2]string{"Source", up.Source},
			[2]string{"Domain", up.Domain},
			[2]string{"File", up.Filename},
			[2]string{"Rows stored", output.Count(up.RowCount)},
			[2]string{"Uploaded", FormatTime(up.UploadedAt)},
		)
	}
	if rep := res.Report; rep != nil {
		pairs = append(pairs,
			[2]string{"Format", string(rep.Format)},
			[2]string{"Rows skipped", output.Count(rep.Skipped)},
			[2]string{"Columns mapped", strings.Join(rep.Mapped, ", ")},
			[2]string{"Columns missing", strings.Join(rep.Missing, ", ")},
		)
	}
	return pairs
}

// PrintImport writes an import summary followed by any parser warnings.
func PrintImport(w io.Writer, res *reconciler.ImportResult) error {
	if err := output.SimpleTable(w, ImportPairs(res)); err != nil {
		return err
	}
	if res.Report != nil && len(res.Report.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range res.Report.Warnings {
			_, _ = fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

// SyncPairs lists the fields of a directory sync.
func SyncPairs(res *reconciler.SyncResult) [][2]string {
	pairs := [][2]string{
		{"Domain", res.Domain},
		{"Server", res.Server},
	}
	if up := res.Upload; up != nil {
		pairs = append(pairs,
			[2]string{"Accounts", output.Count(up.RowCount)},
			[2]string{"Synced", FormatTime(up.UploadedAt)},
		)
	}
	return pairs
}

// UploadList renders the latest upload of every source.
type UploadList []store.Upload

// Headers implements TableRenderer.
func (ul UploadList) Headers() []string {
	return []string{"SOURCE", "DOMAIN", "FILE", "ROWS", "UPLOADED"}
}

// Rows implements TableRenderer.
func (ul UploadList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		rows = append(rows, []string{
			u.Source,
			output.Cell(u.Domain),
			output.Cell(u.Filename),
			output.Count(u.RowCount),
			FormatTime(u.UploadedAt),
		})
	}
	return rows
}
