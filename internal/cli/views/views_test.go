package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/recon/browse"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

func TestFormatTime(t *testing.T) {
	assert.Equal(t, output.Placeholder, FormatTime(time.Time{}))

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
	assert.Equal(t, "2026-03-01 12:30:00", FormatTime(at))
}

func TestPrintImport(t *testing.T) {
	res := &reconciler.ImportResult{
		Upload: &store.Upload{Source: "directory", Domain: "izhevsk", Filename: "ad.csv", RowCount: 3},
		Report: &ingest.Report{
			Format:   ingest.FormatCSV,
			Mapped:   []string{"login", "email"},
			Missing:  []string{"employee_id"},
			Skipped:  1,
			Warnings: []string{"1 row outside DC=corp"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintImport(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "izhevsk")
	assert.Contains(t, out, "ad.csv")
	assert.Contains(t, out, "login, email")
	assert.Contains(t, out, "employee_id")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "1 row outside DC=corp")
}

func TestImportPairsWithoutReport(t *testing.T) {
	pairs := ImportPairs(&reconciler.ImportResult{Upload: &store.Upload{Source: "hr", RowCount: 2}})
	require.Len(t, pairs, 5)
	assert.Equal(t, [2]string{"Rows stored", "2"}, pairs[3])
}

func TestSyncPairs(t *testing.T) {
	pairs := SyncPairs(&reconciler.SyncResult{
		Domain: "moscow",
		Server: "ldaps://dc1.example.com:636",
		Upload: &store.Upload{RowCount: 42},
	})
	require.Len(t, pairs, 4)
	assert.Equal(t, "ldaps://dc1.example.com:636", pairs[1][1])
	assert.Equal(t, "42", pairs[2][1])
}

func TestMemberListPlaceholders(t *testing.T) {
	rows := MemberList{{Login: "ivanov"}}.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "ivanov", rows[0][0])
	for _, cell := range rows[0][1:] {
		assert.Equal(t, output.Placeholder, cell)
	}

	counts := CountList{{Name: "VPN", Count: 3}}.Rows()
	assert.Equal(t, [][]string{{"VPN", "3"}}, counts)
}

var _ output.TableRenderer = UploadList(nil)
var _ output.TableRenderer = MemberList([]browse.Member{})
