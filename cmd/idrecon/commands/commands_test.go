package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/pkg/config"
	"github.com/marmos91/idrecon/pkg/store"
)

// writeTestConfig saves a default configuration backed by a SQLite file in
// a temporary directory.
func writeTestConfig(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()

	cfg := config.GetDefaultConfig()
	cfg.Database = store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: filepath.Join(dir, "idrecon.db")},
	}
	cfg.Logging.Output = filepath.Join(dir, "idrecon.log")

	path = filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportAndExport(t *testing.T) {
	dir, cfgPath := writeTestConfig(t)

	hrFile := filepath.Join(dir, "staff.csv")
	require.NoError(t, os.WriteFile(hrFile, []byte(
		"UUID,ФИО,E-mail,HR BP\n"+
			"E1,Иванов Иван,ivanov@corp.example,Petrova\n"+
			"E2,Сидоров Пётр,sidorov@corp.example,Petrova\n"), 0644))

	out, err := execute(t, "--config", cfgPath, "import", "hr", hrFile, "-o", "json")
	require.NoError(t, err)

	var res struct {
		Upload struct {
			Source   string `json:"source"`
			Filename string `json:"filename"`
			RowCount int    `json:"row_count"`
		} `json:"upload"`
		Report struct {
			Rows int `json:"rows"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "hr", res.Upload.Source)
	assert.Equal(t, "staff.csv", res.Upload.Filename)
	assert.Equal(t, 2, res.Upload.RowCount)
	assert.Equal(t, 2, res.Report.Rows)

	exportFile := filepath.Join(dir, "report.csv")
	_, err = execute(t, "--config", cfgPath, "export", "--format", "csv", "--out", exportFile)
	require.NoError(t, err)

	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestImportDirectoryRequiresDomain(t *testing.T) {
	dir, cfgPath := writeTestConfig(t)
	file := filepath.Join(dir, "ad.csv")
	require.NoError(t, os.WriteFile(file, []byte("SamAccountName\nivanov\n"), 0644))

	importDomain = ""
	_, err := execute(t, "--config", cfgPath, "import", "directory", file)
	assert.ErrorContains(t, err, "--domain is required")
}

func TestImportUnknownDomain(t *testing.T) {
	dir, cfgPath := writeTestConfig(t)
	file := filepath.Join(dir, "ad.csv")
	require.NoError(t, os.WriteFile(file, []byte("SamAccountName\nivanov\n"), 0644))

	t.Cleanup(func() { importDomain = "" })
	_, err := execute(t, "--config", cfgPath, "import", "directory", file, "--domain", "atlantis")
	assert.Error(t, err)
}

func TestSyncWithoutLDAP(t *testing.T) {
	_, cfgPath := writeTestConfig(t)
	_, err := execute(t, "--config", cfgPath, "sync", "moscow")
	assert.ErrorContains(t, err, "no domain has an ldap section")
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
