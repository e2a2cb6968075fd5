package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/pkg/config"
)

// fakeEditor installs a shell script as EDITOR that runs sedExpr on the file.
func fakeEditor(t *testing.T, sedExpr string) {
	t.Helper()
	script := filepath.Join(t.TempDir(), "editor.sh")
	body := "#!/bin/sh\nsed -i '" + sedExpr + "' \"$1\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	t.Setenv("EDITOR", script)
}

func editCommand(t *testing.T, path string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	c := &cobra.Command{}
	c.Flags().String("config", path, "")
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	return c, &out
}

func TestConfigEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveConfig(config.GetDefaultConfig(), path))

	t.Run("valid change is saved", func(t *testing.T) {
		fakeEditor(t, "s/port: 8080/port: 9090/")
		c, out := editCommand(t, path)

		require.NoError(t, runConfigEdit(c, nil))
		assert.Contains(t, out.String(), "Configuration saved")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.API.Port)
	})

	t.Run("no change", func(t *testing.T) {
		fakeEditor(t, "s/^$//")
		c, out := editCommand(t, path)

		require.NoError(t, runConfigEdit(c, nil))
		assert.Contains(t, out.String(), "No changes made")
	})

	t.Run("missing file", func(t *testing.T) {
		c, _ := editCommand(t, filepath.Join(t.TempDir(), "absent.yaml"))
		err := runConfigEdit(c, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config init")
	})

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "drafts are removed")
}

func TestEditorFromEnv(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "nano")
	assert.Equal(t, "nano", editor())

	t.Setenv("VISUAL", "")
	assert.Equal(t, "vi", editor())
}
