package context

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/internal/cli/contexts"
)

func TestDescribeAndTable(t *testing.T) {
	store, err := contexts.OpenPath(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)

	infos, err := describe(store)
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, store.Set("prod", &contexts.Context{ServerURL: "https://recon.example.com"}))
	require.NoError(t, store.Set("lab", &contexts.Context{ServerURL: "localhost:8080", Output: "json"}))

	infos, err = describe(store)
	require.NoError(t, err)
	assert.Equal(t, []ContextInfo{
		{Name: "lab", ServerURL: "http://localhost:8080", Output: "json"},
		{Name: "prod", Current: true, ServerURL: "https://recon.example.com"},
	}, infos)

	table := contextTable(infos)
	assert.Equal(t, []string{"CURRENT", "NAME", "SERVER", "OUTPUT"}, table.Headers())
	assert.Equal(t, [][]string{
		{"-", "lab", "http://localhost:8080", "json"},
		{"*", "prod", "https://recon.example.com", "-"},
	}, table.Rows())
}
