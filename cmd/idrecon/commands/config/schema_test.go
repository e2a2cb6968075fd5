package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaUsesYAMLNames(t *testing.T) {
	s := Schema()
	require.NotNil(t, s.Properties)

	for key, doc := range sectionDocs {
		prop, ok := s.Properties.Get(key)
		require.True(t, ok, "missing section %s", key)
		assert.Equal(t, doc, prop.Description)
	}
}

func TestSchemaDurationsAreStrings(t *testing.T) {
	s := Schema()
	prop, ok := s.Properties.Get("shutdown_timeout")
	require.True(t, ok)
	assert.Equal(t, "string", prop.Type)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"50Mi"`)
}
