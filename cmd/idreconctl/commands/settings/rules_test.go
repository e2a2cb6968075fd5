package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/pkg/recon/classify"
)

func TestReadRules(t *testing.T) {
	t.Run("yaml pairs", func(t *testing.T) {
		rules, err := ReadRules([]byte(`
izhevsk:
  - ["OU=Disabled", "Disabled"]
  - ["OU=Service", "Service"]
"*":
  - ["OU=Users", "User"]
`))
		require.NoError(t, err)
		assert.Equal(t, []classify.Rule{
			{Pattern: "OU=Disabled", Type: "Disabled"},
			{Pattern: "OU=Service", Type: "Service"},
		}, rules["izhevsk"])
		assert.Len(t, rules[classify.AnyDomain], 1)
	})

	t.Run("json objects", func(t *testing.T) {
		rules, err := ReadRules([]byte(`{"moscow": [{"pattern": "OU=Test", "type": "Test"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "Test", rules["moscow"][0].Type)
	})

	t.Run("bad pair", func(t *testing.T) {
		_, err := ReadRules([]byte(`moscow: [["only-pattern"]]`))
		assert.ErrorIs(t, err, classify.ErrInvalidRules)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ReadRules([]byte(``))
		assert.Error(t, err)
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := ReadRules([]byte("moscow: [unterminated"))
		assert.Error(t, err)
	})
}

func TestRuleListOrder(t *testing.T) {
	rows := RuleList{
		classify.AnyDomain: {{Pattern: "OU=Users", Type: "User"}},
		"moscow":           {{Pattern: "OU=A", Type: "Service"}, {Pattern: "OU=B", Type: "Test"}},
		"izhevsk":          {{Pattern: "OU=C", Type: "Disabled"}},
	}.Rows()

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"izhevsk", "1", "OU=C", "Disabled"}, rows[0])
	assert.Equal(t, []string{"moscow", "2", "OU=B", "Test"}, rows[2])
	assert.Equal(t, classify.AnyDomain, rows[3][0])
}
