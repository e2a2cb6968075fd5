package classify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := RuleSet{"izhevsk": {{"OU=Test", TypeTest}, {"OU=", TypeUser}}}
	path := "CN=qa1,OU=Test,OU=Users,DC=local,DC=com"

	assert.Equal(t, TypeTest, ClassifyAccountType("izhevsk", path, rules, TypeUnknown))
}

func TestClassify(t *testing.T) {
	rules := RuleSet{
		"moscow":  {{"ou=service", TypeService}},
		AnyDomain: {{"OU=Users", TypeUser}},
	}

	tests := []struct {
		name   string
		domain string
		path   string
		want   string
	}{
		{"case insensitive", "moscow", "CN=svc,OU=Service,DC=x", TypeService},
		{"domain rules do not fall through to wildcard", "moscow", "CN=a,OU=Users,DC=x", "Fallback"},
		{"wildcard for unknown domain", "kostroma", "CN=a,OU=Users,DC=x", TypeUser},
		{"empty path", "kostroma", "", "Fallback"},
		{"no match", "kostroma", "CN=a,DC=x", "Fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAccountType(tt.domain, tt.path, rules, "Fallback"))
		})
	}
}

func TestClassifierDefaults(t *testing.T) {
	c := New(nil, "")
	assert.Equal(t, TypeUnknown, c.Default)
	assert.Equal(t, TypeDisabled, c.Classify("izhevsk", "CN=x,OU=Disabled,OU=Users,DC=a"))
	assert.Equal(t, TypeUnknown, c.Classify("izhevsk", "CN=x,OU=Robots,DC=a"))

	svc := New(nil, TypeService)
	assert.Equal(t, TypeService, svc.Classify("izhevsk", "CN=x,OU=Robots,DC=a"))
}

func TestDefaultRulesIsACopy(t *testing.T) {
	a := DefaultRules()
	a[AnyDomain][0].Type = TypeTest
	assert.Equal(t, TypeDisabled, DefaultRules()[AnyDomain][0].Type)
}

func TestValidate(t *testing.T) {
	known := []string{"izhevsk", "moscow"}

	require.NoError(t, Validate(DefaultRules(), known))
	require.NoError(t, Validate(RuleSet{"izhevsk": {{"OU=A", TypeUser}}}, known))

	err := Validate(RuleSet{"paris": {{"OU=A", TypeUser}}}, known)
	assert.True(t, errors.Is(err, ErrInvalidRules))
	assert.Contains(t, err.Error(), "paris")

	err = Validate(RuleSet{"izhevsk": {{"OU=A", "Robot"}}}, known)
	assert.ErrorIs(t, err, ErrInvalidRules)

	err = Validate(RuleSet{"izhevsk": {{" ", TypeUser}}}, known)
	assert.ErrorIs(t, err, ErrInvalidRules)
}

func TestRuleJSON(t *testing.T) {
	var rs RuleSet
	require.NoError(t, json.Unmarshal([]byte(`{"izhevsk":[["OU=Test","Test"],{"pattern":"OU=","type":"User"}]}`), &rs))
	require.Len(t, rs["izhevsk"], 2)
	assert.Equal(t, Rule{"OU=", TypeUser}, rs["izhevsk"][1])

	data, err := json.Marshal(RuleSet{"moscow": {{"OU=Svc", TypeService}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"moscow":[["OU=Svc","Service"]]}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"x":[["only"]]}`), &rs))
}

func TestStarPatternIsLiteral(t *testing.T) {
	rules := RuleSet{AnyDomain: {{"*", TypeService}, {"", TypeTest}}}

	assert.Equal(t, "Fallback", ClassifyAccountType("izhevsk", "CN=a,OU=Users,DC=x", rules, "Fallback"),
		"a * pattern is a substring like any other")
	assert.Equal(t, TypeService, ClassifyAccountType("izhevsk", "CN=a,OU=Lab*,DC=x", rules, "Fallback"))
}
