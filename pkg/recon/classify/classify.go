// Package classify maps a directory account's distinguished path to a coarse
// account type using ordered substring rules.
package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Account types.
const (
	TypeUser       = "User"
	TypeContractor = "Contractor"
	TypeDisabled   = "Disabled"
	TypeService    = "Service"
	TypeTest       = "Test"
	TypeUnknown    = "Unknown"
)

// AccountTypes lists every label a rule may assign.
var AccountTypes = []string{TypeUser, TypeContractor, TypeDisabled, TypeService, TypeTest, TypeUnknown}

// AnyDomain is the rule-set key applied to domains without their own rules.
const AnyDomain = "*"

// ErrInvalidRules is returned by Validate.
var ErrInvalidRules = errors.New("invalid OU rules")

// Rule assigns Type to paths containing Pattern.
type Rule struct {
	Pattern string
	Type    string
}

// MarshalJSON encodes a rule as a [pattern, type] pair.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{r.Pattern, r.Type})
}

// UnmarshalJSON accepts a [pattern, type] pair or {"pattern","type"} object.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("%w: rule must be [pattern, type]", ErrInvalidRules)
		}
		r.Pattern, r.Type = pair[0], pair[1]
		return nil
	}
	var obj struct {
		Pattern string `json:"pattern"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	r.Pattern, r.Type = obj.Pattern, obj.Type
	return nil
}

// RuleSet holds ordered rules per domain source.
type RuleSet map[string][]Rule

// DefaultRules returns a fresh copy of the built-in rule table.
func DefaultRules() RuleSet {
	base := []Rule{
		{"OU=Disabled", TypeDisabled},
		{"OU=Service", TypeService},
		{"OU=Test", TypeTest},
		{"OU=Contractor", TypeContractor},
		{"OU=Outsource", TypeContractor},
		{"OU=Users", TypeUser},
		{"OU=Employees", TypeUser},
	}
	return RuleSet{AnyDomain: base}
}

// Clone returns a deep copy.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for k, v := range rs {
		out[k] = append([]Rule(nil), v...)
	}
	return out
}

// For returns the rules for domain, falling back to the wildcard entry.
func (rs RuleSet) For(domain string) []Rule {
	if r, ok := rs[domain]; ok {
		return r
	}
	return rs[AnyDomain]
}

// ClassifyAccountType returns the type of the first rule whose pattern is a
// case-insensitive substring of path, or fallback if none matches.
func ClassifyAccountType(domain, path string, rules RuleSet, fallback string) string {
	if path == "" {
		return fallback
	}
	lower := strings.ToLower(path)
	for _, r := range rules.For(domain) {
		if r.Pattern == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Type
		}
	}
	return fallback
}

// Classifier binds a rule set to a default label.
type Classifier struct {
	Rules   RuleSet
	Default string
}

// New returns a classifier; nil rules use DefaultRules and an empty default
// uses TypeUnknown.
func New(rules RuleSet, def string) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if def == "" {
		def = TypeUnknown
	}
	return &Classifier{Rules: rules, Default: def}
}

// Classify applies the classifier to one path.
func (c *Classifier) Classify(domain, path string) string {
	if c == nil {
		return ""
	}
	return ClassifyAccountType(domain, path, c.Rules, c.Default)
}

// IsAccountType reports whether t is a known label.
func IsAccountType(t string) bool {
	for _, at := range AccountTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Validate checks that every domain is known (or the wildcard), every
// pattern is non-empty and every type is a known label.
func Validate(rules RuleSet, knownDomains []string) error {
	known := make(map[string]struct{}, len(knownDomains)+1)
	known[AnyDomain] = struct{}{}
	for _, d := range knownDomains {
		known[d] = struct{}{}
	}
	for domain, list := range rules {
		if _, ok := known[domain]; !ok {
			return fmt.Errorf("%w: unknown domain %q", ErrInvalidRules, domain)
		}
		for i, r := range list {
			if strings.TrimSpace(r.Pattern) == "" {
				return fmt.Errorf("%w: %s rule %d has an empty pattern", ErrInvalidRules, domain, i)
			}
			if !IsAccountType(r.Type) {
				return fmt.Errorf("%w: %s rule %d has unknown type %q", ErrInvalidRules, domain, i, r.Type)
			}
		}
	}
	return nil
}
