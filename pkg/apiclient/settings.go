package apiclient

import "github.com/marmos91/idrecon/pkg/recon/classify"

// OURules returns the OU classification rules.
func (c *Client) OURules() (classify.RuleSet, error) {
	var rules classify.RuleSet
	if err := c.get("/api/v1/settings/ou-rules", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SetOURules replaces the OU classification rules.
func (c *Client) SetOURules(rules classify.RuleSet) (classify.RuleSet, error) {
	var result classify.RuleSet
	if err := c.put("/api/v1/settings/ou-rules", rules, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ResetOURules restores the built-in rules and returns them.
func (c *Client) ResetOURules() (classify.RuleSet, error) {
	var result classify.RuleSet
	if err := c.post("/api/v1/settings/ou-rules/reset", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
