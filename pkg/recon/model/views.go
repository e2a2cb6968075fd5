package model

import "github.com/marmos91/idrecon/pkg/recon/normalize"

// ConsolidatedRow is one line of the reconciliation table. It is derived on
// demand and never persisted.
type ConsolidatedRow struct {
	RowSource       string `json:"source"`
	Domain          string `json:"domain"`
	Login           string `json:"login"`
	AccountEnabled  string `json:"account_enabled"`
	PasswordLastSet string `json:"password_last_set"`
	AccountExpires  string `json:"account_expires"`
	EmployeeID      string `json:"employee_id"`
	AccountType     string `json:"account_type"`

	MfaEnabled        string `json:"mfa_enabled"`
	MfaCreatedAt      string `json:"mfa_created_at"`
	MfaLastLogin      string `json:"mfa_last_login"`
	MfaAuthenticators string `json:"mfa_authenticators"`

	NameDirectory   string `json:"name_directory"`
	NameMfa         string `json:"name_mfa"`
	NameHr          string `json:"name_hr"`
	EmailDirectory  string `json:"email_directory"`
	EmailMfa        string `json:"email_mfa"`
	EmailHr         string `json:"email_hr"`
	PhoneDirectory  string `json:"phone_directory"`
	MobileDirectory string `json:"mobile_directory"`
	PhoneMfa        string `json:"phone_mfa"`
	PhoneHr         string `json:"phone_hr"`

	HasMfa        bool     `json:"has_mfa"`
	HasHr         bool     `json:"has_hr"`
	Discrepancies []string `json:"discrepancies"`

	// SubjectSource and SubjectIndex name the input record this row is about.
	SubjectSource SourceKind `json:"subject_source"`
	SubjectIndex  int        `json:"subject_index"`
}

// IdentitySummary is one person in the identity list.
type IdentitySummary struct {
	Key        string   `json:"key"`
	EmployeeID string   `json:"employee_id"`
	Name       string   `json:"name"`
	Logins     []string `json:"logins"`
	Sources    []string `json:"sources"`
	HasMfa     bool     `json:"has_mfa"`
	HasHr      bool     `json:"has_hr"`
}

// CardAccount is a directory account as shown on an identity card.
type CardAccount struct {
	DirectoryAccount
	DomainLabel  string `json:"domain_label"`
	EnabledLabel string `json:"enabled_label"`
	AccountType  string `json:"account_type"`
	ManagerKey   string `json:"manager_key"`
	ManagerName  string `json:"manager_name"`
}

// IdentityCard gathers every record known for one person.
type IdentityCard struct {
	Key        string          `json:"key"`
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Logins     []string        `json:"logins"`
	Directory  []CardAccount   `json:"directory"`
	Mfa        []MfaEnrollment `json:"mfa"`
	Hr         *HrRecord       `json:"hr"`
}

// Emails returns the distinct normalized emails attributed to the card.
func (c *IdentityCard) Emails() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(e string) {
		if e == "" {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for i := range c.Directory {
		add(normalize.Email(c.Directory[i].Email))
	}
	for i := range c.Mfa {
		add(normalize.Email(c.Mfa[i].Email))
	}
	if c.Hr != nil {
		add(normalize.Email(c.Hr.Email))
	}
	return out
}

// IsEmpty reports whether the card resolved to no records at all.
func (c *IdentityCard) IsEmpty() bool {
	return len(c.Directory) == 0 && len(c.Mfa) == 0 && c.Hr == nil
}

// Match criteria for possible duplicates.
const (
	MatchByName  = "name"
	MatchByEmail = "email"
)

// DuplicateMatch is a record outside an identity that shares its exact
// normalized name or email.
type DuplicateMatch struct {
	Source     SourceKind `json:"source"`
	Index      int        `json:"index"`
	Key        string     `json:"key"`
	Login      string     `json:"login,omitempty"`
	EmployeeID string     `json:"employee_id,omitempty"`
	Domain     string     `json:"domain,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	MatchedBy  []string   `json:"matched_by"`
}
