// Package model defines the record shapes consumed and produced by the
// reconciliation core.
package model

import (
	"errors"
	"time"

	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// ErrInvalidInput is returned when a caller passes a nil record set.
// Empty record sets are valid input.
var ErrInvalidInput = errors.New("invalid input: record set is nil")

// SourceKind identifies where a record came from.
type SourceKind string

const (
	SourceDirectory SourceKind = "directory"
	SourceMFA       SourceKind = "mfa"
	SourceHR        SourceKind = "hr"
)

// Record is the common view over the three source record types used by key
// derivation and weak matching.
type Record interface {
	Source() SourceKind
	EmployeeIdentifier() string
	LoginName() string
	EmailAddress() string
	FullName() string
}

// DirectoryAccount is one user object from a directory domain.
type DirectoryAccount struct {
	DomainSource string         `json:"domain_source"`
	Domain       string         `json:"domain"`
	Login        string         `json:"login"`
	Enabled      normalize.Flag `json:"enabled"`
	DisplayName  string         `json:"display_name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Mobile       string         `json:"mobile"`
	EmployeeID   string         `json:"employee_id"`

	Title             string `json:"title"`
	Department        string `json:"department"`
	Company           string `json:"company"`
	Manager           string `json:"manager"`
	DistinguishedName string `json:"distinguished_name"`
	Location          string `json:"location"`
	EmployeeNumber    string `json:"employee_number"`
	Info              string `json:"info"`

	Groups                []string `json:"groups"`
	ServicePrincipalNames []string `json:"service_principal_names,omitempty"`

	PasswordNeverExpires       normalize.Flag `json:"password_never_expires"`
	PasswordNotRequired        normalize.Flag `json:"password_not_required"`
	ReversibleEncryption       normalize.Flag `json:"reversible_encryption"`
	NoPreauthRequired          normalize.Flag `json:"no_preauth_required"`
	TrustedForDelegation       normalize.Flag `json:"trusted_for_delegation"`
	TrustedToAuthForDelegation normalize.Flag `json:"trusted_to_auth_for_delegation"`
	LockedOut                  normalize.Flag `json:"locked_out"`
	MustChangePassword         normalize.Flag `json:"must_change_password"`
	PasswordExpired            normalize.Flag `json:"password_expired"`

	PasswordLastSet     *time.Time `json:"password_last_set,omitempty"`
	AccountExpires      *time.Time `json:"account_expires,omitempty"`
	AccountNeverExpires bool       `json:"account_never_expires"`
	LastLogon           *time.Time `json:"last_logon,omitempty"`
	Created             *time.Time `json:"created,omitempty"`
	Modified            *time.Time `json:"modified,omitempty"`
}

func (a *DirectoryAccount) Source() SourceKind         { return SourceDirectory }
func (a *DirectoryAccount) EmployeeIdentifier() string { return a.EmployeeID }
func (a *DirectoryAccount) LoginName() string          { return a.Login }
func (a *DirectoryAccount) EmailAddress() string       { return a.Email }
func (a *DirectoryAccount) FullName() string           { return a.DisplayName }

// IsEnabled reports whether the account is explicitly enabled.
func (a *DirectoryAccount) IsEnabled() bool { return a.Enabled.IsTrue() }

// AccountExpiresText renders the expiration for display, distinguishing
// "never" from unknown.
func (a *DirectoryAccount) AccountExpiresText() string {
	if a.AccountNeverExpires {
		return normalize.NeverToken
	}
	return normalize.FormatDateTime(a.AccountExpires)
}

// MfaEnrollment is one identity registered in the MFA service.
type MfaEnrollment struct {
	Identity       string         `json:"identity"`
	Email          string         `json:"email"`
	Phones         string         `json:"phones"`
	Name           string         `json:"name"`
	Status         string         `json:"status"`
	IsEnrolled     normalize.Flag `json:"is_enrolled"`
	Authenticators string         `json:"authenticators"`
	Groups         string         `json:"groups"`
	LastLogin      string         `json:"last_login"`
	CreatedAt      string         `json:"created_at"`
	ExternalID     string         `json:"external_id"`
	Ldap           string         `json:"ldap"`
	IsSpammer      normalize.Flag `json:"is_spammer"`
}

func (m *MfaEnrollment) Source() SourceKind         { return SourceMFA }
func (m *MfaEnrollment) EmployeeIdentifier() string { return "" }
func (m *MfaEnrollment) LoginName() string          { return m.Identity }
func (m *MfaEnrollment) EmailAddress() string       { return m.Email }
func (m *MfaEnrollment) FullName() string           { return m.Name }

// HrRecord is one employee from the HR roster.
type HrRecord struct {
	EmployeeID        string `json:"employee_id"`
	Name              string `json:"full_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Unit              string `json:"unit"`
	Hub               string `json:"hub"`
	EmploymentStatus  string `json:"employment_status"`
	UnitManager       string `json:"unit_manager"`
	WorkFormat        string `json:"work_format"`
	HRBusinessPartner string `json:"hr_bp"`
}

func (h *HrRecord) Source() SourceKind         { return SourceHR }
func (h *HrRecord) EmployeeIdentifier() string { return h.EmployeeID }
func (h *HrRecord) LoginName() string          { return "" }
func (h *HrRecord) EmailAddress() string       { return h.Email }
func (h *HrRecord) FullName() string           { return h.Name }
