package store

import (
	"time"

	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// DirectoryAccountRow is the persisted form of model.DirectoryAccount.
// Seq preserves input order within a domain source.
type DirectoryAccountRow struct {
	ID           uint   `gorm:"primaryKey"`
	DomainSource string `gorm:"size:64;not null;index:idx_directory_domain_seq,priority:1"`
	Seq          int    `gorm:"not null;index:idx_directory_domain_seq,priority:2"`

	Domain      string `gorm:"size:255"`
	Login       string `gorm:"size:255;index"`
	Enabled     string `gorm:"size:32"`
	DisplayName string `gorm:"size:512"`
	Email       string `gorm:"size:512"`
	Phone       string `gorm:"size:128"`
	Mobile      string `gorm:"size:128"`
	EmployeeID  string `gorm:"size:255;index"`

	Title             string `gorm:"size:512"`
	Department        string `gorm:"size:512"`
	Company           string `gorm:"size:512"`
	Manager           string `gorm:"type:text"`
	DistinguishedName string `gorm:"type:text"`
	Location          string `gorm:"size:512"`
	EmployeeNumber    string `gorm:"size:255"`
	Info              string `gorm:"type:text"`

	Groups                []string `gorm:"serializer:json;type:text"`
	ServicePrincipalNames []string `gorm:"serializer:json;type:text"`

	PasswordNeverExpires       string `gorm:"size:32"`
	PasswordNotRequired        string `gorm:"size:32"`
	ReversibleEncryption       string `gorm:"size:32"`
	NoPreauthRequired          string `gorm:"size:32"`
	TrustedForDelegation       string `gorm:"size:32"`
	TrustedToAuthForDelegation string `gorm:"size:32"`
	LockedOut                  string `gorm:"size:32"`
	MustChangePassword         string `gorm:"size:32"`
	PasswordExpired            string `gorm:"size:32"`

	PasswordLastSet     *time.Time
	AccountExpires      *time.Time
	AccountNeverExpires bool `gorm:"not null;default:false"`
	LastLogon           *time.Time
	Created             *time.Time
	Modified            *time.Time
}

// TableName returns the table name for DirectoryAccountRow.
func (DirectoryAccountRow) TableName() string { return "directory_accounts" }

// MfaEnrollmentRow is the persisted form of model.MfaEnrollment.
type MfaEnrollmentRow struct {
	ID  uint `gorm:"primaryKey"`
	Seq int  `gorm:"not null;index"`

	Identity       string `gorm:"size:255;index"`
	Email          string `gorm:"size:512"`
	Phones         string `gorm:"size:512"`
	Name           string `gorm:"size:512"`
	Status         string `gorm:"size:64"`
	IsEnrolled     string `gorm:"size:32"`
	Authenticators string `gorm:"type:text"`
	Groups         string `gorm:"type:text"`
	LastLogin      string `gorm:"size:64"`
	EnrolledAt     string `gorm:"column:created_at;size:64"`
	ExternalID     string `gorm:"size:255"`
	Ldap           string `gorm:"size:255"`
	IsSpammer      string `gorm:"size:32"`
}

// TableName returns the table name for MfaEnrollmentRow.
func (MfaEnrollmentRow) TableName() string { return "mfa_enrollments" }

// HrRecordRow is the persisted form of model.HrRecord.
type HrRecordRow struct {
	ID  uint `gorm:"primaryKey"`
	Seq int  `gorm:"not null;index"`

	EmployeeID        string `gorm:"size:255;index"`
	Name              string `gorm:"size:512"`
	Email             string `gorm:"size:512"`
	Phone             string `gorm:"size:128"`
	Unit              string `gorm:"size:512"`
	Hub               string `gorm:"size:255"`
	EmploymentStatus  string `gorm:"size:128"`
	UnitManager       string `gorm:"size:512"`
	WorkFormat        string `gorm:"size:128"`
	HRBusinessPartner string `gorm:"column:hr_bp;size:512"`
}

// TableName returns the table name for HrRecordRow.
func (HrRecordRow) TableName() string { return "hr_records" }

// Upload records one replacement of a source.
type Upload struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Source     string    `gorm:"size:32;not null;index" json:"source"`
	Domain     string    `gorm:"size:64" json:"domain,omitempty"`
	Filename   string    `gorm:"size:512" json:"filename"`
	RowCount   int       `gorm:"not null" json:"row_count"`
	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`
}

// TableName returns the table name for Upload.
func (Upload) TableName() string { return "uploads" }

// Setting stores system-wide key-value settings.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Setting.
func (Setting) TableName() string { return "settings" }

// AllModels returns every model managed by AutoMigrate.
func AllModels() []any {
	return []any{
		&DirectoryAccountRow{},
		&MfaEnrollmentRow{},
		&HrRecordRow{},
		&Upload{},
		&Setting{},
	}
}

func flagText(f normalize.Flag) string { return f.Label() }

func newDirectoryRow(domain string, seq int, a *model.DirectoryAccount) DirectoryAccountRow {
	return DirectoryAccountRow{
		DomainSource: domain,
		Seq:          seq,

		Domain:      a.Domain,
		Login:       a.Login,
		Enabled:     flagText(a.Enabled),
		DisplayName: a.DisplayName,
		Email:       a.Email,
		Phone:       a.Phone,
		Mobile:      a.Mobile,
		EmployeeID:  a.EmployeeID,

		Title:             a.Title,
		Department:        a.Department,
		Company:           a.Company,
		Manager:           a.Manager,
		DistinguishedName: a.DistinguishedName,
		Location:          a.Location,
		EmployeeNumber:    a.EmployeeNumber,
		Info:              a.Info,

		Groups:                a.Groups,
		ServicePrincipalNames: a.ServicePrincipalNames,

		PasswordNeverExpires:       flagText(a.PasswordNeverExpires),
		PasswordNotRequired:        flagText(a.PasswordNotRequired),
		ReversibleEncryption:       flagText(a.ReversibleEncryption),
		NoPreauthRequired:          flagText(a.NoPreauthRequired),
		TrustedForDelegation:       flagText(a.TrustedForDelegation),
		TrustedToAuthForDelegation: flagText(a.TrustedToAuthForDelegation),
		LockedOut:                  flagText(a.LockedOut),
		MustChangePassword:         flagText(a.MustChangePassword),
		PasswordExpired:            flagText(a.PasswordExpired),

		PasswordLastSet:     a.PasswordLastSet,
		AccountExpires:      a.AccountExpires,
		AccountNeverExpires: a.AccountNeverExpires,
		LastLogon:           a.LastLogon,
		Created:             a.Created,
		Modified:            a.Modified,
	}
}

func (r *DirectoryAccountRow) record() model.DirectoryAccount {
	return model.DirectoryAccount{
		DomainSource: r.DomainSource,
		Domain:       r.Domain,
		Login:        r.Login,
		Enabled:      normalize.ParseFlag(r.Enabled),
		DisplayName:  r.DisplayName,
		Email:        r.Email,
		Phone:        r.Phone,
		Mobile:       r.Mobile,
		EmployeeID:   r.EmployeeID,

		Title:             r.Title,
		Department:        r.Department,
		Company:           r.Company,
		Manager:           r.Manager,
		DistinguishedName: r.DistinguishedName,
		Location:          r.Location,
		EmployeeNumber:    r.EmployeeNumber,
		Info:              r.Info,

		Groups:                r.Groups,
		ServicePrincipalNames: r.ServicePrincipalNames,

		PasswordNeverExpires:       normalize.ParseFlag(r.PasswordNeverExpires),
		PasswordNotRequired:        normalize.ParseFlag(r.PasswordNotRequired),
		ReversibleEncryption:       normalize.ParseFlag(r.ReversibleEncryption),
		NoPreauthRequired:          normalize.ParseFlag(r.NoPreauthRequired),
		TrustedForDelegation:       normalize.ParseFlag(r.TrustedForDelegation),
		TrustedToAuthForDelegation: normalize.ParseFlag(r.TrustedToAuthForDelegation),
		LockedOut:                  normalize.ParseFlag(r.LockedOut),
		MustChangePassword:         normalize.ParseFlag(r.MustChangePassword),
		PasswordExpired:            normalize.ParseFlag(r.PasswordExpired),

		PasswordLastSet:     r.PasswordLastSet,
		AccountExpires:      r.AccountExpires,
		AccountNeverExpires: r.AccountNeverExpires,
		LastLogon:           r.LastLogon,
		Created:             r.Created,
		Modified:            r.Modified,
	}
}

func newMfaRow(seq int, m *model.MfaEnrollment) MfaEnrollmentRow {
	return MfaEnrollmentRow{
		Seq:            seq,
		Identity:       m.Identity,
		Email:          m.Email,
		Phones:         m.Phones,
		Name:           m.Name,
		Status:         m.Status,
		IsEnrolled:     flagText(m.IsEnrolled),
		Authenticators: m.Authenticators,
		Groups:         m.Groups,
		LastLogin:      m.LastLogin,
		EnrolledAt:     m.CreatedAt,
		ExternalID:     m.ExternalID,
		Ldap:           m.Ldap,
		IsSpammer:      flagText(m.IsSpammer),
	}
}

func (r *MfaEnrollmentRow) record() model.MfaEnrollment {
	return model.MfaEnrollment{
		Identity:       r.Identity,
		Email:          r.Email,
		Phones:         r.Phones,
		Name:           r.Name,
		Status:         r.Status,
		IsEnrolled:     normalize.ParseFlag(r.IsEnrolled),
		Authenticators: r.Authenticators,
		Groups:         r.Groups,
		LastLogin:      r.LastLogin,
		CreatedAt:      r.EnrolledAt,
		ExternalID:     r.ExternalID,
		Ldap:           r.Ldap,
		IsSpammer:      normalize.ParseFlag(r.IsSpammer),
	}
}

func newHrRow(seq int, h *model.HrRecord) HrRecordRow {
	return HrRecordRow{
		Seq:               seq,
		EmployeeID:        h.EmployeeID,
		Name:              h.Name,
		Email:             h.Email,
		Phone:             h.Phone,
		Unit:              h.Unit,
		Hub:               h.Hub,
		EmploymentStatus:  h.EmploymentStatus,
		UnitManager:       h.UnitManager,
		WorkFormat:        h.WorkFormat,
		HRBusinessPartner: h.HRBusinessPartner,
	}
}

func (r *HrRecordRow) record() model.HrRecord {
	return model.HrRecord{
		EmployeeID:        r.EmployeeID,
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Unit:              r.Unit,
		Hub:               r.Hub,
		EmploymentStatus:  r.EmploymentStatus,
		UnitManager:       r.UnitManager,
		WorkFormat:        r.WorkFormat,
		HRBusinessPartner: r.HRBusinessPartner,
	}
}
