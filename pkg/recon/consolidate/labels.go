package consolidate

// Sentinel cell values for absent sources and blank fields.
const (
	NoAccount = "NO ACCOUNT"
	NoMfa     = "NO MFA"
	NotInHr   = "NOT IN HR"
	NoEmail   = "NO EMAIL"
	NoPhone   = "NO PHONE"
	NoName    = "NO NAME"
)

// Row source labels for orphan rows. Directory rows use the domain label.
const (
	RowSourceMFA       = "MFA"
	RowSourceHR        = "HR"
	RowSourceDirectory = "Directory"
)

// Coverage tags.
const (
	TagNotInHr           = "not in HR"
	TagNoAccount         = "no account in directory"
	TagDuplicateMfa      = "duplicate MFA identity"
	TagDuplicateEmployee = "duplicate employee ID"
)

// Discrepancy labels, in evaluation order.
const (
	EmailDirectoryMfa = "email directory≠MFA"
	EmailDirectoryHr  = "email directory≠HR"
	EmailMfaHr        = "email MFA≠HR"
	PhoneMfaDirectory = "phone MFA≠directory"
	PhoneHrDirectory  = "phone HR≠directory"
	PhoneMfaHr        = "phone MFA≠HR"
	NameDirectoryMfa  = "name directory≠MFA"
	NameDirectoryHr   = "name directory≠HR"
	NameMfaHr         = "name MFA≠HR"
)

// DiscrepancyKinds lists every discrepancy label in evaluation order.
var DiscrepancyKinds = []string{
	EmailDirectoryMfa, EmailDirectoryHr, EmailMfaHr,
	PhoneMfaDirectory, PhoneHrDirectory, PhoneMfaHr,
	NameDirectoryMfa, NameDirectoryHr, NameMfaHr,
}
