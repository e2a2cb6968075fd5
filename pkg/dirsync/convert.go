package dirsync

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// userAccountControl bits.
const (
	uacAccountDisable          = 0x2
	uacLockout                 = 0x10
	uacPasswordNotRequired     = 0x20
	uacEncryptedTextPwdAllowed = 0x80
	uacDontExpirePassword      = 0x10000
	uacTrustedForDelegation    = 0x80000
	uacDontRequirePreauth      = 0x400000
	uacPasswordExpired         = 0x800000
	uacTrustedToAuthForDeleg   = 0x1000000
)

// fileTimeNever is the largest FILETIME, used by AD for "never".
const fileTimeNever = math.MaxInt64

// Windows FILETIME counts 100ns intervals since 1601-01-01 UTC.
const (
	fileTimeUnixOffset = 116444736000000000
	fileTimeSecond     = 10_000_000
)

// generalizedTime is the layout of whenCreated and whenChanged.
const generalizedTime = "20060102150405Z0700"

// Attributes lists the user attributes requested from the directory.
var Attributes = []string{
	"sAMAccountName", "displayName", "mail", "telephoneNumber", "mobile",
	"title", "manager", "distinguishedName", "company", "department", "l",
	"employeeNumber", "employeeID", "extensionAttribute1", "info",
	"pwdLastSet", "accountExpires", "lastLogonTimestamp", "lockoutTime",
	"userAccountControl", "memberOf", "servicePrincipalName",
	"whenCreated", "whenChanged",
}

// FileTime converts a FILETIME to a UTC time. ok is false for 0, negative
// values and the "never" sentinel.
func FileTime(ft int64) (t time.Time, ok bool) {
	if ft <= 0 || ft >= fileTimeNever {
		return time.Time{}, false
	}
	unix100ns := ft - fileTimeUnixOffset
	sec := unix100ns / fileTimeSecond
	nsec := (unix100ns % fileTimeSecond) * 100
	return time.Unix(sec, nsec).UTC(), true
}

func fileTimePtr(ft int64) *time.Time {
	t, ok := FileTime(ft)
	if !ok {
		return nil
	}
	return &t
}

// GroupNames reduces memberOf DNs to their leading CN values. Values that
// are not CN-prefixed DNs are kept as they are.
func GroupNames(memberOf []string) []string {
	if len(memberOf) == 0 {
		return nil
	}
	out := make([]string, 0, len(memberOf))
	for _, dn := range memberOf {
		if len(dn) > 3 && strings.EqualFold(dn[:3], "CN=") {
			name := dn[3:]
			if i := strings.IndexByte(name, ','); i >= 0 {
				name = name[:i]
			}
			out = append(out, name)
			continue
		}
		out = append(out, dn)
	}
	return out
}

func intAttr(e *ldap.Entry, name string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(e.GetAttributeValue(name)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func timeAttr(e *ldap.Entry, name string) *time.Time {
	raw := e.GetAttributeValue(name)
	if raw == "" {
		return nil
	}
	// Drop fractional seconds: "20240101120000.0Z" -> "20240101120000Z".
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		j := i + 1
		for j < len(raw) && raw[j] >= '0' && raw[j] <= '9' {
			j++
		}
		raw = raw[:i] + raw[j:]
	}
	t, err := time.Parse(generalizedTime, raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func flag(set bool) normalize.Flag {
	if set {
		return normalize.True
	}
	return normalize.False
}

// mustChangePassword is set only for an explicit pwdLastSet of 0. A missing or
// unreadable attribute stays unknown.
func mustChangePassword(e *ldap.Entry) normalize.Flag {
	raw := strings.TrimSpace(e.GetAttributeValue("pwdLastSet"))
	if raw == "" {
		return normalize.Flag{}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return normalize.Flag{Raw: raw}
	}
	return flag(v == 0)
}

// Account converts one directory entry to a DirectoryAccount stamped with
// the given domain source.
func Account(domain string, e *ldap.Entry) model.DirectoryAccount {
	uac := intAttr(e, "userAccountControl")
	pwdLastSet := intAttr(e, "pwdLastSet")
	accountExpires := intAttr(e, "accountExpires")

	dn := e.GetAttributeValue("distinguishedName")
	if dn == "" {
		dn = e.DN
	}

	employeeID := normalize.Text(e.GetAttributeValue("extensionAttribute1"))
	if employeeID == "" {
		employeeID = normalize.Text(e.GetAttributeValue("employeeID"))
	}

	a := model.DirectoryAccount{
		DomainSource:      domain,
		Domain:            ingest.DomainFromDN(dn),
		Login:             normalize.Text(e.GetAttributeValue("sAMAccountName")),
		Enabled:           flag(uac&uacAccountDisable == 0),
		DisplayName:       normalize.Text(e.GetAttributeValue("displayName")),
		Email:             normalize.Text(e.GetAttributeValue("mail")),
		Phone:             normalize.Phone(e.GetAttributeValue("telephoneNumber")),
		Mobile:            normalize.Phone(e.GetAttributeValue("mobile")),
		EmployeeID:        employeeID,
		Title:             normalize.Text(e.GetAttributeValue("title")),
		Department:        normalize.Text(e.GetAttributeValue("department")),
		Company:           normalize.Text(e.GetAttributeValue("company")),
		Manager:           normalize.Text(e.GetAttributeValue("manager")),
		DistinguishedName: dn,
		Location:          normalize.Text(e.GetAttributeValue("l")),
		EmployeeNumber:    normalize.Text(e.GetAttributeValue("employeeNumber")),
		Info:              normalize.Text(e.GetAttributeValue("info")),
		Groups:            GroupNames(e.GetAttributeValues("memberOf")),

		ServicePrincipalNames: e.GetAttributeValues("servicePrincipalName"),

		PasswordNeverExpires:       flag(uac&uacDontExpirePassword != 0),
		PasswordNotRequired:        flag(uac&uacPasswordNotRequired != 0),
		ReversibleEncryption:       flag(uac&uacEncryptedTextPwdAllowed != 0),
		NoPreauthRequired:          flag(uac&uacDontRequirePreauth != 0),
		TrustedForDelegation:       flag(uac&uacTrustedForDelegation != 0),
		TrustedToAuthForDelegation: flag(uac&uacTrustedToAuthForDeleg != 0),
		LockedOut:                  flag(intAttr(e, "lockoutTime") > 0 || uac&uacLockout != 0),
		MustChangePassword:         mustChangePassword(e),
		PasswordExpired:            flag(uac&uacPasswordExpired != 0),

		PasswordLastSet: fileTimePtr(pwdLastSet),
		LastLogon:       fileTimePtr(intAttr(e, "lastLogonTimestamp")),
		Created:         timeAttr(e, "whenCreated"),
		Modified:        timeAttr(e, "whenChanged"),
	}

	if accountExpires <= 0 || accountExpires >= fileTimeNever {
		a.AccountNeverExpires = true
	} else {
		a.AccountExpires = fileTimePtr(accountExpires)
	}
	if len(a.ServicePrincipalNames) == 0 {
		a.ServicePrincipalNames = nil
	}
	return a
}
