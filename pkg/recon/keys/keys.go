// Package keys derives the join keys used to match records across sources.
//
// Priority throughout is employee identifier, then login, then email: the
// employee identifier is the most stable cross-source key when present.
package keys

import (
	"strings"

	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// Kind names which key a record was matched by.
type Kind string

const (
	KindNone     Kind = ""
	KindEmployee Kind = "employee"
	KindLogin    Kind = "login"
	KindEmail    Kind = "email"
	KindMfa      Kind = "mfa"
)

// Synthetic identity key prefixes for people without an employee identifier.
const (
	LoginPrefix = "_login_"
	MfaPrefix   = "_mfa_"
)

// Employee returns the normalized employee identifier key.
func Employee(r model.Record) string {
	return normalize.IDKey(r.EmployeeIdentifier())
}

// Login returns the normalized login key, domain prefix stripped.
func Login(r model.Record) string {
	return normalize.LoginKey(r.LoginName())
}

// Email returns the normalized email key.
func Email(r model.Record) string {
	return normalize.Email(r.EmailAddress())
}

// Name returns the normalized full-name key.
func Name(r model.Record) string {
	return normalize.NameKey(r.FullName())
}

// Primary returns the highest-priority non-empty key of r.
func Primary(r model.Record) (Kind, string) {
	if k := Employee(r); k != "" {
		return KindEmployee, k
	}
	if k := Login(r); k != "" {
		return KindLogin, k
	}
	if k := Email(r); k != "" {
		return KindEmail, k
	}
	return KindNone, ""
}

// IdentityKey builds the identity key for a person: the employee key, else
// a login-derived key, else an MFA-identity-derived key.
func IdentityKey(employeeID, login, mfaIdentity string) string {
	if k := normalize.IDKey(employeeID); k != "" {
		return k
	}
	if k := normalize.LoginKey(login); k != "" {
		return LoginPrefix + k
	}
	if k := normalize.LoginKey(mfaIdentity); k != "" {
		return MfaPrefix + k
	}
	return ""
}

// ParseIdentityKey splits an identity key into its kind and value.
func ParseIdentityKey(key string) (Kind, string) {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return KindNone, ""
	case strings.HasPrefix(key, LoginPrefix):
		return prefixed(KindLogin, key[len(LoginPrefix):])
	case strings.HasPrefix(key, MfaPrefix):
		return prefixed(KindMfa, key[len(MfaPrefix):])
	default:
		return KindEmployee, normalize.IDKey(key)
	}
}

// prefixed resolves the value of a synthetic key. A blank value resolves to
// nothing so it cannot match records that lack a login.
func prefixed(kind Kind, value string) (Kind, string) {
	if v := normalize.LoginKey(value); v != "" {
		return kind, v
	}
	return KindNone, ""
}
