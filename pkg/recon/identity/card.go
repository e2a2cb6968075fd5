package identity

import (
	"strings"

	"github.com/marmos91/idrecon/pkg/recon/keys"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// Card is Resolver.Card with default settings.
func Card(key string, dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) (model.IdentityCard, error) {
	return (&Resolver{}).Card(key, dir, mfa, hr)
}

// Card gathers every record for the person identified by key.
//
// A login key resolves to an employee identifier through the first directory
// account with that login; when it does, every account sharing the
// identifier is included. MFA enrollments are attached by exact login key.
// An unknown key yields an empty card, not an error.
func (r *Resolver) Card(key string, dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) (model.IdentityCard, error) {
	if dir == nil || mfa == nil || hr == nil {
		return model.IdentityCard{}, model.ErrInvalidInput
	}

	card := model.IdentityCard{
		Key:       key,
		Logins:    []string{},
		Directory: []model.CardAccount{},
		Mfa:       []model.MfaEnrollment{},
	}

	kind, value := keys.ParseIdentityKey(key)
	var empKey string
	var accounts []int

	switch kind {
	case keys.KindNone:
		return card, nil
	case keys.KindMfa:
		card.Logins = append(card.Logins, value)
	case keys.KindLogin:
		for i := range dir {
			if normalize.LoginKey(dir[i].Login) == value {
				accounts = append(accounts, i)
			}
		}
		if len(accounts) > 0 {
			empKey = normalize.IDKey(dir[accounts[0]].EmployeeID)
		}
		if empKey != "" {
			accounts = accountsByEmployee(dir, empKey)
		}
		if len(accounts) == 0 {
			card.Logins = append(card.Logins, value)
		}
	default:
		empKey = value
		accounts = accountsByEmployee(dir, empKey)
	}

	managers := newManagerIndex(dir)
	loginSet := make(map[string]struct{}, len(card.Logins))
	for _, l := range card.Logins {
		loginSet[l] = struct{}{}
	}
	for _, i := range accounts {
		a := &dir[i]
		if lk := normalize.LoginKey(a.Login); lk != "" {
			if _, ok := loginSet[lk]; !ok {
				loginSet[lk] = struct{}{}
				card.Logins = append(card.Logins, lk)
			}
		}
		if card.EmployeeID == "" {
			card.EmployeeID = normalize.Text(a.EmployeeID)
		}
		entry := model.CardAccount{
			DirectoryAccount: *a,
			DomainLabel:      r.domainLabel(a.DomainSource),
			EnabledLabel:     a.Enabled.Label(),
		}
		if r != nil {
			entry.AccountType = r.Classifier.Classify(a.DomainSource, a.DistinguishedName)
		}
		entry.ManagerKey, entry.ManagerName = managers.resolve(a.Manager, i)
		card.Directory = append(card.Directory, entry)
	}

	for i := range mfa {
		if _, ok := loginSet[normalize.LoginKey(mfa[i].Identity)]; ok {
			card.Mfa = append(card.Mfa, mfa[i])
		}
	}

	if empKey != "" {
		for i := range hr {
			if normalize.IDKey(hr[i].EmployeeID) == empKey {
				h := hr[i]
				card.Hr = &h
				if card.EmployeeID == "" {
					card.EmployeeID = normalize.Text(h.EmployeeID)
				}
				break
			}
		}
	}

	switch {
	case card.Hr != nil && normalize.Text(card.Hr.Name) != "":
		card.Name = normalize.Text(card.Hr.Name)
	case len(card.Directory) > 0 && normalize.Text(card.Directory[0].DisplayName) != "":
		card.Name = normalize.Text(card.Directory[0].DisplayName)
	case len(card.Mfa) > 0:
		card.Name = normalize.Text(card.Mfa[0].Name)
	}

	if card.IsEmpty() {
		card.Logins = []string{}
		card.EmployeeID = ""
	}
	return card, nil
}

func accountsByEmployee(dir []model.DirectoryAccount, empKey string) []int {
	var out []int
	for i := range dir {
		if normalize.IDKey(dir[i].EmployeeID) == empKey {
			out = append(out, i)
		}
	}
	return out
}

// managerIndex resolves a manager DN to another account by matching it
// against accounts' own distinguished names. Resolution is best effort:
// an unknown DN yields an empty key and name.
type managerIndex struct {
	dir  []model.DirectoryAccount
	byDN map[string]int
}

func newManagerIndex(dir []model.DirectoryAccount) *managerIndex {
	m := &managerIndex{dir: dir, byDN: make(map[string]int, len(dir))}
	for i := range dir {
		dn := strings.ToLower(normalize.Text(dir[i].DistinguishedName))
		if dn == "" {
			continue
		}
		if _, dup := m.byDN[dn]; !dup {
			m.byDN[dn] = i
		}
	}
	return m
}

func (m *managerIndex) resolve(managerDN string, self int) (key, name string) {
	dn := strings.ToLower(normalize.Text(managerDN))
	if dn == "" {
		return "", ""
	}
	i, ok := m.byDN[dn]
	if !ok || i == self {
		return "", ""
	}
	mgr := &m.dir[i]
	name = normalize.Text(mgr.DisplayName)
	if name == "" {
		name = normalize.Text(mgr.Login)
	}
	return keys.IdentityKey(mgr.EmployeeID, mgr.Login, ""), name
}
