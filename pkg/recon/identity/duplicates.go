package identity

import (
	"github.com/marmos91/idrecon/pkg/recon/keys"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// PossibleDuplicates is Resolver.PossibleDuplicates with default settings.
func PossibleDuplicates(card model.IdentityCard, dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) ([]model.DuplicateMatch, error) {
	return (&Resolver{}).PossibleDuplicates(card, dir, mfa, hr)
}

// PossibleDuplicates finds records outside the card that share its exact
// normalized name or one of its emails. The card's own records, identified
// by employee key or login key, are never reported. Matches are exact on
// normalized values only; there is no fuzzy scoring.
//
// Results are ordered directory, HR, MFA, each in input order.
func (r *Resolver) PossibleDuplicates(card model.IdentityCard, dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) ([]model.DuplicateMatch, error) {
	if dir == nil || mfa == nil || hr == nil {
		return nil, model.ErrInvalidInput
	}

	out := []model.DuplicateMatch{}
	nameKey := normalize.NameKey(card.Name)
	emails := make(map[string]struct{})
	for _, e := range card.Emails() {
		emails[e] = struct{}{}
	}
	if nameKey == "" && len(emails) == 0 {
		return out, nil
	}

	empKey := normalize.IDKey(card.EmployeeID)
	ownLogins := make(map[string]struct{}, len(card.Logins))
	for _, l := range card.Logins {
		if k := normalize.LoginKey(l); k != "" {
			ownLogins[k] = struct{}{}
		}
	}
	isOwn := func(rec model.Record) bool {
		if empKey != "" && keys.Employee(rec) == empKey {
			return true
		}
		if lk := keys.Login(rec); lk != "" {
			if _, ok := ownLogins[lk]; ok {
				return true
			}
		}
		return false
	}
	criteria := func(rec model.Record) []string {
		var by []string
		if nameKey != "" && keys.Name(rec) == nameKey {
			by = append(by, model.MatchByName)
		}
		if e := keys.Email(rec); e != "" {
			if _, ok := emails[e]; ok {
				by = append(by, model.MatchByEmail)
			}
		}
		return by
	}

	loginIdentity := make(map[string]string, len(dir))
	for i := range dir {
		a := &dir[i]
		lk := normalize.LoginKey(a.Login)
		if lk == "" {
			continue
		}
		if _, seen := loginIdentity[lk]; !seen {
			loginIdentity[lk] = keys.IdentityKey(a.EmployeeID, a.Login, "")
		}
	}

	for i := range dir {
		a := &dir[i]
		if isOwn(a) {
			continue
		}
		if by := criteria(a); len(by) > 0 {
			out = append(out, model.DuplicateMatch{
				Source:     model.SourceDirectory,
				Index:      i,
				Key:        keys.IdentityKey(a.EmployeeID, a.Login, ""),
				Login:      normalize.Text(a.Login),
				EmployeeID: normalize.Text(a.EmployeeID),
				Domain:     r.domainLabel(a.DomainSource),
				Name:       normalize.Text(a.DisplayName),
				Email:      normalize.Email(a.Email),
				MatchedBy:  by,
			})
		}
	}

	for i := range hr {
		h := &hr[i]
		if isOwn(h) {
			continue
		}
		if by := criteria(h); len(by) > 0 {
			out = append(out, model.DuplicateMatch{
				Source:     model.SourceHR,
				Index:      i,
				Key:        normalize.IDKey(h.EmployeeID),
				EmployeeID: normalize.Text(h.EmployeeID),
				Name:       normalize.Text(h.Name),
				Email:      normalize.Email(h.Email),
				MatchedBy:  by,
			})
		}
	}

	for i := range mfa {
		m := &mfa[i]
		if isOwn(m) {
			continue
		}
		if by := criteria(m); len(by) > 0 {
			lk := normalize.LoginKey(m.Identity)
			key, ok := loginIdentity[lk]
			if !ok {
				key = keys.IdentityKey("", "", m.Identity)
			}
			out = append(out, model.DuplicateMatch{
				Source:    model.SourceMFA,
				Index:     i,
				Key:       key,
				Login:     normalize.Text(m.Identity),
				Name:      normalize.Text(m.Name),
				Email:     normalize.Email(m.Email),
				MatchedBy: by,
			})
		}
	}

	return out, nil
}
