// Package identity groups source records into people, assembles a full
// identity card for one person, and surfaces probable duplicate identities.
package identity

import (
	"sort"
	"strings"

	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/recon/keys"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// Source labels used in IdentitySummary.Sources.
const (
	SourceLabelMFA       = "MFA"
	SourceLabelHR        = "HR"
	SourceLabelDirectory = "Directory"
)

// Resolver carries presentation settings for identity lookups. The zero
// value is usable.
type Resolver struct {
	DomainLabels map[string]string
	Classifier   *classify.Classifier
}

func (r *Resolver) domainLabel(source string) string {
	if r != nil {
		if l, ok := r.DomainLabels[source]; ok && l != "" {
			return l
		}
	}
	if source != "" {
		return source
	}
	return SourceLabelDirectory
}

type summaryBuilder struct {
	summary model.IdentitySummary
	logins  map[string]struct{}
	sources map[string]struct{}
}

func (b *summaryBuilder) addLogin(login string) {
	k := normalize.LoginKey(login)
	if k == "" {
		return
	}
	if _, ok := b.logins[k]; ok {
		return
	}
	b.logins[k] = struct{}{}
	b.summary.Logins = append(b.summary.Logins, normalize.Text(login))
}

// List is Resolver.List with default settings.
func List(dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) ([]model.IdentitySummary, error) {
	return (&Resolver{}).List(dir, mfa, hr)
}

// List groups every record into one summary per person. Directory and HR
// records group by employee identifier, directory accounts without one by
// login, and MFA enrollments attach through the login of a directory
// account or otherwise stand alone. HR records without an identifier are
// not reachable by key and are not listed.
//
// Output order is first appearance; use SortByName for presentation.
func (r *Resolver) List(dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) ([]model.IdentitySummary, error) {
	if dir == nil || mfa == nil || hr == nil {
		return nil, model.ErrInvalidInput
	}

	var order []string
	people := make(map[string]*summaryBuilder)
	get := func(key, employeeID string) *summaryBuilder {
		b, ok := people[key]
		if !ok {
			b = &summaryBuilder{
				summary: model.IdentitySummary{Key: key, EmployeeID: employeeID, Logins: []string{}},
				logins:  make(map[string]struct{}),
				sources: make(map[string]struct{}),
			}
			people[key] = b
			order = append(order, key)
		}
		if b.summary.EmployeeID == "" {
			b.summary.EmployeeID = employeeID
		}
		return b
	}

	for i := range dir {
		a := &dir[i]
		key := keys.IdentityKey(a.EmployeeID, a.Login, "")
		if key == "" {
			continue
		}
		b := get(key, normalize.Text(a.EmployeeID))
		if b.summary.Name == "" {
			b.summary.Name = normalize.Text(a.DisplayName)
		}
		b.addLogin(a.Login)
		b.sources[r.domainLabel(a.DomainSource)] = struct{}{}
	}

	for i := range hr {
		h := &hr[i]
		key := normalize.IDKey(h.EmployeeID)
		if key == "" {
			continue
		}
		b := get(key, normalize.Text(h.EmployeeID))
		if b.summary.Name == "" {
			b.summary.Name = normalize.Text(h.Name)
		}
		b.summary.HasHr = true
		b.sources[SourceLabelHR] = struct{}{}
	}

	loginOwner := make(map[string]string)
	for _, key := range order {
		for _, login := range people[key].summary.Logins {
			lk := normalize.LoginKey(login)
			if _, taken := loginOwner[lk]; !taken {
				loginOwner[lk] = key
			}
		}
	}

	for i := range mfa {
		m := &mfa[i]
		ident := normalize.LoginKey(m.Identity)
		if ident == "" {
			continue
		}
		if owner, ok := loginOwner[ident]; ok {
			b := people[owner]
			b.summary.HasMfa = true
			b.sources[SourceLabelMFA] = struct{}{}
			continue
		}
		key := keys.MfaPrefix + ident
		b := get(key, "")
		if b.summary.Name == "" {
			b.summary.Name = normalize.Text(m.Name)
			if b.summary.Name == "" {
				b.summary.Name = normalize.Text(m.Identity)
			}
		}
		b.addLogin(m.Identity)
		b.summary.HasMfa = true
		b.sources[SourceLabelMFA] = struct{}{}
	}

	out := make([]model.IdentitySummary, 0, len(order))
	for _, key := range order {
		b := people[key]
		b.summary.Sources = make([]string, 0, len(b.sources))
		for s := range b.sources {
			b.summary.Sources = append(b.summary.Sources, s)
		}
		sort.Strings(b.summary.Sources)
		out = append(out, b.summary)
	}
	return out, nil
}

// SortByName orders summaries case-insensitively by name, falling back to
// the employee identifier and then the joined logins.
func SortByName(list []model.IdentitySummary) {
	sortKey := func(s *model.IdentitySummary) string {
		switch {
		case s.Name != "":
			return strings.ToLower(s.Name)
		case s.EmployeeID != "":
			return strings.ToLower(s.EmployeeID)
		default:
			return strings.ToLower(strings.Join(s.Logins, ""))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return sortKey(&list[i]) < sortKey(&list[j])
	})
}
