// Package browse builds read-only navigation views over directory accounts:
// security groups per domain, the company/department hierarchy, the OU
// tree, and logins reused across domains.
package browse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// Placeholders for accounts missing a domain, company or department.
const (
	UnknownDomain     = "unknown"
	UnknownDomainName = "No domain"
	NoCompany         = "(no company)"
	NoDepartment      = "(no department)"
)

// Domain is a configured directory domain in display order.
type Domain struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Member is one account listed under a tree node.
type Member struct {
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	Email           string `json:"email"`
	Enabled         string `json:"enabled"`
	PasswordLastSet string `json:"password_last_set"`
	Title           string `json:"title"`
	Department      string `json:"department"`
	Company         string `json:"company"`
	Location        string `json:"location,omitempty"`
	Domain          string `json:"domain,omitempty"`
	EmployeeID      string `json:"employee_id"`
}

// Browser renders views in a fixed domain order.
type Browser struct {
	domains []Domain
	labels  map[string]string
}

// New creates a Browser for the given domains.
func New(domains []Domain) *Browser {
	b := &Browser{domains: domains, labels: make(map[string]string, len(domains))}
	for _, d := range domains {
		b.labels[d.Key] = d.Label
	}
	return b
}

func (b *Browser) label(key string) string {
	if l, ok := b.labels[key]; ok && l != "" {
		return l
	}
	return key
}

func (b *Browser) member(a *model.DirectoryAccount, withDomain bool) Member {
	m := Member{
		Login:           normalize.Text(a.Login),
		DisplayName:     normalize.Text(a.DisplayName),
		Email:           normalize.Text(a.Email),
		Enabled:         a.Enabled.Label(),
		PasswordLastSet: normalize.FormatDateTime(a.PasswordLastSet),
		Title:           normalize.Text(a.Title),
		Department:      normalize.Text(a.Department),
		Company:         normalize.Text(a.Company),
		EmployeeID:      normalize.Text(a.EmployeeID),
	}
	if withDomain {
		m.Location = normalize.Text(a.Location)
		m.Domain = b.label(a.DomainSource)
	}
	return m
}

func sortMembers(ms []Member) {
	sort.SliceStable(ms, func(i, j int) bool {
		return memberSortKey(&ms[i]) < memberSortKey(&ms[j])
	})
}

func memberSortKey(m *Member) string {
	if m.DisplayName != "" {
		return strings.ToLower(m.DisplayName)
	}
	return strings.ToLower(m.Login)
}

func countDomain(dir []model.DirectoryAccount, key string) int {
	n := 0
	for i := range dir {
		if dir[i].DomainSource == key {
			n++
		}
	}
	return n
}

// Count is a named counter in a tree.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, c := range m {
		out = append(out, Count{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if li != lj {
			return li < lj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GroupDomain lists the groups seen in one domain.
type GroupDomain struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Groups     []Count `json:"groups"`
	TotalUsers int     `json:"total_users"`
}

// GroupsTree counts group memberships per configured domain. Accounts whose
// domain is empty are collected under UnknownDomain, appended last.
func (b *Browser) GroupsTree(dir []model.DirectoryAccount) []GroupDomain {
	tree := make(map[string]map[string]int)
	for i := range dir {
		a := &dir[i]
		key := a.DomainSource
		if key == "" {
			key = UnknownDomain
		}
		for _, g := range cleanGroups(a.Groups) {
			if tree[key] == nil {
				tree[key] = make(map[string]int)
			}
			tree[key][g]++
		}
	}

	out := make([]GroupDomain, 0, len(b.domains)+1)
	for _, d := range b.domains {
		out = append(out, GroupDomain{
			Key:        d.Key,
			Label:      d.Label,
			Groups:     sortedCounts(tree[d.Key]),
			TotalUsers: countDomain(dir, d.Key),
		})
	}
	if groups, ok := tree[UnknownDomain]; ok {
		out = append(out, GroupDomain{
			Key:    UnknownDomain,
			Label:  UnknownDomainName,
			Groups: sortedCounts(groups),
		})
	}
	return out
}

// GroupMembers lists the accounts of domain that belong to group.
func (b *Browser) GroupMembers(dir []model.DirectoryAccount, domain, group string) []Member {
	out := []Member{}
	for i := range dir {
		a := &dir[i]
		if a.DomainSource != domain {
			continue
		}
		for _, g := range cleanGroups(a.Groups) {
			if g == group {
				out = append(out, b.member(a, false))
				break
			}
		}
	}
	sortMembers(out)
	return out
}

func cleanGroups(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g = normalize.Text(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// Company is one node of the organization tree.
type Company struct {
	Name        string  `json:"name"`
	Departments []Count `json:"departments"`
	Count       int     `json:"count"`
}

// OrgTree groups every account by company and department across domains.
func (b *Browser) OrgTree(dir []model.DirectoryAccount) []Company {
	tree := make(map[string]map[string]int)
	for i := range dir {
		comp := orDefault(dir[i].Company, NoCompany)
		dept := orDefault(dir[i].Department, NoDepartment)
		if tree[comp] == nil {
			tree[comp] = make(map[string]int)
		}
		tree[comp][dept]++
	}

	out := make([]Company, 0, len(tree))
	for name, depts := range tree {
		c := Company{Name: name, Departments: sortedCounts(depts)}
		for _, d := range c.Departments {
			c.Count += d.Count
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// OrgMembers lists accounts filtered by company and department. An empty
// filter matches everything; the placeholder names match empty values.
func (b *Browser) OrgMembers(dir []model.DirectoryAccount, company, department string) []Member {
	out := []Member{}
	for i := range dir {
		a := &dir[i]
		if company != "" && orDefault(a.Company, NoCompany) != company {
			continue
		}
		if department != "" && orDefault(a.Department, NoDepartment) != department {
			continue
		}
		out = append(out, b.member(a, true))
	}
	sortMembers(out)
	return out
}

func orDefault(v, def string) string {
	if v = normalize.Text(v); v != "" {
		return v
	}
	return def
}

// OUNode is one organizational unit. Count holds accounts placed directly
// in the unit, Total includes nested units.
type OUNode struct {
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	Total    int       `json:"total"`
	Children []*OUNode `json:"children"`
}

// StructureDomain is the OU tree of one domain.
type StructureDomain struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	TotalUsers int       `json:"total_users"`
	Tree       []*OUNode `json:"tree"`
}

var ouPattern = regexp.MustCompile(`(?i)OU=([^,]+)`)

// OUPath extracts the OU components of a distinguished name from root to
// leaf.
func OUPath(dn string) []string {
	dn = normalize.Text(dn)
	if dn == "" {
		return nil
	}
	matches := ouPattern.FindAllStringSubmatch(dn, -1)
	path := make([]string, 0, len(matches))
	for i := len(matches) - 1; i >= 0; i-- {
		path = append(path, matches[i][1])
	}
	return path
}

type ouBuild struct {
	count    int
	children map[string]*ouBuild
}

func (n *ouBuild) child(name string) *ouBuild {
	c, ok := n.children[name]
	if !ok {
		c = &ouBuild{children: make(map[string]*ouBuild)}
		n.children[name] = c
	}
	return c
}

func (n *ouBuild) render() ([]*OUNode, int) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })

	out := make([]*OUNode, 0, len(names))
	total := n.count
	for _, name := range names {
		c := n.children[name]
		kids, sub := c.render()
		out = append(out, &OUNode{Name: name, Count: c.count, Total: sub, Children: kids})
		total += sub
	}
	return out, total
}

// StructureTree builds the OU tree for each configured domain.
func (b *Browser) StructureTree(dir []model.DirectoryAccount) []StructureDomain {
	out := make([]StructureDomain, 0, len(b.domains))
	for _, d := range b.domains {
		root := &ouBuild{children: make(map[string]*ouBuild)}
		for i := range dir {
			if dir[i].DomainSource != d.Key {
				continue
			}
			path := OUPath(dir[i].DistinguishedName)
			if len(path) == 0 {
				continue
			}
			node := root
			for _, part := range path {
				node = node.child(part)
			}
			node.count++
		}
		tree, _ := root.render()
		out = append(out, StructureDomain{
			Key:        d.Key,
			Label:      d.Label,
			TotalUsers: countDomain(dir, d.Key),
			Tree:       tree,
		})
	}
	return out
}

// SplitOUPath parses a "/" separated OU path, dropping empty parts.
func SplitOUPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// StructureMembers lists accounts placed directly in the OU at path.
func (b *Browser) StructureMembers(dir []model.DirectoryAccount, domain string, path []string) []Member {
	out := []Member{}
	for i := range dir {
		a := &dir[i]
		if a.DomainSource != domain {
			continue
		}
		ou := OUPath(a.DistinguishedName)
		if len(ou) == 0 || !equalPath(ou, path) {
			continue
		}
		out = append(out, b.member(a, false))
	}
	sortMembers(out)
	return out
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LoginDuplicate is one account whose login exists in another domain too.
type LoginDuplicate struct {
	Login             string `json:"login"`
	Domain            string `json:"domain"`
	DomainSource      string `json:"domain_source"`
	DisplayName       string `json:"display_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Mobile            string `json:"mobile"`
	Enabled           string `json:"enabled"`
	PasswordLastSet   string `json:"password_last_set"`
	AccountExpires    string `json:"account_expires"`
	EmployeeID        string `json:"employee_id"`
	Title             string `json:"title"`
	Department        string `json:"department"`
	Company           string `json:"company"`
	DistinguishedName string `json:"distinguished_name"`
	DomainsCount      int    `json:"domains_count"`
}

// LoginDuplicates is the cross-domain login report.
type LoginDuplicates struct {
	Rows         []LoginDuplicate `json:"rows"`
	TotalRecords int              `json:"total_records"`
	UniqueLogins int              `json:"unique_logins"`
}

// LoginDuplicates reports every account whose login key appears in two or
// more distinct domains, ordered by login then domain label.
func (b *Browser) LoginDuplicates(dir []model.DirectoryAccount) LoginDuplicates {
	var order []string
	byLogin := make(map[string][]int)
	for i := range dir {
		k := normalize.LoginKey(dir[i].Login)
		if k == "" {
			continue
		}
		if _, ok := byLogin[k]; !ok {
			order = append(order, k)
		}
		byLogin[k] = append(byLogin[k], i)
	}

	res := LoginDuplicates{Rows: []LoginDuplicate{}}
	unique := make(map[string]struct{})
	for _, login := range order {
		idx := byLogin[login]
		domains := make(map[string]struct{})
		for _, i := range idx {
			domains[dir[i].DomainSource] = struct{}{}
		}
		if len(domains) < 2 {
			continue
		}
		unique[login] = struct{}{}
		for _, i := range idx {
			a := &dir[i]
			res.Rows = append(res.Rows, LoginDuplicate{
				Login:             normalize.Text(a.Login),
				Domain:            b.label(a.DomainSource),
				DomainSource:      a.DomainSource,
				DisplayName:       normalize.Text(a.DisplayName),
				Email:             normalize.Text(a.Email),
				Phone:             normalize.Text(a.Phone),
				Mobile:            normalize.Text(a.Mobile),
				Enabled:           a.Enabled.Label(),
				PasswordLastSet:   normalize.FormatDateTime(a.PasswordLastSet),
				AccountExpires:    a.AccountExpiresText(),
				EmployeeID:        normalize.Text(a.EmployeeID),
				Title:             normalize.Text(a.Title),
				Department:        normalize.Text(a.Department),
				Company:           normalize.Text(a.Company),
				DistinguishedName: normalize.Text(a.DistinguishedName),
				DomainsCount:      len(domains),
			})
		}
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		li, lj := strings.ToLower(res.Rows[i].Login), strings.ToLower(res.Rows[j].Login)
		if li != lj {
			return li < lj
		}
		return res.Rows[i].Domain < res.Rows[j].Domain
	})
	res.TotalRecords = len(res.Rows)
	res.UniqueLogins = len(unique)
	return res
}
