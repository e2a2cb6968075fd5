// Package audit runs security posture checks over directory accounts.
package audit

import (
	"strconv"
	"time"

	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/recon/keys"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// Severity ranks a finding category.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityInfo     Severity = "info"
)

// Check identifiers.
const (
	CheckPasswordNeverExpires    = "pwd_never_expires"
	CheckPasswordNotRequired     = "pwd_not_required"
	CheckReversibleEncryption    = "reversible_encryption"
	CheckNoPreauth               = "no_preauth"
	CheckUnconstrainedDelegation = "unconstrained_delegation"
	CheckProtocolTransition      = "protocol_transition"
	CheckKerberoastable          = "spn_kerberoasting"
	CheckLockedOut               = "locked_out"
	CheckMustChangePassword      = "must_change_password"
	CheckPasswordExpired         = "password_expired"
	CheckInactive                = "inactive_accounts"
	CheckStalePassword           = "stale_passwords"
	CheckDisabledWithGroups      = "disabled_with_groups"
)

// NeverLoggedOn is the last-logon text for accounts without any logon.
const (
	NeverLoggedOn = "never"
	Infinity      = "∞"
)

// Defaults for the age thresholds.
const (
	DefaultInactiveDays      = 90
	DefaultStalePasswordDays = 180
)

// Config holds the age thresholds in days.
type Config struct {
	InactiveDays      int `mapstructure:"inactive_days" yaml:"inactive_days" validate:"omitempty,min=1"`
	StalePasswordDays int `mapstructure:"stale_password_days" yaml:"stale_password_days" validate:"omitempty,min=1"`
}

func (c Config) withDefaults() Config {
	if c.InactiveDays <= 0 {
		c.InactiveDays = DefaultInactiveDays
	}
	if c.StalePasswordDays <= 0 {
		c.StalePasswordDays = DefaultStalePasswordDays
	}
	return c
}

// Item is one account flagged by a check.
type Item struct {
	Key               string `json:"key"`
	Login             string `json:"login"`
	DisplayName       string `json:"display_name"`
	Domain            string `json:"domain"`
	Enabled           string `json:"enabled"`
	AccountType       string `json:"account_type"`
	DistinguishedName string `json:"distinguished_name"`

	SPN             string `json:"spn,omitempty"`
	LastLogon       string `json:"last_logon,omitempty"`
	PasswordLastSet string `json:"password_last_set,omitempty"`
	DaysAgo         string `json:"days_ago,omitempty"`
	GroupCount      int    `json:"group_count,omitempty"`
}

// Finding is the result of one check.
type Finding struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Count    int      `json:"count"`
	Items    []Item   `json:"items"`
}

// Report is the full audit result.
type Report struct {
	TotalAccounts int       `json:"total_accounts"`
	TotalEnabled  int       `json:"total_enabled"`
	TotalIssues   int       `json:"total_issues"`
	CriticalCount int       `json:"critical_count"`
	HighCount     int       `json:"high_count"`
	Findings      []Finding `json:"findings"`
}

// Auditor runs every check with shared presentation settings.
type Auditor struct {
	cfg          Config
	classifier   *classify.Classifier
	domainLabels map[string]string
	now          func() time.Time
}

// New creates an Auditor. A nil classifier leaves account types empty.
func New(cfg Config, classifier *classify.Classifier, domainLabels map[string]string) *Auditor {
	return &Auditor{
		cfg:          cfg.withDefaults(),
		classifier:   classifier,
		domainLabels: domainLabels,
		now:          time.Now,
	}
}

type check struct {
	id       string
	title    string
	severity Severity
	run      func(a *Auditor, acc *model.DirectoryAccount) (Item, bool)
}

func flagCheck(onlyEnabled bool, flag func(*model.DirectoryAccount) normalize.Flag) func(*Auditor, *model.DirectoryAccount) (Item, bool) {
	return func(a *Auditor, acc *model.DirectoryAccount) (Item, bool) {
		if onlyEnabled && !acc.IsEnabled() {
			return Item{}, false
		}
		if !flag(acc).IsTrue() {
			return Item{}, false
		}
		return a.item(acc), true
	}
}

func (a *Auditor) checks() []check {
	return []check{
		{CheckPasswordNeverExpires, "Password never expires", SeverityHigh,
			flagCheck(true, func(x *model.DirectoryAccount) normalize.Flag { return x.PasswordNeverExpires })},
		{CheckPasswordNotRequired, "Password not required", SeverityCritical,
			flagCheck(true, func(x *model.DirectoryAccount) normalize.Flag { return x.PasswordNotRequired })},
		{CheckReversibleEncryption, "Reversible password encryption", SeverityCritical,
			flagCheck(false, func(x *model.DirectoryAccount) normalize.Flag { return x.ReversibleEncryption })},
		{CheckNoPreauth, "Kerberos pre-authentication disabled", SeverityCritical,
			flagCheck(true, func(x *model.DirectoryAccount) normalize.Flag { return x.NoPreauthRequired })},
		{CheckUnconstrainedDelegation, "Unconstrained delegation", SeverityHigh,
			flagCheck(false, func(x *model.DirectoryAccount) normalize.Flag { return x.TrustedForDelegation })},
		{CheckProtocolTransition, "Protocol transition (S4U)", SeverityMedium,
			flagCheck(false, func(x *model.DirectoryAccount) normalize.Flag { return x.TrustedToAuthForDelegation })},
		{CheckKerberoastable, "User accounts with SPN", SeverityHigh, (*Auditor).checkSPN},
		{CheckLockedOut, "Locked out", SeverityInfo,
			flagCheck(false, func(x *model.DirectoryAccount) normalize.Flag { return x.LockedOut })},
		{CheckMustChangePassword, "Must change password at next logon", SeverityInfo,
			flagCheck(true, func(x *model.DirectoryAccount) normalize.Flag { return x.MustChangePassword })},
		{CheckPasswordExpired, "Password expired", SeverityMedium,
			flagCheck(true, func(x *model.DirectoryAccount) normalize.Flag { return x.PasswordExpired })},
		{CheckInactive, "Inactive accounts (>" + strconv.Itoa(a.cfg.InactiveDays) + " days)", SeverityMedium, (*Auditor).checkInactive},
		{CheckStalePassword, "Stale passwords (>" + strconv.Itoa(a.cfg.StalePasswordDays) + " days)", SeverityMedium, (*Auditor).checkStalePassword},
		{CheckDisabledWithGroups, "Disabled accounts still in groups", SeverityMedium, (*Auditor).checkDisabledWithGroups},
	}
}

// Run evaluates every check over accounts.
func (a *Auditor) Run(accounts []model.DirectoryAccount) Report {
	rep := Report{TotalAccounts: len(accounts), Findings: []Finding{}}
	for i := range accounts {
		if accounts[i].IsEnabled() {
			rep.TotalEnabled++
		}
	}

	for _, c := range a.checks() {
		f := Finding{ID: c.id, Title: c.title, Severity: c.severity, Items: []Item{}}
		for i := range accounts {
			if item, hit := c.run(a, &accounts[i]); hit {
				f.Items = append(f.Items, item)
			}
		}
		f.Count = len(f.Items)
		rep.TotalIssues += f.Count
		switch c.severity {
		case SeverityCritical:
			rep.CriticalCount += f.Count
		case SeverityHigh:
			rep.HighCount += f.Count
		}
		rep.Findings = append(rep.Findings, f)
	}
	return rep
}

func (a *Auditor) item(acc *model.DirectoryAccount) Item {
	domain := acc.DomainSource
	if l, ok := a.domainLabels[domain]; ok && l != "" {
		domain = l
	}
	return Item{
		Key:               keys.IdentityKey(acc.EmployeeID, acc.Login, ""),
		Login:             normalize.Text(acc.Login),
		DisplayName:       normalize.Text(acc.DisplayName),
		Domain:            domain,
		Enabled:           acc.Enabled.Label(),
		AccountType:       a.classifier.Classify(acc.DomainSource, acc.DistinguishedName),
		DistinguishedName: normalize.Text(acc.DistinguishedName),
	}
}

func (a *Auditor) checkSPN(acc *model.DirectoryAccount) (Item, bool) {
	if !acc.IsEnabled() || len(acc.ServicePrincipalNames) == 0 {
		return Item{}, false
	}
	it := a.item(acc)
	it.SPN = joinNonEmpty(acc.ServicePrincipalNames)
	if it.SPN == "" {
		return Item{}, false
	}
	return it, true
}

func (a *Auditor) checkInactive(acc *model.DirectoryAccount) (Item, bool) {
	if !acc.IsEnabled() {
		return Item{}, false
	}
	now := a.now()
	if acc.LastLogon == nil || acc.LastLogon.IsZero() {
		it := a.item(acc)
		it.LastLogon = NeverLoggedOn
		it.DaysAgo = Infinity
		return it, true
	}
	cutoff := now.AddDate(0, 0, -a.cfg.InactiveDays)
	if !acc.LastLogon.Before(cutoff) {
		return Item{}, false
	}
	it := a.item(acc)
	it.LastLogon = normalize.FormatDate(acc.LastLogon)
	it.DaysAgo = strconv.Itoa(daysBetween(*acc.LastLogon, now))
	return it, true
}

func (a *Auditor) checkStalePassword(acc *model.DirectoryAccount) (Item, bool) {
	if !acc.IsEnabled() || acc.PasswordLastSet == nil || acc.PasswordLastSet.IsZero() {
		return Item{}, false
	}
	now := a.now()
	cutoff := now.AddDate(0, 0, -a.cfg.StalePasswordDays)
	if !acc.PasswordLastSet.Before(cutoff) {
		return Item{}, false
	}
	it := a.item(acc)
	it.PasswordLastSet = normalize.FormatDate(acc.PasswordLastSet)
	it.DaysAgo = strconv.Itoa(daysBetween(*acc.PasswordLastSet, now))
	return it, true
}

func (a *Auditor) checkDisabledWithGroups(acc *model.DirectoryAccount) (Item, bool) {
	if acc.IsEnabled() {
		return Item{}, false
	}
	n := 0
	for _, g := range acc.Groups {
		if normalize.Text(g) != "" {
			n++
		}
	}
	if n <= 1 {
		return Item{}, false
	}
	it := a.item(acc)
	it.GroupCount = n
	return it, true
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func joinNonEmpty(parts []string) string {
	out := ""
	for _, p := range parts {
		p = normalize.Text(p)
		if p == "" {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += p
	}
	return out
}
