package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

var dcPattern = regexp.MustCompile(`(?i)DC=([^,]+)`)

// ParseDirectory reads a directory export. Accounts are stamped with
// opts.Domain as their domain source; the DNS domain comes from a domain
// column or, failing that, the DC= parts of the distinguished name.
func ParseDirectory(r io.Reader, name string, opts Options) ([]model.DirectoryAccount, *Report, error) {
	delims := []rune{',', ';'}
	if opts.Delimiter != 0 {
		delims = []rune{opts.Delimiter}
	}
	t, format, err := open(r, name, delims)
	if err != nil {
		return nil, nil, err
	}
	cols := mapColumns(t.header, directoryColumns)
	report := newReport(string(model.SourceDirectory), name, format, t, cols)

	suffix := compactLower(opts.DNSuffix)
	if suffix != "" && !cols.has("distinguished_name") {
		report.warn("dn_suffix filter ignored: no distinguishedName column")
		suffix = ""
	}

	accounts := make([]model.DirectoryAccount, 0, len(t.rows))
	for _, row := range t.rows {
		get := func(field string) string { return cols.get(row, field) }

		dn := normalize.Text(get("distinguished_name"))
		if suffix != "" && !strings.Contains(compactLower(dn), suffix) {
			report.Skipped++
			continue
		}

		a := model.DirectoryAccount{
			DomainSource:      opts.Domain,
			Login:             normalize.Text(get("login")),
			Enabled:           normalize.ParseFlag(get("enabled")),
			DisplayName:       normalize.Text(get("display_name")),
			Email:             normalize.Text(get("email")),
			Phone:             normalize.Phone(get("phone")),
			Mobile:            normalize.Phone(get("mobile")),
			EmployeeID:        normalize.Text(get("employee_id")),
			Title:             normalize.Text(get("title")),
			Department:        normalize.Text(get("department")),
			Company:           normalize.Text(get("company")),
			Manager:           normalize.Text(get("manager")),
			DistinguishedName: dn,
			Location:          normalize.Text(get("location")),
			EmployeeNumber:    normalize.Text(get("employee_number")),
			Info:              normalize.Text(get("info")),
			Groups:            SplitList(get("groups")),

			ServicePrincipalNames:      SplitList(get("spn")),
			PasswordNeverExpires:       normalize.ParseFlag(get("password_never_expires")),
			PasswordNotRequired:        normalize.ParseFlag(get("password_not_required")),
			ReversibleEncryption:       normalize.ParseFlag(get("reversible_encryption")),
			NoPreauthRequired:          normalize.ParseFlag(get("no_preauth")),
			TrustedForDelegation:       normalize.ParseFlag(get("trusted_for_delegation")),
			TrustedToAuthForDelegation: normalize.ParseFlag(get("trusted_to_auth")),
			LockedOut:                  normalize.ParseFlag(get("locked_out")),
			MustChangePassword:         normalize.ParseFlag(get("must_change_password")),
			PasswordExpired:            normalize.ParseFlag(get("password_expired")),
		}

		if cols.has("domain") {
			a.Domain = normalize.Text(get("domain"))
		} else {
			a.Domain = DomainFromDN(dn)
		}

		a.PasswordLastSet, _ = parseDate(get("password_last_set"))
		a.AccountExpires, a.AccountNeverExpires = parseDate(get("account_expires"))
		a.LastLogon, _ = parseDate(get("last_logon"))
		a.Created, _ = parseDate(get("created"))
		a.Modified, _ = parseDate(get("modified"))

		accounts = append(accounts, a)
	}
	report.Rows = len(accounts)
	warnDuplicateLogins(report, accounts)

	logger.Debug("Directory file parsed",
		logger.Filename(name), logger.Domain(opts.Domain),
		logger.Rows(report.Rows), logger.Skipped(report.Skipped),
		"columns", report.Columns, "mapped", report.Mapped)
	return accounts, report, nil
}

// warnDuplicateLogins reports logins that occur more than once in a single
// domain export. Every row is kept; the store does not enforce uniqueness.
func warnDuplicateLogins(report *Report, accounts []model.DirectoryAccount) {
	counts := make(map[string]int, len(accounts))
	var order []string
	for i := range accounts {
		key := normalize.LoginKey(accounts[i].Login)
		if key == "" {
			continue
		}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	for _, key := range order {
		if n := counts[key]; n > 1 {
			report.warn(fmt.Sprintf("login %q appears %d times", key, n))
		}
	}
}

// ParseMFA reads an MFA registry export. CSV files are ';'-separated unless
// the header only splits on ','.
func ParseMFA(r io.Reader, name string) ([]model.MfaEnrollment, *Report, error) {
	t, format, err := open(r, name, []rune{';', ','})
	if err != nil {
		return nil, nil, err
	}
	cols := mapColumns(t.header, mfaColumns)
	report := newReport(string(model.SourceMFA), name, format, t, cols)

	out := make([]model.MfaEnrollment, 0, len(t.rows))
	for _, row := range t.rows {
		get := func(field string) string { return cols.get(row, field) }
		out = append(out, model.MfaEnrollment{
			Identity:       normalize.Text(get("identity")),
			Email:          normalize.Text(get("email")),
			Phones:         normalize.Text(get("phones")),
			Name:           normalize.Text(get("name")),
			Status:         normalize.Text(get("status")),
			IsEnrolled:     normalize.ParseFlag(get("is_enrolled")),
			Authenticators: normalize.Text(get("authenticators")),
			Groups:         normalize.Text(get("groups")),
			LastLogin:      normalize.Text(get("last_login")),
			CreatedAt:      normalize.Text(get("created_at")),
			ExternalID:     normalize.Text(get("external_id")),
			Ldap:           normalize.Text(get("ldap")),
			IsSpammer:      normalize.ParseFlag(get("is_spammer")),
		})
	}
	report.Rows = len(out)

	logger.Debug("MFA file parsed", logger.Filename(name), logger.Rows(report.Rows), "mapped", report.Mapped)
	return out, report, nil
}

// ParseHR reads an HR roster, usually a workbook.
func ParseHR(r io.Reader, name string) ([]model.HrRecord, *Report, error) {
	t, format, err := open(r, name, []rune{',', ';'})
	if err != nil {
		return nil, nil, err
	}
	cols := mapColumns(t.header, hrColumns)
	report := newReport(string(model.SourceHR), name, format, t, cols)

	out := make([]model.HrRecord, 0, len(t.rows))
	for _, row := range t.rows {
		get := func(field string) string { return cols.get(row, field) }
		out = append(out, model.HrRecord{
			EmployeeID:        normalize.Text(get("employee_id")),
			Name:              normalize.Text(get("name")),
			Email:             normalize.Text(get("email")),
			Phone:             normalize.Phone(get("phone")),
			Unit:              normalize.Text(get("unit")),
			Hub:               normalize.Text(get("hub")),
			EmploymentStatus:  normalize.Text(get("employment_status")),
			UnitManager:       normalize.Text(get("unit_manager")),
			WorkFormat:        normalize.Text(get("work_format")),
			HRBusinessPartner: normalize.Text(get("hr_bp")),
		})
	}
	report.Rows = len(out)

	logger.Debug("HR file parsed", logger.Filename(name), logger.Rows(report.Rows), "mapped", report.Mapped)
	return out, report, nil
}

func open(r io.Reader, name string, delims []rune) (*table, Format, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	t, err := readTable(r, format, delims...)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return t, format, nil
}

func newReport(source, name string, format Format, t *table, cols columnMap) *Report {
	r := &Report{
		Source:   source,
		Filename: name,
		Format:   format,
		Columns:  t.header,
		Mapped:   cols.mapped(),
		Missing:  cols.missing(source),
	}
	for _, f := range r.Missing {
		r.warn(fmt.Sprintf("column for %q not found", f))
	}
	return r
}

// DomainFromDN joins the DC= components of a distinguished name with dots.
func DomainFromDN(dn string) string {
	parts := dcPattern.FindAllStringSubmatch(dn, -1)
	if len(parts) == 0 {
		return ""
	}
	labels := make([]string, len(parts))
	for i, p := range parts {
		labels[i] = strings.TrimSpace(p[1])
	}
	return strings.Join(labels, ".")
}

// SplitList splits a ';'-separated cell, dropping empty items.
func SplitList(raw string) []string {
	text := normalize.Text(raw)
	if text == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(text, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseDate reads a textual timestamp or a spreadsheet serial number.
// never reports the explicit "never" token.
func parseDate(raw string) (t *time.Time, never bool) {
	parsed, ok, isNever := normalize.ParseDateTime(raw)
	switch {
	case ok:
		return &parsed, false
	case isNever:
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f <= 0 || f > maxExcelSerial {
		return nil, false
	}
	ts := normalize.FromExcelSerial(f)
	return &ts, false
}

func compactLower(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}
