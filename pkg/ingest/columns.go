package ingest

import (
	"sort"
	"strings"
)

// column is one target field and the header names that may carry it, in
// order of preference.
type column struct {
	field   string
	aliases []string
	date    bool
}

var directoryColumns = []column{
	{field: "login", aliases: []string{"samaccountname", "login", "sam_account_name", "Логин"}},
	{field: "domain", aliases: []string{"Domain", "Домен", "DomainName"}},
	{field: "enabled", aliases: []string{"enabled", "Включен"}},
	{field: "display_name", aliases: []string{"DisplayName", "Display name", "Name", "ФИО"}},
	{field: "email", aliases: []string{"mail", "Email", "EmailAddress", "E-mail"}},
	{field: "phone", aliases: []string{"telephoneNumber", "Phone", "OfficePhone", "Телефон"}},
	{field: "mobile", aliases: []string{"mobile", "MobilePhone", "Мобильный"}},
	{field: "employee_id", aliases: []string{"StaffUUID", "extensionAttribute1", "employeeID", "staff_uuid"}},
	{field: "title", aliases: []string{"title", "Должность"}},
	{field: "department", aliases: []string{"department", "Отдел"}},
	{field: "company", aliases: []string{"company", "Компания"}},
	{field: "manager", aliases: []string{"manager"}},
	{field: "distinguished_name", aliases: []string{"distinguishedName", "distinguished_name", "DN"}},
	{field: "location", aliases: []string{"l", "City", "location", "Город"}},
	{field: "employee_number", aliases: []string{"employeeNumber", "employee_number"}},
	{field: "info", aliases: []string{"info", "Notes"}},
	{field: "groups", aliases: []string{"groups", "memberOf", "Группы"}},
	{field: "spn", aliases: []string{"servicePrincipalName", "ServicePrincipalNames", "SPN"}},
	{field: "password_last_set", aliases: []string{"PasswordLastSet", "pwdLastSet"}, date: true},
	{field: "account_expires", aliases: []string{"expiryDate", "AccountExpirationDate", "AccountExpires"}, date: true},
	{field: "last_logon", aliases: []string{"LastLogonDate", "lastLogonTimestamp", "LastLogon"}, date: true},
	{field: "created", aliases: []string{"whenCreated", "Created"}, date: true},
	{field: "modified", aliases: []string{"whenChanged", "Modified"}, date: true},
	{field: "password_never_expires", aliases: []string{"PasswordNeverExpires"}},
	{field: "password_not_required", aliases: []string{"PasswordNotRequired"}},
	{field: "reversible_encryption", aliases: []string{"AllowReversiblePasswordEncryption", "ReversibleEncryption"}},
	{field: "no_preauth", aliases: []string{"DoesNotRequirePreAuth", "NoPreauthRequired"}},
	{field: "trusted_for_delegation", aliases: []string{"TrustedForDelegation"}},
	{field: "trusted_to_auth", aliases: []string{"TrustedToAuthForDelegation"}},
	{field: "locked_out", aliases: []string{"LockedOut"}},
	{field: "must_change_password", aliases: []string{"MustChangePassword", "ChangePasswordAtLogon"}},
	{field: "password_expired", aliases: []string{"PasswordExpired"}},
}

var mfaColumns = []column{
	{field: "identity", aliases: []string{"Identity", "Login", "UserName"}},
	{field: "email", aliases: []string{"Email", "E-mail", "Mail"}},
	{field: "name", aliases: []string{"Name", "FullName", "ФИО"}},
	{field: "phones", aliases: []string{"Phones", "Phone", "Телефон"}},
	{field: "last_login", aliases: []string{"LastLoginDate", "LastLogin"}},
	{field: "created_at", aliases: []string{"CreatedAt", "Created"}},
	{field: "status", aliases: []string{"Status"}},
	{field: "is_enrolled", aliases: []string{"IsEnrolled", "Enrolled"}},
	{field: "authenticators", aliases: []string{"Authenticators"}},
	{field: "groups", aliases: []string{"Groups"}},
	{field: "is_spammer", aliases: []string{"IsSpammer"}},
	{field: "external_id", aliases: []string{"Id", "ExternalId"}},
	{field: "ldap", aliases: []string{"Ldap"}},
}

var hrColumns = []column{
	{field: "employee_id", aliases: []string{"UUID", "StaffUUID", "staff_uuid"}},
	{field: "name", aliases: []string{"Employee", "FIO", "ФИО", "Name", "ФИО сотрудника"}},
	{field: "email", aliases: []string{"E-mail", "Email", "Mail"}},
	{field: "phone", aliases: []string{"Телефон", "Phone", "Мобильный", "mobile"}},
	{field: "unit", aliases: []string{"Unit", "Подразделение"}},
	{field: "hub", aliases: []string{"Hub"}},
	{field: "employment_status", aliases: []string{"Employment Status", "Статус"}},
	{field: "unit_manager", aliases: []string{"Unit Manager (RM)", "Unit Manager"}},
	{field: "work_format", aliases: []string{"Work Format", "Формат работы"}},
	{field: "hr_bp", aliases: []string{"HR BP", "HRBP"}},
}

// requiredFields are reported as missing when absent. Parsing still
// succeeds without them.
var requiredFields = map[string][]string{
	"directory": {"login"},
	"mfa":       {"identity"},
	"hr":        {"employee_id", "name"},
}

// columnMap resolves target fields to header positions.
type columnMap struct {
	index map[string]int
	dates map[string]bool
}

func mapColumns(header []string, columns []column) columnMap {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		k := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[k]; !dup && k != "" {
			pos[k] = i
		}
	}

	m := columnMap{index: make(map[string]int), dates: make(map[string]bool)}
	for _, c := range columns {
		for _, alias := range c.aliases {
			if i, ok := pos[strings.ToLower(alias)]; ok {
				m.index[c.field] = i
				m.dates[c.field] = c.date
				break
			}
		}
	}
	return m
}

func (m columnMap) has(field string) bool {
	_, ok := m.index[field]
	return ok
}

// get returns the raw cell for field, or "" when the column is absent.
func (m columnMap) get(row []string, field string) string {
	i, ok := m.index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (m columnMap) mapped() []string {
	out := make([]string, 0, len(m.index))
	for f := range m.index {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (m columnMap) missing(source string) []string {
	out := []string{}
	for _, f := range requiredFields[source] {
		if !m.has(f) {
			out = append(out, f)
		}
	}
	return out
}
