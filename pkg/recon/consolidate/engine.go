// Package consolidate builds the reconciliation table: a full outer join of
// directory accounts, MFA enrollments and HR records with discrepancy and
// coverage tags.
//
// Every comparison field is normalized once up front and matching uses hash
// indices, so a build is linear in the size of the inputs. Indices keep the
// first record seen for a key; later records sharing that key become orphan
// rows tagged as duplicates, which keeps every input record the subject of
// exactly one output row.
package consolidate

import (
	"strings"

	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

// Engine holds the presentation settings used when building rows.
type Engine struct {
	classifier   *classify.Classifier
	domainLabels map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier sets the account-type classifier. Without one, rows carry
// an empty account type.
func WithClassifier(c *classify.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithDomainLabels maps domain sources to display labels for the row source
// column.
func WithDomainLabels(labels map[string]string) Option {
	return func(e *Engine) { e.domainLabels = labels }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build is a convenience wrapper around a zero-configured Engine.
func Build(dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) ([]model.ConsolidatedRow, error) {
	return New().Build(dir, mfa, hr)
}

type dirView struct {
	loginKey string
	empKey   string
	email    string
	phone    string
	mobile   string
	name     string
	nameKey  string
}

type mfaView struct {
	loginKey string
	email    string
	phone    string
	name     string
	nameKey  string
}

type hrView struct {
	empKey  string
	email   string
	phone   string
	name    string
	nameKey string
}

// Build produces one row per directory account, then one row per MFA
// enrollment not attached to a directory account, then one row per HR
// record not attached to a directory account. Inputs are not modified.
func (e *Engine) Build(dir []model.DirectoryAccount, mfa []model.MfaEnrollment, hr []model.HrRecord) ([]model.ConsolidatedRow, error) {
	if dir == nil || mfa == nil || hr == nil {
		return nil, model.ErrInvalidInput
	}

	dv := make([]dirView, len(dir))
	for i := range dir {
		a := &dir[i]
		dv[i] = dirView{
			loginKey: normalize.LoginKey(a.Login),
			empKey:   normalize.IDKey(a.EmployeeID),
			email:    normalize.Email(a.Email),
			phone:    normalize.Phone(a.Phone),
			mobile:   normalize.Phone(a.Mobile),
			name:     normalize.Text(a.DisplayName),
			nameKey:  normalize.NameKey(a.DisplayName),
		}
	}
	mv := make([]mfaView, len(mfa))
	for i := range mfa {
		m := &mfa[i]
		mv[i] = mfaView{
			loginKey: normalize.LoginKey(m.Identity),
			email:    normalize.Email(m.Email),
			phone:    FirstPhone(m.Phones),
			name:     normalize.Text(m.Name),
			nameKey:  normalize.NameKey(m.Name),
		}
	}
	hv := make([]hrView, len(hr))
	for i := range hr {
		h := &hr[i]
		hv[i] = hrView{
			empKey:  normalize.IDKey(h.EmployeeID),
			email:   normalize.Email(h.Email),
			phone:   normalize.Phone(h.Phone),
			name:    normalize.Text(h.Name),
			nameKey: normalize.NameKey(h.Name),
		}
	}

	mfaByLogin := make(map[string]int, len(mfa))
	for i := range mv {
		if k := mv[i].loginKey; k != "" {
			if _, dup := mfaByLogin[k]; !dup {
				mfaByLogin[k] = i
			}
		}
	}
	hrByEmp := make(map[string]int, len(hr))
	hrByEmail := make(map[string]int, len(hr))
	for i := range hv {
		if k := hv[i].empKey; k != "" {
			if _, dup := hrByEmp[k]; !dup {
				hrByEmp[k] = i
			}
		}
		if k := hv[i].email; k != "" {
			if _, dup := hrByEmail[k]; !dup {
				hrByEmail[k] = i
			}
		}
	}
	dirLogins := make(map[string]struct{}, len(dir))
	dirEmps := make(map[string]struct{}, len(dir))
	for i := range dv {
		if dv[i].loginKey != "" {
			dirLogins[dv[i].loginKey] = struct{}{}
		}
		if dv[i].empKey != "" {
			dirEmps[dv[i].empKey] = struct{}{}
		}
	}

	rows := make([]model.ConsolidatedRow, 0, len(dir)+len(mfa)+len(hr))

	for i := range dir {
		mi, hasMfa := lookup(mfaByLogin, dv[i].loginKey)
		hi, hasHr := lookup(hrByEmp, dv[i].empKey)

		var m *model.MfaEnrollment
		var mvv *mfaView
		if hasMfa {
			m, mvv = &mfa[mi], &mv[mi]
		}
		var h *model.HrRecord
		var hvv *hrView
		if hasHr {
			h, hvv = &hr[hi], &hv[hi]
		}
		rows = append(rows, e.directoryRow(i, &dir[i], &dv[i], m, mvv, h, hvv))
	}

	for i := range mfa {
		k := mv[i].loginKey
		_, inDir := dirLogins[k]
		owner, indexed := mfaByLogin[k]
		if k != "" && inDir && indexed && owner == i {
			continue
		}
		var tags []string
		if k != "" && inDir {
			tags = append(tags, TagDuplicateMfa)
		} else {
			tags = append(tags, TagNoAccount)
		}

		var h *model.HrRecord
		var hvv *hrView
		if hi, ok := lookup(hrByEmail, mv[i].email); ok {
			h, hvv = &hr[hi], &hv[hi]
		} else {
			tags = append(tags, TagNotInHr)
		}
		rows = append(rows, mfaOrphanRow(i, &mfa[i], &mv[i], h, hvv, tags))
	}

	for i := range hr {
		k := hv[i].empKey
		_, inDir := dirEmps[k]
		owner := hrByEmp[k]
		if k != "" && inDir && owner == i {
			continue
		}
		tag := TagNoAccount
		if k != "" && inDir {
			tag = TagDuplicateEmployee
		}
		rows = append(rows, hrOrphanRow(i, &hr[i], &hv[i], tag))
	}

	return rows, nil
}

func lookup(idx map[string]int, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	i, ok := idx[key]
	return i, ok
}

func (e *Engine) directoryRow(idx int, a *model.DirectoryAccount, d *dirView, m *model.MfaEnrollment, mv *mfaView, h *model.HrRecord, hv *hrView) model.ConsolidatedRow {
	hasMfa, hasHr := m != nil, h != nil

	domain := normalize.Text(a.Domain)
	if domain == "" {
		domain = normalize.Text(a.DomainSource)
	}

	row := model.ConsolidatedRow{
		RowSource:       e.domainLabel(a.DomainSource),
		Domain:          domain,
		Login:           normalize.Text(a.Login),
		AccountEnabled:  a.Enabled.Label(),
		PasswordLastSet: normalize.FormatDateTime(a.PasswordLastSet),
		AccountExpires:  a.AccountExpiresText(),
		EmployeeID:      normalize.Text(a.EmployeeID),
		AccountType:     e.classifier.Classify(a.DomainSource, a.DistinguishedName),

		NameDirectory:   d.name,
		EmailDirectory:  d.email,
		PhoneDirectory:  d.phone,
		MobileDirectory: d.mobile,

		HasMfa:        hasMfa,
		HasHr:         hasHr,
		SubjectSource: model.SourceDirectory,
		SubjectIndex:  idx,
	}

	if hasMfa {
		row.MfaEnabled = mfaEnabled(m)
		row.MfaCreatedAt = normalize.Text(m.CreatedAt)
		row.MfaLastLogin = normalize.Text(m.LastLogin)
		row.MfaAuthenticators = normalize.Text(m.Authenticators)
		row.NameMfa = orSentinel(mv.name, NoName)
		row.EmailMfa = orSentinel(mv.email, NoEmail)
		row.PhoneMfa = orSentinel(mv.phone, NoPhone)
	} else {
		row.MfaEnabled = normalize.LabelNo
		row.MfaCreatedAt = NoMfa
		row.MfaLastLogin = NoMfa
		row.MfaAuthenticators = NoMfa
		row.NameMfa = NoMfa
		row.EmailMfa = NoMfa
		row.PhoneMfa = NoMfa
	}

	if hasHr {
		row.NameHr = orSentinel(hv.name, NoName)
		row.EmailHr = orSentinel(hv.email, NoEmail)
		row.PhoneHr = orSentinel(hv.phone, NoPhone)
	} else {
		row.NameHr = NotInHr
		row.EmailHr = NotInHr
		row.PhoneHr = NotInHr
	}

	var remarks []string
	if !hasHr {
		remarks = append(remarks, TagNotInHr)
	}
	row.Discrepancies = appendDiscrepancies(remarks, d, mv, hv)
	return row
}

// appendDiscrepancies evaluates every comparison rule in fixed order. A rule
// fires only when both compared values are non-empty.
func appendDiscrepancies(out []string, d *dirView, m *mfaView, h *hrView) []string {
	var mfaEmail, mfaPhone, mfaName, hrEmail, hrPhone, hrName string
	if m != nil {
		mfaEmail, mfaPhone, mfaName = m.email, m.phone, m.nameKey
	}
	if h != nil {
		hrEmail, hrPhone, hrName = h.email, h.phone, h.nameKey
	}

	differs := func(a, b string) bool { return a != "" && b != "" && a != b }
	notInDir := func(p string) bool {
		if p == "" || (d.phone == "" && d.mobile == "") {
			return false
		}
		return p != d.phone && p != d.mobile
	}

	if differs(d.email, mfaEmail) {
		out = append(out, EmailDirectoryMfa)
	}
	if differs(d.email, hrEmail) {
		out = append(out, EmailDirectoryHr)
	}
	if differs(mfaEmail, hrEmail) {
		out = append(out, EmailMfaHr)
	}
	if notInDir(mfaPhone) {
		out = append(out, PhoneMfaDirectory)
	}
	if notInDir(hrPhone) {
		out = append(out, PhoneHrDirectory)
	}
	if differs(mfaPhone, hrPhone) {
		out = append(out, PhoneMfaHr)
	}
	if differs(d.nameKey, mfaName) {
		out = append(out, NameDirectoryMfa)
	}
	if differs(d.nameKey, hrName) {
		out = append(out, NameDirectoryHr)
	}
	if differs(mfaName, hrName) {
		out = append(out, NameMfaHr)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func mfaOrphanRow(idx int, m *model.MfaEnrollment, mv *mfaView, h *model.HrRecord, hv *hrView, tags []string) model.ConsolidatedRow {
	row := model.ConsolidatedRow{
		RowSource:       RowSourceMFA,
		Domain:          NoAccount,
		Login:           normalize.Text(m.Identity),
		AccountEnabled:  NoAccount,
		PasswordLastSet: NoAccount,
		AccountExpires:  NoAccount,

		MfaEnabled:        mfaEnabled(m),
		MfaCreatedAt:      normalize.Text(m.CreatedAt),
		MfaLastLogin:      normalize.Text(m.LastLogin),
		MfaAuthenticators: normalize.Text(m.Authenticators),

		NameDirectory:   NoAccount,
		EmailDirectory:  NoAccount,
		PhoneDirectory:  NoAccount,
		MobileDirectory: NoAccount,
		NameMfa:         orSentinel(mv.name, NoName),
		EmailMfa:        orSentinel(mv.email, NoEmail),
		PhoneMfa:        orSentinel(mv.phone, NoPhone),

		HasMfa:        true,
		HasHr:         h != nil,
		Discrepancies: tags,
		SubjectSource: model.SourceMFA,
		SubjectIndex:  idx,
	}
	if h != nil {
		row.EmployeeID = normalize.Text(h.EmployeeID)
		row.NameHr = hv.name
		row.EmailHr = hv.email
		row.PhoneHr = hv.phone
	} else {
		row.NameHr = NotInHr
		row.EmailHr = NotInHr
		row.PhoneHr = NotInHr
	}
	return row
}

func hrOrphanRow(idx int, h *model.HrRecord, hv *hrView, tag string) model.ConsolidatedRow {
	return model.ConsolidatedRow{
		RowSource:       RowSourceHR,
		Domain:          NoAccount,
		Login:           NoAccount,
		AccountEnabled:  NoAccount,
		PasswordLastSet: NoAccount,
		AccountExpires:  NoAccount,
		EmployeeID:      normalize.Text(h.EmployeeID),

		NameDirectory:   NoAccount,
		EmailDirectory:  NoAccount,
		PhoneDirectory:  NoAccount,
		MobileDirectory: NoAccount,
		NameHr:          hv.name,
		EmailHr:         hv.email,
		PhoneHr:         hv.phone,

		HasHr:         true,
		Discrepancies: []string{tag},
		SubjectSource: model.SourceHR,
		SubjectIndex:  idx,
	}
}

func (e *Engine) domainLabel(source string) string {
	if l, ok := e.domainLabels[source]; ok && l != "" {
		return l
	}
	return RowSourceDirectory
}

// mfaEnabled is "Yes" only for an enrollment whose enrolled flag is set.
func mfaEnabled(m *model.MfaEnrollment) string {
	if m != nil && m.IsEnrolled.IsTrue() {
		return normalize.LabelYes
	}
	return normalize.LabelNo
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

// FirstPhone normalizes the first phone of a comma or semicolon separated
// list as exported by the MFA registry.
func FirstPhone(v string) string {
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := normalize.Phone(part); p != "" {
			return p
		}
	}
	return ""
}
