package consolidate

import (
	"testing"

	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() ([]model.DirectoryAccount, []model.MfaEnrollment, []model.HrRecord) {
	dir := []model.DirectoryAccount{
		{DomainSource: "izhevsk", Login: "ivanov", Email: "a@x.com", EmployeeID: "E1", DisplayName: "Ivanov I.", Enabled: normalize.True},
		{DomainSource: "moscow", Login: `MSK\petrov`, Email: "p@x.com", Phone: "8 900 111 22 33", DisplayName: "Petrov Petr"},
		{DomainSource: "kostroma", Login: "sidorov", DisplayName: "Sidorov"},
	}
	mfa := []model.MfaEnrollment{
		{Identity: "ivanov", Email: "a@x.com", Name: "Ivanov I.", IsEnrolled: normalize.True},
		{Identity: "petrov", Phones: "+79001112233", Name: "Petrov Petr"},
		{Identity: "ghost", Email: "ghost@x.com"},
		{Identity: "lonely"},
	}
	hr := []model.HrRecord{
		{EmployeeID: "E1", Email: "b@x.com", Name: "Ivanov Ivan"},
		{EmployeeID: "E9", Email: "ghost@x.com", Name: "Ghost"},
		{Name: "No Id"},
	}
	return dir, mfa, hr
}

func TestBuildEndToEnd(t *testing.T) {
	dir := []model.DirectoryAccount{{DomainSource: "izhevsk", Login: "ivanov", Email: "a@x.com", EmployeeID: "E1", DisplayName: "Ivanov I."}}
	mfa := []model.MfaEnrollment{{Identity: "ivanov", Email: "a@x.com", Name: "Ivanov I."}}
	hr := []model.HrRecord{{EmployeeID: "E1", Email: "b@x.com", Name: "Ivanov Ivan"}}

	rows, err := Build(dir, mfa, hr)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.True(t, row.HasMfa)
	assert.True(t, row.HasHr)
	assert.Contains(t, row.Discrepancies, EmailDirectoryHr)
	assert.Contains(t, row.Discrepancies, NameDirectoryHr)
	assert.NotContains(t, row.Discrepancies, EmailDirectoryMfa)
	assert.NotContains(t, row.Discrepancies, TagNotInHr)
}

func TestBuildNilInput(t *testing.T) {
	_, err := Build(nil, []model.MfaEnrollment{}, []model.HrRecord{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = Build([]model.DirectoryAccount{}, nil, []model.HrRecord{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = Build([]model.DirectoryAccount{}, []model.MfaEnrollment{}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	rows, err := Build([]model.DirectoryAccount{}, []model.MfaEnrollment{}, []model.HrRecord{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildIdempotent(t *testing.T) {
	dir, mfa, hr := fixture()
	first, err := Build(dir, mfa, hr)
	require.NoError(t, err)
	second, err := Build(dir, mfa, hr)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	d2, m2, h2 := fixture()
	assert.Equal(t, d2, dir, "inputs must not be mutated")
	assert.Equal(t, m2, mfa)
	assert.Equal(t, h2, hr)
}

func TestBuildCoverage(t *testing.T) {
	dir, mfa, hr := fixture()
	// duplicates sharing keys
	mfa = append(mfa, model.MfaEnrollment{Identity: `IZH\Ivanov`})
	hr = append(hr, model.HrRecord{EmployeeID: "e1", Name: "Stale Copy"})

	rows, err := Build(dir, mfa, hr)
	require.NoError(t, err)

	subjects := map[model.SourceKind]map[int]int{
		model.SourceDirectory: {},
		model.SourceMFA:       {},
		model.SourceHR:        {},
	}
	for _, r := range rows {
		subjects[r.SubjectSource][r.SubjectIndex]++
	}

	for i := range dir {
		assert.Equal(t, 1, subjects[model.SourceDirectory][i], "directory %d", i)
	}
	// Every MFA record is either attached to a directory row (its index owner)
	// or the subject of exactly one orphan row.
	assert.Equal(t, 0, subjects[model.SourceMFA][0])
	assert.Equal(t, 0, subjects[model.SourceMFA][1])
	for _, i := range []int{2, 3, 4} {
		assert.Equal(t, 1, subjects[model.SourceMFA][i], "mfa %d", i)
	}
	assert.Equal(t, 0, subjects[model.SourceHR][0])
	for _, i := range []int{1, 2, 3} {
		assert.Equal(t, 1, subjects[model.SourceHR][i], "hr %d", i)
	}
	assert.Len(t, rows, len(dir)+3+3)
}

func TestBuildOrderAndOrphans(t *testing.T) {
	dir, mfa, hr := fixture()
	mfa = append(mfa, model.MfaEnrollment{Identity: "IVANOV"})
	hr = append(hr, model.HrRecord{EmployeeID: "E1", Name: "Again"})

	rows, err := Build(dir, mfa, hr)
	require.NoError(t, err)

	var sources []model.SourceKind
	for _, r := range rows {
		sources = append(sources, r.SubjectSource)
	}
	assert.Equal(t, []model.SourceKind{
		model.SourceDirectory, model.SourceDirectory, model.SourceDirectory,
		model.SourceMFA, model.SourceMFA, model.SourceMFA,
		model.SourceHR, model.SourceHR, model.SourceHR,
	}, sources)

	ghost := rows[3]
	assert.Equal(t, "ghost", ghost.Login)
	assert.Equal(t, RowSourceMFA, ghost.RowSource)
	assert.Equal(t, NoAccount, ghost.Domain)
	assert.True(t, ghost.HasHr, "HR fallback by email")
	assert.Equal(t, "E9", ghost.EmployeeID)
	assert.Equal(t, []string{TagNoAccount}, ghost.Discrepancies)

	lonely := rows[4]
	assert.Equal(t, []string{TagNoAccount, TagNotInHr}, lonely.Discrepancies)
	assert.Equal(t, NoEmail, lonely.EmailMfa)
	assert.Equal(t, NotInHr, lonely.NameHr)

	dupMfa := rows[5]
	assert.Equal(t, []string{TagDuplicateMfa, TagNotInHr}, dupMfa.Discrepancies)

	assert.Equal(t, "E9", rows[6].EmployeeID)
	assert.Equal(t, []string{TagNoAccount}, rows[6].Discrepancies)
	assert.Equal(t, NoAccount, rows[6].Login)
	assert.Equal(t, "No Id", rows[7].NameHr)
	assert.Equal(t, []string{TagDuplicateEmployee}, rows[8].Discrepancies)
}

func TestDirectoryRowSentinels(t *testing.T) {
	dir, mfa, hr := fixture()
	rows, err := Build(dir, mfa, hr)
	require.NoError(t, err)

	petrov := rows[1]
	assert.True(t, petrov.HasMfa)
	assert.False(t, petrov.HasHr)
	assert.Equal(t, NoEmail, petrov.EmailMfa)
	assert.Equal(t, NotInHr, petrov.EmailHr)
	assert.Equal(t, normalize.LabelNo, petrov.MfaEnabled)
	assert.Equal(t, []string{TagNotInHr}, petrov.Discrepancies)

	sidorov := rows[2]
	assert.False(t, sidorov.HasMfa)
	assert.Equal(t, NoMfa, sidorov.EmailMfa)
	assert.Equal(t, NoMfa, sidorov.MfaCreatedAt)

	ivanov := rows[0]
	assert.Equal(t, normalize.LabelYes, ivanov.MfaEnabled)
	assert.Equal(t, normalize.LabelYes, ivanov.AccountEnabled)
}

func TestDiscrepancySymmetry(t *testing.T) {
	tests := []struct {
		name     string
		dirEmail string
		hrEmail  string
		flagged  bool
	}{
		{"case differences collapse", "Bob@X.com", "bob@x.com", false},
		{"different domain", "bob@x.com", "bob@y.com", true},
		{"empty directory side", "", "bob@y.com", false},
		{"empty hr side", "bob@x.com", "nan", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := []model.DirectoryAccount{{Login: "bob", EmployeeID: "E2", Email: tt.dirEmail}}
			hr := []model.HrRecord{{EmployeeID: "E2", Email: tt.hrEmail}}
			rows, err := Build(dir, []model.MfaEnrollment{}, hr)
			require.NoError(t, err)
			if tt.flagged {
				assert.Contains(t, rows[0].Discrepancies, EmailDirectoryHr)
			} else {
				assert.NotContains(t, rows[0].Discrepancies, EmailDirectoryHr)
			}
		})
	}

	t.Run("mfa and hr pair", func(t *testing.T) {
		dir := []model.DirectoryAccount{{Login: "bob", EmployeeID: "E2"}}
		mfa := []model.MfaEnrollment{{Identity: "bob", Email: "BOB@x.com", Name: "Bob  Smith"}}
		hr := []model.HrRecord{{EmployeeID: "E2", Email: "bob@x.com", Name: "bob smith"}}
		rows, err := Build(dir, mfa, hr)
		require.NoError(t, err)
		assert.Empty(t, rows[0].Discrepancies)
	})
}

func TestPhoneCrossCheck(t *testing.T) {
	build := func(dirPhone, dirMobile, mfaPhone string) []string {
		dir := []model.DirectoryAccount{{Login: "u", EmployeeID: "E3", Phone: dirPhone, Mobile: dirMobile}}
		mfa := []model.MfaEnrollment{{Identity: "u", Phones: mfaPhone}}
		hr := []model.HrRecord{{EmployeeID: "E3"}}
		rows, err := Build(dir, mfa, hr)
		require.NoError(t, err)
		return rows[0].Discrepancies
	}

	assert.NotContains(t, build("+79001234567", "", "+79001234567"), PhoneMfaDirectory)
	assert.Contains(t, build("+79001234567", "", "+79007654321"), PhoneMfaDirectory)
	assert.NotContains(t, build("+74950000000", "89001234567", "8 (900) 123-45-67"), PhoneMfaDirectory, "mobile counts")
	assert.NotContains(t, build("", "", "+79007654321"), PhoneMfaDirectory, "no directory phone")
}

func TestKeyPriority(t *testing.T) {
	dir := []model.DirectoryAccount{{DomainSource: "izhevsk", Login: "ivanov", EmployeeID: "E1", Email: "ivanov@x.com"}}
	hr := []model.HrRecord{
		{EmployeeID: "X7", Email: "ivanov@x.com", Name: "Someone Else"},
		{EmployeeID: "e1", Email: "old@x.com", Name: "Ivanov Ivan"},
	}
	rows, err := Build(dir, []model.MfaEnrollment{}, hr)
	require.NoError(t, err)

	require.True(t, rows[0].HasHr)
	assert.Equal(t, "old@x.com", rows[0].EmailHr, "matched by employee id, not email")
	assert.Equal(t, []string{EmailDirectoryHr}, rows[0].Discrepancies)
}

func TestEngineOptions(t *testing.T) {
	dir := []model.DirectoryAccount{{DomainSource: "izhevsk", Login: "svc1", DistinguishedName: "CN=svc1,OU=Service,DC=a"}}
	e := New(
		WithClassifier(classify.New(nil, classify.TypeUnknown)),
		WithDomainLabels(map[string]string{"izhevsk": "Izhevsk"}),
	)
	rows, err := e.Build(dir, []model.MfaEnrollment{}, []model.HrRecord{})
	require.NoError(t, err)
	assert.Equal(t, "Izhevsk", rows[0].RowSource)
	assert.Equal(t, classify.TypeService, rows[0].AccountType)
	assert.Equal(t, "izhevsk", rows[0].Domain)
}

func TestFirstPhone(t *testing.T) {
	assert.Equal(t, "+79001234567", FirstPhone(" , 8 900 123 45 67; +7 911 000 00 00"))
	assert.Equal(t, "", FirstPhone("nan"))
}
