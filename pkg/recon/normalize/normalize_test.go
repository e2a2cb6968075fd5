package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"trimmed", "  ivanov ", "ivanov"},
		{"nan token", "nan", ""},
		{"None token", "None", ""},
		{"na token", "#N/A", ""},
		{"nan float", math.NaN(), ""},
		{"integral float", 12345.0, "12345"},
		{"fractional float", 1.5, "1.5"},
		{"int", 42, "42"},
		{"bool", true, "true"},
		{"time", time.Date(2026, 2, 13, 15, 53, 29, 0, time.UTC), "2026-02-13 15:53:29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"formatted national", "8 (900) 123-45-67", "+79001234567"},
		{"spreadsheet float text", "89001234567.0", "+79001234567"},
		{"spreadsheet float", 89001234567.0, "+79001234567"},
		{"empty", "", ""},
		{"nan", "nan", ""},
		{"zero", "0", ""},
		{"already international", "+7 900 123 45 67", "+79001234567"},
		{"other country passes through", "+44 20 7946 0958", "+442079460958"},
		{"short extension", "1234", "+1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.in))
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "bob@x.com", Email(" Bob@X.com "))
	assert.Equal(t, "ivanov", LoginKey(`IZHEVSK\Ivanov`))
	assert.Equal(t, "ivanov", LoginKey(`a\b\IVANOV`))
	assert.Equal(t, "ivanov", LoginKey("ivanov"))
	assert.Equal(t, "", LoginKey("None"))
	assert.Equal(t, "e1", IDKey(" E1 "))
	assert.Equal(t, "12345", IDKey(12345.0))
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "ivanov ivan", NameKey("  Ivanov   Ivan "))
	assert.Equal(t, "артем петров", NameKey("Артём  Петров"))
	assert.Equal(t, "", NameKey("nan"))
	assert.NotEqual(t, NameKey("Ivanov I."), NameKey("Ivanov Ivan"))

	// й keeps its breve, composed or not.
	assert.Equal(t, "сергей", NameKey("Сергей"))
	assert.Equal(t, NameKey("Сергей"), NameKey("Серге\u0438\u0306"))
	assert.NotEqual(t, NameKey("Сергей"), NameKey("Сергеи"))
}

func TestBooleanLabel(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"TRUE", LabelYes},
		{"1", LabelYes},
		{"Да", LabelYes},
		{"yes", LabelYes},
		{true, LabelYes},
		{"False", LabelNo},
		{"0", LabelNo},
		{"нет", LabelNo},
		{false, LabelNo},
		{" Pending ", "Pending"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BooleanLabel(tt.in), "input %v", tt.in)
	}
}

func TestFlagJSON(t *testing.T) {
	var f Flag
	require.NoError(t, f.UnmarshalJSON([]byte(`true`)))
	assert.True(t, f.IsTrue())

	require.NoError(t, f.UnmarshalJSON([]byte(`"maybe"`)))
	assert.Equal(t, FlagUnknown, f.State)
	assert.Equal(t, "maybe", f.Label())

	data, err := False.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"No"`, string(data))
}

func TestParseDateTime(t *testing.T) {
	t.Run("formats in order", func(t *testing.T) {
		cases := map[string]time.Time{
			"13.02.2026 15:53:29": time.Date(2026, 2, 13, 15, 53, 29, 0, time.Local),
			"13.02.2026 15:53":    time.Date(2026, 2, 13, 15, 53, 0, 0, time.Local),
			"13.02.2026":          time.Date(2026, 2, 13, 0, 0, 0, 0, time.Local),
			"02/13/2026 15:53:29": time.Date(2026, 2, 13, 15, 53, 29, 0, time.Local),
			"02/13/2026":          time.Date(2026, 2, 13, 0, 0, 0, 0, time.Local),
			"2026-02-13 15:53:29": time.Date(2026, 2, 13, 15, 53, 29, 0, time.Local),
			"2026-02-13":          time.Date(2026, 2, 13, 0, 0, 0, 0, time.Local),
		}
		for in, want := range cases {
			got, ok, never := ParseDateTime(in)
			require.True(t, ok, in)
			assert.False(t, never)
			assert.True(t, want.Equal(got), "%s: got %v", in, got)
		}
	})

	t.Run("never is flagged", func(t *testing.T) {
		_, ok, never := ParseDateTime("Never")
		assert.False(t, ok)
		assert.True(t, never)
	})

	t.Run("garbage is unknown", func(t *testing.T) {
		for _, in := range []any{"", "NaT", "tomorrow", nil} {
			_, ok, never := ParseDateTime(in)
			assert.False(t, ok)
			assert.False(t, never)
		}
	})
}

func TestFormatDateTime(t *testing.T) {
	midnight := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 2, 13, 9, 5, 7, 0, time.UTC)

	assert.Equal(t, "13.02.2026", FormatDate(&later))
	assert.Equal(t, "13.02.2026", FormatDateTime(&midnight))
	assert.Equal(t, "13.02.2026 09:05:07", FormatDateTime(&later))
	assert.Equal(t, "", FormatDateTime(nil))
}

func TestFromExcelSerial(t *testing.T) {
	got := FromExcelSerial(46066.5)
	assert.Equal(t, time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC), got)
}
