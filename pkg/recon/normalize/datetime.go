package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// NeverToken marks a timestamp that intentionally has no value, such as an
// account that never expires or a user that never logged on.
const NeverToken = "never"

// ParseDateTime parses structured or textual timestamps.
//
// ok is false when no value could be parsed. never is true only for the
// explicit "never" token so callers can distinguish it from unknown.
func ParseDateTime(v any) (t time.Time, ok bool, never bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero(), false
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false, false
		}
		return *x, true, false
	}

	s := Text(v)
	if s == "" {
		return time.Time{}, false, false
	}
	if strings.EqualFold(s, NeverToken) {
		return time.Time{}, false, true
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return parsed, true, false
		}
	}
	return time.Time{}, false, false
}

// ParseTimePtr is ParseDateTime returning nil for unparseable input.
func ParseTimePtr(v any) *time.Time {
	t, ok, _ := ParseDateTime(v)
	if !ok {
		return nil
	}
	return &t
}

// FormatDate renders DD.MM.YYYY, or "" for a nil/zero time.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

// FormatDateTime renders DD.MM.YYYY HH:MM:SS, dropping the time at midnight.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("02.01.2006")
	}
	return t.Format("02.01.2006 15:04:05")
}

// excelEpoch is day zero of the 1900 spreadsheet date system, adjusted for
// the fictitious 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromExcelSerial converts a spreadsheet serial day number to a time.
func FromExcelSerial(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days)
	return t.Add(time.Duration(frac * float64(24*time.Hour)).Round(time.Second))
}
