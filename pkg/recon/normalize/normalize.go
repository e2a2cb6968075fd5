// Package normalize turns raw field values from directory exports, MFA
// registries and HR rosters into canonical comparable strings.
//
// Every function here is total: malformed input normalizes to the empty
// string (or a zero time), never to an error. Callers treat "" as unknown.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// sentinels are spreadsheet/DataFrame artifacts that mean "no value".
var sentinels = map[string]struct{}{
	"nan":  {},
	"none": {},
	"#n/a": {},
	"nat":  {},
}

// Text converts any scalar to a trimmed string.
//
// Integral floats render without a fractional part so that "12345.0"
// artifacts from spreadsheet ingestion compare equal to "12345".
func Text(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case *string:
		if x == nil {
			return ""
		}
		s = *x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04:05")
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}

	s = strings.TrimSpace(s)
	if _, ok := sentinels[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e18 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Phone reduces a phone number to "+<digits>".
//
// Non-digits are stripped; an empty result or a lone "0" yields "". An
// 11-digit number starting with the national trunk prefix 8 is rewritten to
// the country code 7. No other validation is performed.
func Phone(v any) string {
	raw := Text(v)
	if raw == "" {
		return ""
	}
	raw = strings.TrimSuffix(raw, ".0")

	var b strings.Builder
	b.Grow(len(raw) + 1)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || digits == "0" {
		return ""
	}
	if len(digits) == 11 && digits[0] == '8' {
		digits = "7" + digits[1:]
	}
	return "+" + digits
}

// Email lower-cases the normalized text.
func Email(v any) string {
	return strings.ToLower(Text(v))
}

// LoginKey returns the case-insensitive login with any DOMAIN\ prefix removed.
func LoginKey(v any) string {
	k := Text(v)
	if i := strings.LastIndexByte(k, '\\'); i >= 0 {
		k = k[i+1:]
	}
	return strings.ToLower(strings.TrimSpace(k))
}

// IDKey normalizes an employee identifier.
func IDKey(v any) string {
	return strings.ToLower(Text(v))
}

// NameKey normalizes a person's full name for equality comparison: NFC,
// lower case, ё folded to е, whitespace runs collapsed.
func NameKey(v any) string {
	s := Text(v)
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		if r == 'ё' {
			r = 'е'
		}
		b.WriteRune(r)
	}
	return b.String()
}
