package normalize

import (
	"encoding/json"
	"strings"
)

// FlagState is the recognized state of a tri-state flag.
type FlagState uint8

const (
	FlagUnknown FlagState = iota
	FlagTrue
	FlagFalse
)

// Presentation labels for flags.
const (
	LabelYes = "Yes"
	LabelNo  = "No"
)

var (
	trueTokens  = map[string]struct{}{"true": {}, "1": {}, "yes": {}, "y": {}, "да": {}}
	falseTokens = map[string]struct{}{"false": {}, "0": {}, "no": {}, "n": {}, "нет": {}}
)

// Flag is a three-valued boolean. Unrecognized input keeps its original
// text so it can be shown back verbatim.
type Flag struct {
	State FlagState
	Raw   string
}

// True is a recognized affirmative flag.
var True = Flag{State: FlagTrue}

// False is a recognized negative flag.
var False = Flag{State: FlagFalse}

// ParseFlag recognizes locale yes/no tokens case-insensitively.
func ParseFlag(v any) Flag {
	switch x := v.(type) {
	case bool:
		if x {
			return True
		}
		return False
	case Flag:
		return x
	}
	s := Text(v)
	low := strings.ToLower(s)
	if _, ok := trueTokens[low]; ok {
		return True
	}
	if _, ok := falseTokens[low]; ok {
		return False
	}
	return Flag{State: FlagUnknown, Raw: s}
}

// IsTrue reports whether the flag was recognized as affirmative.
func (f Flag) IsTrue() bool { return f.State == FlagTrue }

// IsFalse reports whether the flag was recognized as negative.
func (f Flag) IsFalse() bool { return f.State == FlagFalse }

// Label renders the flag as "Yes", "No" or the original text.
func (f Flag) Label() string {
	switch f.State {
	case FlagTrue:
		return LabelYes
	case FlagFalse:
		return LabelNo
	default:
		return f.Raw
	}
}

// String implements fmt.Stringer.
func (f Flag) String() string { return f.Label() }

// MarshalJSON renders the presentation label.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Label())
}

// UnmarshalJSON accepts either a JSON bool or a string token.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = ParseFlag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = ParseFlag(s)
	return nil
}

// BooleanLabel maps a raw value to "Yes", "No" or its trimmed text.
func BooleanLabel(v any) string {
	return ParseFlag(v).Label()
}
