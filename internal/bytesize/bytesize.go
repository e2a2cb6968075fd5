// Package bytesize parses and prints file size limits such as "50Mi".
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes. It decodes from plain numbers and from
// strings with a binary (Ki, Mi, Gi) or decimal (K, M, G) suffix, and
// encodes back to the shortest exact binary form.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
)

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z]*)$`)

var suffixes = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
}

// binaryUnits lists the units String tries, largest first.
var binaryUnits = []struct {
	suffix string
	size   ByteSize
}{
	{"Gi", GiB},
	{"Mi", MiB},
	{"Ki", KiB},
}

// ParseByteSize parses values like "50Mi", "1.5Gi", "200MB" or "1024".
// Suffixes are case-insensitive.
func ParseByteSize(s string) (ByteSize, error) {
	m := sizePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	unit, ok := suffixes[m[2]]
	if !ok {
		return 0, fmt.Errorf("invalid byte size %q: unknown unit %q", s, m[2])
	}

	if !strings.Contains(m[1], ".") {
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		return ByteSize(n) * unit, nil
	}

	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(f * float64(unit)), nil
}

// String returns the value in the largest binary unit that divides it
// exactly, or in bytes.
func (b ByteSize) String() string {
	for _, u := range binaryUnits {
		if b >= u.size && b%u.size == 0 {
			return strconv.FormatUint(uint64(b/u.size), 10) + u.suffix
		}
	}
	return strconv.FormatUint(uint64(b), 10)
}

// MarshalText writes the String form so saved configs stay readable.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// Int64 returns the size for APIs such as http.MaxBytesReader.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
