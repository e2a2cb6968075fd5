// Package ingest reads directory, MFA and HR exports (CSV, TXT or XLSX) into
// model records.
//
// Parsing is tolerant: unknown columns are ignored, missing columns leave
// fields empty and malformed values normalize to "". Only an unreadable
// file or a file without a header row is an error.
package ingest

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoHeader is returned when a file has no non-empty header row.
	ErrNoHeader = errors.New("file has no header row")
)

// Format identifies a tabular file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file name to its Format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Options tune directory parsing.
type Options struct {
	// Domain is the configured domain source stamped on every account.
	Domain string

	// DNSuffix, when set, keeps only accounts whose distinguished name
	// contains it (case-insensitive, spaces ignored).
	DNSuffix string

	// Delimiter overrides CSV delimiter detection.
	Delimiter rune
}

// Report describes what a parse found in the file.
type Report struct {
	Source   string   `json:"source"`
	Filename string   `json:"filename"`
	Format   Format   `json:"format"`
	Columns  []string `json:"columns"`
	Mapped   []string `json:"mapped"`
	Missing  []string `json:"missing"`
	Rows     int      `json:"rows"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Report) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
