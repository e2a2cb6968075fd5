package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// table is a header row plus data rows, each padded to the header width.
type table struct {
	header []string
	rows   [][]string
}

// readTable reads a CSV with the first delimiter in delims that yields more
// than one header column, or the first sheet of a workbook.
func readTable(r io.Reader, format Format, delims ...rune) (*table, error) {
	var records [][]string
	var err error
	switch format {
	case FormatCSV:
		records, err = readCSV(r, delims)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return newTable(records)
}

func newTable(records [][]string) (*table, error) {
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	t := &table{header: make([]string, len(records[start]))}
	for i, h := range records[start] {
		t.header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(t.header))
		copy(row, rec)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// decodeText converts raw file bytes to UTF-8. A byte order mark selects
// UTF-8 or UTF-16; otherwise valid UTF-8 is kept and anything else is read
// as Windows-1251.
func decodeText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}),
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}),
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		return out, err
	case utf8.Valid(data):
		return data, nil
	default:
		return charmap.Windows1251.NewDecoder().Bytes(data)
	}
}

func readCSV(r io.Reader, delims []rune) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}
	if len(delims) == 0 {
		delims = []rune{','}
	}

	var first [][]string
	for i, d := range delims {
		records, err := parseCSV(data, d)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = records
		}
		if headerWidth(records) > 1 {
			return records, nil
		}
	}
	return first, nil
}

func parseCSV(data []byte, delim rune) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed lines are dropped, matching a lenient spreadsheet import.
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func headerWidth(records [][]string) int {
	for _, rec := range records {
		if !blank(rec) {
			return len(rec)
		}
	}
	return 0
}

// readXLSX returns the raw cell values of the first sheet. Raw values keep
// dates as serial numbers so the caller can convert them.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
