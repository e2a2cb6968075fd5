// Package export renders the consolidated table as a spreadsheet or CSV and
// archives rendered reports to S3.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/marmos91/idrecon/pkg/recon/model"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SheetName is the worksheet holding the consolidated table.
const SheetName = "Consolidated"

// utf8BOM makes spreadsheet applications detect UTF-8 in CSV files.
const utf8BOM = "\xEF\xBB\xBF"

// ParseFormat parses a format name. An empty name selects XLSX.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename returns "<prefix>_<yyyymmdd_hhmmss>.<ext>".
func (f Format) Filename(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_150405"), f)
}

type column struct {
	header string
	value  func(*model.ConsolidatedRow) string
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// columns is the fixed column layout of both export formats.
var columns = []column{
	{"Source", func(r *model.ConsolidatedRow) string { return r.RowSource }},
	{"Domain", func(r *model.ConsolidatedRow) string { return r.Domain }},
	{"Login", func(r *model.ConsolidatedRow) string { return r.Login }},
	{"Account enabled", func(r *model.ConsolidatedRow) string { return r.AccountEnabled }},
	{"Password last set", func(r *model.ConsolidatedRow) string { return r.PasswordLastSet }},
	{"Account expires", func(r *model.ConsolidatedRow) string { return r.AccountExpires }},
	{"Employee ID", func(r *model.ConsolidatedRow) string { return r.EmployeeID }},
	{"Account type", func(r *model.ConsolidatedRow) string { return r.AccountType }},
	{"MFA enabled", func(r *model.ConsolidatedRow) string { return r.MfaEnabled }},
	{"MFA created", func(r *model.ConsolidatedRow) string { return r.MfaCreatedAt }},
	{"MFA last login", func(r *model.ConsolidatedRow) string { return r.MfaLastLogin }},
	{"MFA authenticators", func(r *model.ConsolidatedRow) string { return r.MfaAuthenticators }},
	{"Name (directory)", func(r *model.ConsolidatedRow) string { return r.NameDirectory }},
	{"Name (MFA)", func(r *model.ConsolidatedRow) string { return r.NameMfa }},
	{"Name (HR)", func(r *model.ConsolidatedRow) string { return r.NameHr }},
	{"Email (directory)", func(r *model.ConsolidatedRow) string { return r.EmailDirectory }},
	{"Email (MFA)", func(r *model.ConsolidatedRow) string { return r.EmailMfa }},
	{"Email (HR)", func(r *model.ConsolidatedRow) string { return r.EmailHr }},
	{"Phone (directory)", func(r *model.ConsolidatedRow) string { return r.PhoneDirectory }},
	{"Mobile (directory)", func(r *model.ConsolidatedRow) string { return r.MobileDirectory }},
	{"Phone (MFA)", func(r *model.ConsolidatedRow) string { return r.PhoneMfa }},
	{"Phone (HR)", func(r *model.ConsolidatedRow) string { return r.PhoneHr }},
	{"In MFA", func(r *model.ConsolidatedRow) string { return yesNo(r.HasMfa) }},
	{"In HR", func(r *model.ConsolidatedRow) string { return yesNo(r.HasHr) }},
	{"Discrepancies", func(r *model.ConsolidatedRow) string { return strings.Join(r.Discrepancies, "; ") }},
}

// Headers returns the export column headers in order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

func record(r *model.ConsolidatedRow) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.value(r)
	}
	return out
}

// Write renders rows in the given format.
func Write(w io.Writer, format Format, rows []model.ConsolidatedRow) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes a UTF-8 CSV with a BOM and ';' as the delimiter.
func WriteCSV(w io.Writer, rows []model.ConsolidatedRow) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Headers()); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a single sheet, a bold frozen header row
// and an autofilter over the table.
func WriteXLSX(w io.Writer, rows []model.ConsolidatedRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := record(&rows[i])
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(SheetName, "A1:"+last, nil); err != nil {
		return fmt.Errorf("set autofilter: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}
