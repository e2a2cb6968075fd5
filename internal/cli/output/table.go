package output

import (
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
)

// Placeholder fills empty cells.
const Placeholder = "-"

// TableRenderer is data that can be shown as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes data as a borderless table. Columns holding only
// integers are right-aligned.
func PrintTable(w io.Writer, data TableRenderer) error {
	rows := data.Rows()
	t := borderless(w, "")
	t.SetHeader(data.Headers())
	t.SetColumnAlignment(columnAlignment(len(data.Headers()), rows))
	t.AppendBulk(rows)
	t.Render()
	return nil
}

// SimpleTable writes "key: value" lines with aligned values.
func SimpleTable(w io.Writer, pairs [][2]string) error {
	t := borderless(w, ":")
	t.SetAutoFormatHeaders(false)
	for _, p := range pairs {
		t.Append([]string{p[0], Cell(p[1])})
	}
	t.Render()
	return nil
}

func borderless(w io.Writer, sep string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetAutoWrapText(false)
	t.SetCenterSeparator("")
	t.SetRowSeparator("")
	t.SetColumnSeparator(sep)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetNoWhiteSpace(true)
	t.SetTablePadding("  ")
	return t
}

func columnAlignment(cols int, rows [][]string) []int {
	align := make([]int, cols)
	for c := range align {
		align[c] = tablewriter.ALIGN_LEFT
		if len(rows) > 0 && numericColumn(rows, c) {
			align[c] = tablewriter.ALIGN_RIGHT
		}
	}
	return align
}

func numericColumn(rows [][]string, c int) bool {
	for _, r := range rows {
		if c >= len(r) {
			return false
		}
		if _, err := strconv.Atoi(r[c]); err != nil {
			return false
		}
	}
	return true
}

// TableData is a TableRenderer built row by row.
type TableData struct {
	headers []string
	rows    [][]string
}

// NewTableData starts a table with the given headers.
func NewTableData(headers ...string) *TableData {
	return &TableData{headers: headers}
}

// AddRow appends a row. Empty cells become Placeholder.
func (t *TableData) AddRow(cells ...string) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = Cell(c)
	}
	t.rows = append(t.rows, row)
}

func (t *TableData) Headers() []string { return t.headers }
func (t *TableData) Rows() [][]string  { return t.rows }
func (t *TableData) Len() int          { return len(t.rows) }

// Cell returns s, or Placeholder when s is empty.
func Cell(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// Count formats an integer cell.
func Count(n int) string { return strconv.Itoa(n) }

// Truncate shortens s to max runes ending in an ellipsis, so long DNs and
// group lists stay within the terminal width.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string([]rune(s)[:max-1]) + "…"
}
