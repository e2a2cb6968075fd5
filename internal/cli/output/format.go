// Package output renders CLI results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format selects how a Printer renders results.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json, yaml or yml, case-insensitively. An
// empty string means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case "yml":
		return FormatYAML, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: table, json, yaml)", s)
}

func (f Format) String() string { return string(f) }

// PrintJSON writes data as indented JSON without HTML escaping, so DNs and
// group names such as "R&D" print as they are.
func PrintJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// Printer writes results and status lines in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter returns a Printer writing to out. color enables ANSI colors on
// status lines.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// Format returns the printer's format.
func (p *Printer) Format() Format { return p.format }

// structured writes data as JSON or YAML. It reports false for table format.
func (p *Printer) structured(data any) (bool, error) {
	switch p.format {
	case FormatJSON:
		return true, PrintJSON(p.out, data)
	case FormatYAML:
		return true, PrintYAML(p.out, data)
	}
	return false, nil
}

// Print writes data. In table format a TableRenderer is drawn as a table and
// anything else falls back to JSON.
func (p *Printer) Print(data any) error {
	if done, err := p.structured(data); done {
		return err
	}
	if r, ok := data.(TableRenderer); ok {
		return PrintTable(p.out, r)
	}
	return PrintJSON(p.out, data)
}

// PrintList writes data as JSON or YAML, or draws table. In table format an
// empty list prints emptyMsg instead; structured formats always print data
// so scripts see "[]".
func (p *Printer) PrintList(data any, isEmpty bool, emptyMsg string, table TableRenderer) error {
	if done, err := p.structured(data); done {
		return err
	}
	if isEmpty {
		_, err := fmt.Fprintln(p.out, emptyMsg)
		return err
	}
	return PrintTable(p.out, table)
}

// Success prints msg in green.
func (p *Printer) Success(msg string) { p.status("32", msg) }

func (p *Printer) status(code, msg string) {
	if !p.color {
		_, _ = fmt.Fprintln(p.out, msg)
		return
	}
	_, _ = fmt.Fprintf(p.out, "\033[%sm%s\033[0m\n", code, msg)
}
