package views

import (
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/recon/browse"
)

// MemberList renders accounts listed under a tree node.
type MemberList []browse.Member

// Headers implements TableRenderer.
func (ml MemberList) Headers() []string {
	return []string{"LOGIN", "DOMAIN", "NAME", "EMAIL", "ENABLED", "TITLE", "DEPARTMENT"}
}

// Rows implements TableRenderer.
func (ml MemberList) Rows() [][]string {
	rows := make([][]string, 0, len(ml))
	for _, m := range ml {
		rows = append(rows, []string{
			m.Login,
			output.Cell(m.Domain),
			output.Cell(output.Truncate(m.DisplayName, 30)),
			output.Cell(m.Email),
			output.Cell(m.Enabled),
			output.Cell(output.Truncate(m.Title, 30)),
			output.Cell(output.Truncate(m.Department, 30)),
		})
	}
	return rows
}

// CountList renders named counters.
type CountList []browse.Count

// Headers implements TableRenderer.
func (cl CountList) Headers() []string {
	return []string{"NAME", "ACCOUNTS"}
}

// Rows implements TableRenderer.
func (cl CountList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		rows = append(rows, []string{c.Name, output.Count(c.Count)})
	}
	return rows
}
