package display

import (
	"strings"
	"unicode/utf8"
)

// Row is one table line. Style decorates the whole line after padding.
type Row struct {
	Cells []string
	Style func(string) string
}

// Table renders aligned columns.
type Table struct {
	headers []string
	rows    []Row
}

// NewTable creates a new table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends an undecorated row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, Row{Cells: cells})
}

// AddStyledRow appends a row rendered through style.
func (t *Table) AddStyledRow(style func(string) string, cells ...string) {
	t.rows = append(t.rows, Row{Cells: cells, Style: style})
}

// Render produces the formatted table with a two-space indent. Widths are
// measured in runes so Arabic names line up.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row.Cells {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for _, row := range t.rows {
		line := formatRow(row.Cells, widths)
		if row.Style != nil {
			line = row.Style(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
