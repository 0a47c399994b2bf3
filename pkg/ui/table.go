package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Align positions a cell inside its column
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

const ellipsis = "…"

// TableColumn describes one column of a record table
type TableColumn struct {
	Header   string
	Width    int   // minimum display width
	MaxWidth int   // cells wider than this are truncated, 0 for no limit
	Align    Align
	// Style colors a cell by its raw value, overriding the row style
	Style func(cell string) lipgloss.Style
}

// Table renders catalog records as aligned columns. All widths are display
// widths, so names with wide runes or emoji icons stay aligned.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

// NewTable creates a new table with specified columns
func NewTable(columns []TableColumn) *Table {
	return &Table{
		Columns: columns,
		Rows:    [][]string{},
	}
}

// AddRow adds a row to the table. Missing trailing cells render empty.
func (t *Table) AddRow(cells []string) {
	row := make([]string, len(t.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	for i, col := range t.Columns {
		if col.MaxWidth > 0 {
			row[i] = Truncate(row[i], col.MaxWidth)
		}
	}
	t.Rows = append(t.Rows, row)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = max(lipgloss.Width(col.Header), col.Width)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

// Render renders the table as a string
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	var builder strings.Builder
	widths := t.widths()

	parts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		parts[i] = fitCell(col.Header, widths[i], col.Align)
	}
	builder.WriteString(StyleTableHeader.Render(strings.Join(parts, "  ")))
	builder.WriteString("\n")

	for i := range t.Columns {
		parts[i] = strings.Repeat("─", widths[i])
	}
	builder.WriteString(StyleTableBorder.Render(strings.Join(parts, "  ")))
	builder.WriteString("\n")

	for idx, row := range t.Rows {
		rowStyle := StyleTableRow
		if idx%2 == 1 {
			rowStyle = StyleTableRowAlt
		}
		for i, col := range t.Columns {
			style := rowStyle
			if col.Style != nil {
				style = col.Style(row[i])
			}
			parts[i] = style.Render(fitCell(row[i], widths[i], col.Align))
		}
		builder.WriteString(strings.Join(parts, "  "))
		builder.WriteString("\n")
	}

	return builder.String()
}

// Truncate shortens s to at most width display cells, ending with an
// ellipsis when anything was cut.
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 0 {
		return ""
	}

	budget := width - lipgloss.Width(ellipsis)
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > budget {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + ellipsis
}

// fitCell pads s to width display cells using the column alignment
func fitCell(s string, width int, align Align) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}

	switch align {
	case AlignRight:
		return strings.Repeat(" ", padding) + s
	case AlignCenter:
		left := padding / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", padding-left)
	default:
		return s + strings.Repeat(" ", padding)
	}
}

// RenderSimpleList renders a simple bulleted list
func RenderSimpleList(items []string) string {
	var builder strings.Builder
	for _, item := range items {
		builder.WriteString(StyleInfo.Render("  • "))
		builder.WriteString(item)
		builder.WriteString("\n")
	}
	return builder.String()
}

// RenderKeyValue renders a key-value pair
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s",
		StyleAccent.Render(key),
		value,
	)
}
