package logger

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Table struct {
	headers     []string
	rows        [][]string
	columnWidth []int
	console     *Console
}

func NewTable(headers []string, console *Console) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}

	return &Table{
		headers:     headers,
		columnWidth: widths,
		console:     console,
	}
}

// AddRow appends a row, truncating or padding it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)

	for i, cell := range row {
		if n := utf8.RuneCountInString(cell); n > t.columnWidth[i] {
			t.columnWidth[i] = n
		}
	}

	t.rows = append(t.rows, row)
}

func (t *Table) Print() {
	if t.console.JSON {
		for _, row := range t.rows {
			args := make([]any, 0, 2*len(row))
			for i, cell := range row[1:] {
				args = append(args, t.headers[i+1], cell)
			}
			t.console.Logger.Info(row[0], args...)
		}
		return
	}

	var sb strings.Builder
	sb.WriteString(t.rule("┌", "┬", "┐"))
	sb.WriteString(t.line(t.headers))
	sb.WriteString(t.rule("├", "┼", "┤"))
	for _, row := range t.rows {
		sb.WriteString(t.line(row))
	}
	sb.WriteString(t.rule("└", "┴", "┘"))
	fmt.Fprint(t.console.Output, sb.String())
}

func (t *Table) rule(left, mid, right string) string {
	parts := make([]string, len(t.columnWidth))
	for i, w := range t.columnWidth {
		parts[i] = strings.Repeat("─", w+2)
	}
	return left + strings.Join(parts, mid) + right + "\n"
}

func (t *Table) line(cells []string) string {
	var sb strings.Builder
	sb.WriteString("│")
	for i, cell := range cells {
		pad := t.columnWidth[i] - utf8.RuneCountInString(cell)
		sb.WriteString(" " + cell + strings.Repeat(" ", pad) + " │")
	}
	sb.WriteString("\n")
	return sb.String()
}
