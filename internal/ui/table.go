package ui

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxColumnWidth caps the width of a rendered column; longer cells are
// truncated with an ellipsis.
const MaxColumnWidth = 40

// Table is a rendered-as-text result set.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) columnWidths() []int {
	widths := make([]int, len(t.Columns))

	// Use display width (not byte length) for accurate measurement
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
		if widths[i] > MaxColumnWidth {
			widths[i] = MaxColumnWidth
		}
	}
	return widths
}

// Render draws the table with a styled header, a separator and one line per
// row, followed by a row count.
func (t Table) Render() string {
	if len(t.Columns) == 0 {
		return StyleSuccess.Render("Statement executed successfully") + "\n"
	}
	widths := t.columnWidths()

	var b strings.Builder
	b.WriteString(renderRow(t.Columns, widths, true))
	b.WriteString("\n")
	b.WriteString(renderSeparator(widths))
	b.WriteString("\n")
	for _, row := range t.Rows {
		b.WriteString(renderRow(row, widths, false))
		b.WriteString("\n")
	}
	b.WriteString(StyleMuted.Render(fmt.Sprintf("(%d row(s))", len(t.Rows))))
	b.WriteString("\n")
	return b.String()
}

func renderRow(cells []string, widths []int, isHeader bool) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		display := ""
		if i < len(cells) {
			display = cells[i]
		}
		display = fit(display, width)
		if isHeader {
			display = StyleHeader.Render(display)
		}
		parts[i] = display
	}
	return "  " + strings.Join(parts, " │ ")
}

// fit truncates s to width display cells, ending in an ellipsis when cut,
// and pads it with spaces.
func fit(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		if width <= 1 {
			return "…"
		}
		runes := []rune(s)
		for lipgloss.Width(string(runes)) >= width && len(runes) > 0 {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
		w = lipgloss.Width(s)
	}
	if pad := width - w; pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func renderSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return "  " + StyleSeparator.Render(strings.Join(parts, "─┼─"))
}

// WriteCSV writes the header and rows as CSV.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
