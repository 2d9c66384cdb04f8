package display

import (
	"fmt"
	"strings"
	"time"
)

// Table renders an aligned text table with optional color support.
type Table struct {
	headers []string
	rows    [][]string
	// highlightRow is the 0-based row index to highlight (the next
	// prayer). -1 = none.
	highlightRow int
}

// NewTable creates a new table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:      headers,
		highlightRow: -1,
	}
}

// AddRow appends a row of values.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow sets which row index (0-based) should be highlighted.
func (t *Table) SetHighlightRow(idx int) {
	t.highlightRow = idx
}

// Render produces the formatted table string with leading indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder

	headerLine := formatRow(t.headers, widths)
	sb.WriteString("  " + Bold(headerLine) + "\n")

	sepParts := make([]string, len(widths))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sepParts, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if i == t.highlightRow {
			sb.WriteString("  " + Accent(line) + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}

	return sb.String()
}

// formatRow formats a row of cells using the given column widths.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.Join(parts, "  ")
}

// RenderSchedule renders derived entries as the board's terminal
// schedule: prayer, azan, iqamah, with the next prayer highlighted.
func RenderSchedule(entries []Entry, timeFormat string) string {
	table := NewTable([]string{"Prayer", "Azan", "Iqamah"})

	for i, e := range entries {
		azan, iqamah := "--:--", ""
		if !e.Azan.IsZero() {
			azan = e.Azan.Format(timeFormat)
		}
		if !e.Iqamah.IsZero() {
			iqamah = e.Iqamah.Format(timeFormat)
		}
		table.AddRow([]string{e.NameEn, azan, iqamah})
		if e.IsNext {
			table.SetHighlightRow(i)
		}
	}

	return table.Render()
}

// NextLine renders the one-line "next prayer" summary shown under the
// schedule, or the all-done message when nothing is left today.
func NextLine(entries []Entry, now time.Time) string {
	for _, e := range entries {
		if !e.IsNext {
			continue
		}
		remaining := FormatRemaining(TimeRemaining(e, now))
		return fmt.Sprintf("Next: %s at %s (in %s)",
			Bold(e.NameEn), e.Azan.Format("15:04"), Green(remaining))
	}
	return Dim("All prayers completed for today")
}
