package ui

import "github.com/joacominatel/stnl/internal/database/postgres"

// FromResult converts the rows of a statement result to display text.
func FromResult(r postgres.QResult) Table {
	t := Table{
		Columns: make([]string, len(r.Fields)),
		Rows:    make([][]string, 0, len(r.Rows)),
	}
	for i, f := range r.Fields {
		t.Columns[i] = f.Name
	}
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = postgres.FormatValue(v)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
