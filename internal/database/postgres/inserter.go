package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

// Pair is one column/value of an INSERT.
type Pair struct {
	Column string
	Value  any
}

// P is shorthand for Pair{column, value}.
func P(column string, value any) Pair {
	return Pair{Column: column, Value: value}
}

// Command is a parameterized statement ready to execute.
type Command struct {
	SQL    string
	Params []any
}

// Inserter accumulates column/value pairs into a parameterized INSERT. It is
// reusable: Flush resets it for the next statement.
type Inserter struct {
	columns      strings.Builder
	placeholders strings.Builder
	params       []any
}

// Add appends a column and its value.
func (ins *Inserter) Add(column string, value any) *Inserter {
	if len(ins.params) > 0 {
		ins.columns.WriteByte(',')
		ins.placeholders.WriteByte(',')
	}
	ins.params = append(ins.params, value)
	ins.columns.WriteString(column)
	ins.placeholders.WriteString("$" + strconv.Itoa(len(ins.params)))
	return ins
}

// Empty reports whether no pair has been added since the last flush.
func (ins *Inserter) Empty() bool {
	return len(ins.params) == 0
}

// Flush renders the INSERT for table with its positional parameters and
// resets the inserter.
func (ins *Inserter) Flush(table string) (string, []any) {
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, ins.columns.String(), ins.placeholders.String())
	params := ins.params
	ins.columns.Reset()
	ins.placeholders.Reset()
	ins.params = nil
	return sql, params
}

// BatchInserter collects one INSERT per row. Call Flush after the pairs of
// each row.
type BatchInserter struct {
	table    string
	inserter Inserter
	cmds     []Command
}

// NewBatchInserter creates a batch for table.
func NewBatchInserter(table string) *BatchInserter {
	return &BatchInserter{table: table}
}

// Add appends a pair to the current row.
func (b *BatchInserter) Add(column string, value any) *BatchInserter {
	b.inserter.Add(column, value)
	return b
}

// Row adds all pairs of one row and flushes it.
func (b *BatchInserter) Row(pairs ...Pair) *BatchInserter {
	for _, p := range pairs {
		b.inserter.Add(p.Column, p.Value)
	}
	b.Flush()
	return b
}

// Flush closes the current row. Flushing an empty row is a no-op.
func (b *BatchInserter) Flush() {
	if b.inserter.Empty() {
		return
	}
	sql, params := b.inserter.Flush(b.table)
	b.cmds = append(b.cmds, Command{SQL: sql, Params: params})
}

// SetTableName changes the target table for subsequent rows.
func (b *BatchInserter) SetTableName(table string) {
	b.table = table
}

// Commands flushes any pending row and returns all statements.
func (b *BatchInserter) Commands() []Command {
	if !b.inserter.Empty() {
		b.Flush()
	}
	return b.cmds
}
