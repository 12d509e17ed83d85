package database

import "strings"

// Blueprint describes the columns of one table. Column order is the order of
// first declaration, which is also the column order of CREATE TABLE.
type Blueprint struct {
	tableName   string
	columnNames []string
	columns     map[string]*Column
}

// NewBlueprint creates an empty blueprint for a table.
func NewBlueprint(tableName string) *Blueprint {
	return &Blueprint{
		tableName: tableName,
		columns:   make(map[string]*Column),
	}
}

// TableName returns the table name as declared.
func (bp *Blueprint) TableName() string {
	return bp.tableName
}

// ColumnNames returns the lower-cased column keys in declaration order.
func (bp *Blueprint) ColumnNames() []string {
	return bp.columnNames
}

// Column looks up a column case-insensitively.
func (bp *Blueprint) Column(name string) (*Column, bool) {
	col, ok := bp.columns[strings.ToLower(name)]
	return col, ok
}

// Columns returns the columns in declaration order.
func (bp *Blueprint) Columns() []*Column {
	cols := make([]*Column, 0, len(bp.columnNames))
	for _, name := range bp.columnNames {
		cols = append(cols, bp.columns[name])
	}
	return cols
}

// Len returns the number of columns.
func (bp *Blueprint) Len() int {
	return len(bp.columnNames)
}

// AddColumn stores a fully built column, replacing any column with the same
// key while keeping its original position.
func (bp *Blueprint) AddColumn(col *Column) {
	if _, ok := bp.columns[col.Name]; !ok {
		bp.columnNames = append(bp.columnNames, col.Name)
	}
	bp.columns[col.Name] = col
}

func (bp *Blueprint) getOrAddColumn(realName string, t ColumnType) *Column {
	key := strings.ToLower(realName)
	col, ok := bp.columns[key]
	if !ok {
		col = NewColumn(bp.tableName, realName)
		bp.columns[key] = col
		bp.columnNames = append(bp.columnNames, key)
	}
	col.setType(t)
	return col
}

// BigInt declares or reopens a BIGINT column.
func (bp *Blueprint) BigInt(name string) *BigIntColumn {
	b := &BigIntColumn{}
	b.init(bp.getOrAddColumn(name, BigInt), b)
	return b
}

// Integer declares or reopens an INTEGER column.
func (bp *Blueprint) Integer(name string) *IntegerColumn {
	b := &IntegerColumn{}
	b.init(bp.getOrAddColumn(name, Integer), b)
	return b
}

// SmallInt declares or reopens a SMALLINT column.
func (bp *Blueprint) SmallInt(name string) *SmallIntColumn {
	b := &SmallIntColumn{}
	b.init(bp.getOrAddColumn(name, SmallInt), b)
	return b
}

// Numeric declares or reopens a NUMERIC column, NUMERIC(9,0) unless changed.
func (bp *Blueprint) Numeric(name string) *NumericColumn {
	b := &NumericColumn{}
	b.init(bp.getOrAddColumn(name, Numeric), b)
	return b
}

// Bit declares or reopens a BIT column, BIT(1) unless changed.
func (bp *Blueprint) Bit(name string) *BitColumn {
	b := &BitColumn{}
	b.init(bp.getOrAddColumn(name, Bit), b)
	return b
}

// Char declares or reopens a CHAR column.
func (bp *Blueprint) Char(name string) *CharColumn {
	b := &CharColumn{}
	b.init(bp.getOrAddColumn(name, Char), b)
	return b
}

// Varchar declares or reopens a VARCHAR column, VARCHAR(255) unless changed.
func (bp *Blueprint) Varchar(name string) *VarcharColumn {
	b := &VarcharColumn{}
	b.init(bp.getOrAddColumn(name, Varchar), b)
	return b
}

// Boolean declares or reopens a BOOLEAN column.
func (bp *Blueprint) Boolean(name string) *BooleanColumn {
	b := &BooleanColumn{}
	b.init(bp.getOrAddColumn(name, Boolean), b)
	return b
}

// Date declares or reopens a DATE column.
func (bp *Blueprint) Date(name string) *DateColumn {
	b := &DateColumn{}
	b.init(bp.getOrAddColumn(name, Date), b)
	return b
}

// Timestamp declares or reopens a TIMESTAMP WITH TIME ZONE column.
func (bp *Blueprint) Timestamp(name string) *TimestampColumn {
	b := &TimestampColumn{}
	b.init(bp.getOrAddColumn(name, Timestamp), b)
	return b
}

// UUID declares or reopens a UUID column.
func (bp *Blueprint) UUID(name string) *UUIDColumn {
	b := &UUIDColumn{}
	b.init(bp.getOrAddColumn(name, UUID), b)
	return b
}

// Text declares or reopens a TEXT column.
func (bp *Blueprint) Text(name string) *TextColumn {
	b := &TextColumn{}
	b.init(bp.getOrAddColumn(name, Text), b)
	return b
}
