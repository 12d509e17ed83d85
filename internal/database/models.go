package database

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyTableName is returned when a blueprint is requested without a table name.
	ErrEmptyTableName = errors.New("table name cannot be empty")

	// ErrUndefinedType is returned when DDL is requested for a column or
	// parameter whose type was never set or could not be mapped.
	ErrUndefinedType = errors.New("undefined column type")
)

// ColumnType is the SQL data type of a column or procedure parameter.
type ColumnType int

const (
	Undefined ColumnType = iota
	BigInt
	Integer
	SmallInt
	Numeric
	Bit
	Char
	Varchar
	Boolean
	Date
	Timestamp
	UUID
	Text
)

// Defaults applied when a builder first sets a column's type.
const (
	DefaultVarcharLength      = 255
	DefaultCharLength         = 1
	DefaultBitLength          = 1
	DefaultNumericPrecision   = 9
	DefaultTimestampPrecision = 6
)

func (t ColumnType) String() string {
	switch t {
	case BigInt:
		return "bigint"
	case Integer:
		return "integer"
	case SmallInt:
		return "smallint"
	case Numeric:
		return "numeric"
	case Bit:
		return "bit"
	case Char:
		return "char"
	case Varchar:
		return "varchar"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case UUID:
		return "uuid"
	case Text:
		return "text"
	default:
		return "undefined"
	}
}

// ParseColumnType maps a type name as written in schema files to a ColumnType.
func ParseColumnType(s string) ColumnType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bigint", "int8":
		return BigInt
	case "integer", "int", "int4":
		return Integer
	case "smallint", "int2":
		return SmallInt
	case "numeric", "decimal":
		return Numeric
	case "bit":
		return Bit
	case "char", "character":
		return Char
	case "varchar", "character varying":
		return Varchar
	case "boolean", "bool":
		return Boolean
	case "date":
		return Date
	case "timestamp", "timestamptz":
		return Timestamp
	case "uuid":
		return UUID
	case "text":
		return Text
	default:
		return Undefined
	}
}

// IsInteger reports whether the type can carry identity generation.
func (t ColumnType) IsInteger() bool {
	return t == BigInt || t == Integer || t == SmallInt
}

// HasLength reports whether Length is part of the type declaration.
func (t ColumnType) HasLength() bool {
	return t == Varchar || t == Char || t == Bit
}

// HasPrecision reports whether Precision (and for Numeric, Scale) is part of
// the type declaration.
func (t ColumnType) HasPrecision() bool {
	return t == Numeric || t == Timestamp
}

// DefaultExpr returns the expression used when Default is called without an
// explicit value. Types without a natural default return "".
func DefaultExpr(t ColumnType) string {
	switch t {
	case Bit:
		return "'1'"
	case Boolean:
		return "true"
	case Date:
		return "CURRENT_DATE"
	case Timestamp:
		return "CURRENT_TIMESTAMP"
	case UUID:
		return "uuidv7()"
	default:
		return ""
	}
}

// Attrs are the type attributes shared by columns and procedure parameters.
type Attrs struct {
	Type      ColumnType
	Length    int
	Precision int
	Scale     int
	Nullable  bool
	Default   string // raw SQL expression
}

// setType switches the type and applies that type's defaults.
func (a *Attrs) setType(t ColumnType) {
	if a.Type == t {
		return
	}
	a.Type = t
	a.Length, a.Precision, a.Scale = 0, 0, 0
	switch t {
	case Varchar:
		a.Length = DefaultVarcharLength
	case Char:
		a.Length = DefaultCharLength
	case Bit:
		a.Length = DefaultBitLength
	case Numeric:
		a.Precision = DefaultNumericPrecision
	case Timestamp:
		a.Precision = DefaultTimestampPrecision
	}
}

// Column is a table column, either declared through a Blueprint or read back
// from the live catalog.
type Column struct {
	Attrs
	TableName string
	RealName  string
	Name      string // lower-cased lookup key
	Identity  bool
	Index     bool
	Unique    bool
}

// NewColumn returns a column of undefined type.
func NewColumn(tableName, realName string) *Column {
	return &Column{
		TableName: tableName,
		RealName:  realName,
		Name:      strings.ToLower(realName),
	}
}

// Param is a stored-procedure parameter.
type Param struct {
	Attrs
	RealName string
	Name     string
	In       bool
	Out      bool
}

// NewParam returns an IN parameter of undefined type.
func NewParam(realName string) *Param {
	return &Param{
		RealName: realName,
		Name:     strings.ToLower(realName),
		In:       true,
	}
}

// Mode renders the parameter direction.
func (p *Param) Mode() string {
	switch {
	case p.In && p.Out:
		return "INOUT"
	case p.Out:
		return "OUT"
	default:
		return "IN"
	}
}
