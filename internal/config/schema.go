package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joacominatel/stnl/internal/database"
	"github.com/spf13/viper"
)

// ErrUnknownType is returned for a schema column or parameter whose type
// name is not recognized.
var ErrUnknownType = errors.New("unknown type")

// Schema is a declarative list of tables and procedures read from a file.
type Schema struct {
	Tables     []TableSpec     `mapstructure:"tables"`
	Procedures []ProcedureSpec `mapstructure:"procedures"`
}

type TableSpec struct {
	Name    string       `mapstructure:"name"`
	Columns []ColumnSpec `mapstructure:"columns"`
}

// ColumnSpec mirrors the column builders. TypeDefault asks for the natural
// default of the type (CURRENT_TIMESTAMP for timestamps, ...) and wins over
// Default.
type ColumnSpec struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Length      int    `mapstructure:"length"`
	Precision   int    `mapstructure:"precision"`
	Scale       int    `mapstructure:"scale"`
	Identity    bool   `mapstructure:"identity"`
	Nullable    bool   `mapstructure:"nullable"`
	Index       bool   `mapstructure:"index"`
	Unique      bool   `mapstructure:"unique"`
	Default     string `mapstructure:"default"`
	TypeDefault bool   `mapstructure:"type_default"`
}

type ProcedureSpec struct {
	Name      string      `mapstructure:"name"`
	Language  string      `mapstructure:"language"`
	Delimiter string      `mapstructure:"delimiter"`
	Body      string      `mapstructure:"body"`
	Params    []ParamSpec `mapstructure:"params"`
}

// ParamSpec mirrors the parameter builders. Mode is in, out or inout.
type ParamSpec struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Mode        string `mapstructure:"mode"`
	Length      int    `mapstructure:"length"`
	Precision   int    `mapstructure:"precision"`
	Scale       int    `mapstructure:"scale"`
	Default     string `mapstructure:"default"`
	TypeDefault bool   `mapstructure:"type_default"`
}

// LoadSchema reads a schema file. The format follows the file extension
// (yaml, json or toml).
func LoadSchema(path string) (*Schema, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s := &Schema{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return s, nil
}

// Apply declares every table and procedure of the schema in m. Nothing is
// declared when the schema is invalid.
func (s *Schema) Apply(m *database.Migration) error {
	if err := s.validate(); err != nil {
		return err
	}
	for _, t := range s.Tables {
		m.Table(t.Name, func(bp *database.Blueprint) {
			for _, c := range t.Columns {
				declareColumn(bp, c)
			}
		})
	}
	for _, p := range s.Procedures {
		m.Procedure(p.Name, func(sp *database.ProcedureBlueprint) {
			if p.Language != "" {
				sp.Language = p.Language
			}
			sp.BodyDelimiter = p.Delimiter
			sp.SetBody(p.Body)
			for _, ps := range p.Params {
				declareParam(sp, ps)
			}
		})
	}
	return nil
}

func (s *Schema) validate() error {
	for _, t := range s.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return database.ErrEmptyTableName
		}
		for _, c := range t.Columns {
			if database.ParseColumnType(c.Type) == database.Undefined {
				return fmt.Errorf("table %s column %s: %w %q", t.Name, c.Name, ErrUnknownType, c.Type)
			}
		}
	}
	for _, p := range s.Procedures {
		if strings.TrimSpace(p.Name) == "" {
			return errors.New("procedure name cannot be empty")
		}
		for _, ps := range p.Params {
			if database.ParseColumnType(ps.Type) == database.Undefined {
				return fmt.Errorf("procedure %s param %s: %w %q", p.Name, ps.Name, ErrUnknownType, ps.Type)
			}
			switch strings.ToLower(ps.Mode) {
			case "", "in", "out", "inout":
			default:
				return fmt.Errorf("procedure %s param %s: unknown mode %q", p.Name, ps.Name, ps.Mode)
			}
		}
	}
	return nil
}

type nullDefaulter[T any] interface {
	Null() *T
	Default(expr ...string) *T
}

func applyNullDefault[T any](b nullDefaulter[T], nullable, typeDefault bool, def string) {
	if nullable {
		b.Null()
	}
	switch {
	case typeDefault:
		b.Default()
	case def != "":
		b.Default(def)
	}
}

func declareColumn(bp *database.Blueprint, c ColumnSpec) {
	switch database.ParseColumnType(c.Type) {
	case database.BigInt:
		b := bp.BigInt(c.Name)
		if c.Identity {
			b.Identity()
		}
		if c.Index {
			b.Index()
		}
		if c.Unique {
			b.Unique()
		}
		applyNullDefault[database.BigIntColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Integer:
		b := bp.Integer(c.Name)
		if c.Identity {
			b.Identity()
		}
		if c.Index {
			b.Index()
		}
		if c.Unique {
			b.Unique()
		}
		applyNullDefault[database.IntegerColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.SmallInt:
		b := bp.SmallInt(c.Name)
		if c.Identity {
			b.Identity()
		}
		if c.Index {
			b.Index()
		}
		if c.Unique {
			b.Unique()
		}
		applyNullDefault[database.SmallIntColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Numeric:
		b := bp.Numeric(c.Name)
		if c.Precision > 0 {
			b.Precision(c.Precision)
		}
		b.Scale(c.Scale)
		applyNullDefault[database.NumericColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Bit:
		b := bp.Bit(c.Name)
		if c.Length > 0 {
			b.N(c.Length)
		}
		applyNullDefault[database.BitColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Char:
		b := bp.Char(c.Name)
		if c.Length > 0 {
			b.Length(c.Length)
		}
		if c.Index {
			b.Index()
		}
		if c.Unique {
			b.Unique()
		}
		applyNullDefault[database.CharColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Varchar:
		b := bp.Varchar(c.Name)
		if c.Length > 0 {
			b.Length(c.Length)
		}
		if c.Index {
			b.Index()
		}
		if c.Unique {
			b.Unique()
		}
		applyNullDefault[database.VarcharColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Boolean:
		applyNullDefault[database.BooleanColumn](bp.Boolean(c.Name), c.Nullable, c.TypeDefault, c.Default)
	case database.Date:
		b := bp.Date(c.Name)
		if c.Index {
			b.Index()
		}
		applyNullDefault[database.DateColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Timestamp:
		b := bp.Timestamp(c.Name)
		if c.Precision > 0 {
			b.Precision(c.Precision)
		}
		if c.Index {
			b.Index()
		}
		applyNullDefault[database.TimestampColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.UUID:
		b := bp.UUID(c.Name)
		if c.Identity {
			b.Identity()
		}
		if c.Index {
			b.Index()
		}
		if c.Unique {
			b.Unique()
		}
		applyNullDefault[database.UUIDColumn](b, c.Nullable, c.TypeDefault, c.Default)
	case database.Text:
		applyNullDefault[database.TextColumn](bp.Text(c.Name), c.Nullable, c.TypeDefault, c.Default)
	}
}

type paramModer[T any] interface {
	nullDefaulter[T]
	In() *T
	Out() *T
	InOut() *T
}

func applyParam[T any](b paramModer[T], p ParamSpec) {
	switch strings.ToLower(p.Mode) {
	case "out":
		b.Out()
	case "inout":
		b.InOut()
	default:
		b.In()
	}
	applyNullDefault[T](b, false, p.TypeDefault, p.Default)
}

func declareParam(sp *database.ProcedureBlueprint, p ParamSpec) {
	switch database.ParseColumnType(p.Type) {
	case database.BigInt:
		applyParam[database.BigIntParam](sp.BigInt(p.Name), p)
	case database.Integer:
		applyParam[database.IntegerParam](sp.Integer(p.Name), p)
	case database.SmallInt:
		applyParam[database.SmallIntParam](sp.SmallInt(p.Name), p)
	case database.Numeric:
		b := sp.Numeric(p.Name)
		if p.Precision > 0 {
			b.Precision(p.Precision)
		}
		b.Scale(p.Scale)
		applyParam[database.NumericParam](b, p)
	case database.Bit:
		b := sp.Bit(p.Name)
		if p.Length > 0 {
			b.N(p.Length)
		}
		applyParam[database.BitParam](b, p)
	case database.Char:
		b := sp.Char(p.Name)
		if p.Length > 0 {
			b.Length(p.Length)
		}
		applyParam[database.CharParam](b, p)
	case database.Varchar:
		b := sp.Varchar(p.Name)
		if p.Length > 0 {
			b.Length(p.Length)
		}
		applyParam[database.VarcharParam](b, p)
	case database.Boolean:
		applyParam[database.BooleanParam](sp.Boolean(p.Name), p)
	case database.Date:
		applyParam[database.DateParam](sp.Date(p.Name), p)
	case database.Timestamp:
		b := sp.Timestamp(p.Name)
		if p.Precision > 0 {
			b.Precision(p.Precision)
		}
		applyParam[database.TimestampParam](b, p)
	case database.UUID:
		applyParam[database.UUIDParam](sp.UUID(p.Name), p)
	case database.Text:
		applyParam[database.TextParam](sp.Text(p.Name), p)
	}
}
