package postgres

import (
	"fmt"
	"strings"

	"github.com/joacominatel/stnl/internal/database"
)

// SQLType renders the type clause for a set of attributes. identity appends
// GENERATED ALWAYS AS IDENTITY to integer types.
func SQLType(a database.Attrs, identity bool) (string, error) {
	switch a.Type {
	case database.BigInt, database.Integer, database.SmallInt:
		typ := strings.ToUpper(a.Type.String())
		if identity {
			typ += " GENERATED ALWAYS AS IDENTITY"
		}
		return typ, nil
	case database.Numeric:
		return fmt.Sprintf("NUMERIC(%d,%d)", a.Precision, a.Scale), nil
	case database.Varchar:
		return fmt.Sprintf("VARCHAR(%d)", a.Length), nil
	case database.Char:
		return fmt.Sprintf("CHAR(%d)", a.Length), nil
	case database.Text:
		return "TEXT", nil
	case database.Boolean:
		return "BOOLEAN", nil
	case database.Date:
		return "DATE", nil
	case database.Timestamp:
		return fmt.Sprintf("TIMESTAMP(%d) WITH TIME ZONE", a.Precision), nil
	case database.UUID:
		return "UUID", nil
	case database.Bit:
		return fmt.Sprintf("BIT(%d)", a.Length), nil
	default:
		return "", database.ErrUndefinedType
	}
}

func columnType(col *database.Column, withIdentity bool) (string, error) {
	typ, err := SQLType(col.Attrs, withIdentity && col.Identity && col.Type.IsInteger())
	if err != nil {
		return "", fmt.Errorf("column %s.%s: %w", col.TableName, col.RealName, err)
	}
	return typ, nil
}

func columnConstraints(col *database.Column) string {
	var b strings.Builder
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	// an identity column generates its own values and cannot carry a default
	if col.Identity && col.Type.IsInteger() {
		return b.String()
	}
	if def := col.EffectiveDefault(); def != "" {
		fmt.Fprintf(&b, " CONSTRAINT %s DEFAULT %s", indexName(col.TableName, col.Name, "default"), def)
	}
	return b.String()
}

// columnDefinition renders "name TYPE [NOT NULL] [CONSTRAINT .. DEFAULT ..]".
func columnDefinition(col *database.Column) (string, error) {
	typ, err := columnType(col, true)
	if err != nil {
		return "", err
	}
	return col.RealName + " " + typ + columnConstraints(col), nil
}

// indexStatement creates the index a column asks for. A unique index takes
// the place of a plain one.
func indexStatement(table string, col *database.Column, concurrently bool) string {
	mode := ""
	if concurrently {
		mode = "CONCURRENTLY IF NOT EXISTS "
	}
	switch {
	case col.Unique:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s%s ON %s (%s)", mode, indexName(table, col.Name, "key"), table, col.RealName)
	case col.Index:
		return fmt.Sprintf("CREATE INDEX %s%s ON %s (%s)", mode, indexName(table, col.Name, "idx"), table, col.RealName)
	default:
		return ""
	}
}

func dropIndexStatement(table, column, suffix string) string {
	return fmt.Sprintf("DROP INDEX CONCURRENTLY IF EXISTS %s", indexName(table, column, suffix))
}

// CreateTableSQL returns the CREATE TABLE statement for bp followed by one
// CREATE INDEX statement per indexed column.
func CreateTableSQL(bp *database.Blueprint) ([]string, error) {
	table := bp.TableName()
	cols := bp.Columns()
	defs := make([]string, 0, len(cols))
	for _, col := range cols {
		def, err := columnDefinition(col)
		if err != nil {
			return nil, err
		}
		defs = append(defs, "  "+def)
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (\n%s\n)", table, strings.Join(defs, ",\n"))}
	for _, col := range cols {
		if stmt := indexStatement(table, col, false); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// ParamSQL renders a procedure parameter: MODE name TYPE [DEFAULT expr].
func ParamSQL(p *database.Param) (string, error) {
	typ, err := SQLType(p.Attrs, false)
	if err != nil {
		return "", fmt.Errorf("param %s: %w", p.RealName, err)
	}
	s := p.Mode() + " " + p.RealName + " " + typ
	if p.Default != "" {
		s += " DEFAULT " + p.Default
	}
	return s, nil
}

// ProcedureSQL renders CREATE OR REPLACE PROCEDURE for sp.
func ProcedureSQL(sp *database.ProcedureBlueprint) (string, error) {
	params := sp.Params()
	rendered := make([]string, 0, len(params))
	for _, p := range params {
		s, err := ParamSQL(p)
		if err != nil {
			return "", fmt.Errorf("procedure %s: %w", sp.Name(), err)
		}
		rendered = append(rendered, s)
	}

	lang := sp.Language
	if lang == "" {
		lang = database.DefaultProcedureLanguage
	}
	delim := "$" + strings.Trim(sp.BodyDelimiter, "$") + "$"
	body := strings.TrimRight(strings.TrimSpace(sp.Body), ";")

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE PROCEDURE %s(%s)\n", sp.Name(), strings.Join(rendered, ", "))
	fmt.Fprintf(&b, "LANGUAGE %s\n", lang)
	fmt.Fprintf(&b, "AS %s\n", delim)
	b.WriteString("BEGIN\n")
	b.WriteString(body)
	b.WriteString(";\nEND;\n")
	b.WriteString(delim)
	return b.String(), nil
}
