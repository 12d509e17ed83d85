package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joacominatel/stnl/internal/database"
)

// TableExists reports whether table exists in the current schema.
func (db *DB) TableExists(ctx context.Context, table string) (bool, error) {
	r := db.ExecSQLCmd(ctx, "table_exists", queryTableExists, []any{table})
	if !r.OK {
		return false, fmt.Errorf("table exists %s: %w", table, r.Err())
	}
	return !r.Empty(), nil
}

// GetTableIndexNames lists the index names of table.
func (db *DB) GetTableIndexNames(ctx context.Context, table string) ([]string, error) {
	r := db.ExecSQLCmd(ctx, "table_index_names", queryTableIndexNames, []any{table})
	if !r.OK {
		return nil, fmt.Errorf("index names %s: %w", table, r.Err())
	}
	names := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		names = append(names, asString(row[0]))
	}
	return names, nil
}

// GetTableColumns reads the live columns of table, or of every table in the
// current schema when table is empty, in catalog order.
func (db *DB) GetTableColumns(ctx context.Context, table string) ([]*database.Column, error) {
	var r QResult
	if table == "" {
		r = db.ExecSQLCmd(ctx, "schema_columns", querySchemaColumns, nil)
	} else {
		r = db.ExecSQLCmd(ctx, "table_columns", queryTableColumns, []any{table})
	}
	if !r.OK {
		return nil, fmt.Errorf("get columns: %w", r.Err())
	}

	indexNames := make(map[string]struct{})
	tables := make(map[string]struct{})
	for _, row := range r.Rows {
		name := asString(row[colTableName])
		if _, seen := tables[name]; seen {
			continue
		}
		tables[name] = struct{}{}
		names, err := db.GetTableIndexNames(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			indexNames[strings.ToLower(n)] = struct{}{}
		}
	}

	columns := make([]*database.Column, 0, len(r.Rows))
	for _, row := range r.Rows {
		col := columnFromRow(row)
		if col.Type == database.Undefined {
			db.log.Warn("unsupported column data type",
				"table", col.TableName, "column", col.RealName, "data_type", asString(row[colDataType]))
		}
		if _, ok := indexNames[indexName(col.TableName, col.Name, "idx")]; ok {
			col.Index = true
		}
		if _, ok := indexNames[indexName(col.TableName, col.Name, "key")]; ok {
			col.Unique = true
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// QueryBlueprint assembles the live blueprint of table.
func (db *DB) QueryBlueprint(ctx context.Context, table string) (*database.Blueprint, error) {
	if table == "" {
		db.log.Error("query blueprint without a table name")
		return nil, database.ErrEmptyTableName
	}
	cols, err := db.GetTableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	bp := database.NewBlueprint(table)
	for _, col := range cols {
		bp.AddColumn(col)
	}
	return bp, nil
}

func columnFromRow(row []any) *database.Column {
	col := database.NewColumn(asString(row[colTableName]), asString(row[colColumnName]))
	col.Nullable = asString(row[colIsNullable]) == "YES"
	col.Identity = asString(row[colIdentityGeneration]) != ""
	if def := asString(row[colDefault]); def != "" {
		col.Default = NormalizeDefault(def)
	}

	dataType := asString(row[colDataType])
	switch {
	case dataType == "bigint":
		col.Type = database.BigInt
	case dataType == "integer":
		col.Type = database.Integer
	case dataType == "smallint":
		col.Type = database.SmallInt
	case dataType == "numeric":
		col.Type = database.Numeric
		col.Precision = asInt(row[colNumericPrecision], 0)
		col.Scale = asInt(row[colNumericScale], 0)
	case dataType == "bit":
		col.Type = database.Bit
		col.Length = asInt(row[colCharMaxLength], database.DefaultBitLength)
	case dataType == "character":
		col.Type = database.Char
		col.Length = asInt(row[colCharMaxLength], 0)
	case dataType == "character varying":
		col.Type = database.Varchar
		col.Length = asInt(row[colCharMaxLength], database.DefaultVarcharLength)
	case dataType == "boolean":
		col.Type = database.Boolean
	case dataType == "date":
		col.Type = database.Date
	case strings.Contains(dataType, "timestamp"):
		col.Type = database.Timestamp
		col.Precision = asInt(row[colDatetimePrecision], database.DefaultTimestampPrecision)
	case dataType == "uuid":
		col.Type = database.UUID
	case dataType == "text":
		col.Type = database.Text
	default:
		col.Type = database.Undefined
	}
	return col
}

// castSuffix matches one trailing type cast such as ::bit(1),
// ::character varying or ::"bit".
var castSuffix = regexp.MustCompile(`::[A-Za-z_"][A-Za-z0-9_" ]*(\(\s*\d+(\s*,\s*\d+)?\s*\))?(\[\])?$`)

// NormalizeDefault strips trailing casts the catalog adds to default
// expressions, so that '1'::bit(1) compares equal to '1'.
func NormalizeDefault(expr string) string {
	expr = strings.TrimSpace(expr)
	for {
		stripped := castSuffix.ReplaceAllString(expr, "")
		if stripped == expr {
			return expr
		}
		expr = strings.TrimSpace(stripped)
	}
}

// indexName follows the {table}_{column}_{suffix} convention used for
// generated indexes and default constraints.
func indexName(table, column, suffix string) string {
	return strings.ToLower(table) + "_" + strings.ToLower(column) + "_" + suffix
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func asInt(v any, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return fallback
}
