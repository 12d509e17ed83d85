package postgres

// SQL queries for PostgreSQL metadata introspection. Catalog domains are cast
// to plain types so rows decode the same way in every protocol mode.
const (
	queryTableExists = `
		SELECT 1
		FROM information_schema.tables
		WHERE LOWER(table_name) = LOWER($1)
		  AND table_schema = CURRENT_SCHEMA()`

	queryTableIndexNames = `
		SELECT indexname::text
		FROM pg_indexes
		WHERE LOWER(tablename) = LOWER($1)
		  AND schemaname = CURRENT_SCHEMA()`

	columnsSelect = `
		SELECT
			table_name::text,
			column_name::text,
			data_type::text,
			character_maximum_length::int,
			numeric_precision::int,
			numeric_scale::int,
			datetime_precision::int,
			is_nullable::text,
			column_default::text,
			identity_generation::text
		FROM information_schema.columns
		WHERE table_schema = CURRENT_SCHEMA()`

	queryTableColumns = columnsSelect + `
		  AND LOWER(table_name) = LOWER($1)
		ORDER BY table_name, ordinal_position`

	querySchemaColumns = columnsSelect + `
		ORDER BY table_name, ordinal_position`

	queryDataTypes = `SELECT oid::bigint, typname::text FROM pg_type`
)

// Column positions in the columnsSelect result.
const (
	colTableName = iota
	colColumnName
	colDataType
	colCharMaxLength
	colNumericPrecision
	colNumericScale
	colDatetimePrecision
	colIsNullable
	colDefault
	colIdentityGeneration
)
