package database

import "context"

// Driver defines the schema operations the migrator needs from an engine.
// All implementations must be safe for concurrent use.
type Driver interface {
	// TableExists reports whether the table exists in the current schema.
	TableExists(ctx context.Context, table string) (bool, error)

	// QueryBlueprint reads the live definition of a table, in catalog
	// column order.
	QueryBlueprint(ctx context.Context, table string) (*Blueprint, error)

	// ExecStatement runs one DDL statement outside a transaction.
	ExecStatement(ctx context.Context, sql string) error
}
