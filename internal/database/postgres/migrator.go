package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joacominatel/stnl/internal/database"
)

// Migrator converges live tables and procedures towards a Migration. It only
// adds and alters; columns missing from a blueprint are never dropped.
type Migrator struct {
	log *slog.Logger
}

// NewMigrator creates a migrator logging to logger (slog.Default when nil).
func NewMigrator(logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{log: logger}
}

// Migrate applies every table, then every procedure, in declaration order. A
// failing entry is logged and skipped; the returned error joins all failures.
func (m *Migrator) Migrate(ctx context.Context, drv database.Driver, migration *database.Migration) error {
	var errs []error
	for _, name := range migration.TableNames() {
		bp, _ := migration.Blueprint(name)
		if err := m.ApplyBlueprint(ctx, drv, bp); err != nil {
			m.log.Error("migrate table failed", "table", bp.TableName(), "error", err)
			errs = append(errs, err)
		}
	}
	for _, name := range migration.ProcedureNames() {
		sp, _ := migration.ProcedureBlueprint(name)
		if err := m.ApplyProcedure(ctx, drv, sp); err != nil {
			m.log.Error("migrate procedure failed", "procedure", sp.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Plan returns the statements that would converge one table, without
// running them.
func (m *Migrator) Plan(ctx context.Context, drv database.Driver, bp *database.Blueprint) ([]string, error) {
	exists, err := drv.TableExists(ctx, bp.TableName())
	if err != nil {
		return nil, err
	}
	if !exists {
		return CreateTableSQL(bp)
	}
	current, err := drv.QueryBlueprint(ctx, bp.TableName())
	if err != nil {
		return nil, err
	}
	return DiffBlueprint(current, bp)
}

// ApplyBlueprint plans and runs the statements for one table, stopping at
// the first failing statement.
func (m *Migrator) ApplyBlueprint(ctx context.Context, drv database.Driver, bp *database.Blueprint) error {
	table := bp.TableName()
	stmts, err := m.Plan(ctx, drv, bp)
	if err != nil {
		return &MigrationError{Kind: "table", Name: table, Cause: err}
	}
	if len(stmts) == 0 {
		m.log.Info("table is up to date", "table", table)
		return nil
	}

	m.log.Info("applying table changes", "table", table, "statements", len(stmts))
	for _, stmt := range stmts {
		m.log.Debug("migrate", "table", table, "sql", stmt)
		if err := drv.ExecStatement(ctx, stmt); err != nil {
			return &MigrationError{Kind: "table", Name: table, SQL: stmt, Cause: err}
		}
	}
	m.log.Info("table changes applied", "table", table)
	return nil
}

// ApplyProcedure creates or replaces one stored procedure.
func (m *Migrator) ApplyProcedure(ctx context.Context, drv database.Driver, sp *database.ProcedureBlueprint) error {
	stmt, err := ProcedureSQL(sp)
	if err != nil {
		return &MigrationError{Kind: "procedure", Name: sp.Name(), Cause: err}
	}
	if err := drv.ExecStatement(ctx, stmt); err != nil {
		return &MigrationError{Kind: "procedure", Name: sp.Name(), SQL: stmt, Cause: err}
	}
	m.log.Info("procedure created or replaced", "procedure", sp.Name())
	return nil
}

// DiffBlueprint compares the live blueprint with the desired one and returns
// the ALTER and index statements that reconcile them, column by column in
// declaration order.
func DiffBlueprint(current, desired *database.Blueprint) ([]string, error) {
	table := desired.TableName()
	var stmts []string
	for _, want := range desired.Columns() {
		have, ok := current.Column(want.Name)
		if !ok {
			def, err := columnDefinition(want)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, def))
			if stmt := indexStatement(table, want, true); stmt != "" {
				stmts = append(stmts, stmt)
			}
			continue
		}

		colStmts, err := diffColumn(table, have, want)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, colStmts...)
	}
	return stmts, nil
}

func diffColumn(table string, have, want *database.Column) ([]string, error) {
	var stmts []string
	alter := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s ", table, want.RealName)

	if !typeMatches(have, want) {
		typ, err := columnType(want, false)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, alter+"TYPE "+typ)
	}

	if want.Type.IsInteger() && have.Identity != want.Identity {
		if want.Identity {
			stmts = append(stmts, alter+"ADD GENERATED BY DEFAULT AS IDENTITY")
		} else {
			stmts = append(stmts, alter+"DROP IDENTITY")
		}
	}

	if have.Nullable != want.Nullable {
		if want.Nullable {
			stmts = append(stmts, alter+"DROP NOT NULL")
		} else {
			stmts = append(stmts, alter+"SET NOT NULL")
		}
	}

	// identity columns carry no default of their own
	if !(want.Identity && want.Type.IsInteger()) {
		wantDefault := want.EffectiveDefault()
		if NormalizeDefault(have.Default) != wantDefault {
			if wantDefault == "" {
				stmts = append(stmts, alter+"DROP DEFAULT")
			} else {
				stmts = append(stmts, alter+"SET DEFAULT "+wantDefault)
			}
		}
	}

	if have.Unique != want.Unique {
		if want.Unique {
			stmts = append(stmts, indexStatement(table, want, true))
		} else {
			stmts = append(stmts, dropIndexStatement(table, want.Name, "key"))
		}
	}

	// a column keeps either the unique index or the plain one, never both
	if have.Index != want.Index || want.Unique {
		switch {
		case want.Index && !want.Unique:
			stmts = append(stmts, indexStatement(table, want, true))
		case have.Index:
			stmts = append(stmts, dropIndexStatement(table, want.Name, "idx"))
		}
	}
	return stmts, nil
}

func typeMatches(have, want *database.Column) bool {
	if have.Type != want.Type {
		return false
	}
	switch {
	case want.Type == database.Numeric:
		return have.Precision == want.Precision && have.Scale == want.Scale
	case want.Type == database.Timestamp:
		return have.Precision == want.Precision
	case want.Type.HasLength():
		return have.Length == want.Length
	}
	return true
}

// Migrate converges this database towards its own registry.
func (db *DB) Migrate(ctx context.Context) error {
	return NewMigrator(db.log).Migrate(ctx, db, db.migration)
}
